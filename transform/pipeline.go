package transform

import (
	"sync"

	"github.com/axonml/axon/infer"
	"github.com/axonml/axon/ir"
	"github.com/gomlx/gomlx/pkg/support/sets"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"k8s.io/klog/v2"
)

// Pipeline runs a validated sequence of passes over every function of a
// module. Zero value is not usable; build with Sequential.
type Pipeline struct {
	passes      []*Pass
	optLevel    int
	concurrency int
}

// Sequential builds a pipeline from passes in the given order, checking that
// every Requires entry names an earlier pass.
func Sequential(passes ...*Pass) (*Pipeline, error) {
	seen := sets.Make[string]()
	for _, pass := range passes {
		for _, req := range pass.Requires {
			if !seen.Has(req) {
				return nil, errors.Errorf("pass %q requires %q, which does not run before it", pass.Name, req)
			}
		}
		seen.Insert(pass.Name)
	}
	return &Pipeline{passes: passes, optLevel: 2, concurrency: 1}, nil
}

// WithOptLevel sets the optimization level; passes whose OptLevel exceeds it
// are skipped. The default is 2.
func (p *Pipeline) WithOptLevel(level int) *Pipeline {
	p.optLevel = level
	return p
}

// WithConcurrency sets how many functions are transformed in parallel within
// each pass. Each worker gets its own inference context. The default of 1
// processes functions one at a time, in name order.
func (p *Pipeline) WithConcurrency(n int) *Pipeline {
	if n < 1 {
		n = 1
	}
	p.concurrency = n
	return p
}

// Run applies every enabled pass in order and returns the transformed module.
// The input module is never mutated. If any pass fails on any function, Run
// returns the error (all per-function failures of the failing pass, merged)
// and no partially transformed module.
func (p *Pipeline) Run(mod *ir.Module) (*ir.Module, error) {
	for _, pass := range p.passes {
		if pass.OptLevel > p.optLevel {
			klog.V(2).Infof("pipeline: skipping pass %s (opt level %d > %d)", pass.Name, pass.OptLevel, p.optLevel)
			continue
		}
		next, err := p.runPass(pass, mod)
		if err != nil {
			return nil, errors.WithMessagef(err, "pass %s", pass.Name)
		}
		mod = next
	}
	return mod, nil
}

func (p *Pipeline) runPass(pass *Pass, mod *ir.Module) (*ir.Module, error) {
	names := mod.FunctionNames()
	rewritten := make(map[string]*ir.Function, len(names))
	var err error
	if p.concurrency == 1 || len(names) < 2 {
		ictx := infer.NewContext()
		for _, name := range names {
			fn, ferr := pass.Run(mod.Funcs[name], ictx)
			if ferr != nil {
				err = multierr.Append(err, errors.WithMessagef(ferr, "function %s", name))
				continue
			}
			rewritten[name] = fn
		}
	} else {
		rewritten, err = p.runPassParallel(pass, mod, names)
	}
	if err != nil {
		return nil, err
	}

	changed := 0
	out := mod
	for _, name := range names {
		if fn := rewritten[name]; fn != mod.Funcs[name] {
			out = out.WithFunction(name, fn)
			changed++
		}
	}
	klog.V(2).Infof("pipeline: pass %s rewrote %d of %d functions", pass.Name, changed, len(names))
	return out, nil
}

// runPassParallel farms functions out to workers, each with its own inference
// context. Failures are merged in function-name order so error output does
// not depend on scheduling.
func (p *Pipeline) runPassParallel(pass *Pass, mod *ir.Module, names []string) (map[string]*ir.Function, error) {
	type result struct {
		fn  *ir.Function
		err error
	}
	jobs := make(chan string)
	var mu sync.Mutex
	results := make(map[string]result, len(names))

	var wg sync.WaitGroup
	for w := 0; w < p.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ictx := infer.NewContext()
			for name := range jobs {
				fn, err := pass.Run(mod.Funcs[name], ictx)
				mu.Lock()
				results[name] = result{fn: fn, err: err}
				mu.Unlock()
			}
		}()
	}
	for _, name := range names {
		jobs <- name
	}
	close(jobs)
	wg.Wait()

	rewritten := make(map[string]*ir.Function, len(names))
	var err error
	for _, name := range names {
		r := results[name]
		if r.err != nil {
			err = multierr.Append(err, errors.WithMessagef(r.err, "function %s", name))
			continue
		}
		rewritten[name] = r.fn
	}
	if err != nil {
		return nil, err
	}
	return rewritten, nil
}
