// Package ops holds the operator identities the compiler understands, their
// attribute types, and the process-wide registry of struct-info inference
// functions.
//
// The registry is write-once ambient state: all operators are registered
// during package initialization, before any module is compiled, and lookups
// after that point are pure reads. Registering after the first lookup, or
// registering the same operator twice, panics.
package ops

import (
	"sync"

	"github.com/axonml/axon/ir"
	"github.com/axonml/axon/symdim"
	"github.com/pkg/errors"
)

// Context is the facility an inference function gets to interact with its
// surroundings: the symbolic prover and fatal diagnostic reporting.
// ReportFatal does not return.
type Context interface {
	// CanProveEqualDim asks the proof oracle whether two dimensions are
	// provably the same integer. False means "not provably equal", never
	// "provably unequal".
	CanProveEqualDim(a, b symdim.Dim) bool
	// CanProveNotEqualDim asks the oracle whether two dimensions provably
	// differ. False means no proof either way.
	CanProveNotEqualDim(a, b symdim.Dim) bool
	// ReportFatal aborts compilation of the enclosing function with a
	// structured diagnostic. It panics; it never returns.
	ReportFatal(err error)
}

// InferFunc computes the output struct info of a call from its inputs'
// struct info and attributes. Contract violations are reported through
// ctx.ReportFatal; genuinely undecidable shapes degrade to rank-only or
// unknown-rank info instead.
type InferFunc func(call *ir.Call, ctx Context) ir.StructInfo

var (
	registryMu sync.Mutex
	byName     = make(map[string]*ir.Op)
	inferFns   = make(map[*ir.Op]InferFunc)
	frozen     bool
)

// New declares an operator identity. The name must be unique.
func New(name string, numInputs int) *ir.Op {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := byName[name]; dup {
		panic(errors.Errorf("operator %q declared twice", name))
	}
	op := &ir.Op{Name: name, NumInputs: numInputs}
	byName[name] = op
	return op
}

// RegisterInfer attaches the struct-info inference function for op. Must run
// during initialization, before the first lookup.
func RegisterInfer(op *ir.Op, fn InferFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if frozen {
		panic(errors.Errorf("operator %q registered after the registry was frozen", op.Name))
	}
	if _, dup := inferFns[op]; dup {
		panic(errors.Errorf("operator %q already has an inference function", op.Name))
	}
	inferFns[op] = fn
}

// LookupInferFn returns the registered inference function for op. The first
// call freezes the registry. The second return is false for operators with
// no registered inference, which callers must treat as a hard error.
func LookupInferFn(op *ir.Op) (InferFunc, bool) {
	registryMu.Lock()
	frozen = true
	fn, ok := inferFns[op]
	registryMu.Unlock()
	return fn, ok
}

// ByName resolves an operator identity from its canonical name.
func ByName(name string) (*ir.Op, bool) {
	registryMu.Lock()
	op, ok := byName[name]
	registryMu.Unlock()
	return op, ok
}
