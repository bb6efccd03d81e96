// Package rewrite implements the binding-rewrite framework: a mutator that
// walks a function's binding blocks replacing pure dataflow bindings while
// leaving every externally visible binding semantically intact, plus the
// concrete rewrites built on top of it.
package rewrite

import (
	"github.com/axonml/axon/infer"
	"github.com/axonml/axon/ir"
	"github.com/pkg/errors"
)

// RewriteCallFunc rewrites a single call bound to a dataflow variable.
// Returning the call unchanged means "no rewrite".
type RewriteCallFunc func(call *ir.Call) (ir.Expr, error)

// Mutator applies a call rewrite across a function.
//
// The Rewrite hook fires only for bindings to dataflow variables inside
// dataflow blocks; bindings to plain variables are the block's observable
// outputs and keep their call structure, as does everything in non-dataflow
// blocks. The Infer hook is broader: every call-valued binding anywhere in
// the function gets struct info attached if it lacks one, and a bound
// variable without info inherits its value's info, with later uses of the
// variable rewritten to the enriched copy.
type Mutator struct {
	// Rewrite is the per-call hook; nil means identity.
	Rewrite RewriteCallFunc
	// Infer, when set, annotates call-valued bindings that carry no struct
	// info.
	Infer *infer.Context

	// subst maps bound vars to their info-enriched copies for the duration
	// of one RewriteFunction walk.
	subst map[*ir.Var]*ir.Var
}

// RewriteFunction rewrites fn and returns the result. When nothing changes
// the input function is returned as-is, so callers can detect a fixed point
// by pointer comparison.
func (m *Mutator) RewriteFunction(fn *ir.Function) (*ir.Function, error) {
	m.subst = nil
	changed := false
	blocks := make([]*ir.BindingBlock, len(fn.Blocks))
	for i, block := range fn.Blocks {
		nb, err := m.rewriteBlock(block)
		if err != nil {
			return nil, err
		}
		if nb != block {
			changed = true
		}
		blocks[i] = nb
	}
	ret := m.substitute(fn.Ret)
	if ret != fn.Ret {
		changed = true
	}
	if !changed {
		return fn, nil
	}
	return &ir.Function{Params: fn.Params, Blocks: blocks, Ret: ret}, nil
}

func (m *Mutator) rewriteBlock(block *ir.BindingBlock) (*ir.BindingBlock, error) {
	changed := false
	bindings := make([]*ir.VarBinding, len(block.Bindings))
	for i, b := range block.Bindings {
		nb, err := m.rewriteBinding(b, block.Dataflow)
		if err != nil {
			return nil, err
		}
		if nb != b {
			changed = true
		}
		bindings[i] = nb
	}
	if !changed {
		return block, nil
	}
	return &ir.BindingBlock{Dataflow: block.Dataflow, Bindings: bindings}, nil
}

func (m *Mutator) rewriteBinding(b *ir.VarBinding, dataflow bool) (*ir.VarBinding, error) {
	value := m.substitute(b.Value)
	if call, ok := value.(*ir.Call); ok && m.Rewrite != nil && dataflow && b.Var.Dataflow {
		replaced, err := m.Rewrite(call)
		if err != nil {
			return nil, errors.WithMessagef(err, "rewriting binding of %s", b.Var.Name)
		}
		value = replaced
	}
	if m.Infer != nil {
		if c, ok := value.(*ir.Call); ok && c.Info == nil {
			info, err := infer.InferCall(c, m.Infer)
			if err != nil {
				return nil, errors.WithMessagef(err, "annotating binding of %s", b.Var.Name)
			}
			value = c.WithInfo(info)
		}
	}

	// Propagate the value's info onto an unannotated bound var so later
	// bindings consuming it see a fully annotated argument.
	v := b.Var
	if v.Info == nil {
		if info := ir.InfoOf(value); info != nil {
			nv := *v
			nv.Info = info
			v = &nv
			if m.subst == nil {
				m.subst = make(map[*ir.Var]*ir.Var)
			}
			m.subst[b.Var] = v
		}
	}

	if value == b.Value && v == b.Var {
		return b, nil
	}
	return &ir.VarBinding{Var: v, Value: value}, nil
}

// substitute rewrites uses of info-enriched vars inside e, sharing nodes
// whose subtrees are untouched.
func (m *Mutator) substitute(e ir.Expr) ir.Expr {
	if len(m.subst) == 0 {
		return e
	}
	switch e := e.(type) {
	case *ir.Var:
		if nv, ok := m.subst[e]; ok {
			return nv
		}
		return e
	case *ir.Call:
		args, changed := m.substituteAll(e.Args)
		if !changed {
			return e
		}
		clone := *e
		clone.Args = args
		return &clone
	case *ir.Tuple:
		fields, changed := m.substituteAll(e.Fields)
		if !changed {
			return e
		}
		clone := *e
		clone.Fields = fields
		return &clone
	case *ir.TupleGetItem:
		inner := m.substitute(e.Tuple)
		if inner == e.Tuple {
			return e
		}
		clone := *e
		clone.Tuple = inner
		return &clone
	default:
		return e
	}
}

func (m *Mutator) substituteAll(exprs []ir.Expr) ([]ir.Expr, bool) {
	changed := false
	out := make([]ir.Expr, len(exprs))
	for i, e := range exprs {
		out[i] = m.substitute(e)
		if out[i] != e {
			changed = true
		}
	}
	return out, changed
}
