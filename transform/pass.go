// Package transform composes function-level rewrites into module pipelines:
// pass descriptors with ordering requirements, sequential or parallel
// per-function execution, and all-or-nothing module results.
package transform

import (
	"github.com/axonml/axon/infer"
	"github.com/axonml/axon/ir"
	"github.com/axonml/axon/rewrite"
)

// FunctionPassFunc transforms one function. The inference context is owned by
// the calling worker; implementations must not retain it.
type FunctionPassFunc func(fn *ir.Function, ictx *infer.Context) (*ir.Function, error)

// Pass describes one function-level transformation.
type Pass struct {
	// Name identifies the pass in logs, errors and Requires lists.
	Name string
	// OptLevel is the minimum optimization level at which the pass runs.
	OptLevel int
	// Requires names passes that must run earlier in the same pipeline.
	Requires []string
	// Run applies the pass to a single function.
	Run FunctionPassFunc
}

// ToANFPass verifies administrative normal form.
func ToANFPass() *Pass {
	return &Pass{
		Name: "ToANF",
		Run: func(fn *ir.Function, _ *infer.Context) (*ir.Function, error) {
			return rewrite.ToANF(fn)
		},
	}
}

// InferStructInfoPass annotates dataflow call bindings with inferred struct
// info.
func InferStructInfoPass() *Pass {
	return &Pass{
		Name:     "InferStructInfo",
		Requires: []string{"ToANF"},
		Run:      rewrite.AnnotateStructInfo,
	}
}

// RewriteDataflowReshapePass specializes reshape-shaped kernel calls into
// vm.reshape.
func RewriteDataflowReshapePass() *Pass {
	return &Pass{
		Name:     "RewriteDataflowReshape",
		OptLevel: 1,
		Requires: []string{"ToANF"},
		Run:      rewrite.RewriteDataflowReshapes,
	}
}

// RemoveUnusedBindingsPass drops dead dataflow bindings.
func RemoveUnusedBindingsPass() *Pass {
	return &Pass{
		Name:     "RemoveUnusedBindings",
		OptLevel: 1,
		Run: func(fn *ir.Function, _ *infer.Context) (*ir.Function, error) {
			return rewrite.RemoveUnusedBindings(fn)
		},
	}
}

// DefaultPasses is the standard lowering sequence.
func DefaultPasses() []*Pass {
	return []*Pass{
		ToANFPass(),
		InferStructInfoPass(),
		RewriteDataflowReshapePass(),
		RemoveUnusedBindingsPass(),
	}
}
