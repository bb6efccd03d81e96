package rewrite

import (
	"github.com/axonml/axon/ir"
	"github.com/gomlx/gomlx/pkg/support/sets"
)

// RemoveUnusedBindings drops dataflow-variable bindings whose result nothing
// consumes. Plain-variable bindings are observable and always survive, as
// does everything in non-dataflow blocks, so the pass never changes what a
// function computes.
func RemoveUnusedBindings(fn *ir.Function) (*ir.Function, error) {
	used := sets.Make[*ir.Var]()
	markUses := func(e ir.Expr) {
		ir.VisitExprs(e, func(sub ir.Expr) {
			if v, ok := sub.(*ir.Var); ok {
				used.Insert(v)
			}
		})
	}
	markUses(fn.Ret)

	// Uses only ever point at earlier bindings, so one reverse sweep settles
	// liveness: a binding kept on this sweep marks its operands before they
	// are visited.
	keep := make(map[*ir.VarBinding]bool)
	dropped := false
	for blockIdx := len(fn.Blocks) - 1; blockIdx >= 0; blockIdx-- {
		block := fn.Blocks[blockIdx]
		for i := len(block.Bindings) - 1; i >= 0; i-- {
			b := block.Bindings[i]
			live := !block.Dataflow || !b.Var.Dataflow || used.Has(b.Var)
			keep[b] = live
			if live {
				markUses(b.Value)
			} else {
				dropped = true
			}
		}
	}
	if !dropped {
		return fn, nil
	}

	blocks := make([]*ir.BindingBlock, 0, len(fn.Blocks))
	for _, block := range fn.Blocks {
		bindings := make([]*ir.VarBinding, 0, len(block.Bindings))
		for _, b := range block.Bindings {
			if keep[b] {
				bindings = append(bindings, b)
			}
		}
		if len(bindings) == len(block.Bindings) {
			blocks = append(blocks, block)
			continue
		}
		blocks = append(blocks, &ir.BindingBlock{Dataflow: block.Dataflow, Bindings: bindings})
	}
	return &ir.Function{Params: fn.Params, Blocks: blocks, Ret: fn.Ret}, nil
}
