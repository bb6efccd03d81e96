package rewrite

import (
	"github.com/axonml/axon/ir"
	"github.com/pkg/errors"
)

// ToANF normalizes a function into administrative normal form: every operator
// call bound to its own variable, with call arguments reduced to leaves.
//
// Front-end trees already arrive in this form, so today the pass verifies the
// property and reports where it does not hold rather than repairing it.
//
// TODO: lift nested call arguments into fresh dataflow bindings placed in the
// innermost block that dominates all their uses, so hand-built trees
// normalize instead of erroring.
func ToANF(fn *ir.Function) (*ir.Function, error) {
	for blockIdx, block := range fn.Blocks {
		for _, b := range block.Bindings {
			call, ok := b.Value.(*ir.Call)
			if !ok {
				continue
			}
			for i, arg := range call.Args {
				if nested, ok := arg.(*ir.Call); ok {
					return nil, errors.Errorf(
						"binding of %s in block %d is not in normal form: argument %d is a nested %s call",
						b.Var.Name, blockIdx, i, nested.Op.Name)
				}
			}
		}
	}
	return fn, nil
}
