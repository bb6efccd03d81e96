package rewrite

import (
	"github.com/axonml/axon/infer"
	"github.com/axonml/axon/ir"
)

// AnnotateStructInfo runs struct-info inference over every call-valued
// binding in the function, dataflow or not, attaching the derived info to
// each call that lacks it and propagating it onto the bound variable so
// downstream bindings see annotated arguments. Calls already annotated are
// trusted and left alone.
func AnnotateStructInfo(fn *ir.Function, ictx *infer.Context) (*ir.Function, error) {
	m := &Mutator{Infer: ictx}
	return m.RewriteFunction(fn)
}
