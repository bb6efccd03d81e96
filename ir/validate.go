package ir

import (
	"github.com/gomlx/gomlx/pkg/support/sets"
	"github.com/pkg/errors"
)

// Validate checks the def-use discipline of a function body: every variable
// is defined (as a parameter or an earlier binding) before use, no variable
// is bound twice, and dataflow variables are never referenced outside the
// block that defines them.
func (f *Function) Validate() error {
	visible := sets.Make[*Var]()
	for _, p := range f.Params {
		visible.Insert(p)
	}
	bound := sets.Make[*Var]()

	checkUses := func(e Expr, where string) error {
		var err error
		VisitExprs(e, func(sub Expr) {
			if err != nil {
				return
			}
			v, ok := sub.(*Var)
			if !ok {
				return
			}
			if !visible.Has(v) {
				err = errors.Errorf("variable %q used in %s before definition (or outside its dataflow block)", v.Name, where)
			}
		})
		return err
	}

	for blockIdx, block := range f.Blocks {
		blockLocal := sets.Make[*Var]()
		for _, b := range block.Bindings {
			if bound.Has(b.Var) {
				return errors.Errorf("variable %q bound more than once", b.Var.Name)
			}
			if b.Var.Dataflow && !block.Dataflow {
				return errors.Errorf("dataflow variable %q bound outside a dataflow block", b.Var.Name)
			}
			if err := checkUses(b.Value, "binding of "+b.Var.Name); err != nil {
				return errors.WithMessagef(err, "block %d", blockIdx)
			}
			bound.Insert(b.Var)
			visible.Insert(b.Var)
			if b.Var.Dataflow {
				blockLocal.Insert(b.Var)
			}
		}
		// Dataflow vars go out of scope at the end of their block.
		for v := range blockLocal {
			delete(visible, v)
		}
	}
	return checkUses(f.Ret, "return expression")
}
