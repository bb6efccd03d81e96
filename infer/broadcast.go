package infer

import (
	"fmt"
	"slices"

	"github.com/axonml/axon/ir"
	"github.com/axonml/axon/ops"
	"github.com/axonml/axon/symdim"
)

// Prover is the slice of the proof oracle broadcasting needs.
type Prover interface {
	CanProveEqualDim(a, b symdim.Dim) bool
}

// BroadcastShapes applies the numpy broadcasting rule to two known shapes,
// aligning from the trailing dimension.
//
// The result is (shape, nil) when every dimension resolves, (nil, nil) when
// some dimension pair is undecidable -- in that case the whole shape degrades
// to rank-only, max(len(lhs), len(rhs)), rather than guessing a partial
// result -- and (nil, *Diagnostic) when two concrete, unequal, non-one
// dimensions meet, which can never become compatible.
func BroadcastShapes(prover Prover, opName string, lhs, rhs ir.Shape) (ir.Shape, error) {
	lhsRank := len(lhs)
	rhsRank := len(rhs)
	maxRank := max(lhsRank, rhsRank)

	// Built back-to-front, reversed at the end.
	out := make(ir.Shape, 0, maxRank)
	i := 1
	for ; i <= min(lhsRank, rhsRank); i++ {
		a := lhs[lhsRank-i]
		b := rhs[rhsRank-i]
		switch {
		case a.IsOne():
			out = append(out, b)
		case b.IsOne():
			out = append(out, a)
		case prover.CanProveEqualDim(a, b):
			out = append(out, a)
		default:
			va, aStatic := a.Static()
			vb, bStatic := b.Static()
			if aStatic && bStatic && va != vb {
				return nil, &Diagnostic{
					Kind: BroadcastMismatch, Op: opName, Arg: -1, Axis: -1,
					Message: fmt.Sprintf("the lhs shape at dim %d is %s and the rhs shape at dim %d is %s, which are not broadcastable",
						lhsRank-i, a, rhsRank-i, b),
				}
			}
			// Undecidable: give up on the whole shape rather than report a
			// partially wrong one.
			return nil, nil
		}
	}
	longer := lhs
	if rhsRank > lhsRank {
		longer = rhs
	}
	for ; i <= maxRank; i++ {
		out = append(out, longer[maxRank-i])
	}
	slices.Reverse(out)
	return out, nil
}

// broadcastFatal wraps BroadcastShapes for use inside inference functions:
// mismatches become fatal diagnostics carrying the call's span, undecidable
// shapes come back as (nil, false).
func broadcastFatal(call *ir.Call, ctx ops.Context, lhs, rhs ir.Shape) (ir.Shape, bool) {
	shape, err := BroadcastShapes(ctx, call.Op.Name, lhs, rhs)
	if err != nil {
		d := err.(*Diagnostic)
		d.Span = call.Span
		ctx.ReportFatal(d)
	}
	return shape, shape != nil
}
