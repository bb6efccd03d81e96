package infer

import (
	"fmt"

	"github.com/axonml/axon/ir"
	"github.com/axonml/axon/ops"
)

// NormalizeAxes validates axes against a statically known rank and maps
// negative indices to their non-negative form. The result preserves input
// order, since callers index parallel per-axis metadata positionally.
//
// Callers must special-case unknown rank before calling; rank here is always
// a known, non-negative value.
func NormalizeAxes(opName string, rank int, axes []int) ([]int, error) {
	seen := make([]bool, rank)
	out := make([]int, 0, len(axes))
	for i, axis := range axes {
		if axis < -rank || axis >= rank {
			return nil, (&Diagnostic{
				Kind: AxisOutOfRange, Op: opName, Arg: -1, Axis: i,
				Message: axisRangeMessage(axis, rank),
			})
		}
		if axis < 0 {
			axis += rank
		}
		if seen[axis] {
			return nil, (&Diagnostic{
				Kind: DuplicateAxis, Op: opName, Arg: -1, Axis: axis,
				Message: duplicateAxisMessage(axis),
			})
		}
		seen[axis] = true
		out = append(out, axis)
	}
	return out, nil
}

// NormalizeAxis is the single-axis special case.
func NormalizeAxis(opName string, rank, axis int) (int, error) {
	axes, err := NormalizeAxes(opName, rank, []int{axis})
	if err != nil {
		return 0, err
	}
	return axes[0], nil
}

func axisRangeMessage(axis, rank int) string {
	return fmt.Sprintf("axis %d is out of range: the input tensor has %d dimensions, so axes must be in [%d, %d)",
		axis, rank, -rank, rank)
}

func duplicateAxisMessage(axis int) string {
	return fmt.Sprintf("axes must be non-repetitive, but multiple given axes refer to axis %d", axis)
}

// checkAxes is the fatal-reporting form used inside inference functions; the
// diagnostic inherits the call's span.
func checkAxes(call *ir.Call, ctx ops.Context, rank int, axes []int) []int {
	out, err := NormalizeAxes(call.Op.Name, rank, axes)
	if err != nil {
		d := err.(*Diagnostic)
		d.Span = call.Span
		ctx.ReportFatal(d)
	}
	return out
}

// checkAxis is the single-axis fatal-reporting form.
func checkAxis(call *ir.Call, ctx ops.Context, rank, axis int) int {
	return checkAxes(call, ctx, rank, []int{axis})[0]
}
