package infer

import (
	"github.com/axonml/axon/ir"
	"github.com/axonml/axon/ops"
	"github.com/axonml/axon/symdim"
)

// InferTake infers take(data, indices): the selected axis's extent is
// replaced by the index vector's length. Indices must be a rank-1 integer
// tensor. Without an explicit axis, data must be rank-1 and axis 0 is used.
func InferTake(call *ir.Call, ctx ops.Context) ir.StructInfo {
	ins := GetInputTensorStructInfo(call, ctx)
	data, indices := ins[0], ins[1]
	attrs := attrsAs[*ops.TakeAttrs](call)

	if !indices.IsUnknownRank() && indices.Rank != 1 {
		ctx.ReportFatal(diagf(AuxiliaryShapeMismatch, call,
			"the input indices must be a 1-dim tensor, but it has %d dimensions", indices.Rank).WithArg(1))
	}
	if !indices.IsUnknownDType() && !indices.DType.IsInt() {
		ctx.ReportFatal(diagf(DtypeMismatch, call,
			"the input indices must have an integer dtype, got %s", indices.DType).WithArg(1))
	}
	if attrs.Axis == nil && !data.IsUnknownRank() && data.Rank != 1 {
		ctx.ReportFatal(diagf(AxisOutOfRange, call,
			"the axis must be given when the data is not a 1-dim tensor; data has %d dimensions", data.Rank))
	}
	if data.IsUnknownRank() {
		return ir.NewTensorInfoRank(data.DType, ir.RankUnknown)
	}

	axis := 0
	if attrs.Axis != nil {
		axis = checkAxis(call, ctx, data.Rank, *attrs.Axis)
	}
	if !data.HasShape() || !indices.HasShape() {
		return ir.NewTensorInfoRank(data.DType, data.Rank)
	}
	shape := data.Shape.Clone()
	shape[axis] = indices.Shape[0]
	return ir.NewTensorInfo(data.DType, shape)
}

// InferStridedSlice recomputes each selected axis's extent from
// begin/end/stride when all three are compile-time integers; any symbolic
// bound degrades the result to rank-only.
func InferStridedSlice(call *ir.Call, ctx ops.Context) ir.StructInfo {
	data := GetUnaryInputTensorStructInfo(call, ctx)
	attrs := attrsAs[*ops.StridedSliceAttrs](call)
	if len(attrs.Axes) == 0 {
		return data
	}
	if data.IsUnknownRank() {
		return ir.NewTensorInfoRank(data.DType, ir.RankUnknown)
	}
	axes := checkAxes(call, ctx, data.Rank, attrs.Axes)
	if !data.HasShape() {
		return ir.NewTensorInfoRank(data.DType, data.Rank)
	}

	nAxes := len(axes)
	strides := attrs.Strides
	if strides == nil {
		strides = make([]symdim.Expr, nAxes)
		for i := range strides {
			strides[i] = symdim.Const(1)
		}
	}
	// Only infer the output shape when every begin/end/stride is a
	// compile-time integer.
	begins := make([]int64, nAxes)
	ends := make([]int64, nAxes)
	steps := make([]int64, nAxes)
	for i := 0; i < nAxes; i++ {
		b, bOK := attrs.Begin[i].(*symdim.ConstExpr)
		e, eOK := attrs.End[i].(*symdim.ConstExpr)
		s, sOK := strides[i].(*symdim.ConstExpr)
		if !bOK || !eOK || !sOK || s.Value == 0 {
			return ir.NewTensorInfoRank(data.DType, data.Rank)
		}
		begins[i], ends[i], steps[i] = b.Value, e.Value, s.Value
	}

	shape := data.Shape.Clone()
	for i, axis := range axes {
		var length int64
		if steps[i] < 0 {
			length = ceilDiv(begins[i]-ends[i], -steps[i])
		} else {
			length = ceilDiv(ends[i]-begins[i], steps[i])
		}
		shape[axis] = symdim.NewDim(max(length, 0))
	}
	return ir.NewTensorInfo(data.DType, shape)
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

func init() {
	ops.RegisterInfer(ops.Take, InferTake)
	ops.RegisterInfer(ops.StridedSlice, InferStridedSlice)
}
