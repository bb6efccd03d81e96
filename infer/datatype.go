package infer

import (
	"github.com/axonml/axon/ir"
	"github.com/axonml/axon/ops"
	"github.com/axonml/axon/symdim"
	"github.com/gomlx/gopjrt/dtypes"
)

// InferAstype keeps the input's rank and shape, overriding the dtype from
// the attributes ("fixed" dtype rule).
func InferAstype(call *ir.Call, ctx ops.Context) ir.StructInfo {
	data := GetUnaryInputTensorStructInfo(call, ctx)
	attrs := attrsAs[*ops.AstypeAttrs](call)
	return data.WithDType(attrs.DType)
}

// InferWrapParam is astype's twin used when wrapping external parameters.
func InferWrapParam(call *ir.Call, ctx ops.Context) ir.StructInfo {
	data := GetUnaryInputTensorStructInfo(call, ctx)
	attrs := attrsAs[*ops.WrapParamAttrs](call)
	return data.WithDType(attrs.DType)
}

// InferCumsum passes the input through when an axis is given. Without an
// axis the input is flattened first, so the output is rank-1 with the
// element-count product as its only extent.
func InferCumsum(call *ir.Call, ctx ops.Context) ir.StructInfo {
	data := GetUnaryInputTensorStructInfo(call, ctx)
	attrs := attrsAs[*ops.CumsumAttrs](call)
	if attrs.Axis != nil {
		if !data.IsUnknownRank() {
			checkAxis(call, ctx, data.Rank, *attrs.Axis)
		}
		return data
	}
	if !data.HasShape() {
		return ir.NewTensorInfoRank(data.DType, 1)
	}
	prod := symdim.NewDim(1)
	for _, d := range data.Shape {
		if d.IsUnknown() {
			return ir.NewTensorInfoRank(data.DType, 1)
		}
		prod = symdim.NewSymbolicDim(symdim.Mul(prod.Expr(), d.Expr()))
	}
	return ir.NewTensorInfo(data.DType, ir.Shape{prod})
}

// InferCollapseSumLike shapes the output like the collapse target while
// following the data's dtype.
func InferCollapseSumLike(call *ir.Call, ctx ops.Context) ir.StructInfo {
	ins := GetInputTensorStructInfo(call, ctx)
	data, target := ins[0], ins[1]
	if target.HasShape() {
		return ir.NewTensorInfo(data.DType, target.Shape.Clone())
	}
	return ir.NewTensorInfoRank(data.DType, target.Rank)
}

// InferCollapseSumTo shapes the output from an explicit shape operand.
func InferCollapseSumTo(call *ir.Call, ctx ops.Context) ir.StructInfo {
	checkArity(call, ctx)
	data := tensorArg(call, ctx, 0)
	return tensorFromShapeArg(call, ctx, 1, data.DType)
}

// tensorFromShapeArg builds tensor struct info whose shape comes from a
// shape-valued argument: full dimensions when the operand is a literal
// ShapeExpr, rank-only otherwise.
func tensorFromShapeArg(call *ir.Call, ctx ops.Context, i int, dtype dtypes.DType) *ir.TensorStructInfo {
	arg := call.Args[i]
	if se, ok := arg.(*ir.ShapeExpr); ok {
		return ir.NewTensorInfo(dtype, se.Dims.Clone())
	}
	sinfo, ok := ir.InfoOf(arg).(*ir.ShapeStructInfo)
	if !ok {
		ctx.ReportFatal(diagf(WrongStructInfoKind, call,
			"argument %d must be a shape, got %s", i, structInfoKindName(ir.InfoOf(arg))).WithArg(i))
	}
	return ir.NewTensorInfoRank(dtype, sinfo.Rank)
}

func init() {
	ops.RegisterInfer(ops.Astype, InferAstype)
	ops.RegisterInfer(ops.WrapParam, InferWrapParam)
	ops.RegisterInfer(ops.Cumsum, InferCumsum)
	ops.RegisterInfer(ops.CollapseSumLike, InferCollapseSumLike)
	ops.RegisterInfer(ops.CollapseSumTo, InferCollapseSumTo)
}
