package infer

import (
	"github.com/axonml/axon/ir"
	"github.com/axonml/axon/ops"
	"github.com/gomlx/gopjrt/dtypes"
)

// unifyDTypes implements the "unify" dtype rule: both operands must agree
// unless either side is unknown, in which case the result is unknown too.
// A genuine mismatch is a hard error.
func unifyDTypes(call *ir.Call, ctx ops.Context, lhs, rhs *ir.TensorStructInfo) dtypes.DType {
	if lhs.IsUnknownDType() || rhs.IsUnknownDType() {
		return dtypes.InvalidDType
	}
	if lhs.DType != rhs.DType {
		ctx.ReportFatal(diagf(DtypeMismatch, call,
			"data types %s and %s must be equal for binary operators", lhs.DType, rhs.DType))
	}
	return lhs.DType
}

// inferBroadcastOut runs shape/rank inference shared by all elementwise
// binary operators; outDType supplies the operator family's dtype rule.
func inferBroadcastOut(call *ir.Call, ctx ops.Context, lhs, rhs *ir.TensorStructInfo, outDType dtypes.DType) ir.StructInfo {
	outRank := ir.RankUnknown
	if !lhs.IsUnknownRank() && !rhs.IsUnknownRank() {
		outRank = max(lhs.Rank, rhs.Rank)
	}
	if lhs.HasShape() && rhs.HasShape() {
		if shape, ok := broadcastFatal(call, ctx, lhs.Shape, rhs.Shape); ok {
			return ir.NewTensorInfo(outDType, shape)
		}
	}
	return ir.NewTensorInfoRank(outDType, outRank)
}

// InferBroadcastArith infers elementwise binary arithmetic: dtypes unify,
// shapes broadcast.
func InferBroadcastArith(call *ir.Call, ctx ops.Context) ir.StructInfo {
	ins := GetInputTensorStructInfo(call, ctx)
	lhs, rhs := ins[0], ins[1]
	return inferBroadcastOut(call, ctx, lhs, rhs, unifyDTypes(call, ctx, lhs, rhs))
}

// InferBroadcastCompare infers elementwise comparisons: shapes broadcast,
// output is always boolean.
func InferBroadcastCompare(call *ir.Call, ctx ops.Context) ir.StructInfo {
	ins := GetInputTensorStructInfo(call, ctx)
	return inferBroadcastOut(call, ctx, ins[0], ins[1], dtypes.Bool)
}

// InferEwiseFMA infers the fused multiply-add: three operands unify on dtype
// and broadcast pairwise.
func InferEwiseFMA(call *ir.Call, ctx ops.Context) ir.StructInfo {
	ins := GetInputTensorStructInfo(call, ctx)
	// All known operand dtypes must agree; any unknown operand makes the
	// result unknown, never a guess from the remaining operands.
	dtype := dtypes.InvalidDType
	anyUnknown := false
	for i, in := range ins {
		if in.IsUnknownDType() {
			anyUnknown = true
			continue
		}
		if dtype == dtypes.InvalidDType {
			dtype = in.DType
		} else if in.DType != dtype {
			ctx.ReportFatal(diagf(DtypeMismatch, call,
				"data types %s and %s must be equal for binary operators", dtype, in.DType).WithArg(i))
		}
	}
	if anyUnknown {
		dtype = dtypes.InvalidDType
	}

	outRank := ir.RankUnknown
	if !ins[0].IsUnknownRank() && !ins[1].IsUnknownRank() && !ins[2].IsUnknownRank() {
		outRank = max(ins[0].Rank, ins[1].Rank, ins[2].Rank)
	}
	if ins[0].HasShape() && ins[1].HasShape() && ins[2].HasShape() {
		if partial, ok := broadcastFatal(call, ctx, ins[0].Shape, ins[1].Shape); ok {
			if shape, ok := broadcastFatal(call, ctx, partial, ins[2].Shape); ok {
				return ir.NewTensorInfo(dtype, shape)
			}
		}
	}
	return ir.NewTensorInfoRank(dtype, outRank)
}

func init() {
	for _, op := range []*ir.Op{ops.Add, ops.Subtract, ops.Multiply, ops.Divide, ops.FloorDivide} {
		ops.RegisterInfer(op, InferBroadcastArith)
	}
	for _, op := range []*ir.Op{ops.Less, ops.LessEqual, ops.Greater, ops.GreaterEqual, ops.Equal, ops.NotEqual} {
		ops.RegisterInfer(op, InferBroadcastCompare)
	}
	ops.RegisterInfer(ops.EwiseFMA, InferEwiseFMA)
}
