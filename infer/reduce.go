package infer

import (
	"github.com/axonml/axon/ir"
	"github.com/axonml/axon/ops"
	"github.com/axonml/axon/symdim"
)

// InferReduce infers sum/mean/variance/max/min. Nil axes reduce every axis;
// with KeepDims the reduced extents become 1 instead of being dropped.
func InferReduce(call *ir.Call, ctx ops.Context) ir.StructInfo {
	data := GetUnaryInputTensorStructInfo(call, ctx)
	attrs := attrsAs[*ops.ReduceAttrs](call)

	if data.IsUnknownRank() {
		if attrs.Axes == nil && !attrs.KeepDims {
			return ir.NewTensorInfo(data.DType, ir.Shape{})
		}
		return ir.NewTensorInfoRank(data.DType, ir.RankUnknown)
	}

	if attrs.Axes == nil {
		if !attrs.KeepDims {
			return ir.NewTensorInfo(data.DType, ir.Shape{})
		}
		shape := make(ir.Shape, data.Rank)
		for i := range shape {
			shape[i] = symdim.NewDim(1)
		}
		return ir.NewTensorInfo(data.DType, shape)
	}

	axes := checkAxes(call, ctx, data.Rank, attrs.Axes)
	outRank := data.Rank
	if !attrs.KeepDims {
		outRank -= len(axes)
	}
	if !data.HasShape() {
		return ir.NewTensorInfoRank(data.DType, outRank)
	}

	reduced := make([]bool, data.Rank)
	for _, axis := range axes {
		reduced[axis] = true
	}
	shape := make(ir.Shape, 0, outRank)
	for i, d := range data.Shape {
		switch {
		case !reduced[i]:
			shape = append(shape, d)
		case attrs.KeepDims:
			shape = append(shape, symdim.NewDim(1))
		}
	}
	return ir.NewTensorInfo(data.DType, shape)
}

func init() {
	for _, op := range []*ir.Op{ops.Sum, ops.Mean, ops.Variance, ops.Max, ops.Min} {
		ops.RegisterInfer(op, InferReduce)
	}
}
