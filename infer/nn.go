package infer

import (
	"github.com/axonml/axon/ir"
	"github.com/axonml/axon/ops"
	"github.com/axonml/axon/symdim"
	"github.com/gomlx/gopjrt/dtypes"
)

// InferDense infers nn.dense: data (..., in) times weight (units, in)
// transposed, yielding (..., units).
func InferDense(call *ir.Call, ctx ops.Context) ir.StructInfo {
	ins := GetInputTensorStructInfo(call, ctx)
	data, weight := ins[0], ins[1]
	attrs := attrsAs[*ops.DenseAttrs](call)

	outDType := attrs.OutDType
	if outDType == dtypes.InvalidDType {
		outDType = unifyDTypes(call, ctx, data, weight)
	}

	if !weight.IsUnknownRank() && weight.Rank != 2 {
		ctx.ReportFatal(diagf(AuxiliaryShapeMismatch, call,
			"the weight must be a 2-dim tensor, but it has %d dimensions", weight.Rank).WithArg(1))
	}
	if data.IsUnknownRank() {
		return ir.NewTensorInfoRank(outDType, ir.RankUnknown)
	}
	if !data.HasShape() {
		return ir.NewTensorInfoRank(outDType, data.Rank)
	}

	units := attrs.Units
	if weight.HasShape() {
		units = weight.Shape[0]
		in := weight.Shape[1]
		dataIn := data.Shape[data.Rank-1]
		if ctx.CanProveNotEqualDim(dataIn, in) {
			ctx.ReportFatal(diagf(AuxiliaryShapeMismatch, call,
				"the reduction dimensions differ: data has length %s, weight has length %s",
				dataIn, in).WithArg(1).WithAxis(1))
		}
		if !ctx.CanProveEqualDim(dataIn, in) {
			// Undecidable reduction extent: the output extents are still
			// determined, but be conservative if units itself is unknown.
			if units.IsUnknown() {
				return ir.NewTensorInfoRank(outDType, data.Rank)
			}
		}
	}
	if units.IsUnknown() {
		return ir.NewTensorInfoRank(outDType, data.Rank)
	}
	shape := data.Shape.Clone()
	shape[len(shape)-1] = units
	return ir.NewTensorInfo(outDType, shape)
}

// InferSoftmax validates the axis then passes the input through unchanged.
func InferSoftmax(call *ir.Call, ctx ops.Context) ir.StructInfo {
	data := GetUnaryInputTensorStructInfo(call, ctx)
	attrs := attrsAs[*ops.SoftmaxAttrs](call)
	if !data.IsUnknownRank() {
		checkAxis(call, ctx, data.Rank, attrs.Axis)
	}
	return data
}

// InferFlatten collapses every axis after the first: (d0, d1 ... dn) becomes
// (d0, d1*...*dn). The output rank is 2 regardless of input shape knowledge.
func InferFlatten(call *ir.Call, ctx ops.Context) ir.StructInfo {
	data := GetUnaryInputTensorStructInfo(call, ctx)
	if !data.HasShape() || data.Rank < 1 {
		return ir.NewTensorInfoRank(data.DType, 2)
	}
	rest := symdim.NewDim(1)
	for _, d := range data.Shape[1:] {
		if d.IsUnknown() {
			return ir.NewTensorInfoRank(data.DType, 2)
		}
		rest = symdim.NewSymbolicDim(symdim.Mul(rest.Expr(), d.Expr()))
	}
	return ir.NewTensorInfo(data.DType, ir.Shape{data.Shape[0], rest})
}

// checkAuxVector validates a rank-1 auxiliary tensor (gamma, beta, moving
// mean/var) of a normalization op and cross-checks its length against the
// data's selected axis extent.
func checkAuxVector(call *ir.Call, ctx ops.Context, aux *ir.TensorStructInfo,
	name string, argIdx int, dataDim symdim.Dim) {
	if !aux.IsUnknownRank() && aux.Rank != 1 {
		ctx.ReportFatal(diagf(AuxiliaryShapeMismatch, call,
			"the input %s should be a 1-dim tensor, but it has %d dimensions", name, aux.Rank).WithArg(argIdx))
	}
	if !aux.HasShape() || dataDim.IsUnknown() {
		return
	}
	if ctx.CanProveNotEqualDim(aux.Shape[0], dataDim) {
		ctx.ReportFatal(diagf(AuxiliaryShapeMismatch, call,
			"the input %s dimension 0 has length %s while the normalized data axis has length %s",
			name, aux.Shape[0], dataDim).WithArg(argIdx).WithAxis(0))
	}
}

// InferBatchNorm infers nn.batch_norm over (data, gamma, beta, moving_mean,
// moving_var), producing a tuple of (normalized data, updated mean, updated
// var). Auxiliary tensors are cross-validated against the data's channel
// axis before the output is computed.
func InferBatchNorm(call *ir.Call, ctx ops.Context) ir.StructInfo {
	ins := GetInputTensorStructInfo(call, ctx)
	data := ins[0]
	attrs := attrsAs[*ops.BatchNormAttrs](call)

	channel := symdim.UnknownDim
	if !data.IsUnknownRank() {
		axis := checkAxis(call, ctx, data.Rank, attrs.Axis)
		if data.HasShape() {
			channel = data.Shape[axis]
		}
	}
	names := []string{"gamma", "beta", "moving_mean", "moving_var"}
	for i, name := range names {
		checkAuxVector(call, ctx, ins[i+1], name, i+1, channel)
	}
	return &ir.TupleStructInfo{Fields: []ir.StructInfo{data, ins[3], ins[4]}}
}

// InferLayerNorm infers nn.layer_norm over (data, gamma, beta). Gamma and
// beta carry one length per normalized axis, positionally; each is checked
// against the corresponding data extent before the output (the data's struct
// info, unchanged) is produced.
func InferLayerNorm(call *ir.Call, ctx ops.Context) ir.StructInfo {
	ins := GetInputTensorStructInfo(call, ctx)
	data, gamma, beta := ins[0], ins[1], ins[2]
	attrs := attrsAs[*ops.LayerNormAttrs](call)
	nAxes := len(attrs.Axes)

	if !gamma.IsUnknownRank() && gamma.Rank != nAxes {
		ctx.ReportFatal(diagf(AuxiliaryShapeMismatch, call,
			"the input gamma should have the same rank as the number of normalized axes, but gamma has rank %d while %d axes were given",
			gamma.Rank, nAxes).WithArg(1))
	}
	if !beta.IsUnknownRank() && beta.Rank != nAxes {
		ctx.ReportFatal(diagf(AuxiliaryShapeMismatch, call,
			"the input beta should have the same rank as the number of normalized axes, but beta has rank %d while %d axes were given",
			beta.Rank, nAxes).WithArg(2))
	}
	if data.IsUnknownRank() {
		return data
	}
	axes := checkAxes(call, ctx, data.Rank, attrs.Axes)
	if !data.HasShape() {
		return data
	}
	for i, axis := range axes {
		dataDim := data.Shape[axis]
		if gamma.HasShape() && ctx.CanProveNotEqualDim(gamma.Shape[i], dataDim) {
			ctx.ReportFatal(diagf(AuxiliaryShapeMismatch, call,
				"the input gamma dimension %d has length %s while the data dimension %d has length %s",
				i, gamma.Shape[i], axis, dataDim).WithArg(1).WithAxis(i))
		}
		if beta.HasShape() && ctx.CanProveNotEqualDim(beta.Shape[i], dataDim) {
			ctx.ReportFatal(diagf(AuxiliaryShapeMismatch, call,
				"the input beta dimension %d has length %s while the data dimension %d has length %s",
				i, beta.Shape[i], axis, dataDim).WithArg(2).WithAxis(i))
		}
	}
	return data
}

// InferDropout produces a tuple of (output, mask), both shaped like the
// input.
func InferDropout(call *ir.Call, ctx ops.Context) ir.StructInfo {
	data := GetUnaryInputTensorStructInfo(call, ctx)
	return &ir.TupleStructInfo{Fields: []ir.StructInfo{data, data}}
}

func init() {
	ops.RegisterInfer(ops.Dense, InferDense)
	ops.RegisterInfer(ops.Softmax, InferSoftmax)
	ops.RegisterInfer(ops.Flatten, InferFlatten)
	ops.RegisterInfer(ops.BatchNorm, InferBatchNorm)
	ops.RegisterInfer(ops.LayerNorm, InferLayerNorm)
	ops.RegisterInfer(ops.Dropout, InferDropout)
}
