package ops

import (
	"github.com/axonml/axon/symdim"
	"github.com/gomlx/gopjrt/dtypes"
)

// Per-operator attribute types, attached per call site via ir.Call.Attrs.

// DenseAttrs configures nn.dense.
type DenseAttrs struct {
	// Units is the output feature count; may be symbolic. The zero value is
	// unknown, in which case the count is read off the weight's shape.
	Units symdim.Dim
	// OutDType optionally overrides the output dtype; InvalidDType follows
	// the input.
	OutDType dtypes.DType
}

// SoftmaxAttrs configures nn.softmax.
type SoftmaxAttrs struct {
	Axis int
}

// BatchNormAttrs configures nn.batch_norm.
type BatchNormAttrs struct {
	Axis    int
	Epsilon float64
	Center  bool
	Scale   bool
}

// LayerNormAttrs configures nn.layer_norm. Axes selects the normalized data
// axes; gamma and beta carry one length per selected axis, positionally.
type LayerNormAttrs struct {
	Axes    []int
	Epsilon float64
	Center  bool
	Scale   bool
}

// DropoutAttrs configures nn.dropout.
type DropoutAttrs struct {
	Rate float64
}

// TakeAttrs configures take. A nil Axis requires rank-1 data and selects
// axis 0.
type TakeAttrs struct {
	Axis *int
}

// StridedSliceAttrs configures strided_slice. Begin/End/Strides are signed
// integer expressions indexed parallel to Axes; a nil Strides means
// all-ones.
type StridedSliceAttrs struct {
	Axes    []int
	Begin   []symdim.Expr
	End     []symdim.Expr
	Strides []symdim.Expr
}

// AstypeAttrs configures astype.
type AstypeAttrs struct {
	DType dtypes.DType
}

// WrapParamAttrs configures wrap_param.
type WrapParamAttrs struct {
	DType dtypes.DType
}

// CumsumAttrs configures cumsum. A nil Axis sums over the flattened tensor,
// producing a rank-1 result.
type CumsumAttrs struct {
	Axis *int
}

// ReduceAttrs configures sum/mean/variance/max/min. Nil Axes reduces over
// every axis.
type ReduceAttrs struct {
	Axes     []int
	KeepDims bool
}

// CallKernelAttrs configures call_kernel.
type CallKernelAttrs struct {
	// OutDType is the element type the kernel produces.
	OutDType dtypes.DType
}
