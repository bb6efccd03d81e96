package infer

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"

	"github.com/axonml/axon/ir"
	"github.com/axonml/axon/ops"
	"github.com/axonml/axon/symdim"
)

func TestInferCallKernel(t *testing.T) {
	kernel := &ir.GlobalVar{Name: "fused_dense_relu"}
	data := mkTensor("x", dtypes.Float32, mkShape(8, 16))
	pack := &ir.Tuple{Fields: []ir.Expr{data}}
	outShape := ir.NewShapeExpr(symdim.NewDim(8), symdim.NewDim(32))
	attrs := &ops.CallKernelAttrs{OutDType: dtypes.Float32}

	t.Run("shape from literal", func(t *testing.T) {
		out := runInfer(t, ops.CallKernel, attrs, kernel, pack, outShape)
		assert.Equal(t, "[8, 32]", out.Shape.String())
		assert.Equal(t, dtypes.Float32, out.DType)
	})

	t.Run("shape-valued var gives rank only", func(t *testing.T) {
		sh := ir.NewVar("s", &ir.ShapeStructInfo{Rank: 2})
		out := runInfer(t, ops.CallKernel, attrs, kernel, pack, sh)
		assert.False(t, out.HasShape())
		assert.Equal(t, 2, out.Rank)
	})

	t.Run("kernel must be a global", func(t *testing.T) {
		err := runInferErr(t, ops.CallKernel, attrs, data, pack, outShape)
		assert.True(t, IsKind(err, WrongStructInfoKind))
	})

	t.Run("args must be a tuple", func(t *testing.T) {
		err := runInferErr(t, ops.CallKernel, attrs, kernel, data, outShape)
		assert.True(t, IsKind(err, WrongStructInfoKind))
	})
}

func TestInferVMReshape(t *testing.T) {
	data := mkTensor("x", dtypes.Float32, mkShape(6))
	out := runInfer(t, ops.VMReshape, nil, data, ir.NewShapeExpr(symdim.NewDim(2), symdim.NewDim(3)))
	assert.Equal(t, "[2, 3]", out.Shape.String())
	assert.Equal(t, dtypes.Float32, out.DType)
}
