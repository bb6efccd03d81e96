package infer

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"

	"github.com/axonml/axon/ir"
	"github.com/axonml/axon/ops"
	"github.com/axonml/axon/symdim"
)

func TestInferAstype(t *testing.T) {
	x := mkTensor("x", dtypes.Float32, mkShape(2, 3))
	out := runInfer(t, ops.Astype, &ops.AstypeAttrs{DType: dtypes.Float16}, x)
	assert.Equal(t, dtypes.Float16, out.DType)
	assert.Equal(t, "[2, 3]", out.Shape.String())

	// Unknown shape survives; only the dtype changes.
	out = runInfer(t, ops.Astype, &ops.AstypeAttrs{DType: dtypes.Int8}, mkTensorRank("x", dtypes.Float32, ir.RankUnknown))
	assert.Equal(t, dtypes.Int8, out.DType)
	assert.True(t, out.IsUnknownRank())
}

func TestInferWrapParam(t *testing.T) {
	x := mkTensor("x", dtypes.Float64, mkShape(4))
	out := runInfer(t, ops.WrapParam, &ops.WrapParamAttrs{DType: dtypes.Float32}, x)
	assert.Equal(t, dtypes.Float32, out.DType)
	assert.Equal(t, "[4]", out.Shape.String())
}

func TestInferCumsum(t *testing.T) {
	data := mkTensor("x", dtypes.Float32, mkShape(2, 3, 4))

	t.Run("with axis is identity", func(t *testing.T) {
		out := runInfer(t, ops.Cumsum, &ops.CumsumAttrs{Axis: intPtr(1)}, data)
		assert.Equal(t, "[2, 3, 4]", out.Shape.String())
	})

	t.Run("no axis flattens", func(t *testing.T) {
		out := runInfer(t, ops.Cumsum, &ops.CumsumAttrs{}, data)
		assert.Equal(t, "[24]", out.Shape.String())
	})

	t.Run("no axis with symbolic dims", func(t *testing.T) {
		n := symdim.NewSymbolicDim(symdim.Sym("n"))
		x := ir.NewVar("x", ir.NewTensorInfo(dtypes.Float32, ir.Shape{n, symdim.NewDim(3)}))
		out := runInfer(t, ops.Cumsum, &ops.CumsumAttrs{}, x)
		assert.Equal(t, 1, out.Rank)
		assert.True(t, out.HasShape())
	})

	t.Run("axis out of range", func(t *testing.T) {
		err := runInferErr(t, ops.Cumsum, &ops.CumsumAttrs{Axis: intPtr(5)}, data)
		assert.True(t, IsKind(err, AxisOutOfRange))
	})
}

func TestInferCollapseSum(t *testing.T) {
	data := mkTensor("x", dtypes.Float32, mkShape(4, 3))

	t.Run("like", func(t *testing.T) {
		target := mkTensor("t", dtypes.Int32, mkShape(3))
		out := runInfer(t, ops.CollapseSumLike, nil, data, target)
		// Shape follows the target, dtype follows the data.
		assert.Equal(t, "[3]", out.Shape.String())
		assert.Equal(t, dtypes.Float32, out.DType)
	})

	t.Run("to shape literal", func(t *testing.T) {
		shape := ir.NewShapeExpr(symdim.NewDim(3))
		out := runInfer(t, ops.CollapseSumTo, nil, data, shape)
		assert.Equal(t, "[3]", out.Shape.String())
		assert.Equal(t, dtypes.Float32, out.DType)
	})

	t.Run("to shape-valued var", func(t *testing.T) {
		sh := ir.NewVar("s", &ir.ShapeStructInfo{Rank: 1})
		out := runInfer(t, ops.CollapseSumTo, nil, data, sh)
		assert.False(t, out.HasShape())
		assert.Equal(t, 1, out.Rank)
	})

	t.Run("to non-shape argument", func(t *testing.T) {
		err := runInferErr(t, ops.CollapseSumTo, nil, data, mkTensor("t", dtypes.Int64, mkShape(1)))
		assert.True(t, IsKind(err, WrongStructInfoKind))
	})
}
