package rewrite

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axonml/axon/infer"
	"github.com/axonml/axon/ir"
	"github.com/axonml/axon/ops"
	"github.com/axonml/axon/symdim"
)

func mkShape(vs ...int64) ir.Shape {
	out := make(ir.Shape, len(vs))
	for i, v := range vs {
		out[i] = symdim.NewDim(v)
	}
	return out
}

func reshapeKernelCall(data ir.Expr, dims ...int64) *ir.Call {
	return ir.NewCall(ops.CallKernel,
		[]ir.Expr{
			&ir.GlobalVar{Name: "reshape2"},
			&ir.Tuple{Fields: []ir.Expr{data}},
			&ir.ShapeExpr{Dims: mkShape(dims...)},
		},
		&ops.CallKernelAttrs{OutDType: dtypes.Float32})
}

func TestRewriteDataflowReshapes(t *testing.T) {
	x := ir.NewVar("x", ir.NewTensorInfo(dtypes.Float32, mkShape(6)))
	lv := ir.NewDataflowVar("lv0", nil)
	out := ir.NewVar("out", nil)
	fn := &ir.Function{
		Params: []*ir.Var{x},
		Blocks: []*ir.BindingBlock{{
			Dataflow: true,
			Bindings: []*ir.VarBinding{
				{Var: lv, Value: reshapeKernelCall(x, 2, 3)},
				{Var: out, Value: lv},
			},
		}},
		Ret: out,
	}

	got, err := RewriteDataflowReshapes(fn, infer.NewContext())
	require.NoError(t, err)
	require.NotSame(t, fn, got)

	call, ok := got.Blocks[0].Bindings[0].Value.(*ir.Call)
	require.True(t, ok)
	assert.Same(t, ops.VMReshape, call.Op)
	assert.Same(t, ir.Expr(x), call.Args[0])
	require.NotNil(t, call.Info)
	assert.Equal(t, "Tensor(Float32, [2, 3])", call.Info.String())

	// The visible output binding keeps its structure and picks up the
	// inferred info through the rewritten dataflow var.
	outBinding := got.Blocks[0].Bindings[1]
	assert.Equal(t, "out", outBinding.Var.Name)
	use, ok := outBinding.Value.(*ir.Var)
	require.True(t, ok)
	assert.Equal(t, "lv0", use.Name)
	require.NotNil(t, use.Info)
	require.NotNil(t, outBinding.Var.Info)

	// Idempotent: a second run hits a fixed point, byte for byte.
	again, err := RewriteDataflowReshapes(got, infer.NewContext())
	require.NoError(t, err)
	assert.Same(t, got, again)
	assert.Equal(t, got.String(), again.String())
}

func TestRewriteReshapeVisibility(t *testing.T) {
	x := ir.NewVar("x", ir.NewTensorInfo(dtypes.Float32, mkShape(6)))

	t.Run("plain var binding in dataflow block is preserved", func(t *testing.T) {
		gv := ir.NewVar("gv", nil)
		fn := &ir.Function{
			Params: []*ir.Var{x},
			Blocks: []*ir.BindingBlock{{
				Dataflow: true,
				Bindings: []*ir.VarBinding{{Var: gv, Value: reshapeKernelCall(x, 2, 3)}},
			}},
			Ret: gv,
		}
		got, err := RewriteDataflowReshapes(fn, nil)
		require.NoError(t, err)
		assert.Same(t, fn, got)
	})

	t.Run("non-dataflow block is preserved", func(t *testing.T) {
		v := ir.NewVar("v", nil)
		fn := &ir.Function{
			Params: []*ir.Var{x},
			Blocks: []*ir.BindingBlock{{
				Bindings: []*ir.VarBinding{{Var: v, Value: reshapeKernelCall(x, 2, 3)}},
			}},
			Ret: v,
		}
		got, err := RewriteDataflowReshapes(fn, nil)
		require.NoError(t, err)
		assert.Same(t, fn, got)
	})
}

func TestRewriteReshapeNonMatches(t *testing.T) {
	x := ir.NewVar("x", ir.NewTensorInfo(dtypes.Float32, mkShape(6)))
	lv := ir.NewDataflowVar("lv0", nil)

	mkFn := func(value ir.Expr) *ir.Function {
		return &ir.Function{
			Params: []*ir.Var{x},
			Blocks: []*ir.BindingBlock{{
				Dataflow: true,
				Bindings: []*ir.VarBinding{{Var: lv, Value: value}},
			}},
			Ret: x,
		}
	}

	t.Run("other kernel names", func(t *testing.T) {
		call := ir.NewCall(ops.CallKernel,
			[]ir.Expr{
				&ir.GlobalVar{Name: "fused_dense"},
				&ir.Tuple{Fields: []ir.Expr{x}},
				&ir.ShapeExpr{Dims: mkShape(2, 3)},
			},
			&ops.CallKernelAttrs{OutDType: dtypes.Float32})
		got, err := RewriteDataflowReshapes(mkFn(call), nil)
		require.NoError(t, err)
		same, ok := got.Blocks[0].Bindings[0].Value.(*ir.Call)
		require.True(t, ok)
		assert.Same(t, ops.CallKernel, same.Op)
	})

	t.Run("malformed argument pack", func(t *testing.T) {
		call := ir.NewCall(ops.CallKernel,
			[]ir.Expr{
				&ir.GlobalVar{Name: "reshape2"},
				&ir.Tuple{Fields: []ir.Expr{x, x}},
				&ir.ShapeExpr{Dims: mkShape(2, 3)},
			},
			&ops.CallKernelAttrs{OutDType: dtypes.Float32})
		_, err := RewriteDataflowReshapes(mkFn(call), nil)
		assert.True(t, infer.IsKind(err, infer.MalformedLoweredPattern))
	})
}
