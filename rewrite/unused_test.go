package rewrite

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axonml/axon/infer"
	"github.com/axonml/axon/ir"
	"github.com/axonml/axon/ops"
)

func TestRemoveUnusedBindings(t *testing.T) {
	x := ir.NewVar("x", ir.NewTensorInfo(dtypes.Float32, mkShape(2, 3)))

	t.Run("drops dead chains", func(t *testing.T) {
		live := ir.NewDataflowVar("live", nil)
		dead1 := ir.NewDataflowVar("dead1", nil)
		dead2 := ir.NewDataflowVar("dead2", nil)
		out := ir.NewVar("out", nil)
		fn := &ir.Function{
			Params: []*ir.Var{x},
			Blocks: []*ir.BindingBlock{{
				Dataflow: true,
				Bindings: []*ir.VarBinding{
					{Var: live, Value: ir.NewCall(ops.Relu, []ir.Expr{x}, nil)},
					{Var: dead1, Value: ir.NewCall(ops.Exp, []ir.Expr{x}, nil)},
					// dead2 uses dead1; both must go in one sweep.
					{Var: dead2, Value: ir.NewCall(ops.Log, []ir.Expr{dead1}, nil)},
					{Var: out, Value: live},
				},
			}},
			Ret: out,
		}
		require.NoError(t, fn.Validate())

		got, err := RemoveUnusedBindings(fn)
		require.NoError(t, err)
		require.Len(t, got.Blocks[0].Bindings, 2)
		assert.Same(t, live, got.Blocks[0].Bindings[0].Var)
		assert.Same(t, out, got.Blocks[0].Bindings[1].Var)
		require.NoError(t, got.Validate())
	})

	t.Run("plain vars always survive", func(t *testing.T) {
		gv := ir.NewVar("gv", nil)
		fn := &ir.Function{
			Params: []*ir.Var{x},
			Blocks: []*ir.BindingBlock{{
				Dataflow: true,
				Bindings: []*ir.VarBinding{
					// Nothing references gv, but it is externally observable.
					{Var: gv, Value: ir.NewCall(ops.Relu, []ir.Expr{x}, nil)},
				},
			}},
			Ret: x,
		}
		got, err := RemoveUnusedBindings(fn)
		require.NoError(t, err)
		assert.Same(t, fn, got)
	})

	t.Run("non-dataflow blocks untouched", func(t *testing.T) {
		v := ir.NewVar("v", nil)
		fn := &ir.Function{
			Params: []*ir.Var{x},
			Blocks: []*ir.BindingBlock{{
				Bindings: []*ir.VarBinding{
					{Var: v, Value: ir.NewCall(ops.Relu, []ir.Expr{x}, nil)},
				},
			}},
			Ret: x,
		}
		got, err := RemoveUnusedBindings(fn)
		require.NoError(t, err)
		assert.Same(t, fn, got)
	})

	t.Run("use from a later block keeps the binding", func(t *testing.T) {
		a := ir.NewVar("a", nil)
		b := ir.NewVar("b", nil)
		fn := &ir.Function{
			Params: []*ir.Var{x},
			Blocks: []*ir.BindingBlock{
				{
					Dataflow: true,
					Bindings: []*ir.VarBinding{
						{Var: a, Value: ir.NewCall(ops.Relu, []ir.Expr{x}, nil)},
					},
				},
				{
					Bindings: []*ir.VarBinding{
						{Var: b, Value: ir.NewCall(ops.Exp, []ir.Expr{a}, nil)},
					},
				},
			},
			Ret: b,
		}
		got, err := RemoveUnusedBindings(fn)
		require.NoError(t, err)
		assert.Same(t, fn, got)
	})
}

func TestToANF(t *testing.T) {
	x := ir.NewVar("x", ir.NewTensorInfo(dtypes.Float32, mkShape(2)))
	lv := ir.NewDataflowVar("lv", nil)

	t.Run("flat bindings pass", func(t *testing.T) {
		fn := &ir.Function{
			Params: []*ir.Var{x},
			Blocks: []*ir.BindingBlock{{
				Dataflow: true,
				Bindings: []*ir.VarBinding{{Var: lv, Value: ir.NewCall(ops.Relu, []ir.Expr{x}, nil)}},
			}},
			Ret: x,
		}
		got, err := ToANF(fn)
		require.NoError(t, err)
		assert.Same(t, fn, got)
	})

	t.Run("nested call argument is reported", func(t *testing.T) {
		nested := ir.NewCall(ops.Exp, []ir.Expr{x}, nil)
		fn := &ir.Function{
			Params: []*ir.Var{x},
			Blocks: []*ir.BindingBlock{{
				Dataflow: true,
				Bindings: []*ir.VarBinding{{Var: lv, Value: ir.NewCall(ops.Relu, []ir.Expr{nested}, nil)}},
			}},
			Ret: x,
		}
		_, err := ToANF(fn)
		assert.ErrorContains(t, err, "not in normal form")
	})
}

func TestAnnotateStructInfo(t *testing.T) {
	x := ir.NewVar("x", ir.NewTensorInfo(dtypes.Float32, mkShape(2, 3)))
	lv := ir.NewDataflowVar("lv", nil)
	out := ir.NewVar("out", nil)
	fn := &ir.Function{
		Params: []*ir.Var{x},
		Blocks: []*ir.BindingBlock{{
			Dataflow: true,
			Bindings: []*ir.VarBinding{
				{Var: lv, Value: ir.NewCall(ops.Relu, []ir.Expr{x}, nil)},
				{Var: out, Value: lv},
			},
		}},
		Ret: out,
	}

	got, err := AnnotateStructInfo(fn, infer.NewContext())
	require.NoError(t, err)
	call := got.Blocks[0].Bindings[0].Value.(*ir.Call)
	require.NotNil(t, call.Info)
	assert.Equal(t, "Tensor(Float32, [2, 3])", call.Info.String())
}

func TestAnnotateStructInfoChained(t *testing.T) {
	x := ir.NewVar("x", ir.NewTensorInfo(dtypes.Float32, mkShape(2, 3)))
	lv1 := ir.NewDataflowVar("lv1", nil)
	lv2 := ir.NewDataflowVar("lv2", nil)
	out := ir.NewVar("out", nil)
	fn := &ir.Function{
		Params: []*ir.Var{x},
		Blocks: []*ir.BindingBlock{{
			Dataflow: true,
			Bindings: []*ir.VarBinding{
				{Var: lv1, Value: ir.NewCall(ops.Relu, []ir.Expr{x}, nil)},
				// exp consumes lv1, which starts out unannotated.
				{Var: lv2, Value: ir.NewCall(ops.Exp, []ir.Expr{lv1}, nil)},
				{Var: out, Value: lv2},
			},
		}},
		Ret: out,
	}
	require.NoError(t, fn.Validate())

	got, err := AnnotateStructInfo(fn, infer.NewContext())
	require.NoError(t, err)
	bindings := got.Blocks[0].Bindings
	for i := 0; i < 2; i++ {
		call := bindings[i].Value.(*ir.Call)
		require.NotNil(t, call.Info, "binding %d", i)
		assert.Equal(t, "Tensor(Float32, [2, 3])", call.Info.String(), "binding %d", i)
		require.NotNil(t, bindings[i].Var.Info, "binding %d", i)
	}

	// exp must see the annotated copy of lv1, not the bare original.
	arg := bindings[1].Value.(*ir.Call).Args[0].(*ir.Var)
	assert.Equal(t, "lv1", arg.Name)
	require.NotNil(t, arg.Info)

	// The returned var carries the info through as well.
	require.NotNil(t, ir.InfoOf(got.Ret))
	require.NoError(t, got.Validate())

	// A fully annotated function is a fixed point.
	again, err := AnnotateStructInfo(got, infer.NewContext())
	require.NoError(t, err)
	assert.Same(t, got, again)
}

func TestAnnotateStructInfoVisibleBindings(t *testing.T) {
	x := ir.NewVar("x", ir.NewTensorInfo(dtypes.Float32, mkShape(2, 3)))

	t.Run("plain var in a dataflow block", func(t *testing.T) {
		gv := ir.NewVar("gv", nil)
		fn := &ir.Function{
			Params: []*ir.Var{x},
			Blocks: []*ir.BindingBlock{{
				Dataflow: true,
				Bindings: []*ir.VarBinding{
					{Var: gv, Value: ir.NewCall(ops.Relu, []ir.Expr{x}, nil)},
				},
			}},
			Ret: gv,
		}

		got, err := AnnotateStructInfo(fn, infer.NewContext())
		require.NoError(t, err)
		call := got.Blocks[0].Bindings[0].Value.(*ir.Call)
		require.NotNil(t, call.Info)
		require.NotNil(t, got.Blocks[0].Bindings[0].Var.Info)
		require.NoError(t, got.Validate())
	})

	t.Run("non-dataflow block", func(t *testing.T) {
		v := ir.NewVar("v", nil)
		fn := &ir.Function{
			Params: []*ir.Var{x},
			Blocks: []*ir.BindingBlock{{
				Bindings: []*ir.VarBinding{
					{Var: v, Value: ir.NewCall(ops.Exp, []ir.Expr{x}, nil)},
				},
			}},
			Ret: v,
		}

		got, err := AnnotateStructInfo(fn, infer.NewContext())
		require.NoError(t, err)
		call := got.Blocks[0].Bindings[0].Value.(*ir.Call)
		require.NotNil(t, call.Info)
		assert.Equal(t, "Tensor(Float32, [2, 3])", call.Info.String())
		require.NotNil(t, ir.InfoOf(got.Ret))
		require.NoError(t, got.Validate())
	})
}
