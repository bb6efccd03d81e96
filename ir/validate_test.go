package ir

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axonml/axon/symdim"
)

func dims(vs ...int64) Shape {
	out := make(Shape, len(vs))
	for i, v := range vs {
		out[i] = symdim.NewDim(v)
	}
	return out
}

func TestValidate(t *testing.T) {
	opAdd := &Op{Name: "add", NumInputs: 2}
	x := NewVar("x", NewTensorInfo(dtypes.Float32, dims(2, 3)))
	y := NewVar("y", NewTensorInfo(dtypes.Float32, dims(2, 3)))

	t.Run("well-formed", func(t *testing.T) {
		tmp := NewDataflowVar("tmp", nil)
		out := NewVar("out", nil)
		fn := &Function{
			Params: []*Var{x, y},
			Blocks: []*BindingBlock{{
				Dataflow: true,
				Bindings: []*VarBinding{
					{Var: tmp, Value: NewCall(opAdd, []Expr{x, y}, nil)},
					{Var: out, Value: tmp},
				},
			}},
			Ret: out,
		}
		require.NoError(t, fn.Validate())
	})

	t.Run("use before definition", func(t *testing.T) {
		tmp := NewDataflowVar("tmp", nil)
		fn := &Function{
			Params: []*Var{x},
			Blocks: []*BindingBlock{{
				Dataflow: true,
				Bindings: []*VarBinding{
					{Var: NewDataflowVar("a", nil), Value: NewCall(opAdd, []Expr{x, tmp}, nil)},
					{Var: tmp, Value: x},
				},
			}},
			Ret: x,
		}
		assert.ErrorContains(t, fn.Validate(), "before definition")
	})

	t.Run("double binding", func(t *testing.T) {
		tmp := NewDataflowVar("tmp", nil)
		fn := &Function{
			Params: []*Var{x},
			Blocks: []*BindingBlock{{
				Dataflow: true,
				Bindings: []*VarBinding{
					{Var: tmp, Value: x},
					{Var: tmp, Value: x},
				},
			}},
			Ret: x,
		}
		assert.ErrorContains(t, fn.Validate(), "bound more than once")
	})

	t.Run("dataflow var outside dataflow block", func(t *testing.T) {
		tmp := NewDataflowVar("tmp", nil)
		fn := &Function{
			Params: []*Var{x},
			Blocks: []*BindingBlock{{
				Bindings: []*VarBinding{{Var: tmp, Value: x}},
			}},
			Ret: x,
		}
		assert.ErrorContains(t, fn.Validate(), "outside a dataflow block")
	})

	t.Run("dataflow var escapes its block", func(t *testing.T) {
		tmp := NewDataflowVar("tmp", nil)
		out := NewVar("out", nil)
		fn := &Function{
			Params: []*Var{x},
			Blocks: []*BindingBlock{{
				Dataflow: true,
				Bindings: []*VarBinding{
					{Var: tmp, Value: x},
					{Var: out, Value: tmp},
				},
			}},
			Ret: tmp,
		}
		assert.ErrorContains(t, fn.Validate(), "outside its dataflow block")
	})
}

func TestModuleDeterminism(t *testing.T) {
	fn := &Function{Ret: &Constant{}}
	m := NewModule(map[string]*Function{"b": fn, "a": fn, "c": fn})
	assert.Equal(t, []string{"a", "b", "c"}, m.FunctionNames())

	// WithFunction leaves the receiver untouched.
	m2 := m.WithFunction("d", fn)
	assert.Len(t, m.Funcs, 3)
	assert.Len(t, m2.Funcs, 4)
}

func TestPrettyPrint(t *testing.T) {
	opAdd := &Op{Name: "add", NumInputs: 2}
	x := NewVar("x", NewTensorInfo(dtypes.Float32, dims(2, 3)))
	tmp := NewDataflowVar("tmp", nil)
	out := NewVar("out", nil)
	fn := &Function{
		Params: []*Var{x},
		Blocks: []*BindingBlock{{
			Dataflow: true,
			Bindings: []*VarBinding{
				{Var: tmp, Value: NewCall(opAdd, []Expr{x, x}, nil)},
				{Var: out, Value: tmp},
			},
		}},
		Ret: out,
	}
	want := `fn(@x: Tensor(Float32, [2, 3])) {
  dataflow {
    %tmp = add(@x, @x)
    @out = %tmp
  }
  return @out
}
`
	assert.Equal(t, want, fn.String())
	// Rendering is deterministic.
	assert.Equal(t, fn.String(), fn.String())
}
