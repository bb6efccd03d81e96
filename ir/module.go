package ir

import (
	"maps"
	"slices"
)

// VarBinding assigns the value expression to the variable. Binding order
// within a block is semantically significant: producers come before
// consumers.
type VarBinding struct {
	Var   *Var
	Value Expr
}

// BindingBlock is an ordered sequence of bindings. When Dataflow is set, the
// block's internal DataflowVar bindings are pure and freely rewritable, while
// bindings to plain Vars are the block's externally visible outputs.
type BindingBlock struct {
	Dataflow bool
	Bindings []*VarBinding
}

// Function is the unit each pass transforms: parameters, an ordered sequence
// of binding blocks, and a return expression.
type Function struct {
	Params []*Var
	Blocks []*BindingBlock
	Ret    Expr
}

// Module maps global function names to functions. Iteration helpers are
// deterministic (sorted by name) so module-level operations reproduce.
type Module struct {
	Funcs map[string]*Function
}

// NewModule builds a module from named functions.
func NewModule(funcs map[string]*Function) *Module {
	m := &Module{Funcs: make(map[string]*Function, len(funcs))}
	maps.Copy(m.Funcs, funcs)
	return m
}

// FunctionNames returns the function names in sorted order.
func (m *Module) FunctionNames() []string {
	return slices.Sorted(maps.Keys(m.Funcs))
}

// WithFunction returns a new module with name bound to fn; the receiver is
// unchanged and all other functions are shared.
func (m *Module) WithFunction(name string, fn *Function) *Module {
	out := NewModule(m.Funcs)
	out.Funcs[name] = fn
	return out
}
