// Package ir defines the expression tree the inference and rewriting layer
// operates on: operator calls over symbolic tensors, grouped into ordered
// binding blocks inside functions.
//
// Nodes are immutable once constructed. Rewrites build new nodes that share
// unchanged children; nothing in this package mutates an existing node.
package ir

import (
	"github.com/axonml/axon/symdim"
)

// Op is a globally unique operator identity. Identities are registered once
// at process start (see the ops package) and compared by pointer.
type Op struct {
	// Name is the canonical operator name, e.g. "add" or "nn.layer_norm".
	Name string
	// NumInputs is the declared argument arity.
	NumInputs int
}

func (op *Op) String() string { return op.Name }

// Span is an opaque source-location token carried for diagnostics only.
type Span string

// Expr is any expression node.
type Expr interface {
	exprNode()
}

// Var is a named binding target. Dataflow vars are visible only inside the
// dataflow block that defines them and may be freely rewritten; plain vars
// are externally observable and must never be dropped by a rewrite.
type Var struct {
	Name     string
	Dataflow bool
	Info     StructInfo
}

// GlobalVar names a function or lowered kernel at module scope.
type GlobalVar struct {
	Name string
}

// Call invokes an operator over a fixed-arity argument list. Info caches the
// inferred struct info once attached; a call needing different info must be
// rebuilt.
type Call struct {
	Op    *Op
	Args  []Expr
	Attrs any
	Info  StructInfo
	Span  Span
}

// Tuple groups expressions; used e.g. for a lowered kernel's argument pack.
type Tuple struct {
	Fields []Expr
	Info   StructInfo
}

// TupleGetItem projects one field out of a tuple-valued expression.
type TupleGetItem struct {
	Tuple Expr
	Index int
	Info  StructInfo
}

// Constant is a literal tensor. Its value is opaque to this layer; only the
// struct info matters here.
type Constant struct {
	Info StructInfo
}

// ShapeExpr is a first-class shape value, e.g. the target shape operand of a
// reshape.
type ShapeExpr struct {
	Dims Shape
}

func (*Var) exprNode()          {}
func (*GlobalVar) exprNode()    {}
func (*Call) exprNode()         {}
func (*Tuple) exprNode()        {}
func (*TupleGetItem) exprNode() {}
func (*Constant) exprNode()     {}
func (*ShapeExpr) exprNode()    {}

// NewVar returns an externally visible variable.
func NewVar(name string, info StructInfo) *Var {
	return &Var{Name: name, Info: info}
}

// NewDataflowVar returns a variable visible only within its dataflow block.
func NewDataflowVar(name string, info StructInfo) *Var {
	return &Var{Name: name, Dataflow: true, Info: info}
}

// NewCall builds a call without struct info attached. Inference attaches the
// info by rebuilding the node (see WithInfo).
func NewCall(op *Op, args []Expr, attrs any) *Call {
	return &Call{Op: op, Args: args, Attrs: attrs}
}

// WithInfo returns a copy of the call with info attached. The receiver is
// left untouched.
func (c *Call) WithInfo(info StructInfo) *Call {
	clone := *c
	clone.Info = info
	return &clone
}

// NewShapeExpr builds a shape literal from dimensions.
func NewShapeExpr(dims ...symdim.Dim) *ShapeExpr {
	return &ShapeExpr{Dims: Shape(dims)}
}

// InfoOf returns the struct info attached to an expression, or nil when none
// is attached (or the node kind carries none).
func InfoOf(e Expr) StructInfo {
	switch e := e.(type) {
	case *Var:
		return e.Info
	case *Call:
		return e.Info
	case *Tuple:
		return e.Info
	case *TupleGetItem:
		return e.Info
	case *Constant:
		return e.Info
	case *ShapeExpr:
		return &ShapeStructInfo{Rank: len(e.Dims)}
	default:
		return nil
	}
}

// VisitExprs calls f on e and every reachable sub-expression, parents before
// children.
func VisitExprs(e Expr, f func(Expr)) {
	if e == nil {
		return
	}
	f(e)
	switch e := e.(type) {
	case *Call:
		for _, arg := range e.Args {
			VisitExprs(arg, f)
		}
	case *Tuple:
		for _, field := range e.Fields {
			VisitExprs(field, f)
		}
	case *TupleGetItem:
		VisitExprs(e.Tuple, f)
	}
}
