package symdim

// Dim is one dimension of a tensor shape: a concrete non-negative integer, a
// symbolic integer expression, or unknown. The zero value is the unknown
// dimension, so an unset Dim never masquerades as a concrete extent.
//
// Two Dims may only be compared through Analyzer.CanProveEqualDim; Dim has no
// Equal method on purpose, so callers cannot accidentally conflate "not
// provably equal" with "unequal".
type Dim struct {
	// value holds the static extent plus one; zero means the dimension
	// carries no static value.
	value int64
	expr  Expr
}

// UnknownDim is the absorbing unknown dimension.
var UnknownDim = Dim{}

// NewDim returns a concrete dimension. Negative values are treated as
// unknown, mirroring the usual dynamic-dimension encoding.
func NewDim(v int64) Dim {
	if v < 0 {
		return UnknownDim
	}
	return Dim{value: v + 1}
}

// NewSymbolicDim returns a dimension backed by a symbolic expression.
// Constant expressions collapse to concrete dimensions.
func NewSymbolicDim(e Expr) Dim {
	if c, ok := e.(*ConstExpr); ok {
		return NewDim(c.Value)
	}
	return Dim{expr: e}
}

// IsStatic reports whether the dimension is a compile-time integer.
func (d Dim) IsStatic() bool { return d.expr == nil && d.value > 0 }

// IsSymbolic reports whether the dimension is a (non-constant) symbolic
// expression.
func (d Dim) IsSymbolic() bool { return d.expr != nil }

// IsUnknown reports whether nothing is known about the dimension.
func (d Dim) IsUnknown() bool { return d.expr == nil && d.value == 0 }

// Static returns the concrete value, or false if the dimension is symbolic
// or unknown.
func (d Dim) Static() (int64, bool) {
	if !d.IsStatic() {
		return 0, false
	}
	return d.value - 1, true
}

// Expr returns the dimension as a symbolic expression. Unknown dimensions
// return nil.
func (d Dim) Expr() Expr {
	if d.expr != nil {
		return d.expr
	}
	if d.value > 0 {
		return Const(d.value - 1)
	}
	return nil
}

// IsOne reports whether the dimension is the concrete integer 1, the
// broadcast-neutral extent.
func (d Dim) IsOne() bool {
	v, ok := d.Static()
	return ok && v == 1
}

func (d Dim) String() string {
	if d.expr != nil {
		return d.expr.String()
	}
	if d.value == 0 {
		return "?"
	}
	e := ConstExpr{Value: d.value - 1}
	return e.String()
}
