// Package symdim models symbolic integer dimensions and the prover used to
// compare them.
//
// Shape inference only consumes a single question from the prover: "are these
// two integer expressions provably equal?". A negative answer means "not
// provably equal", never "provably unequal" -- callers that need to
// distinguish the two must check for concrete values themselves.
package symdim

import (
	"fmt"
	"sort"
	"strings"
)

// Expr is a symbolic integer expression: a constant, a named symbol, or an
// arithmetic combination of the two. Expressions are immutable.
type Expr interface {
	exprNode()
	String() string
}

// ConstExpr is a compile-time integer constant.
type ConstExpr struct {
	Value int64
}

// SymExpr is a named symbolic integer (e.g. a batch size "n").
type SymExpr struct {
	Name string
}

// BinOp enumerates the arithmetic forms an expression can combine under.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpFloorDiv
)

// BinExpr combines two sub-expressions under an arithmetic operation.
type BinExpr struct {
	Op   BinOp
	A, B Expr
}

func (*ConstExpr) exprNode() {}
func (*SymExpr) exprNode()   {}
func (*BinExpr) exprNode()   {}

func (e *ConstExpr) String() string { return fmt.Sprintf("%d", e.Value) }
func (e *SymExpr) String() string   { return e.Name }

func (e *BinExpr) String() string {
	var op string
	switch e.Op {
	case OpAdd:
		op = "+"
	case OpSub:
		op = "-"
	case OpMul:
		op = "*"
	case OpFloorDiv:
		op = "//"
	}
	return fmt.Sprintf("(%s%s%s)", e.A, op, e.B)
}

// Const returns a constant expression.
func Const(v int64) Expr { return &ConstExpr{Value: v} }

// Sym returns a named symbolic integer.
func Sym(name string) Expr { return &SymExpr{Name: name} }

// Add returns a+b.
func Add(a, b Expr) Expr { return &BinExpr{Op: OpAdd, A: a, B: b} }

// Sub returns a-b.
func Sub(a, b Expr) Expr { return &BinExpr{Op: OpSub, A: a, B: b} }

// Mul returns a*b.
func Mul(a, b Expr) Expr { return &BinExpr{Op: OpMul, A: a, B: b} }

// FloorDiv returns a//b (rounding towards negative infinity).
func FloorDiv(a, b Expr) Expr { return &BinExpr{Op: OpFloorDiv, A: a, B: b} }

// term is a product of symbols with an integer coefficient, the building
// block of the linear normal form used by the analyzer.
type term struct {
	coeff int64
	syms  []string // sorted symbol names, possibly repeated for powers
}

func (t term) key() string { return strings.Join(t.syms, "*") }

// linearize flattens an expression into a sum of terms. The second return is
// false when the expression contains a form the normalizer does not handle
// (floor division by a non-divisible constant, symbolic divisors).
func linearize(e Expr) ([]term, bool) {
	switch e := e.(type) {
	case *ConstExpr:
		return []term{{coeff: e.Value}}, true
	case *SymExpr:
		return []term{{coeff: 1, syms: []string{e.Name}}}, true
	case *BinExpr:
		switch e.Op {
		case OpAdd, OpSub:
			left, ok := linearize(e.A)
			if !ok {
				return nil, false
			}
			right, ok := linearize(e.B)
			if !ok {
				return nil, false
			}
			if e.Op == OpSub {
				for i := range right {
					right[i].coeff = -right[i].coeff
				}
			}
			return append(left, right...), true
		case OpMul:
			left, ok := linearize(e.A)
			if !ok {
				return nil, false
			}
			right, ok := linearize(e.B)
			if !ok {
				return nil, false
			}
			var out []term
			for _, lt := range left {
				for _, rt := range right {
					syms := make([]string, 0, len(lt.syms)+len(rt.syms))
					syms = append(syms, lt.syms...)
					syms = append(syms, rt.syms...)
					sort.Strings(syms)
					out = append(out, term{coeff: lt.coeff * rt.coeff, syms: syms})
				}
			}
			return out, true
		case OpFloorDiv:
			// Only constant/constant folds; anything symbolic stays opaque.
			ca, aOK := e.A.(*ConstExpr)
			cb, bOK := e.B.(*ConstExpr)
			if aOK && bOK && cb.Value != 0 {
				q := ca.Value / cb.Value
				if (ca.Value%cb.Value != 0) && ((ca.Value < 0) != (cb.Value < 0)) {
					q--
				}
				return []term{{coeff: q}}, true
			}
			return nil, false
		}
	}
	return nil, false
}

// normalForm collapses the term list into a canonical string, merging terms
// over the same symbol product and dropping zero coefficients.
func normalForm(terms []term) string {
	merged := make(map[string]int64)
	for _, t := range terms {
		merged[t.key()] += t.coeff
	}
	keys := make([]string, 0, len(merged))
	for k, c := range merged {
		if c == 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%d·%s;", merged[k], k)
	}
	return sb.String()
}
