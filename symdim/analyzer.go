package symdim

// Analyzer attempts proofs of equality between symbolic integer expressions.
//
// An Analyzer is not safe for concurrent use: its simplification cache is
// plain map state. Give each concurrent worker its own instance; they are
// cheap to create.
type Analyzer struct {
	normCache map[Expr]normResult
}

type normResult struct {
	form string
	ok   bool
}

// NewAnalyzer returns an empty Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{normCache: make(map[Expr]normResult)}
}

// CanProveEqual reports whether a and b are provably the same integer for
// every assignment of their symbols. A false result means the proof was not
// found, not that the expressions differ.
func (a *Analyzer) CanProveEqual(x, y Expr) bool {
	if x == nil || y == nil {
		return false
	}
	if x == y {
		return true
	}
	nx, okX := a.normalize(x)
	ny, okY := a.normalize(y)
	return okX && okY && nx == ny
}

// CanProveEqualDim lifts CanProveEqual to dimensions. Unknown dimensions are
// never provably equal to anything, including themselves.
func (a *Analyzer) CanProveEqualDim(x, y Dim) bool {
	if x.IsUnknown() || y.IsUnknown() {
		return false
	}
	if vx, ok := x.Static(); ok {
		if vy, ok := y.Static(); ok {
			return vx == vy
		}
	}
	return a.CanProveEqual(x.Expr(), y.Expr())
}

// CanProveNotEqual reports whether a and b provably differ for every
// assignment of their symbols, i.e. their difference normalizes to a nonzero
// constant. False means no proof either way.
func (a *Analyzer) CanProveNotEqual(x, y Expr) bool {
	if x == nil || y == nil {
		return false
	}
	terms, ok := linearize(Sub(x, y))
	if !ok {
		return false
	}
	merged := make(map[string]int64)
	for _, t := range terms {
		merged[t.key()] += t.coeff
	}
	for key, coeff := range merged {
		if key != "" && coeff != 0 {
			// Symbolic residue: cannot decide either way.
			return false
		}
	}
	return merged[""] != 0
}

// CanProveNotEqualDim lifts CanProveNotEqual to dimensions.
func (a *Analyzer) CanProveNotEqualDim(x, y Dim) bool {
	if x.IsUnknown() || y.IsUnknown() {
		return false
	}
	if vx, ok := x.Static(); ok {
		if vy, ok := y.Static(); ok {
			return vx != vy
		}
	}
	return a.CanProveNotEqual(x.Expr(), y.Expr())
}

func (a *Analyzer) normalize(e Expr) (string, bool) {
	if r, found := a.normCache[e]; found {
		return r.form, r.ok
	}
	terms, ok := linearize(e)
	var form string
	if ok {
		form = normalForm(terms)
	}
	a.normCache[e] = normResult{form: form, ok: ok}
	return form, ok
}
