package infer

import (
	"github.com/axonml/axon/ir"
	"github.com/axonml/axon/ops"
	"github.com/axonml/axon/symdim"
	"github.com/gomlx/exceptions"
)

// Context carries per-worker inference state: the symbolic prover with its
// worker-local simplification cache. Not safe for concurrent use; create one
// per worker.
type Context struct {
	Analyzer *symdim.Analyzer
}

// NewContext returns a fresh inference context with its own analyzer.
func NewContext() *Context {
	return &Context{Analyzer: symdim.NewAnalyzer()}
}

// CanProveEqualDim implements ops.Context.
func (c *Context) CanProveEqualDim(a, b symdim.Dim) bool {
	return c.Analyzer.CanProveEqualDim(a, b)
}

// CanProveNotEqualDim implements ops.Context.
func (c *Context) CanProveNotEqualDim(a, b symdim.Dim) bool {
	return c.Analyzer.CanProveNotEqualDim(a, b)
}

// ReportFatal implements ops.Context by panicking with the diagnostic; the
// panic is caught and converted to an error at the InferCall boundary.
func (c *Context) ReportFatal(err error) {
	panic(err)
}

// InferCall computes the output struct info for a call by dispatching to the
// operator's registered inference function. Contract violations surface as
// *Diagnostic errors; undecidable shapes come back as partially unknown
// struct info, not as errors.
func InferCall(call *ir.Call, ctx *Context) (info ir.StructInfo, err error) {
	fn, registered := ops.LookupInferFn(call.Op)
	if !registered {
		return nil, diagf(UnregisteredOperator, call,
			"operator %q has no registered struct-info inference", call.Op.Name)
	}
	err = exceptions.TryCatch[error](func() { info = fn(call, ctx) })
	if err != nil {
		info = nil
	}
	return
}
