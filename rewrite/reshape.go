package rewrite

import (
	"strings"

	"github.com/axonml/axon/infer"
	"github.com/axonml/axon/ir"
	"github.com/axonml/axon/ops"
)

// RewriteDataflowReshapes specializes reshape-shaped kernel invocations into
// vm.reshape, the allocation-free runtime view over the input's buffer.
//
// A binding matches when it invokes call_kernel on a global whose name starts
// with "reshape". The kernel's literal argument tuple must then hold exactly
// the data tensor. The rewrite is idempotent: vm.reshape never matches again.
func RewriteDataflowReshapes(fn *ir.Function, ictx *infer.Context) (*ir.Function, error) {
	m := &Mutator{Rewrite: rewriteReshapeCall, Infer: ictx}
	return m.RewriteFunction(fn)
}

func rewriteReshapeCall(call *ir.Call) (ir.Expr, error) {
	if call.Op != ops.CallKernel || len(call.Args) != 3 {
		return call, nil
	}
	gv, ok := call.Args[0].(*ir.GlobalVar)
	if !ok || !strings.HasPrefix(gv.Name, "reshape") {
		return call, nil
	}
	// A non-literal argument pack cannot be inspected here, so leave it be.
	pack, ok := call.Args[1].(*ir.Tuple)
	if !ok {
		return call, nil
	}
	if len(pack.Fields) != 1 {
		return nil, infer.Errorf(infer.MalformedLoweredPattern, call,
			"reshape kernel %q must take exactly one data tensor, its argument tuple has %d fields",
			gv.Name, len(pack.Fields))
	}
	out := ir.NewCall(ops.VMReshape, []ir.Expr{pack.Fields[0], call.Args[2]}, nil)
	out.Span = call.Span
	return out, nil
}
