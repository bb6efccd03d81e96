package infer

import (
	"github.com/axonml/axon/ir"
	"github.com/axonml/axon/ops"
)

// InferShapeOf produces shape struct info with the input tensor's rank.
func InferShapeOf(call *ir.Call, ctx ops.Context) ir.StructInfo {
	data := GetUnaryInputTensorStructInfo(call, ctx)
	return &ir.ShapeStructInfo{Rank: data.Rank}
}

// InferCallKernel infers call_kernel(kernel, args, out_shape): an opaque
// lowered kernel invocation. The kernel must be a global function reference
// and args a tuple; the output tensor's dtype comes from the attributes and
// its shape from the trailing shape operand.
func InferCallKernel(call *ir.Call, ctx ops.Context) ir.StructInfo {
	checkArity(call, ctx)
	attrs := attrsAs[*ops.CallKernelAttrs](call)

	if _, ok := call.Args[0].(*ir.GlobalVar); !ok {
		ctx.ReportFatal(diagf(WrongStructInfoKind, call,
			"the kernel argument must reference a global function").WithArg(0))
	}
	switch arg := call.Args[1].(type) {
	case *ir.Tuple:
	case *ir.Var:
		if _, ok := ir.InfoOf(arg).(*ir.TupleStructInfo); !ok {
			ctx.ReportFatal(diagf(WrongStructInfoKind, call,
				"the kernel arguments must form a tuple, got %s", structInfoKindName(ir.InfoOf(arg))).WithArg(1))
		}
	default:
		ctx.ReportFatal(diagf(WrongStructInfoKind, call,
			"the kernel arguments must form a tuple").WithArg(1))
	}
	return tensorFromShapeArg(call, ctx, 2, attrs.OutDType)
}

// InferVMReshape infers vm.reshape(data, shape): the dtype follows the data
// and the shape comes from the shape operand.
func InferVMReshape(call *ir.Call, ctx ops.Context) ir.StructInfo {
	checkArity(call, ctx)
	data := tensorArg(call, ctx, 0)
	return tensorFromShapeArg(call, ctx, 1, data.DType)
}

func init() {
	ops.RegisterInfer(ops.ShapeOf, InferShapeOf)
	ops.RegisterInfer(ops.CallKernel, InferCallKernel)
	ops.RegisterInfer(ops.VMReshape, InferVMReshape)
}
