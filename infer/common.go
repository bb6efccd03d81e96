package infer

import (
	"github.com/axonml/axon/ir"
	"github.com/axonml/axon/ops"
	"github.com/gomlx/exceptions"
)

func structInfoKindName(si ir.StructInfo) string {
	switch si.(type) {
	case *ir.TensorStructInfo:
		return "Tensor"
	case *ir.TupleStructInfo:
		return "Tuple"
	case *ir.ShapeStructInfo:
		return "Shape"
	case nil:
		return "none"
	}
	return "unknown"
}

// checkArity validates the argument count against the operator's declared
// arity.
func checkArity(call *ir.Call, ctx ops.Context) {
	if len(call.Args) != call.Op.NumInputs {
		ctx.ReportFatal(diagf(ArityMismatch, call,
			"operator expects %d arguments, got %d", call.Op.NumInputs, len(call.Args)))
	}
}

// tensorArg fetches argument i's struct info, requiring it to be a tensor.
func tensorArg(call *ir.Call, ctx ops.Context, i int) *ir.TensorStructInfo {
	info := ir.InfoOf(call.Args[i])
	tinfo, ok := info.(*ir.TensorStructInfo)
	if !ok {
		ctx.ReportFatal(diagf(WrongStructInfoKind, call,
			"argument %d must be a tensor, got %s", i, structInfoKindName(info)).WithArg(i))
	}
	return tinfo
}

// GetInputTensorStructInfo fetches the struct info of every argument,
// enforcing the operator's arity and that each argument is tensor-valued.
func GetInputTensorStructInfo(call *ir.Call, ctx ops.Context) []*ir.TensorStructInfo {
	checkArity(call, ctx)
	infos := make([]*ir.TensorStructInfo, len(call.Args))
	for i := range call.Args {
		infos[i] = tensorArg(call, ctx, i)
	}
	return infos
}

// GetUnaryInputTensorStructInfo is the single-argument special case.
func GetUnaryInputTensorStructInfo(call *ir.Call, ctx ops.Context) *ir.TensorStructInfo {
	checkArity(call, ctx)
	return tensorArg(call, ctx, 0)
}

// attrsAs fetches the call's attributes as type T. A wrong attributes type
// violates the input contract (the front end guarantees attributes match the
// operator's declared type), so this panics rather than diagnosing.
func attrsAs[T any](call *ir.Call) T {
	attrs, ok := call.Attrs.(T)
	if !ok {
		exceptions.Panicf("call to %s carries attributes %T, want %T", call.Op, call.Attrs, attrs)
	}
	return attrs
}
