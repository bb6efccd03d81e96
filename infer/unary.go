package infer

import (
	"github.com/axonml/axon/ir"
	"github.com/axonml/axon/ops"
)

// InferUnary infers shape-preserving unary operators: the output struct info
// is the input's, unchanged. Nodes are immutable, so sharing is safe.
func InferUnary(call *ir.Call, ctx ops.Context) ir.StructInfo {
	return GetUnaryInputTensorStructInfo(call, ctx)
}

func init() {
	for _, op := range []*ir.Op{ops.Relu, ops.Gelu, ops.Silu, ops.Sqrt, ops.Exp, ops.Log, ops.Negative} {
		ops.RegisterInfer(op, InferUnary)
	}
}
