package ops

// Builtin operator identities. Inference functions are attached by the infer
// package during initialization.
var (
	// Elementwise binary arithmetic, numpy-style broadcasting.
	Add         = New("add", 2)
	Subtract    = New("subtract", 2)
	Multiply    = New("multiply", 2)
	Divide      = New("divide", 2)
	FloorDivide = New("floor_divide", 2)

	// Elementwise comparisons; always produce booleans.
	Less         = New("less", 2)
	LessEqual    = New("less_equal", 2)
	Greater      = New("greater", 2)
	GreaterEqual = New("greater_equal", 2)
	Equal        = New("equal", 2)
	NotEqual     = New("not_equal", 2)

	// Shape-preserving unary ops.
	Relu     = New("nn.relu", 1)
	Gelu     = New("nn.gelu", 1)
	Silu     = New("nn.silu", 1)
	Sqrt     = New("sqrt", 1)
	Exp      = New("exp", 1)
	Log      = New("log", 1)
	Negative = New("negative", 1)

	// Fused multiply-add over three broadcast-compatible tensors.
	EwiseFMA = New("ewise_fma", 3)

	// Neural-network ops.
	Dense     = New("nn.dense", 2)
	Softmax   = New("nn.softmax", 1)
	Flatten   = New("nn.flatten", 1)
	BatchNorm = New("nn.batch_norm", 5)
	LayerNorm = New("nn.layer_norm", 3)
	Dropout   = New("nn.dropout", 1)

	// Indexing.
	Take         = New("take", 2)
	StridedSlice = New("strided_slice", 1)

	// Datatype / shape transforms.
	Astype          = New("astype", 1)
	WrapParam       = New("wrap_param", 1)
	Cumsum          = New("cumsum", 1)
	CollapseSumLike = New("collapse_sum_like", 2)
	CollapseSumTo   = New("collapse_sum_to", 2)

	// Reductions.
	Sum      = New("sum", 1)
	Mean     = New("mean", 1)
	Variance = New("variance", 1)
	Max      = New("max", 1)
	Min      = New("min", 1)

	// Shape reflection.
	ShapeOf = New("shape_of", 1)

	// CallKernel invokes a lowered kernel: (kernel GlobalVar, args Tuple,
	// out ShapeExpr). The rewrite layer specializes reshape-shaped kernels
	// into VMReshape.
	CallKernel = New("call_kernel", 3)

	// VMReshape is the allocation-free runtime view: (data, shape).
	VMReshape = New("vm.reshape", 2)
)
