package ir

import (
	"fmt"
	"strings"

	"github.com/axonml/axon/symdim"
	"github.com/gomlx/gopjrt/dtypes"
)

// RankUnknown marks a tensor whose number of dimensions is not known.
const RankUnknown = -1

// Shape is an ordered sequence of possibly-symbolic dimensions. A nil Shape
// on a TensorStructInfo means "shape unknown", which is distinct from a
// present, empty shape (a scalar).
type Shape []symdim.Dim

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// Static returns the concrete dimensions, or false if any dimension is
// symbolic or unknown.
func (s Shape) Static() ([]int64, bool) {
	dims := make([]int64, len(s))
	for i, d := range s {
		v, ok := d.Static()
		if !ok {
			return nil, false
		}
		dims[i] = v
	}
	return dims, true
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = d.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// StructInfo is the static descriptor attached to an expression: what is
// known at compile time about its value.
type StructInfo interface {
	structInfo()
	String() string
}

// TensorStructInfo describes a tensor-valued expression: dtype, rank and an
// optional shape. Invariant: if Shape is non-nil and Rank is known, then
// len(Shape) == Rank.
type TensorStructInfo struct {
	DType dtypes.DType
	Rank  int
	Shape Shape
}

// TupleStructInfo describes a tuple-valued expression, e.g. the multi-output
// result of batch_norm.
type TupleStructInfo struct {
	Fields []StructInfo
}

// ShapeStructInfo describes a first-class shape value.
type ShapeStructInfo struct {
	Rank int
}

func (*TensorStructInfo) structInfo() {}
func (*TupleStructInfo) structInfo()  {}
func (*ShapeStructInfo) structInfo()  {}

// NewTensorInfo builds tensor struct info from a known shape. The rank is
// taken from the shape.
func NewTensorInfo(dtype dtypes.DType, shape Shape) *TensorStructInfo {
	return &TensorStructInfo{DType: dtype, Rank: len(shape), Shape: shape}
}

// NewTensorInfoRank builds tensor struct info with known rank but unknown
// shape. Pass RankUnknown when the rank is unknown too.
func NewTensorInfoRank(dtype dtypes.DType, rank int) *TensorStructInfo {
	return &TensorStructInfo{DType: dtype, Rank: rank}
}

// IsUnknownDType reports whether the element type is unknown.
func (t *TensorStructInfo) IsUnknownDType() bool { return t.DType == dtypes.InvalidDType }

// IsUnknownRank reports whether the number of dimensions is unknown.
func (t *TensorStructInfo) IsUnknownRank() bool { return t.Rank == RankUnknown }

// HasShape reports whether per-dimension extents are present.
func (t *TensorStructInfo) HasShape() bool { return t.Shape != nil }

// WithDType returns a copy with the dtype overridden, keeping rank and shape.
func (t *TensorStructInfo) WithDType(dtype dtypes.DType) *TensorStructInfo {
	clone := *t
	clone.DType = dtype
	return &clone
}

func dtypeString(dtype dtypes.DType) string {
	if dtype == dtypes.InvalidDType {
		return "?"
	}
	return dtype.String()
}

func (t *TensorStructInfo) String() string {
	if t.HasShape() {
		return fmt.Sprintf("Tensor(%s, %s)", dtypeString(t.DType), t.Shape)
	}
	if t.IsUnknownRank() {
		return fmt.Sprintf("Tensor(%s, ndim=?)", dtypeString(t.DType))
	}
	return fmt.Sprintf("Tensor(%s, ndim=%d)", dtypeString(t.DType), t.Rank)
}

func (t *TupleStructInfo) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.String()
	}
	return "Tuple(" + strings.Join(parts, ", ") + ")"
}

func (s *ShapeStructInfo) String() string {
	if s.Rank == RankUnknown {
		return "Shape(ndim=?)"
	}
	return fmt.Sprintf("Shape(ndim=%d)", s.Rank)
}
