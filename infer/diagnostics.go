// Package infer implements struct-info inference for every builtin operator:
// axis normalization, numpy-style broadcasting over symbolic dimensions, the
// per-operator inference rules, and the structured diagnostics they raise.
//
// Inference functions report contract violations by panicking with a
// *Diagnostic through ops.Context.ReportFatal; InferCall converts the panic
// back into an ordinary error at the boundary.
package infer

import (
	stderrors "errors"
	"fmt"

	"github.com/axonml/axon/ir"
)

// Kind classifies a diagnostic. Every kind is a hard error for the function
// being compiled; "unknown" struct info is reserved for genuinely
// undecidable shape computations and never produced through these.
type Kind int

const (
	ArityMismatch Kind = iota
	WrongStructInfoKind
	AxisOutOfRange
	DuplicateAxis
	DtypeMismatch
	BroadcastMismatch
	AuxiliaryShapeMismatch
	UnregisteredOperator
	MalformedLoweredPattern
)

func (k Kind) String() string {
	switch k {
	case ArityMismatch:
		return "ArityMismatch"
	case WrongStructInfoKind:
		return "WrongStructInfoKind"
	case AxisOutOfRange:
		return "AxisOutOfRange"
	case DuplicateAxis:
		return "DuplicateAxis"
	case DtypeMismatch:
		return "DtypeMismatch"
	case BroadcastMismatch:
		return "BroadcastMismatch"
	case AuxiliaryShapeMismatch:
		return "AuxiliaryShapeMismatch"
	case UnregisteredOperator:
		return "UnregisteredOperator"
	case MalformedLoweredPattern:
		return "MalformedLoweredPattern"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Diagnostic is a structured inference error: the operator, the offending
// argument or axis where applicable (-1 otherwise), and a human-readable
// message.
type Diagnostic struct {
	Kind    Kind
	Op      string
	Arg     int
	Axis    int
	Span    ir.Span
	Message string
}

func (d *Diagnostic) Error() string {
	s := fmt.Sprintf("%s: in %s: %s", d.Kind, d.Op, d.Message)
	if d.Span != "" {
		s += fmt.Sprintf(" (at %s)", d.Span)
	}
	return s
}

// diagf builds a diagnostic for call with no argument/axis attribution.
func diagf(kind Kind, call *ir.Call, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Kind:    kind,
		Op:      call.Op.Name,
		Arg:     -1,
		Axis:    -1,
		Span:    call.Span,
		Message: fmt.Sprintf(format, args...),
	}
}

// Errorf builds a diagnostic for call from outside the inference functions,
// e.g. from the rewriting layer.
func Errorf(kind Kind, call *ir.Call, format string, args ...any) *Diagnostic {
	return diagf(kind, call, format, args...)
}

// WithArg attributes the diagnostic to an argument position.
func (d *Diagnostic) WithArg(i int) *Diagnostic {
	d.Arg = i
	return d
}

// WithAxis attributes the diagnostic to an axis index.
func (d *Diagnostic) WithAxis(i int) *Diagnostic {
	d.Axis = i
	return d
}

// KindOf extracts the diagnostic kind from an error chain.
func KindOf(err error) (Kind, bool) {
	var d *Diagnostic
	if stderrors.As(err, &d) {
		return d.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries a diagnostic of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
