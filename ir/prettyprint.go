package ir

import (
	"bytes"
	"fmt"
	"strings"
)

// This file renders functions and modules to a deterministic text form, used
// by diagnostics and by tests that compare rewritten trees byte-for-byte.

func exprString(e Expr) string {
	switch e := e.(type) {
	case *Var:
		if e.Dataflow {
			return "%" + e.Name
		}
		return "@" + e.Name
	case *GlobalVar:
		return "$" + e.Name
	case *Constant:
		if e.Info != nil {
			return fmt.Sprintf("const:%s", e.Info)
		}
		return "const"
	case *ShapeExpr:
		return "shape" + e.Dims.String()
	case *Tuple:
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = exprString(f)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *TupleGetItem:
		return fmt.Sprintf("%s.%d", exprString(e.Tuple), e.Index)
	case *Call:
		parts := make([]string, len(e.Args))
		for i, arg := range e.Args {
			parts[i] = exprString(arg)
		}
		s := fmt.Sprintf("%s(%s)", e.Op.Name, strings.Join(parts, ", "))
		if e.Attrs != nil {
			s += fmt.Sprintf(" attrs=%+v", e.Attrs)
		}
		return s
	default:
		return fmt.Sprintf("<%T>", e)
	}
}

// String implements fmt.Stringer with a stable, diff-friendly rendering.
func (f *Function) String() string {
	var buf bytes.Buffer
	w := func(format string, args ...any) {
		if len(args) == 0 {
			buf.WriteString(format)
		} else {
			buf.WriteString(fmt.Sprintf(format, args...))
		}
	}
	w("fn(")
	for i, p := range f.Params {
		if i > 0 {
			w(", ")
		}
		w("%s", exprString(p))
		if p.Info != nil {
			w(": %s", p.Info)
		}
	}
	w(") {\n")
	for _, block := range f.Blocks {
		indent := "  "
		if block.Dataflow {
			w("  dataflow {\n")
			indent = "    "
		}
		for _, b := range block.Bindings {
			w("%s%s", indent, exprString(b.Var))
			if b.Var.Info != nil {
				w(": %s", b.Var.Info)
			}
			w(" = %s", exprString(b.Value))
			if c, ok := b.Value.(*Call); ok && c.Info != nil {
				w(" : %s", c.Info)
			}
			w("\n")
		}
		if block.Dataflow {
			w("  }\n")
		}
	}
	w("  return %s\n}\n", exprString(f.Ret))
	return buf.String()
}

// String renders every function in name order.
func (m *Module) String() string {
	var buf bytes.Buffer
	for _, name := range m.FunctionNames() {
		fmt.Fprintf(&buf, "def %s %s", name, m.Funcs[name])
	}
	return buf.String()
}
