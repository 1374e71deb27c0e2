/*
Package compiler turns Hissp IR into Python source: pure syntax
emission, no evaluation (spec.md §4.7). Compile produces one Python
expression per input form; the special forms quote and lambda, plus the
ir.TemplateHead wrapper a quasiquote pass leaves for compileTemplate
(see template.go), are recognized by name before any other dispatch and
are never shadowable by a macro or ordinary binding (spec.md §4.5's
"reserved heads" rule).
*/
package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/hisspgo/hissp/ir"
)

// tracer traces with key 'hissp.compiler'.
func tracer() tracing.Trace {
	return tracing.Select("hissp.compiler")
}

// Compile emits the Python source for one IR node.
func Compile(node ir.Node, env *ir.Environment) (string, error) {
	e := &emitter{}
	if err := compileExpr(e, node, env); err != nil {
		return "", err
	}
	return e.String(), nil
}

func compileExpr(e *emitter, node ir.Node, env *ir.Environment) error {
	switch n := node.(type) {
	case nil:
		e.writeString("()")
		return nil
	case *ir.Tuple:
		return compileTuple(e, n, env)
	case ir.Fragment:
		e.writeString(n.Text)
		return nil
	case ir.StringLiteral:
		e.writeString(n.Text)
		return nil
	case ir.SelfEvaluating:
		e.writeString(n.String())
		return nil
	case ir.Foreign:
		return emitOpaque(e, n)
	default:
		return &CompileError{Kind: UnrepresentableAtom, Msg: fmt.Sprintf("unknown node type %T", node)}
	}
}

func compileTuple(e *emitter, t *ir.Tuple, env *ir.Environment) error {
	if t.Len() == 0 {
		e.writeString("()")
		return nil
	}
	if frag, ok := t.Head().(ir.Fragment); ok && frag.Kind != ir.FragModuleHandle {
		switch frag.Text {
		case "quote":
			return compileQuote(e, t, env)
		case "lambda":
			return compileLambda(e, t, env)
		case ir.TemplateHead:
			return compileTemplate(e, t, env)
		}
		if strings.HasPrefix(frag.Text, ".") && frag.Text != "." {
			return compileMethodCall(e, frag.Text[1:], t.Tail().Children(), env)
		}
	}
	headSrc, err := compileHead(t.Head(), env)
	if err != nil {
		return err
	}
	spec, err := ParseCallConvention(t.Tail().Children())
	if err != nil {
		return err
	}
	return e.writeCall(headSrc, spec, env)
}

func compileMethodCall(e *emitter, method string, args []ir.Node, env *ir.Environment) error {
	if len(args) == 0 {
		return &CompileError{Kind: InvalidSpecialForm, Msg: "method-call form (." + method + " ...) requires a receiver argument"}
	}
	recv := &emitter{}
	if err := compileExpr(recv, args[0], env); err != nil {
		return err
	}
	spec, err := ParseCallConvention(args[1:])
	if err != nil {
		return err
	}
	return e.writeCall("("+recv.String()+")."+method, spec, env)
}

// compileHead emits the callable position of an invocation tuple: a
// plain Fragment verbatim, a module-handle Fragment via __import__, or a
// nested Tuple parenthesized (spec.md §4.7).
func compileHead(head ir.Node, env *ir.Environment) (string, error) {
	frag, ok := head.(ir.Fragment)
	if !ok {
		sub := &emitter{}
		if err := compileExpr(sub, head, env); err != nil {
			return "", err
		}
		return "(" + sub.String() + ")", nil
	}
	text := frag.Text
	if strings.HasSuffix(text, ".") {
		pkg := text[:len(text)-1]
		return fmt.Sprintf("__import__(%s, fromlist='?')", strconv.Quote(pkg)), nil
	}
	if idx := strings.Index(text, ".."); idx >= 0 {
		pkg, rest := text[:idx], text[idx+2:]
		imp := fmt.Sprintf("__import__(%s, fromlist='?')", strconv.Quote(pkg))
		if rest == "" {
			return imp, nil
		}
		return imp + "." + rest, nil
	}
	return text, nil
}

// literalFor formats a raw Go scalar as Python literal source. Nothing in
// this package calls it: SelfEvaluating atoms are emitted from their
// stored source text.
func literalFor(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "None", true
	case bool:
		if val {
			return "True", true
		}
		return "False", true
	case int, int64, float64:
		return fmt.Sprint(val), true
	case string:
		return strconv.Quote(val), true
	default:
		return "", false
	}
}
