package compiler

import (
	"strconv"
	"strings"

	"github.com/hisspgo/hissp/ir"
)

// compileQuote emits the Python literal expression structurally equal
// to the quoted IR (spec.md §4.7, §8 property 3): tuples become nested
// Python tuple literals, Fragments become string literals of their
// munged text (a symbol has no host-level existence; its quoted form is
// its name), strings and self-evaluating atoms pass through unchanged,
// and Foreign falls back to emitOpaque.
func compileQuote(e *emitter, t *ir.Tuple, env *ir.Environment) error {
	args := t.Tail().Children()
	if len(args) != 1 {
		return &CompileError{Kind: InvalidSpecialForm, Msg: "quote takes exactly one argument"}
	}
	return compileQuoted(e, args[0])
}

func compileQuoted(e *emitter, node ir.Node) error {
	switch n := node.(type) {
	case *ir.Tuple:
		e.writeString("(")
		for i, c := range n.Children() {
			if i > 0 {
				e.writeString(", ")
			}
			if err := compileQuoted(e, c); err != nil {
				return err
			}
		}
		if n.Len() == 1 {
			e.writeString(",")
		}
		e.writeString(")")
		return nil
	case ir.Fragment:
		e.writeString(strconv.Quote(n.Text))
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
		return &CompileError{Kind: UnrepresentableAtom, Msg: "quote: unknown node type"}
	}
}

// compileLambda emits `(lambda (params...) body...)` as a Python lambda
// whose body is tupled-and-indexed to fit an expression (spec.md §4.7):
// `lambda PARAMS: (expr1, expr2, ...)[-1]`. The zero-body case compiles
// to an empty-tuple index, `()[-1]`, matching the form literally — an
// intentionally-surfaced runtime error for a lambda with no body, not a
// Go-side validation failure.
func compileLambda(e *emitter, t *ir.Tuple, env *ir.Environment) error {
	children := t.Tail().Children()
	if len(children) == 0 {
		return &CompileError{Kind: InvalidSpecialForm, Msg: "lambda requires a parameter tuple"}
	}
	params, ok := children[0].(*ir.Tuple)
	if !ok {
		return &CompileError{Kind: InvalidSpecialForm, Msg: "lambda's first argument must be a parameter tuple"}
	}
	spec, err := ParseCallConvention(params.Children())
	if err != nil {
		return err
	}
	paramSrc, err := buildLambdaParams(spec, env)
	if err != nil {
		return err
	}
	e.writeString("(lambda")
	if paramSrc != "" {
		e.writeString(" " + paramSrc)
	}
	e.writeString(": (")
	body := children[1:]
	for i, b := range body {
		if i > 0 {
			e.writeString(", ")
		}
		if err := compileExpr(e, b, env); err != nil {
			return err
		}
	}
	if len(body) == 1 {
		e.writeString(",")
	}
	e.writeString(")[-1])")
	return nil
}

func buildLambdaParams(spec CallSpec, env *ir.Environment) (string, error) {
	var parts []string
	for i, p := range spec.Positional {
		name, err := paramName(p)
		if err != nil {
			return "", err
		}
		parts = append(parts, name)
		if i+1 == spec.PosOnly {
			parts = append(parts, "/")
		}
	}
	if spec.Star != nil {
		name, err := paramName(spec.Star)
		if err != nil {
			return "", err
		}
		parts = append(parts, "*"+name)
	}
	for _, kw := range spec.Keyword {
		sub := &emitter{}
		if err := compileExpr(sub, kw.Value, env); err != nil {
			return "", err
		}
		parts = append(parts, kw.Name+"="+sub.String())
	}
	if spec.StarStar != nil {
		name, err := paramName(spec.StarStar)
		if err != nil {
			return "", err
		}
		parts = append(parts, "**"+name)
	}
	return strings.Join(parts, ", "), nil
}

func paramName(n ir.Node) (string, error) {
	frag, ok := n.(ir.Fragment)
	if !ok {
		return "", &CompileError{Kind: InvalidSpecialForm, Msg: "lambda parameter must be a plain name"}
	}
	return frag.Text, nil
}
