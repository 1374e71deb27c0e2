package compiler

import (
	"strconv"

	"github.com/hisspgo/hissp/ir"
)

// compileTemplate renders the result of a backtick tag's quasiquote pass:
// t is `(ir.TemplateHead processed)` (spec.md §4.6). Everywhere inside
// processed a plain Tuple is the "make-tuple primitive" spec.md describes
// — emitted as a literal Python tuple, exactly the way compileQuoted
// renders `(quote ...)` — except at an ir.TemplateEscapeHead pair, the
// one place an unquote left ordinary code to compile and evaluate in
// place instead.
func compileTemplate(e *emitter, t *ir.Tuple, env *ir.Environment) error {
	args := t.Tail().Children()
	if len(args) != 1 {
		return &CompileError{Kind: InvalidSpecialForm, Msg: "template result takes exactly one argument"}
	}
	return compileTemplateNode(e, args[0], env)
}

func compileTemplateNode(e *emitter, node ir.Node, env *ir.Environment) error {
	if t, ok := node.(*ir.Tuple); ok {
		if escaped, ok := ir.TemplateEscape(t); ok {
			return compileExpr(e, escaped, env)
		}
		e.writeString("(")
		for i, c := range t.Children() {
			if i > 0 {
				e.writeString(", ")
			}
			if err := compileTemplateNode(e, c, env); err != nil {
				return err
			}
		}
		if t.Len() == 1 {
			e.writeString(",")
		}
		e.writeString(")")
		return nil
	}
	switch n := node.(type) {
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
		return &CompileError{Kind: UnrepresentableAtom, Msg: "template: unknown node type"}
	}
}
