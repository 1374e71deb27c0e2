package compiler

import (
	"bytes"

	"github.com/hisspgo/hissp/ir"
)

// emitter is a small indent-tracking buffer wrapper, one write path per
// node kind, in the spirit of the teacher's own recursive
// GCons.ListString()/String() stringifiers (terex/terex.go) generalized
// from a debug string to host source text.
type emitter struct {
	buf    bytes.Buffer
	indent int
}

func (e *emitter) writeIndent() {
	for i := 0; i < e.indent; i++ {
		e.buf.WriteString("  ")
	}
}

func (e *emitter) writeString(s string) {
	e.buf.WriteString(s)
}

func (e *emitter) String() string {
	return e.buf.String()
}

// callArg is one formatted argument slot: a plain positional node, a
// `name=`-prefixed keyword, or a `*`/`**`-prefixed unpacking node.
type callArg struct {
	prefix string
	node   ir.Node
}

func flattenCallArgs(spec CallSpec) []callArg {
	var out []callArg
	for _, p := range spec.Positional {
		out = append(out, callArg{node: p})
	}
	for _, kw := range spec.Keyword {
		out = append(out, callArg{prefix: kw.Name + "=", node: kw.Value})
	}
	if spec.Star != nil {
		out = append(out, callArg{prefix: "*", node: spec.Star})
	}
	if spec.StarStar != nil {
		out = append(out, callArg{prefix: "**", node: spec.StarStar})
	}
	return out
}

// writeCall emits head(args...), one argument per line at two-space
// indent (spec.md §9's adopted output-formatting convention), or a bare
// "head()" when there are no arguments.
func (e *emitter) writeCall(head string, spec CallSpec, env *ir.Environment) error {
	args := flattenCallArgs(spec)
	if len(args) == 0 {
		e.writeString(head + "()")
		return nil
	}
	e.writeString(head + "(")
	e.indent++
	for i, a := range args {
		e.writeString("\n")
		e.writeIndent()
		sub := &emitter{indent: e.indent}
		sub.writeString(a.prefix)
		if err := compileExpr(sub, a.node, env); err != nil {
			return err
		}
		e.writeString(sub.String())
		if i < len(args)-1 {
			e.writeString(",")
		}
	}
	e.indent--
	e.writeString("\n")
	e.writeIndent()
	e.writeString(")")
	return nil
}
