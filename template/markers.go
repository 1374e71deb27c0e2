package template

import "github.com/hisspgo/hissp/ir"

// Unquote, splice, and gensym targets are represented, between the point
// the reader parses them and the point Quasiquote consumes them, as a
// 2-child internal Tuple: a reserved control-word head naming the
// marker kind, and the payload. ir's Node union is deliberately closed
// (no sixth kind for "marker"), so this protocol piggybacks on Tuple/
// Fragment instead of widening ir — it never escapes this package and
// template.reader's callers.
const (
	unquoteHead = ":%unquote"
	spliceHead  = ":%splice"
	gensymHead  = ":%gensym"
)

// MarkUnquote wraps a raw, not-yet-template-processed node read after a
// `,` tag.
func MarkUnquote(node ir.Node) ir.Node {
	return ir.NewTuple(ir.NewFragment(unquoteHead), node)
}

// MarkSplice wraps a raw node read after a `,@` tag.
func MarkSplice(node ir.Node) ir.Node {
	return ir.NewTuple(ir.NewFragment(spliceHead), node)
}

// MarkGensym wraps a `$#base` symbol's base name.
func MarkGensym(base string) ir.Node {
	return ir.NewTuple(ir.NewFragment(gensymHead), ir.NewFragment(base))
}

func asMarker(node ir.Node, head string) (ir.Node, bool) {
	t, ok := node.(*ir.Tuple)
	if !ok || t.Len() != 2 {
		return nil, false
	}
	f, ok := t.Head().(ir.Fragment)
	if !ok || f.Text != head {
		return nil, false
	}
	return t.Children()[1], true
}

func isUnquote(node ir.Node) (ir.Node, bool) { return asMarker(node, unquoteHead) }
func isSplice(node ir.Node) (ir.Node, bool)  { return asMarker(node, spliceHead) }

func isGensym(node ir.Node) (string, bool) {
	payload, ok := asMarker(node, gensymHead)
	if !ok {
		return "", false
	}
	f, ok := payload.(ir.Fragment)
	if !ok {
		return "", false
	}
	return f.Text, true
}
