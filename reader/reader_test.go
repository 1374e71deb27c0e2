package reader

import (
	"io"
	"testing"

	"github.com/hisspgo/hissp/host"
	"github.com/hisspgo/hissp/ir"
)

func readAll(t *testing.T, src string, env *ir.Environment, bridge host.Bridge) []ir.Node {
	t.Helper()
	if env == nil {
		env = ir.NewEnvironment("testmod", nil)
	}
	if bridge == nil {
		bridge = host.NullBridge{}
	}
	seq, err := Read(src, env, bridge)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	var nodes []ir.Node
	for {
		n, err := seq.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		nodes = append(nodes, n)
	}
	return nodes
}

func TestReadBasicTuple(t *testing.T) {
	nodes := readAll(t, "(foo bar 42)", nil, nil)
	if len(nodes) != 1 {
		t.Fatalf("got %d forms, want 1", len(nodes))
	}
	tup, ok := nodes[0].(*ir.Tuple)
	if !ok || tup.Len() != 3 {
		t.Fatalf("got %v, want a 3-element tuple", nodes[0])
	}
}

func TestReadAtomClassification(t *testing.T) {
	nodes := readAll(t, `foo 42 True None "a string"`, nil, nil)
	if len(nodes) != 5 {
		t.Fatalf("got %d forms, want 5", len(nodes))
	}
	if _, ok := nodes[0].(ir.Fragment); !ok {
		t.Errorf("nodes[0] = %T, want Fragment", nodes[0])
	}
	if se, ok := nodes[1].(ir.SelfEvaluating); !ok || se.Source != "42" {
		t.Errorf("nodes[1] = %v, want SelfEvaluating 42", nodes[1])
	}
	if se, ok := nodes[2].(ir.SelfEvaluating); !ok || se.Value != true {
		t.Errorf("nodes[2] = %v, want True", nodes[2])
	}
	if _, ok := nodes[4].(ir.StringLiteral); !ok {
		t.Errorf("nodes[4] = %T, want StringLiteral", nodes[4])
	}
}

func TestReadQuoteTag(t *testing.T) {
	nodes := readAll(t, "'foo", nil, nil)
	tup := nodes[0].(*ir.Tuple)
	if tup.Len() != 2 || tup.Head().(ir.Fragment).Text != "quote" {
		t.Fatalf("got %v, want (quote foo)", tup)
	}
}

// unwrapTemplate strips template.Quasiquote's (ir.TemplateHead
// processed) wrapper off a read backtick form.
func unwrapTemplate(t *testing.T, node ir.Node) ir.Node {
	t.Helper()
	tup, ok := node.(*ir.Tuple)
	if !ok || tup.Len() != 2 {
		t.Fatalf("got %v, want a (TemplateHead processed) wrapper", node)
	}
	if f, ok := tup.Children()[0].(ir.Fragment); !ok || f.Text != ir.TemplateHead {
		t.Fatalf("got %v, want ir.TemplateHead wrapper", node)
	}
	return tup.Children()[1]
}

func TestReadTemplateAutoQualifies(t *testing.T) {
	nodes := readAll(t, "`(foo bar)", nil, nil)
	tup := unwrapTemplate(t, nodes[0]).(*ir.Tuple)
	if tup.Children()[0].(ir.Fragment).Text != "testmod..foo" {
		t.Fatalf("got %v, want testmod..foo head", tup)
	}
}

func TestReadTemplateUnquoteEscapes(t *testing.T) {
	nodes := readAll(t, "`(foo ,bar)", nil, nil)
	tup := unwrapTemplate(t, nodes[0]).(*ir.Tuple)
	escape := tup.Children()[1].(*ir.Tuple)
	payload, ok := ir.TemplateEscape(escape)
	if !ok {
		t.Fatalf("got %v, want a template-escape pair", tup.Children()[1])
	}
	if payload.(ir.Fragment).Text != "bar" {
		t.Fatalf("got %v, want unqualified bar", payload)
	}
}

func TestReadTemplateSplice(t *testing.T) {
	nodes := readAll(t, "`(f ,@(a b))", nil, nil)
	tup := unwrapTemplate(t, nodes[0]).(*ir.Tuple)
	if tup.Len() != 3 {
		t.Fatalf("got %d children, want 3: %v", tup.Len(), tup)
	}
}

func TestReadGensymTag(t *testing.T) {
	nodes := readAll(t, "`($#x $#x)", nil, nil)
	tup := unwrapTemplate(t, nodes[0]).(*ir.Tuple)
	a := tup.Children()[0].(ir.Fragment).Text
	b := tup.Children()[1].(ir.Fragment).Text
	if a != b {
		t.Errorf("repeated $#x within one template should resolve to the same name: %q vs %q", a, b)
	}
}

func TestReadHashStringDecodesEscapes(t *testing.T) {
	nodes := readAll(t, `#"a\nb"`, nil, nil)
	got := nodes[0].(ir.StringLiteral).Text
	want := `"a\nb"`
	if got != want {
		t.Fatalf("got %q, want %q (a literal newline re-escaped for Python)", got, want)
	}
}

func TestReadRawStringPairedQuoteEscape(t *testing.T) {
	nodes := readAll(t, `"a\"b"`, nil, nil)
	got := nodes[0].(ir.StringLiteral).Text
	want := `"a\"b"`
	if got != want {
		t.Fatalf("got %q, want %q (one literal quote, not a spurious extra backslash)", got, want)
	}
}

func TestReadRawStringLeavesUnknownEscapeLiteral(t *testing.T) {
	// Raw strings only decode the paired \" and \\ that balance
	// delimiters; \n here stays the two literal characters backslash, n.
	nodes := readAll(t, `"a\nb"`, nil, nil)
	got := nodes[0].(ir.StringLiteral).Text
	want := `"a\\nb"`
	if got != want {
		t.Fatalf("got %q, want %q (backslash-n preserved literally)", got, want)
	}
}

func TestReadHashStringBackslashEscape(t *testing.T) {
	nodes := readAll(t, `#"a\\b"`, nil, nil)
	got := nodes[0].(ir.StringLiteral).Text
	want := `"a\\b"`
	if got != want {
		t.Fatalf("got %q, want %q (one literal backslash)", got, want)
	}
}

func TestReadDiscardTag(t *testing.T) {
	nodes := readAll(t, "(a _#b c)", nil, nil)
	tup := nodes[0].(*ir.Tuple)
	if tup.Len() != 2 {
		t.Fatalf("got %d children, want 2 (a, c), discard dropped: %v", tup.Len(), tup)
	}
}

func TestReadDiscardTopLevel(t *testing.T) {
	nodes := readAll(t, "_#(ignored form) kept", nil, nil)
	if len(nodes) != 1 {
		t.Fatalf("got %d forms, want 1 (discard consumed the first)", len(nodes))
	}
	if nodes[0].(ir.Fragment).Text != "kept" {
		t.Errorf("got %v, want kept", nodes[0])
	}
}

func TestReadNamedTagCall(t *testing.T) {
	env := ir.NewEnvironment("testmod", nil)
	env.Def("double", ir.NewFragment("double"))
	bridge := &stubBridge{}
	nodes := readAll(t, "double#5", env, bridge)
	if len(nodes) != 1 {
		t.Fatalf("got %d forms, want 1", len(nodes))
	}
	if bridge.lastCall != `testmod..double(5)` {
		t.Errorf("bridge saw call %q", bridge.lastCall)
	}
}

func TestReadExtraWithBangPrefix(t *testing.T) {
	env := ir.NewEnvironment("testmod", nil)
	env.Def("add", ir.NewFragment("add"))
	bridge := &stubBridge{}
	nodes := readAll(t, "!1 add#2", env, bridge)
	if len(nodes) != 1 {
		t.Fatalf("got %d forms, want 1", len(nodes))
	}
	if bridge.lastCall != `testmod..add(2, 1)` {
		t.Errorf("bridge saw call %q, want main arg before extras", bridge.lastCall)
	}
}

func TestReadUnknownNamedTagErrors(t *testing.T) {
	_, err := readAll2(t, "nope#1")
	if err == nil {
		t.Fatal("expected a TagError for an unresolvable named tag")
	}
	if _, ok := err.(*TagError); !ok {
		t.Errorf("got %T, want *TagError", err)
	}
}

func TestReadUnbalancedParenErrors(t *testing.T) {
	_, err := readAll2(t, "(foo bar")
	if err == nil {
		t.Fatal("expected a ParseError for an unclosed tuple")
	}
}

func TestReadUnexpectedCloseParenErrors(t *testing.T) {
	_, err := readAll2(t, "foo)")
	if err == nil {
		t.Fatal("expected a ParseError for a stray close paren")
	}
}

func TestReadTrailingTagErrors(t *testing.T) {
	_, err := readAll2(t, "'")
	if err == nil {
		t.Fatal("expected a ParseError (TrailingTag) for a tag with no argument")
	}
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != TrailingTag {
		t.Errorf("got %v, want ParseError{Kind: TrailingTag}", err)
	}
}

// readAll2 reads src to completion or the first error, returning
// whatever was parsed before the failure.
func readAll2(t *testing.T, src string) ([]ir.Node, error) {
	t.Helper()
	env := ir.NewEnvironment("testmod", nil)
	seq, err := Read(src, env, host.NullBridge{})
	if err != nil {
		return nil, err
	}
	var nodes []ir.Node
	for {
		n, err := seq.Next()
		if err == io.EOF {
			return nodes, nil
		}
		if err != nil {
			return nodes, err
		}
		nodes = append(nodes, n)
	}
}

// stubBridge records the source of the last Eval call and returns it
// back as a StringLiteral, so tests can assert on exactly what source
// the reader asked the host to run.
type stubBridge struct {
	host.NullBridge
	lastCall string
}

func (b *stubBridge) Eval(source string, env *ir.Environment) (ir.Node, error) {
	b.lastCall = source
	return ir.StringLiteral{Text: source}, nil
}
