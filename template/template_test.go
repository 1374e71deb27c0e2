package template

import (
	"testing"

	"github.com/hisspgo/hissp/ir"
)

func frag(s string) ir.Fragment { return ir.NewFragment(s) }

// unwrap strips Quasiquote's (ir.TemplateHead processed) wrapper and
// returns processed, failing the test if the wrapper shape is wrong.
func unwrap(t *testing.T, node ir.Node) ir.Node {
	t.Helper()
	tup, ok := node.(*ir.Tuple)
	if !ok || tup.Len() != 2 {
		t.Fatalf("Quasiquote result = %v, want a 2-element (TemplateHead processed) wrapper", node)
	}
	if f, ok := tup.Children()[0].(ir.Fragment); !ok || f.Text != ir.TemplateHead {
		t.Fatalf("Quasiquote result head = %v, want ir.TemplateHead", tup.Children()[0])
	}
	return tup.Children()[1]
}

// unwrapEscape further unwraps an ir.TemplateEscapeHead pair, returning
// its payload.
func unwrapEscape(t *testing.T, node ir.Node) ir.Node {
	t.Helper()
	tup, ok := node.(*ir.Tuple)
	if !ok {
		t.Fatalf("got %v, want a template-escape pair", node)
	}
	payload, ok := ir.TemplateEscape(tup)
	if !ok {
		t.Fatalf("got %v, want a template-escape pair", node)
	}
	return payload
}

func TestQuasiquoteAutoQualifies(t *testing.T) {
	env := ir.NewEnvironment("mymod", nil)
	got, err := Quasiquote(ir.NewTuple(frag("foo"), frag("bar")), env)
	if err != nil {
		t.Fatal(err)
	}
	tup := unwrap(t, got).(*ir.Tuple)
	if tup.Children()[0].(ir.Fragment).Text != "mymod..foo" {
		t.Errorf("head = %v, want mymod..foo", tup.Children()[0])
	}
	if tup.Children()[1].(ir.Fragment).Text != "mymod..bar" {
		t.Errorf("second = %v, want mymod..bar", tup.Children()[1])
	}
}

func TestQuasiquoteIdempotentOnQualified(t *testing.T) {
	env := ir.NewEnvironment("mymod", nil)
	got, err := Quasiquote(frag("other..thing"), env)
	if err != nil {
		t.Fatal(err)
	}
	if unwrap(t, got).(ir.Fragment).Text != "other..thing" {
		t.Errorf("got %v, want unchanged other..thing", got)
	}
}

func TestQuasiquoteDefersToQzMaybeForMacros(t *testing.T) {
	env := ir.NewEnvironment("mymod", nil)
	env.DefMacro("mymacro", func(args []ir.Node, e *ir.Environment) (ir.Node, error) { return nil, nil })
	got, err := Quasiquote(frag("mymacro"), env)
	if err != nil {
		t.Fatal(err)
	}
	want := "mymod..QzMaybe_.mymacro"
	if unwrap(t, got).(ir.Fragment).Text != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestQuasiquoteUnquoteEscapesQualification(t *testing.T) {
	env := ir.NewEnvironment("mymod", nil)
	got, err := Quasiquote(MarkUnquote(frag("x")), env)
	if err != nil {
		t.Fatal(err)
	}
	payload := unwrapEscape(t, unwrap(t, got))
	if payload.(ir.Fragment).Text != "x" {
		t.Errorf("got %v, want unqualified x", payload)
	}
}

func TestQuasiquoteSpliceFlattens(t *testing.T) {
	env := ir.NewEnvironment("mymod", nil)
	spliced := ir.NewTuple(frag("a"), frag("b"))
	outer := ir.NewTuple(frag("f"), MarkSplice(spliced))
	got, err := Quasiquote(outer, env)
	if err != nil {
		t.Fatal(err)
	}
	tup := unwrap(t, got).(*ir.Tuple)
	if tup.Len() != 3 {
		t.Fatalf("got %d children, want 3 (f, a, b): %v", tup.Len(), tup)
	}
	if tup.Children()[1].(ir.Fragment).Text != "mymod..a" {
		t.Errorf("spliced child 0 = %v", tup.Children()[1])
	}
}

func TestQuasiquoteSpliceOfNonTupleErrors(t *testing.T) {
	env := ir.NewEnvironment("mymod", nil)
	outer := ir.NewTuple(frag("f"), MarkSplice(frag("notatuple")))
	_, err := Quasiquote(outer, env)
	if err == nil {
		t.Fatal("expected a TemplateError for splicing a non-tuple")
	}
}

func TestQuasiquoteGensymIdempotentWithinTemplate(t *testing.T) {
	env := ir.NewEnvironment("mymod", nil)
	outer := ir.NewTuple(MarkGensym("x"), MarkGensym("x"), MarkGensym("y"))
	got, err := Quasiquote(outer, env)
	if err != nil {
		t.Fatal(err)
	}
	tup := unwrap(t, got).(*ir.Tuple)
	a := tup.Children()[0].(ir.Fragment).Text
	b := tup.Children()[1].(ir.Fragment).Text
	c := tup.Children()[2].(ir.Fragment).Text
	if a != b {
		t.Errorf("repeated $#x produced different names: %q vs %q", a, b)
	}
	if a == c {
		t.Errorf("distinct gensym bases produced the same name: %q", a)
	}
}

func TestQuasiquoteGensymDiffersAcrossTemplates(t *testing.T) {
	env := ir.NewEnvironment("mymod", nil)
	first, err := Quasiquote(MarkGensym("x"), env)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Quasiquote(MarkGensym("x"), env)
	if err != nil {
		t.Fatal(err)
	}
	if unwrap(t, first).(ir.Fragment).Text == unwrap(t, second).(ir.Fragment).Text {
		t.Errorf("gensym names matched across separate templates: %v", first)
	}
}

func TestQuasiquoteNestedTupleStaysData(t *testing.T) {
	env := ir.NewEnvironment("mymod", nil)
	outer := ir.NewTuple(frag("a"), ir.NewTuple(frag("b"), frag("c")))
	got, err := Quasiquote(outer, env)
	if err != nil {
		t.Fatal(err)
	}
	tup := unwrap(t, got).(*ir.Tuple)
	inner, ok := tup.Children()[1].(*ir.Tuple)
	if !ok || inner.Len() != 2 {
		t.Fatalf("nested tuple not preserved as data: %v", tup.Children()[1])
	}
	if inner.Children()[0].(ir.Fragment).Text != "mymod..b" {
		t.Errorf("nested child = %v, want mymod..b", inner.Children()[0])
	}
}
