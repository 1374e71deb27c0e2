/*
Package ir implements the Hissp intermediate representation: the tagged
union of tuples and atoms that the reader produces, the macroexpander
rewrites, and the compiler consumes.

Node is deliberately small and closed: a Tuple (an ordered, immutable
sequence of children) or one of four atom kinds (Fragment, StringLiteral,
SelfEvaluating, Foreign). Nothing outside this package adds a fifth kind —
the compiler switches exhaustively over these five.
*/
package ir

import (
	"bytes"
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'hissp.ir'.
func tracer() tracing.Trace {
	return tracing.Select("hissp.ir")
}

// Node is any Hissp IR value: a Tuple or one of the four atom kinds.
// A Node carries no source span; positions live only on lexemes and on
// the errors raised while reading.
type Node interface {
	fmt.Stringer
	isNode()
}

// Atom is satisfied by every Node that is not a Tuple.
type Atom interface {
	Node
	isAtom()
}

// Tuple represents a form: an invocation, a special form, or quoted data.
// Children is never mutated after NewTuple returns.
type Tuple struct {
	children []Node
}

// NewTuple packages children into an immutable Tuple. The slice passed in
// is copied so later mutation by the caller cannot violate immutability.
func NewTuple(children ...Node) *Tuple {
	cp := make([]Node, len(children))
	copy(cp, children)
	return &Tuple{children: cp}
}

func (*Tuple) isNode() {}

// Children returns the tuple's elements. The returned slice must not be
// mutated by the caller.
func (t *Tuple) Children() []Node {
	if t == nil {
		return nil
	}
	return t.children
}

// Len returns the number of children, 0 for a nil Tuple.
func (t *Tuple) Len() int {
	if t == nil {
		return 0
	}
	return len(t.children)
}

// Head returns the first child, or nil if the tuple is empty.
func (t *Tuple) Head() Node {
	if t.Len() == 0 {
		return nil
	}
	return t.children[0]
}

// Tail returns every child but the first, as a new Tuple.
func (t *Tuple) Tail() *Tuple {
	if t.Len() == 0 {
		return NewTuple()
	}
	return NewTuple(t.children[1:]...)
}

// WithChildren returns a new Tuple with children replaced; used by the
// macroexpander and template engine, which never mutate a Tuple in place.
func (t *Tuple) WithChildren(children []Node) *Tuple {
	return NewTuple(children...)
}

func (t *Tuple) String() string {
	var b bytes.Buffer
	b.WriteByte('(')
	for i, c := range t.Children() {
		if i > 0 {
			b.WriteByte(' ')
		}
		if c == nil {
			b.WriteString("()")
			continue
		}
		b.WriteString(c.String())
	}
	b.WriteByte(')')
	return b.String()
}

// FragmentKind distinguishes the three flavors of Fragment text described
// in spec.md §3.
type FragmentKind int

const (
	// FragSymbol is a plain identifier/attribute chain.
	FragSymbol FragmentKind = iota
	// FragControlWord is a Fragment whose text starts with ':'.
	FragControlWord
	// FragModuleHandle is a Fragment ending in '.' or containing '..'.
	FragModuleHandle
)

func (k FragmentKind) String() string {
	switch k {
	case FragControlWord:
		return "control-word"
	case FragModuleHandle:
		return "module-handle"
	default:
		return "symbol"
	}
}

// Fragment is an atom whose text is host-language code: an identifier,
// attribute chain, control word, or module handle. Every Fragment's Text
// has already been through munge.Munge by the time it is constructed
// (invariant 2, spec.md §3).
type Fragment struct {
	Text string
	Kind FragmentKind
}

func (Fragment) isNode() {}
func (Fragment) isAtom() {}

func (f Fragment) String() string { return f.Text }

// NewFragment classifies text and returns the Fragment. Callers that
// already know the text is munged (the reader, always) pass it straight
// through; this constructor only classifies, it does not munge.
func NewFragment(munged string) Fragment {
	kind := FragSymbol
	switch {
	case len(munged) > 0 && munged[0] == ':':
		kind = FragControlWord
	case isModuleHandle(munged):
		kind = FragModuleHandle
	}
	return Fragment{Text: munged, Kind: kind}
}

func isModuleHandle(text string) bool {
	if text == "" {
		return false
	}
	if text[len(text)-1] == '.' {
		return true
	}
	for i := 0; i+1 < len(text); i++ {
		if text[i] == '.' && text[i+1] == '.' {
			return true
		}
	}
	return false
}

// IsQualified reports whether a Fragment's text already carries a module
// prefix, i.e. template auto-qualification would be a no-op (invariant 5,
// spec.md §3).
func (f Fragment) IsQualified() bool {
	return f.Kind == FragModuleHandle
}

// StringLiteral is a string whose text is already a complete Python
// string expression, including quotes and escapes. It is distinguished
// from Fragment purely by provenance: the reader built it from `"…"` or
// `#"…"` syntax.
type StringLiteral struct {
	Text string
}

func (StringLiteral) isNode() {}
func (StringLiteral) isAtom() {}

func (s StringLiteral) String() string { return s.Text }

// SelfEvaluating wraps a compile-time constant: numbers, bool, nil,
// Ellipsis sentinel, byte sequences, or a compile-time collection literal
// whose Source already holds its canonical Python spelling.
type SelfEvaluating struct {
	Value  any
	Source string // canonical Python literal text, when known
}

func (SelfEvaluating) isNode() {}
func (SelfEvaluating) isAtom() {}

func (s SelfEvaluating) String() string {
	if s.Source != "" {
		return s.Source
	}
	return fmt.Sprintf("%v", s.Value)
}

// Foreign wraps a host-level object injected at read time via `.#`. It
// carries whatever repr text the host bridge produced for debugging, and
// separately, when the host bridge could produce one, a PySource
// expression that reconstructs the value on the Python side (used by
// compiler.emitOpaque instead of any value re-derived on the Go side).
type Foreign struct {
	Value    any
	Repr     string
	PySource string
}

func (Foreign) isNode() {}
func (Foreign) isAtom() {}

func (f Foreign) String() string {
	if f.Repr != "" {
		return f.Repr
	}
	return fmt.Sprintf("#<foreign %v>", f.Value)
}

// Ellipsis is the sentinel SelfEvaluating value for Python's `...`.
var Ellipsis = SelfEvaluating{Value: ellipsisType{}, Source: "..."}

type ellipsisType struct{}

func (ellipsisType) String() string { return "Ellipsis" }
