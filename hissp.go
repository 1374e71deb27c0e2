package hissp

import "fmt"

// Span marks a run of input text, from the position of its first rune
// (inclusive) to the position just behind its last rune (exclusive).
// Positions count runes from the start of the compiled unit, not bytes.
type Span struct {
	From, To int
}

// IsNull reports whether s carries no location information.
func (s Span) IsNull() bool {
	return s == Span{}
}

// Extend grows s to also cover other.
func (s Span) Extend(other Span) Span {
	if other.From < s.From {
		s.From = other.From
	}
	if other.To > s.To {
		s.To = other.To
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("%d…%d", s.From, s.To)
}

// SourceError is implemented by lex.LexError, reader.ParseError,
// reader.TagError, macro.ExpansionError and compiler.CompileError. It
// lets callers report a uniform "where did this go wrong" location for
// those stages. template.TemplateError carries no span and does not
// implement it; the template stage has no separate qualification error.
type SourceError interface {
	error
	Span() Span
	Unwrap() error
}
