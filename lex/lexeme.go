package lex

import "github.com/hisspgo/hissp"

// Kind classifies a Lexeme, per spec.md §4.2.
type Kind int

const (
	OpenParen Kind = iota
	CloseParen
	Atom
	String
	Comment
	Tag
)

func (k Kind) String() string {
	switch k {
	case OpenParen:
		return "("
	case CloseParen:
		return ")"
	case Atom:
		return "atom"
	case String:
		return "string"
	case Comment:
		return "comment"
	case Tag:
		return "tag"
	default:
		return "?"
	}
}

// StringKind distinguishes the two string lexeme flavors (spec.md §4.2).
type StringKind int

const (
	RawString StringKind = iota
	HashString
)

// TagKind classifies the built-in reader tags, or Extra/Named for
// user-defined and `!`-extra tags (spec.md §4.2).
type TagKind int

const (
	TagQuote TagKind = iota
	TagTemplate
	TagUnquote
	TagSplice
	TagInject
	TagDiscard
	TagGensym
	TagExtra
	TagNamed // "name#", possibly "module..name#"
)

// Lexeme is one token produced by Tokenize: a tagged union over the six
// Kind values, carrying its source Span and, for String/Tag, the kind
// sub-classification spec.md §4.2 requires.
type Lexeme struct {
	Kind       Kind
	Text       string // raw source text (content only, for String: without quotes)
	Span       hissp.Span
	StringKind StringKind
	TagKind    TagKind
	TagName    string // for TagNamed: the bare or qualified tag name, sans trailing '#'
}
