package reader

import (
	"fmt"

	"github.com/hisspgo/hissp"
)

// ParseErrorKind enumerates the reader's structural failure modes
// (spec.md §4.3, §7).
type ParseErrorKind int

const (
	UnbalancedDelimiter ParseErrorKind = iota
	UnexpectedCloseParen
	TrailingTag
	InvalidTagName
)

func (k ParseErrorKind) String() string {
	switch k {
	case UnbalancedDelimiter:
		return "unbalanced delimiter"
	case UnexpectedCloseParen:
		return "unexpected close paren"
	case TrailingTag:
		return "trailing tag with no argument"
	case InvalidTagName:
		return "invalid tag name"
	default:
		return "parse error"
	}
}

// ParseError reports a structural malformation: unmatched parens or a
// tag with no argument to apply to.
type ParseError struct {
	Kind ParseErrorKind
	Msg  string
	At   hissp.Span
	Wrap error
}

func (e *ParseError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("parse error at %s: %s", e.At, e.Msg)
	}
	return fmt.Sprintf("parse error at %s: %s", e.At, e.Kind)
}

func (e *ParseError) Span() hissp.Span { return e.At }
func (e *ParseError) Unwrap() error    { return e.Wrap }

var _ hissp.SourceError = (*ParseError)(nil)

// TagErrorKind enumerates failures specific to applying a tag handler.
type TagErrorKind int

const (
	UnknownTag TagErrorKind = iota
	ReadTimeEvalFailure
	InvalidExtra
)

func (k TagErrorKind) String() string {
	switch k {
	case UnknownTag:
		return "unknown tag"
	case ReadTimeEvalFailure:
		return "read-time evaluation failed"
	case InvalidExtra:
		return "invalid extra argument"
	default:
		return "tag error"
	}
}

// TagError reports a failure while applying a tag's handler: an
// unregistered/unresolvable tag name, a `.#` whose argument raised on
// the host side, or a malformed extras sequence.
type TagError struct {
	Kind TagErrorKind
	Msg  string
	At   hissp.Span
	Wrap error
}

func (e *TagError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("tag error at %s: %s", e.At, e.Msg)
	}
	return fmt.Sprintf("tag error at %s: %s", e.At, e.Kind)
}

func (e *TagError) Span() hissp.Span { return e.At }
func (e *TagError) Unwrap() error    { return e.Wrap }

var _ hissp.SourceError = (*TagError)(nil)
