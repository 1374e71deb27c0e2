package lex

import (
	"fmt"

	"github.com/hisspgo/hissp"
)

// ErrorKind enumerates the LexError failure modes from spec.md §7.
type ErrorKind int

const (
	UnclosedString ErrorKind = iota
	StrayControlChar
	IndentationError // TAB found at an indentation position
	BadEscape
)

func (k ErrorKind) String() string {
	switch k {
	case UnclosedString:
		return "unclosed string"
	case StrayControlChar:
		return "stray control character"
	case IndentationError:
		return "tab in indentation"
	case BadEscape:
		return "bad escape"
	default:
		return "lex error"
	}
}

// LexError reports a malformed token: an unclosed string, a stray
// control character, or a TAB found where indentation is measured
// (spec.md §7, §9 — TAB is adopted as a hard rejection unconditionally).
type LexError struct {
	Kind ErrorKind
	Msg  string
	At   hissp.Span
	Wrap error
}

func (e *LexError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("lex error at %s: %s", e.At, e.Msg)
	}
	return fmt.Sprintf("lex error at %s: %s", e.At, e.Kind)
}

func (e *LexError) Span() hissp.Span { return e.At }
func (e *LexError) Unwrap() error    { return e.Wrap }

var _ hissp.SourceError = (*LexError)(nil)
