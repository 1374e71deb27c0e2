package compiler

import (
	"fmt"

	"github.com/hisspgo/hissp"
)

// ErrorKind enumerates CompileError failure modes (spec.md §7).
type ErrorKind int

const (
	UnpairedKeyword ErrorKind = iota
	UnrepresentableAtom
	InvalidSpecialForm
)

func (k ErrorKind) String() string {
	switch k {
	case UnpairedKeyword:
		return "unpaired keyword"
	case UnrepresentableAtom:
		return "unrepresentable atom"
	case InvalidSpecialForm:
		return "invalid special form"
	default:
		return "compile error"
	}
}

// CompileError reports a failure to emit Python source for a Hissp IR
// node: an unpaired `:`-marker, an atom with neither a literal form nor
// a host-furnished reconstruction expression, or a malformed
// `quote`/`lambda` special form.
type CompileError struct {
	Kind ErrorKind
	Msg  string
	At   hissp.Span
	Wrap error
}

func (e *CompileError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("compile error: %s", e.Msg)
	}
	return fmt.Sprintf("compile error: %s", e.Kind)
}

func (e *CompileError) Span() hissp.Span { return e.At }
func (e *CompileError) Unwrap() error    { return e.Wrap }

var _ hissp.SourceError = (*CompileError)(nil)
