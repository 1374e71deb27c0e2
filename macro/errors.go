package macro

import (
	"fmt"

	"github.com/hisspgo/hissp"
)

// ExpansionError wraps a failure raised from inside a macro body (spec.md
// §4.5, §7): the cause is whatever the host bridge's Eval returned.
type ExpansionError struct {
	Macro string // qualified macro name, for the error message
	At    hissp.Span
	Cause error
}

func (e *ExpansionError) Error() string {
	return fmt.Sprintf("expanding macro %s at %s: %s", e.Macro, e.At, e.Cause)
}

func (e *ExpansionError) Span() hissp.Span { return e.At }
func (e *ExpansionError) Unwrap() error    { return e.Cause }

var _ hissp.SourceError = (*ExpansionError)(nil)
