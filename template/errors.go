package template

import "fmt"

// TemplateError reports a malformed quasiquote: a splice marker in a
// non-tuple-child position, or a `,@` target that is not a literal
// tuple at template-construction time (see the scope note in
// DESIGN.md's template entry).
type TemplateError struct {
	Msg string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template error: %s", e.Msg)
}
