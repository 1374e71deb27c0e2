package reader

import (
	"regexp"
	"strings"

	"github.com/hisspgo/hissp/ir"
	"github.com/hisspgo/hissp/munge"
)

// numberRe matches the bare digit-led numeric literal forms spec.md
// §4.3 step 4 describes: decimal int/float with optional exponent,
// hex/octal/binary integers, and an optional trailing 'j' for a
// complex literal. It is deliberately permissive — invalid-but-matching
// text is passed to the host compiler verbatim and would surface as a
// Python SyntaxError there, not here.
var numberRe = regexp.MustCompile(
	`^[+-]?(0[xX][0-9a-fA-F_]+|0[oO][0-7_]+|0[bB][01_]+|(\d[\d_]*)?\.\d[\d_]*([eE][+-]?\d[\d_]*)?|\d[\d_]*\.?([eE][+-]?\d[\d_]*)?)[jJ]?$`,
)

// classifyAtom implements spec.md §4.3 step 4: numbers and the bare
// keyword literals become SelfEvaluating, a bracket/brace run becomes a
// compile-time collection literal (passed through verbatim — the host
// compiler is the literal's own parser, spec.md §4.3), and anything else
// is munged and wrapped as a Fragment.
func (rd *Reader) classifyAtom(text string) ir.Node {
	switch text {
	case "True":
		return ir.SelfEvaluating{Value: true, Source: "True"}
	case "False":
		return ir.SelfEvaluating{Value: false, Source: "False"}
	case "None":
		return ir.SelfEvaluating{Value: nil, Source: "None"}
	case "...":
		return ir.Ellipsis
	}
	if numberRe.MatchString(text) {
		return ir.SelfEvaluating{Value: text, Source: text}
	}
	if isCollectionLiteral(text) {
		return ir.SelfEvaluating{Value: text, Source: text}
	}
	return ir.NewFragment(munge.Munge(unescapeAtom(text)))
}

func isCollectionLiteral(text string) bool {
	if len(text) < 2 {
		return false
	}
	return (text[0] == '[' && text[len(text)-1] == ']') ||
		(text[0] == '{' && text[len(text)-1] == '}')
}

// unescapeAtom strips the backslash from a `\X` escape pair — the
// tokenizer's word regex lets a backslash protect the following
// character from acting as a delimiter (spec.md §4.2), but the
// backslash itself is never part of the munged identifier.
func unescapeAtom(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
