package compiler

import (
	"github.com/hisspgo/hissp/ir"
)

// KeywordArg is one name/value pair in the `:`-keyword section of a call
// or lambda parameter list.
type KeywordArg struct {
	Name  string
	Value ir.Node
}

// CallSpec is the parsed shape of an argument list under the call
// convention (spec.md §4.7): positional arguments, then `:`-introduced
// keyword pairs, then an optional `:*` star-args node and `:**`
// star-kwargs node. PosOnly records how many of Positional appeared
// before a `:/` marker (lambda parameter lists only; 0 for a plain
// call, where `:/` never appears).
type CallSpec struct {
	Positional []ir.Node
	Keyword    []KeywordArg
	Star       ir.Node
	StarStar   ir.Node
	PosOnly    int
}

// ParseCallConvention implements the shared `:`/`:?`/`:*`/`:**`/`:/`
// pairing algorithm used by both call-argument lists (§4.7) and lambda
// parameter lists (§4.7), and by extras carrying their own sub-arguments
// (§4.4). A marker missing its required following value is
// CompileError{Kind: UnpairedKeyword}.
func ParseCallConvention(args []ir.Node) (CallSpec, error) {
	var spec CallSpec
	keywordSection := false
	i := 0
	next := func() (ir.Node, bool) {
		if i >= len(args) {
			return nil, false
		}
		n := args[i]
		i++
		return n, true
	}
	for i < len(args) {
		node := args[i]
		if word, ok := controlWord(node); ok {
			switch word {
			case ":":
				keywordSection = true
				i++
				continue
			case ":?":
				i++
				val, ok := next()
				if !ok {
					return spec, unpairedKeyword(node)
				}
				spec.Positional = append(spec.Positional, val)
				continue
			case ":*":
				i++
				val, ok := next()
				if !ok {
					return spec, unpairedKeyword(node)
				}
				spec.Star = val
				continue
			case ":**":
				i++
				val, ok := next()
				if !ok {
					return spec, unpairedKeyword(node)
				}
				spec.StarStar = val
				continue
			case ":/":
				spec.PosOnly = len(spec.Positional)
				i++
				continue
			}
		}
		if keywordSection {
			i++
			name, ok := keywordName(node)
			if !ok {
				return spec, unpairedKeyword(node)
			}
			val, ok := next()
			if !ok {
				return spec, unpairedKeyword(node)
			}
			spec.Keyword = append(spec.Keyword, KeywordArg{Name: name, Value: val})
			continue
		}
		spec.Positional = append(spec.Positional, node)
		i++
	}
	return spec, nil
}

func controlWord(n ir.Node) (string, bool) {
	frag, ok := n.(ir.Fragment)
	if !ok || frag.Kind != ir.FragControlWord {
		return "", false
	}
	return frag.Text, true
}

func keywordName(n ir.Node) (string, bool) {
	frag, ok := n.(ir.Fragment)
	if !ok {
		return "", false
	}
	if frag.Kind == ir.FragControlWord {
		return frag.Text[1:], true
	}
	return frag.Text, true
}

func unpairedKeyword(n ir.Node) error {
	return &CompileError{Kind: UnpairedKeyword, Msg: "control word with no paired value: " + n.String()}
}
