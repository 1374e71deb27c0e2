package reader

import (
	"strings"

	"github.com/hisspgo/hissp/compiler"
	"github.com/hisspgo/hissp/ir"
	"github.com/hisspgo/hissp/lex"
	"github.com/hisspgo/hissp/munge"
	"github.com/hisspgo/hissp/template"
)

// readTag dispatches a Tag lexeme to its handler (spec.md §4.4). The
// seven built-in tags are fixed text the tokenizer already recognized;
// TagExtra and TagNamed are the two open-ended cases.
func (rd *Reader) readTag(lx lex.Lexeme) (ir.Node, error) {
	switch lx.TagKind {
	case lex.TagQuote:
		arg, err := rd.readTagArg(lx)
		if err != nil {
			return nil, err
		}
		return ir.NewTuple(ir.NewFragment("quote"), arg), nil

	case lex.TagTemplate:
		arg, err := rd.readTagArg(lx)
		if err != nil {
			return nil, err
		}
		return template.Quasiquote(arg, rd.env)

	case lex.TagUnquote:
		arg, err := rd.readTagArg(lx)
		if err != nil {
			return nil, err
		}
		return template.MarkUnquote(arg), nil

	case lex.TagSplice:
		arg, err := rd.readTagArg(lx)
		if err != nil {
			return nil, err
		}
		return template.MarkSplice(arg), nil

	case lex.TagGensym:
		arg, err := rd.readTagArg(lx)
		if err != nil {
			return nil, err
		}
		frag, ok := arg.(ir.Fragment)
		if !ok {
			return nil, &TagError{Kind: InvalidExtra, At: lx.Span, Msg: "$# requires a bare symbol, got " + arg.String()}
		}
		return template.MarkGensym(frag.Text), nil

	case lex.TagDiscard:
		if _, err := rd.readTagArg(lx); err != nil {
			return nil, err
		}
		return nil, nil

	case lex.TagInject:
		arg, err := rd.readTagArg(lx)
		if err != nil {
			return nil, err
		}
		return rd.evalReadTime(lx, arg)

	case lex.TagExtra:
		val, err := rd.readTagArg(lx)
		if err != nil {
			return nil, err
		}
		rd.pending.Add(val)
		return rd.readNextForm()

	case lex.TagNamed:
		return rd.applyNamedTag(lx)

	default:
		return nil, &ParseError{Kind: InvalidTagName, At: lx.Span, Msg: "unrecognized tag"}
	}
}

// readTagArg reads the single value a tag applies to, translating a
// bare end-of-input into the tag-specific TrailingTag error (spec.md
// §7) rather than the generic UnbalancedDelimiter readNextForm reports
// for an unclosed tuple.
func (rd *Reader) readTagArg(lx lex.Lexeme) (ir.Node, error) {
	next, ok, err := rd.tz.Next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ParseError{Kind: TrailingTag, At: lx.Span, Msg: "tag " + lx.Text + " has no argument"}
	}
	return rd.readForm(next)
}

// drainExtras removes and returns every value `!`-extras queued since
// the last drain, oldest first.
func (rd *Reader) drainExtras() []ir.Node {
	vals := rd.pending.Values()
	rd.pending.Clear()
	nodes := make([]ir.Node, len(vals))
	for i, v := range vals {
		nodes[i] = v.(ir.Node)
	}
	return nodes
}

// evalReadTime implements `.#` (spec.md §4.4): compile arg to Python and
// evaluate it immediately via the host bridge, returning whatever Node
// the bridge decoded the result into, unchanged.
func (rd *Reader) evalReadTime(lx lex.Lexeme, arg ir.Node) (ir.Node, error) {
	src, err := compiler.Compile(arg, rd.env)
	if err != nil {
		return nil, &TagError{Kind: ReadTimeEvalFailure, At: lx.Span, Msg: err.Error(), Wrap: err}
	}
	result, err := rd.bridge.Eval(src, rd.env)
	if err != nil {
		return nil, &TagError{Kind: ReadTimeEvalFailure, At: lx.Span, Msg: err.Error(), Wrap: err}
	}
	return result, nil
}

// applyNamedTag implements a user-defined `name#` tag (spec.md §4.4):
// resolve name against the current namespace (see resolveTagCallable;
// the host bridge is not consulted), read its one required argument,
// pass it first and any queued `!`-extras after it as further positional
// arguments in source order, and evaluate the resulting call read-time.
func (rd *Reader) applyNamedTag(lx lex.Lexeme) (ir.Node, error) {
	arg, err := rd.readTagArg(lx)
	if err != nil {
		return nil, err
	}
	extras := rd.drainExtras()

	callableSrc, err := rd.resolveTagCallable(lx)
	if err != nil {
		return nil, err
	}

	argSrcs := make([]string, 0, len(extras)+1)
	mainSrc, err := compiler.Compile(ir.NewTuple(ir.NewFragment("quote"), arg), rd.env)
	if err != nil {
		return nil, &TagError{Kind: ReadTimeEvalFailure, At: lx.Span, Msg: err.Error(), Wrap: err}
	}
	argSrcs = append(argSrcs, mainSrc)
	for _, ex := range extras {
		s, err := compiler.Compile(ir.NewTuple(ir.NewFragment("quote"), ex), rd.env)
		if err != nil {
			return nil, &TagError{Kind: ReadTimeEvalFailure, At: lx.Span, Msg: err.Error(), Wrap: err}
		}
		argSrcs = append(argSrcs, s)
	}

	callSrc := callableSrc + "(" + strings.Join(argSrcs, ", ") + ")"
	result, err := rd.bridge.Eval(callSrc, rd.env)
	if err != nil {
		return nil, &TagError{Kind: ReadTimeEvalFailure, At: lx.Span, Msg: err.Error(), Wrap: err}
	}
	return result, nil
}

// resolveTagCallable finds source text for a named tag's callable: a
// module-qualified name is used verbatim, a name already bound (as a
// value or macro) in the current environment is qualified against it,
// and anything else is UnknownTag (spec.md §7).
func (rd *Reader) resolveTagCallable(lx lex.Lexeme) (string, error) {
	munged := munge.Munge(lx.TagName)
	if strings.Contains(munged, "..") {
		return munged, nil
	}
	if rd.env != nil {
		if rd.env.FindSymbol(munged, true) != nil || rd.env.FindMacro(munged) != nil {
			return rd.env.Name + ".." + munged, nil
		}
	}
	return "", &TagError{Kind: UnknownTag, At: lx.Span, Msg: "unknown tag: " + lx.TagName}
}
