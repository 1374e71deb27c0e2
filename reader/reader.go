/*
Package reader implements the Hissp reader (spec.md §4.3): a
tag-dispatching S-expression parser that turns a Lexeme stream into a
lazy sequence of ir.Node values.

Tuples under construction accumulate their children in a
github.com/emirpasic/gods arraylist (the same "growable ordered list of
in-progress items" shape the teacher's lr/tables.go uses for LR state
construction); `!`-extras queue the same way (see drainExtras in
tags.go).
*/
package reader

import (
	"fmt"
	"io"
	"strings"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/npillmayer/schuko/tracing"

	"github.com/hisspgo/hissp/host"
	"github.com/hisspgo/hissp/ir"
	"github.com/hisspgo/hissp/lex"
)

// tracer traces with key 'hissp.reader'.
func tracer() tracing.Trace {
	return tracing.Select("hissp.reader")
}

// Reader holds the state threaded through one parse of a source string:
// the tokenizer, the compilation namespace, the host bridge `.#` and
// named tags call into, and the pending-extras queue (spec.md §4.3).
type Reader struct {
	tz      *lex.Tokenizer
	env     *ir.Environment
	bridge  host.Bridge
	pending *arraylist.List
}

// ReadSeq is the lazy sequence of parsed forms Read returns. Call Next
// until it returns io.EOF.
type ReadSeq struct {
	rd *Reader
}

// Read tokenizes src and returns a ReadSeq positioned at its start.
// bridge backs `.#` and named tags; pass
// host.NullBridge{} for programs that need none of those (spec.md §9
// Open Question 2, "pure mode").
func Read(src string, env *ir.Environment, bridge host.Bridge) (*ReadSeq, error) {
	tz, err := lex.Tokenize(src)
	if err != nil {
		return nil, err
	}
	if bridge == nil {
		bridge = host.NullBridge{}
	}
	return &ReadSeq{rd: &Reader{tz: tz, env: env, bridge: bridge, pending: arraylist.New()}}, nil
}

// Next returns the next top-level Hissp value, or io.EOF once input is
// exhausted. A form entirely discarded by `_#` is transparently skipped.
func (s *ReadSeq) Next() (ir.Node, error) {
	for {
		node, err := s.rd.readTop()
		if err != nil {
			return nil, err
		}
		if node == nil {
			continue
		}
		tracer().Debugf("reader.Read: %s", node)
		return node, nil
	}
}

func (rd *Reader) readTop() (ir.Node, error) {
	lx, ok, err := rd.tz.Next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, io.EOF
	}
	return rd.readForm(lx)
}

// readNextForm pulls one more lexeme and parses it — the "next parsed
// object" every tag handler and the tuple builder pull via, distinct
// from readTop only in that end-of-input here is UnbalancedDelimiter,
// not a clean end of the sequence.
func (rd *Reader) readNextForm() (ir.Node, error) {
	lx, ok, err := rd.tz.Next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ParseError{Kind: UnbalancedDelimiter, Msg: "unexpected end of input"}
	}
	return rd.readForm(lx)
}

func (rd *Reader) readForm(lx lex.Lexeme) (ir.Node, error) {
	switch lx.Kind {
	case lex.OpenParen:
		return rd.readTuple()
	case lex.CloseParen:
		return nil, &ParseError{Kind: UnexpectedCloseParen, At: lx.Span}
	case lex.String:
		return ir.StringLiteral{Text: stringSource(lx)}, nil
	case lex.Atom:
		return rd.classifyAtom(lx.Text), nil
	case lex.Tag:
		return rd.readTag(lx)
	default:
		return nil, fmt.Errorf("reader: unknown lexeme kind %v", lx.Kind)
	}
}

// readTuple implements spec.md §4.3 step 2: push an accumulator, read
// values until the matching CloseParen, package as a Tuple. A value
// that reads as nil (an `_#`-discarded form) is dropped from the
// accumulator, never from the surrounding syntax.
func (rd *Reader) readTuple() (ir.Node, error) {
	acc := arraylist.New()
	for {
		lx, ok, err := rd.tz.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &ParseError{Kind: UnbalancedDelimiter, Msg: "unclosed ("}
		}
		if lx.Kind == lex.CloseParen {
			break
		}
		node, err := rd.readForm(lx)
		if err != nil {
			return nil, err
		}
		if node == nil {
			continue
		}
		acc.Add(node)
	}
	return ir.NewTuple(toNodes(acc)...), nil
}

func toNodes(acc *arraylist.List) []ir.Node {
	vals := acc.Values()
	nodes := make([]ir.Node, len(vals))
	for i, v := range vals {
		nodes[i] = v.(ir.Node)
	}
	return nodes
}

// stringSource renders a lexed string body as host-language source for
// a string with identical content (spec.md §4.3 step 5). The tokenizer
// hands back the body with its backslash escapes still literal text
// (lex.unquote only strips the delimiters), so the two string kinds are
// decoded differently before being re-emitted as Python source: a
// hash-string interprets the full host-style escape set (spec.md §4.2,
// "hash-strings additionally interpret host-style backslash escapes");
// a raw string decodes only the paired `\"`/`\\` that made it through
// the lexer's delimiter-balancing ("paired internal backslashes are
// required even in raw mode"), leaving every other backslash sequence
// untouched.
func stringSource(lx lex.Lexeme) string {
	return pyStringLiteral(decodeStringBody(lx.Text, lx.StringKind))
}

func decodeStringBody(text string, kind lex.StringKind) string {
	var b strings.Builder
	rs := []rune(text)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r != '\\' || i+1 >= len(rs) {
			b.WriteRune(r)
			continue
		}
		next := rs[i+1]
		if kind == lex.HashString {
			if decoded, ok := hashEscape(next); ok {
				b.WriteRune(decoded)
				i++
				continue
			}
		}
		if next == '"' || next == '\\' {
			b.WriteRune(next)
			i++
			continue
		}
		// Not a recognized escape: keep the backslash itself; next is
		// written plain on the following loop iteration.
		b.WriteRune(r)
	}
	return b.String()
}

// hashEscape decodes one host-style backslash escape for a hash-string
// (spec.md §4.2). Unrecognized characters are reported absent so the
// caller leaves the backslash in place rather than silently dropping it.
func hashEscape(r rune) (rune, bool) {
	switch r {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case 'a':
		return '\a', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'v':
		return '\v', true
	case '0':
		return 0, true
	case '"', '\\':
		return r, true
	default:
		return 0, false
	}
}

// pyStringLiteral renders already-decoded content as a Python
// double-quoted string literal, re-escaping whatever needs it.
func pyStringLiteral(s string) string {
	var b []byte
	b = append(b, '"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b = append(b, '\\', byte(r))
		case '\n':
			b = append(b, '\\', 'n')
		case '\r':
			b = append(b, '\\', 'r')
		case '\t':
			b = append(b, '\\', 't')
		default:
			b = append(b, []byte(string(r))...)
		}
	}
	b = append(b, '"')
	return string(b)
}
