/*
Package lex implements the Lissp tokenizer: spec.md §4.2's lazy sequence
of typed lexemes.

Scanning itself is delegated to github.com/timtadh/lexmachine, the same
regex-driven scanning engine the teacher wires up in
terex/terexlang/scan.go (by way of lr/scanner/lexmach). Lexmachine's
maximal-munch DFA is well suited to the bulk of the grammar — parens,
strings, comments, and the "unbroken run of non-delimiter characters"
that covers atoms, control words, and tag markers alike — but it cannot
express the lookahead needed to tell a builtin tag marker (",@", ".#", a
run of "!") apart from an immediately-following, unseparated atom (as in
"!foo" or ".#bar"). That reclassification is a thin Go-side postprocessing
step (splitRun) over each matched "word" token, in the spirit of how the
teacher's own scanner.LMAdapter wraps raw lexmachine tokens before handing
them to a parser.
*/
package lex

import (
	"fmt"
	"strings"

	"github.com/hisspgo/hissp"
	"github.com/npillmayer/schuko/tracing"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// tracer traces with key 'hissp.lex'.
func tracer() tracing.Trace {
	return tracing.Select("hissp.lex")
}

const (
	idWord = iota
	idHashString
	idRawString
	idComment
	idOpenParen
	idCloseParen
)

var lexerOnce *lexmachine.Lexer

func buildLexer() *lexmachine.Lexer {
	lx := lexmachine.NewLexer()
	lx.Add([]byte(`#\"(\\.|[^\"\\])*\"`), wordAction(idHashString))
	lx.Add([]byte(`\"(\\.|[^\"\\])*\"`), wordAction(idRawString))
	lx.Add([]byte(`;[^\n]*`), wordAction(idComment))
	lx.Add([]byte(`\(`), wordAction(idOpenParen))
	lx.Add([]byte(`\)`), wordAction(idCloseParen))
	lx.Add([]byte(`(\\.|[^ \t\n\r()\";])+`), wordAction(idWord))
	lx.Add([]byte(`( |\t|\n|\r)+`), skip)
	if err := lx.Compile(); err != nil {
		panic(fmt.Errorf("lex: compiling DFA: %w", err))
	}
	return lx
}

func wordAction(id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func lexer() *lexmachine.Lexer {
	if lexerOnce == nil {
		lexerOnce = buildLexer()
	}
	return lexerOnce
}

// Tokenizer produces a lazy sequence of Lexemes from Lissp source, per
// spec.md §4.2. Construct with Tokenize.
type Tokenizer struct {
	src     string
	scanner *lexmachine.Scanner

	pending []Lexeme // lookahead buffer: a split word or a merged comment run
}

// Tokenize validates TAB-in-indentation (a hard LexError per spec.md §9's
// adopted resolution) and returns a Tokenizer positioned at the start of
// src.
func Tokenize(src string) (*Tokenizer, error) {
	if err := checkIndentTabs(src); err != nil {
		return nil, err
	}
	scan, err := lexer().Scanner([]byte(src))
	if err != nil {
		return nil, &LexError{Kind: BadEscape, Msg: err.Error(), Wrap: err}
	}
	return &Tokenizer{src: src, scanner: scan}, nil
}

// checkIndentTabs rejects any TAB appearing in the leading whitespace run
// of a line (spec.md §4.2, §9). This is a textual pre-pass rather than a
// lexmachine rule because DFA-style scanning has no simple way to assert
// "this character is still inside the leading run of its line".
func checkIndentTabs(src string) error {
	col := 0
	lineStart := true
	runeCol := 0
	for i, r := range src {
		if r == '\n' {
			lineStart = true
			col = 0
			runeCol = 0
			continue
		}
		if lineStart && (r == ' ' || r == '\t') {
			if r == '\t' {
				return &LexError{
					Kind: IndentationError,
					Msg:  "TAB character in indentation",
					At:   hissp.Span{From: runeCol, To: runeCol + 1},
				}
			}
			col++
			runeCol++
			continue
		}
		lineStart = false
		_ = i
		runeCol++
	}
	return nil
}

// Next returns the next Lexeme, or an error. Once input is exhausted it
// returns the zero Lexeme, ok == false and a nil error — callers loop
// `for { lx, ok, err := t.Next(); ... }` and stop when ok is false,
// the (Lexeme, ok, error) Go shape of the explicit EOF token the
// teacher's own NextToken() returns.
func (t *Tokenizer) Next() (Lexeme, bool, error) {
	lx, ok, err := t.pull()
	if err != nil || !ok {
		return Lexeme{}, false, err
	}
	return t.maybeMergeComment(lx)
}

// pull returns the next raw Lexeme from the pending buffer or the
// underlying lexmachine scanner, without attempting comment-merging —
// the one primitive both Next and the comment-merge lookahead share.
func (t *Tokenizer) pull() (Lexeme, bool, error) {
	if len(t.pending) > 0 {
		lx := t.pending[0]
		t.pending = t.pending[1:]
		return lx, true, nil
	}
	tok, err, eof := t.scanner.Next()
	if err != nil {
		if ui, ok := err.(*machines.UnconsumedInput); ok {
			return Lexeme{}, false, &LexError{
				Kind: StrayControlChar,
				Msg:  fmt.Sprintf("unconsumed input %q", string(ui.Text)),
				At:   hissp.Span{From: ui.StartColumn, To: ui.StartColumn + 1},
			}
		}
		return Lexeme{}, false, &LexError{Kind: BadEscape, Msg: err.Error(), Wrap: err}
	}
	if eof {
		return Lexeme{}, false, nil
	}
	token := tok.(*lexmachine.Token)
	span := hissp.Span{From: token.StartColumn, To: token.EndColumn}
	text := string(token.Lexeme)
	switch token.Type {
	case idOpenParen:
		return Lexeme{Kind: OpenParen, Text: text, Span: span}, true, nil
	case idCloseParen:
		return Lexeme{Kind: CloseParen, Text: text, Span: span}, true, nil
	case idHashString:
		return Lexeme{Kind: String, Text: unquote(text, 2), Span: span, StringKind: HashString}, true, nil
	case idRawString:
		return Lexeme{Kind: String, Text: unquote(text, 1), Span: span, StringKind: RawString}, true, nil
	case idComment:
		return Lexeme{Kind: Comment, Text: text, Span: span}, true, nil
	case idWord:
		split := splitRun(text, span)
		if len(split) == 0 {
			return t.pull()
		}
		t.pending = append(split[1:], t.pending...)
		return split[0], true, nil
	}
	return Lexeme{}, false, fmt.Errorf("lex: unknown token type %d", token.Type)
}

// unquote strips the leading prefixLen characters (the quote, or "#\"")
// and the trailing quote, leaving the string body untouched — the
// compiler/reader layer, not the tokenizer, interprets escapes (spec.md
// §4.2: Hash-strings "additionally interpret host-style backslash
// escapes"; raw strings require paired backslashes but are not unescaped
// here either).
func unquote(text string, prefixLen int) string {
	if len(text) < prefixLen+1 {
		return text
	}
	return text[prefixLen : len(text)-1]
}

// builtinTags lists the fixed-text reader tags, longest first so a
// greedy prefix scan in splitRun never matches "," before ",@".
var builtinTags = []struct {
	text string
	kind TagKind
}{
	{",@", TagSplice},
	{",", TagUnquote},
	{"`", TagTemplate},
	{"'", TagQuote},
	{".#", TagInject},
	{"_#", TagDiscard},
	{"$#", TagGensym},
}

// splitRun reclassifies one maximal non-delimiter run into one or more
// Lexemes: a prefix of builtin tag markers and/or "!" extras; then, if
// the rest contains a '#', a named tag ("foo#") ending at the first '#',
// with the text after it reclassified the same way; otherwise a plain
// Atom.
func splitRun(text string, span hissp.Span) []Lexeme {
	if text == "" {
		return nil
	}
	if text[0] == '!' {
		n := 0
		for n < len(text) && text[n] == '!' {
			n++
		}
		lx := Lexeme{Kind: Tag, Text: "!", Span: subSpan(span, 0, 1), TagKind: TagExtra}
		rest := splitRun(text[1:], subSpan(span, 1, len(text)))
		return append([]Lexeme{lx}, rest...)
	}
	for _, bt := range builtinTags {
		if strings.HasPrefix(text, bt.text) {
			lx := Lexeme{Kind: Tag, Text: bt.text, Span: subSpan(span, 0, len(bt.text)), TagKind: bt.kind}
			rest := splitRun(text[len(bt.text):], subSpan(span, len(bt.text), len(text)))
			return append([]Lexeme{lx}, rest...)
		}
	}
	if idx := strings.IndexByte(text, '#'); idx >= 0 && text != "#" {
		name := text[:idx]
		lx := Lexeme{Kind: Tag, Text: name + "#", Span: subSpan(span, 0, idx+1), TagKind: TagNamed, TagName: name}
		rest := splitRun(text[idx+1:], subSpan(span, idx+1, len(text)))
		return append([]Lexeme{lx}, rest...)
	}
	return []Lexeme{{Kind: Atom, Text: text, Span: span}}
}

// subSpan narrows span to the rune range [a, b) within the original
// matched text; Span tracks rune positions in the overall source, so the
// offset is simply added.
func subSpan(span hissp.Span, a, b int) hissp.Span {
	return hissp.Span{From: span.From + a, To: span.From + b}
}

// maybeMergeComment implements the comment-collapsing rule of spec.md
// §4.2: consecutive Comment lexemes with an identical leading-semicolon
// count, separated only by whitespace, merge into one. Lookahead is
// bounded: at most one extra scanner pull per merge attempt.
func (t *Tokenizer) maybeMergeComment(lx Lexeme) (Lexeme, bool, error) {
	if lx.Kind != Comment {
		return lx, true, nil
	}
	count := leadingSemicolons(lx.Text)
	for {
		next, ok, err := t.peekRaw()
		if err != nil {
			return Lexeme{}, false, err
		}
		if !ok || next.Kind != Comment || leadingSemicolons(next.Text) != count {
			break
		}
		t.dropPeeked()
		lx.Text += "\n" + next.Text
		lx.Span = lx.Span.Extend(next.Span)
	}
	return lx, true, nil
}

func leadingSemicolons(s string) int {
	n := 0
	for n < len(s) && s[n] == ';' {
		n++
	}
	return n
}

// peekRaw and dropPeeked give maybeMergeComment one token of lookahead
// without recursing back through Next's comment-merging itself. peekRaw
// pulls one raw token and pushes it back onto pending so a later pull
// (by Next, or a further peekRaw) sees it again.
func (t *Tokenizer) peekRaw() (Lexeme, bool, error) {
	lx, ok, err := t.pull()
	if err != nil || !ok {
		return Lexeme{}, ok, err
	}
	t.pending = append([]Lexeme{lx}, t.pending...)
	return lx, true, nil
}

func (t *Tokenizer) dropPeeked() {
	if len(t.pending) > 0 {
		t.pending = t.pending[1:]
	}
}

// Checkpoint is an opaque scanner position, supporting the REPL's
// read-to-balance probe (spec.md §4.2's restartability requirement). No
// caller in this module rewinds a Tokenizer: the core pipeline never
// needs to, and cmd/hisspl re-reads its buffered text from the start.
type Checkpoint struct {
	tc      int
	pending []Lexeme
}

// Save captures the current position.
func (t *Tokenizer) Save() Checkpoint {
	cp := make([]Lexeme, len(t.pending))
	copy(cp, t.pending)
	return Checkpoint{tc: t.scanner.TC, pending: cp}
}

// Restore rewinds to a previously Saved position.
func (t *Tokenizer) Restore(cp Checkpoint) {
	t.scanner.TC = cp.tc
	t.pending = cp.pending
}
