// Package lexer implements a raw C lexer. Raw means: directives are not
// interpreted, macros are not expanded, and comments come back as
// first-class tokens. The preprocessor and the rewriter both work from this
// one token stream, so identifier tokens are interned eagerly.
package lexer

import (
	"cexpand/internal/source"
	"cexpand/internal/token"
)

type Lexer struct {
	file     *source.File
	interner *source.Interner
	cursor   Cursor
	opts     Options

	atBOL    bool
	hasSpace bool
}

func New(file *source.File, interner *source.Interner, opts Options) *Lexer {
	return &Lexer{
		file:     file,
		interner: interner,
		cursor:   NewCursor(file),
		opts:     opts,
		atBOL:    true,
		hasSpace: false,
	}
}

// ScanFile lexes the whole file once and returns the complete raw token
// sequence, terminated by an EOF sentinel.
func ScanFile(file *source.File, interner *source.Interner, opts Options) []token.Token {
	lx := New(file, interner, opts)
	toks := make([]token.Token, 0, len(file.Content)/4)
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

// Next returns the next token. Comments are tokens; whitespace and line
// splices are not. After EOF it always returns EOF.
func (lx *Lexer) Next() token.Token {
	lx.skipWhitespace()

	if lx.cursor.EOF() {
		return lx.finish(token.Token{
			Kind: token.EOF,
			Span: lx.cursor.SpanFrom(lx.cursor.Mark()),
		})
	}

	ch := lx.cursor.Peek()
	switch {
	case ch == '/' && (lx.cursor.PeekAt(1) == '/' || lx.cursor.PeekAt(1) == '*'):
		return lx.finish(lx.scanComment())

	case isIdentStart(ch):
		return lx.finish(lx.scanIdent())

	case isDigit(ch) || (ch == '.' && isDigit(lx.cursor.PeekAt(1))):
		return lx.finish(lx.scanNumber())

	case ch == '"':
		return lx.finish(lx.scanString())

	case ch == '\'':
		return lx.finish(lx.scanChar())

	default:
		return lx.finish(lx.scanPunct())
	}
}

// finish attaches the pending layout flags and resets them for the next
// token. A comment counts as whitespace for the token after it.
func (lx *Lexer) finish(tok token.Token) token.Token {
	tok.AtBOL = lx.atBOL
	tok.HasSpace = lx.hasSpace
	lx.atBOL = false
	if tok.Kind == token.Comment {
		lx.hasSpace = true
	} else {
		lx.hasSpace = false
	}
	return tok
}

// skipWhitespace consumes spaces, tabs, carriage returns, newlines, and
// backslash-newline splices. A real newline marks the next token as at the
// beginning of a line; a spliced newline is plain whitespace.
func (lx *Lexer) skipWhitespace() {
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case ' ', '\t', '\r':
			lx.cursor.Bump()
			lx.hasSpace = true

		case '\n':
			lx.cursor.Bump()
			lx.atBOL = true
			lx.hasSpace = false

		case '\\':
			if !lx.eatSplice() {
				return
			}

		default:
			return
		}
	}
}

// eatSplice consumes a backslash-newline (with optional \r) and reports
// whether one was present.
func (lx *Lexer) eatSplice() bool {
	n := uint32(1)
	if lx.cursor.PeekAt(n) == '\r' {
		n++
	}
	if lx.cursor.PeekAt(n) != '\n' {
		return false
	}
	for i := uint32(0); i <= n; i++ {
		lx.cursor.Bump()
	}
	lx.hasSpace = true
	return true
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentCont(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
