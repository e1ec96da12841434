package lexer

import (
	"cexpand/internal/diag"
	"cexpand/internal/token"
)

func (lx *Lexer) text(m Mark) string {
	sp := lx.cursor.SpanFrom(m)
	return string(lx.file.Content[sp.Start:sp.End])
}

func (lx *Lexer) scanComment() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '/'

	if lx.cursor.Peek() == '/' {
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
			// A spliced newline continues the line comment.
			if lx.cursor.Peek() == '\\' && lx.eatSplice() {
				continue
			}
			lx.cursor.Bump()
		}
		return token.Token{
			Kind: token.Comment,
			Span: lx.cursor.SpanFrom(start),
			Text: lx.text(start),
		}
	}

	// Block comment. C block comments do not nest.
	lx.cursor.Bump() // '*'
	closed := false
	for !lx.cursor.EOF() {
		if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '*' && b1 == '/' {
			lx.cursor.Bump()
			lx.cursor.Bump()
			closed = true
			break
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	if !closed {
		lx.report(diag.LexUnterminatedBlockComment, sp, "unterminated block comment")
	}
	return token.Token{
		Kind: token.Comment,
		Span: sp,
		Text: lx.text(start),
	}
}

func (lx *Lexer) scanIdent() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() && isIdentCont(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	text := lx.text(start)

	kind := token.Ident
	if token.IsKeyword(text) {
		kind = token.Keyword
	}
	return token.Token{
		Kind: kind,
		Span: lx.cursor.SpanFrom(start),
		Text: text,
		ID:   lx.interner.Intern(text),
	}
}

// scanNumber scans a pp-number: a superset of C integer and floating
// literals, as the preprocessor sees them.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		ch := lx.cursor.Peek()
		if ch == 'e' || ch == 'E' || ch == 'p' || ch == 'P' {
			next := lx.cursor.PeekAt(1)
			if next == '+' || next == '-' {
				lx.cursor.Bump()
				lx.cursor.Bump()
				continue
			}
		}
		if isIdentCont(ch) || ch == '.' {
			lx.cursor.Bump()
			continue
		}
		break
	}
	return token.Token{
		Kind: token.Number,
		Span: lx.cursor.SpanFrom(start),
		Text: lx.text(start),
	}
}

func (lx *Lexer) scanString() token.Token {
	return lx.scanQuoted('"', token.String, diag.LexUnterminatedString, "unterminated string literal")
}

func (lx *Lexer) scanChar() token.Token {
	return lx.scanQuoted('\'', token.CharConst, diag.LexUnterminatedChar, "unterminated character constant")
}

func (lx *Lexer) scanQuoted(quote byte, kind token.Kind, code diag.Code, msg string) token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening quote
	closed := false
	for !lx.cursor.EOF() {
		ch := lx.cursor.Peek()
		if ch == '\n' {
			break
		}
		if ch == '\\' {
			if lx.eatSplice() {
				continue
			}
			lx.cursor.Bump()
			if !lx.cursor.EOF() {
				lx.cursor.Bump()
			}
			continue
		}
		lx.cursor.Bump()
		if ch == quote {
			closed = true
			break
		}
	}
	sp := lx.cursor.SpanFrom(start)
	if !closed {
		lx.report(code, sp, msg)
	}
	return token.Token{
		Kind: kind,
		Span: sp,
		Text: lx.text(start),
	}
}

// Longest-match punctuator table. Three-byte forms first, then two, then
// single bytes.
var punct3 = []string{"<<=", ">>=", "..."}

var punct2 = []string{
	"->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=",
	"&&", "||", "+=", "-=", "*=", "/=", "%=", "&=", "^=", "|=", "##",
}

func (lx *Lexer) scanPunct() token.Token {
	start := lx.cursor.Mark()

	rest := lx.file.Content[lx.cursor.Off:]
	for _, p := range punct3 {
		if hasPrefix(rest, p) {
			lx.cursor.Bump()
			lx.cursor.Bump()
			lx.cursor.Bump()
			return lx.punctToken(start)
		}
	}
	for _, p := range punct2 {
		if hasPrefix(rest, p) {
			lx.cursor.Bump()
			lx.cursor.Bump()
			return lx.punctToken(start)
		}
	}

	ch := lx.cursor.Bump()
	if !isKnownPunct(ch) {
		lx.report(diag.LexUnknownChar, lx.cursor.SpanFrom(start), "unexpected character in source")
	}
	return lx.punctToken(start)
}

func (lx *Lexer) punctToken(start Mark) token.Token {
	text := lx.text(start)
	kind := token.Punct
	switch text {
	case "#":
		kind = token.Hash
	case "##":
		kind = token.HashHash
	case "(":
		kind = token.LParen
	case ")":
		kind = token.RParen
	case ",":
		kind = token.Comma
	}
	return token.Token{
		Kind: kind,
		Span: lx.cursor.SpanFrom(start),
		Text: text,
	}
}

func hasPrefix(b []byte, s string) bool {
	if len(b) < len(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if b[i] != s[i] {
			return false
		}
	}
	return true
}

func isKnownPunct(ch byte) bool {
	switch ch {
	case '[', ']', '(', ')', '{', '}', '.', '&', '*', '+', '-', '~', '!',
		'/', '%', '<', '>', '^', '|', '?', ':', ';', '=', ',', '#':
		return true
	}
	return false
}
