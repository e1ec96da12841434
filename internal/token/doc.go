// Package token defines the lexical token model shared by the raw lexer and
// the preprocessor.
// Invariants:
//   - Token.Text is a copy of the spelling, never a live slice of the buffer.
//   - Token.Span matches Text byte-for-byte in the originating file.
//   - Identifier-shaped tokens (Ident and Keyword) always carry an interned
//     ID; all other kinds carry NoStringID.
//   - Directives are not interpreted at this level: '#' is an ordinary Hash
//     token, and a directive line is whatever follows a Hash with AtBOL set.
//   - Comments are first-class tokens (Kind Comment), not trivia.
package token
