package token

import (
	"cexpand/internal/source"
)

// Token represents a single source token with its location and layout flags.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
	// ID is the interned identifier identity, set for Ident and Keyword.
	ID source.StringID
	// HasSpace reports whitespace (or a comment) immediately before the token.
	HasSpace bool
	// AtBOL reports that the token is the first on its line. A spliced
	// newline (backslash-newline) does not start a new line.
	AtBOL bool
}

// IsIdentLike reports whether the token carries an identifier identity.
func (t Token) IsIdentLike() bool { return t.ID != source.NoStringID }

// IsEOF reports whether the token is the end-of-file sentinel.
func (t Token) IsEOF() bool { return t.Kind == EOF }

// Is reports whether the token has the given spelling.
func (t Token) Is(text string) bool { return t.Text == text }

// Same reports whether two tokens denote the same lexical token: same kind
// with the same identity, or any two identifier-shaped tokens naming the
// same interned string. The latter lets a keyword and a raw-lexed
// identifier with the same spelling compare equal.
func Same(a, b Token) bool {
	if a.Kind == b.Kind && a.ID == b.ID {
		return true
	}
	return a.ID != source.NoStringID && a.ID == b.ID
}
