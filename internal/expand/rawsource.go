package expand

import (
	"cexpand/internal/token"
)

// rawStream is a forward cursor over the raw token list of one file,
// comments included. Past the end it returns the EOF sentinel forever.
type rawStream struct {
	toks []token.Token
	idx  int
}

func newRawStream(toks []token.Token) *rawStream {
	if n := len(toks); n == 0 || toks[n-1].Kind != token.EOF {
		toks = append(toks, token.Token{Kind: token.EOF})
	}
	return &rawStream{toks: toks}
}

// next consumes and returns the next token. Comments are skipped unless
// keepComments is set. The EOF sentinel is never consumed.
func (rs *rawStream) next(keepComments bool) token.Token {
	for {
		t := rs.toks[rs.idx]
		if t.Kind == token.EOF {
			return t
		}
		rs.idx++
		if t.Kind == token.Comment && !keepComments {
			continue
		}
		return t
	}
}

// peekAt returns the token n positions past the cursor without consuming
// anything and without skipping comments.
func (rs *rawStream) peekAt(n int) token.Token {
	if i := rs.idx + n; i < len(rs.toks) {
		return rs.toks[i]
	}
	return rs.toks[len(rs.toks)-1]
}
