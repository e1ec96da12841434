package preproc

import (
	"strings"

	"cexpand/internal/diag"
	"cexpand/internal/lexer"
	"cexpand/internal/source"
	"cexpand/internal/token"
)

type macro struct {
	name    source.StringID
	objLike bool
	params  []source.StringID
	body    []token.Token // definition tokens, comments and EOF stripped
	defSpan source.Span
}

type macroArg struct {
	raw      []ppToken // as read at the invocation, unexpanded
	expanded []ppToken // fully macro-expanded, for ordinary substitution
}

func (pp *Preprocessor) lookupMacro(t ppToken) *macro {
	if t.ID == source.NoStringID {
		return nil
	}
	m := pp.macros[t.ID]
	if m == nil || t.hs.contains(t.ID) {
		return nil
	}
	return m
}

// tryExpand expands the macro invocation starting at cur, which the top
// frame's index still points at. On success the invocation tokens are
// consumed and the expansion is pushed as a new frame.
func (pp *Preprocessor) tryExpand(cur ppToken) bool {
	m := pp.lookupMacro(cur)
	if m == nil {
		return false
	}

	fr := pp.top()

	if m.objLike {
		fr.idx++
		pp.pushExpansion(pp.substitute(m, cur, nil, cur))
		return true
	}

	// A function-like macro name not followed by '(' is a plain identifier.
	fr.idx++
	next, ok := pp.peekRaw()
	if !ok || next.Kind != token.LParen {
		fr.idx--
		return false
	}

	args, rparen, ok := pp.readArgs(m, cur)
	if !ok {
		return true // tokens consumed; error already reported
	}
	pp.pushExpansion(pp.substitute(m, cur, args, rparen))
	return true
}

// readArgs consumes '(' ... ')' from the frame stack and splits the
// contents into arguments at top-level commas.
func (pp *Preprocessor) readArgs(m *macro, name ppToken) ([]macroArg, ppToken, bool) {
	pp.nextRaw() // '('

	var (
		args  []macroArg
		cur   []ppToken
		level int
	)
	for {
		t := pp.nextRaw()
		if t.Kind == token.EOF {
			pp.report(diag.PpUnterminatedArgs, diag.SevError, name.Span,
				"unterminated macro argument list")
			return nil, ppToken{}, false
		}
		if level == 0 && t.Kind == token.RParen {
			args = append(args, macroArg{raw: cur})
			return pp.checkArgCount(m, name, args), t, true
		}
		switch t.Kind {
		case token.LParen:
			level++
		case token.RParen:
			level--
		case token.Comma:
			if level == 0 {
				args = append(args, macroArg{raw: cur})
				cur = nil
				continue
			}
		}
		cur = append(cur, t)
	}
}

func (pp *Preprocessor) checkArgCount(m *macro, name ppToken, args []macroArg) []macroArg {
	// F() parses as one empty argument; a zero-parameter macro wants none.
	if len(m.params) == 0 && len(args) == 1 && len(args[0].raw) == 0 {
		args = args[:0]
	}
	switch {
	case len(args) > len(m.params):
		pp.report(diag.PpTooManyArgs, diag.SevError, name.Span, "too many macro arguments")
		args = args[:len(m.params)]
	case len(args) < len(m.params):
		pp.report(diag.PpTooFewArgs, diag.SevError, name.Span, "too few macro arguments")
		for len(args) < len(m.params) {
			args = append(args, macroArg{})
		}
	}
	return args
}

func (pp *Preprocessor) findParam(m *macro, args []macroArg, t token.Token) *macroArg {
	if t.ID == source.NoStringID {
		return nil
	}
	for i, p := range m.params {
		if p == t.ID {
			return &args[i]
		}
	}
	return nil
}

// substitute builds the expansion of one macro invocation: parameter
// substitution, '#' stringizing, '##' pasting, hideset update, and
// instantiation-point propagation. rparen is the closing parenthesis for
// function-like invocations; for object-like macros pass the name token.
func (pp *Preprocessor) substitute(m *macro, name ppToken, args []macroArg, rparen ppToken) []ppToken {
	var hs *hideset
	if m.objLike {
		hs = name.hs.with(m.name)
	} else {
		hs = hidesetIntersect(name.hs, rparen.hs).with(m.name)
	}

	var out []ppToken
	body := m.body

	for i := 0; i < len(body); i++ {
		bt := body[i]

		// "#" followed by a parameter becomes the stringized argument.
		if bt.Kind == token.Hash && args != nil && i+1 < len(body) {
			if arg := pp.findParam(m, args, body[i+1]); arg != nil {
				out = append(out, pp.stringize(bt, arg.raw))
				i++
				continue
			}
			pp.report(diag.PpStringizeOperand, diag.SevError, bt.Span,
				"'#' is not followed by a macro parameter")
			out = append(out, ppToken{Token: Token{Token: bt}})
			continue
		}

		// "##" pastes the previous result token with the next operand.
		if bt.Kind == token.HashHash {
			if len(out) == 0 || i+1 >= len(body) {
				pp.report(diag.PpBadPaste, diag.SevError, bt.Span,
					"'##' cannot appear at either end of a macro expansion")
				continue
			}
			rhs := body[i+1]
			i++
			if arg := pp.findParam(m, args, rhs); arg != nil {
				if len(arg.raw) == 0 {
					continue
				}
				out[len(out)-1] = pp.paste(out[len(out)-1], arg.raw[0])
				out = append(out, arg.raw[1:]...)
				continue
			}
			out[len(out)-1] = pp.paste(out[len(out)-1], ppToken{Token: Token{Token: rhs}})
			continue
		}

		// A parameter directly before "##" substitutes unexpanded.
		if arg := pp.findParam(m, args, bt); arg != nil && i+1 < len(body) && body[i+1].Kind == token.HashHash {
			if len(arg.raw) == 0 {
				// Empty operand: the "##" then glues the surrounding tokens,
				// handled on the next iteration against out's tail.
				continue
			}
			out = append(out, withLayout(arg.raw, bt)...)
			continue
		}

		// An ordinary parameter substitutes its fully expanded argument.
		if arg := pp.findParam(m, args, bt); arg != nil {
			if arg.expanded == nil {
				arg.expanded = pp.expandList(arg.raw)
			}
			out = append(out, withLayout(arg.expanded, bt)...)
			continue
		}

		out = append(out, ppToken{Token: Token{Token: bt}})
	}

	// Every produced token: extend hideset, inherit the invocation's
	// instantiation point.
	for i := range out {
		out[i].hs = hidesetUnion(out[i].hs, hs)
		out[i].Inst = name.Inst
	}
	if len(out) > 0 {
		out[0].HasSpace = name.HasSpace
		out[0].AtBOL = name.AtBOL
	}
	return out
}

// withLayout copies toks, giving the first one the layout flags of the body
// token it replaces.
func withLayout(toks []ppToken, bt token.Token) []ppToken {
	if len(toks) == 0 {
		return nil
	}
	cp := make([]ppToken, len(toks))
	copy(cp, toks)
	cp[0].HasSpace = bt.HasSpace
	cp[0].AtBOL = bt.AtBOL
	return cp
}

// expandList fully macro-expands a free-standing token list (macro
// arguments, #if expressions). Directives are not interpreted here.
func (pp *Preprocessor) expandList(list []ppToken) []ppToken {
	var out []ppToken
	for len(list) > 0 {
		cur := list[0]
		m := pp.lookupMacro(cur)
		if m == nil {
			out = append(out, cur)
			list = list[1:]
			continue
		}
		if m.objLike {
			body := pp.substitute(m, cur, nil, cur)
			list = append(body, list[1:]...)
			continue
		}
		if len(list) < 2 || list[1].Kind != token.LParen {
			out = append(out, cur)
			list = list[1:]
			continue
		}
		args, rparen, rest, ok := pp.readArgsFromList(m, cur, list[2:])
		if !ok {
			out = append(out, cur)
			list = list[1:]
			continue
		}
		body := pp.substitute(m, cur, args, rparen)
		list = append(body, rest...)
	}
	return out
}

// readArgsFromList mirrors readArgs over an in-memory list instead of the
// frame stack. list starts just past the '('.
func (pp *Preprocessor) readArgsFromList(m *macro, name ppToken, list []ppToken) ([]macroArg, ppToken, []ppToken, bool) {
	var (
		args  []macroArg
		cur   []ppToken
		level int
	)
	for i := 0; i < len(list); i++ {
		t := list[i]
		if t.Kind == token.EOF {
			break
		}
		if level == 0 && t.Kind == token.RParen {
			args = append(args, macroArg{raw: cur})
			return pp.checkArgCount(m, name, args), t, list[i+1:], true
		}
		switch t.Kind {
		case token.LParen:
			level++
		case token.RParen:
			level--
		case token.Comma:
			if level == 0 {
				args = append(args, macroArg{raw: cur})
				cur = nil
				continue
			}
		}
		cur = append(cur, t)
	}
	pp.report(diag.PpUnterminatedArgs, diag.SevError, name.Span,
		"unterminated macro argument list")
	return nil, ppToken{}, nil, false
}

// stringize joins the argument's spellings into a string literal, escaping
// backslashes and double quotes.
func (pp *Preprocessor) stringize(hash token.Token, arg []ppToken) ppToken {
	var sb strings.Builder
	for i, t := range arg {
		if i > 0 && t.HasSpace {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Text)
	}
	s := sb.String()
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	quoted := `"` + s + `"`

	return ppToken{Token: Token{
		Token: token.Token{
			Kind:     token.String,
			Span:     hash.Span,
			Text:     quoted,
			HasSpace: hash.HasSpace,
			AtBOL:    hash.AtBOL,
		},
		Inst: hash.Span.Loc(),
	}}
}

// paste concatenates two spellings and re-lexes the result, which must form
// exactly one token.
func (pp *Preprocessor) paste(lhs, rhs ppToken) ppToken {
	buf := lhs.Text + rhs.Text
	id := pp.fs.AddVirtual("<paste>", []byte(buf))
	toks := stripEOF(lexer.ScanFile(pp.fs.Get(id), pp.interner, lexer.Options{}))

	if len(toks) != 1 {
		pp.report(diag.PpBadPaste, diag.SevError, lhs.Span,
			"pasting formed an invalid token: "+buf)
	}
	out := lhs
	if len(toks) > 0 {
		out.Kind = toks[0].Kind
		out.ID = toks[0].ID
	}
	out.Text = buf
	return out
}
