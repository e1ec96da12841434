package preproc

import (
	"os"
	"path/filepath"
	"strings"

	"cexpand/internal/diag"
	"cexpand/internal/source"
	"cexpand/internal/token"
)

type condCtx uint8

const (
	inThen condCtx = iota
	inElif
	inElse
)

type condIncl struct {
	ctx      condCtx
	included bool
	span     source.Span
}

// directive processes one preprocessing directive line. The whole line is
// consumed from the frame; directives never produce stream tokens.
func (pp *Preprocessor) directive(fr *frame) {
	hashIdx := fr.idx
	hash := fr.toks[hashIdx]

	end := hashIdx + 1
	for end < len(fr.toks) && !fr.toks[end].AtBOL && fr.toks[end].Kind != token.EOF {
		end++
	}
	line := fr.toks[hashIdx+1 : end]
	fr.idx = end

	if len(line) == 0 {
		return // null directive
	}

	head := line[0]
	rest := line[1:]

	switch head.Text {
	case "define":
		pp.defineDirective(rest)

	case "undef":
		pp.undefDirective(rest)

	case "include":
		pp.includeDirective(hash, rest)

	case "if":
		v := pp.evalCond(head, rest)
		pp.conds = append(pp.conds, condIncl{ctx: inThen, included: v != 0, span: hash.Span})
		if v == 0 {
			pp.skipCond(fr)
		}

	case "ifdef", "ifndef":
		defined := len(rest) > 0 && rest[0].ID != source.NoStringID && pp.macros[rest[0].ID] != nil
		if head.Text == "ifndef" {
			defined = !defined
		}
		pp.conds = append(pp.conds, condIncl{ctx: inThen, included: defined, span: hash.Span})
		if !defined {
			pp.skipCond(fr)
		}

	case "elif":
		if len(pp.conds) == 0 || pp.conds[len(pp.conds)-1].ctx == inElse {
			pp.report(diag.PpStrayElif, diag.SevError, hash.Span, "stray #elif")
			return
		}
		ci := &pp.conds[len(pp.conds)-1]
		ci.ctx = inElif
		if !ci.included && pp.evalCond(head, rest) != 0 {
			ci.included = true
		} else {
			pp.skipCond(fr)
		}

	case "else":
		if len(pp.conds) == 0 || pp.conds[len(pp.conds)-1].ctx == inElse {
			pp.report(diag.PpStrayElse, diag.SevError, hash.Span, "stray #else")
			return
		}
		ci := &pp.conds[len(pp.conds)-1]
		ci.ctx = inElse
		if ci.included {
			pp.skipCond(fr)
		}

	case "endif":
		if len(pp.conds) == 0 {
			pp.report(diag.PpStrayEndif, diag.SevError, hash.Span, "stray #endif")
			return
		}
		pp.conds = pp.conds[:len(pp.conds)-1]

	case "warning":
		pp.report(diag.PpUserWarning, diag.SevWarning, hash.Span, joinSpellings(rest))

	case "error":
		pp.report(diag.PpUserError, diag.SevError, hash.Span, joinSpellings(rest))

	case "pragma", "line":
		// Recognized, no stream output.

	default:
		// GNU line markers: "# 1 \"file\"".
		if head.Kind == token.Number {
			return
		}
		pp.report(diag.PpInvalidDirective, diag.SevError, head.Span,
			"invalid preprocessing directive #"+head.Text)
	}
}

// skipCond advances the frame past a non-included conditional section,
// leaving the index on the '#' of the #elif/#else/#endif that ends it.
// Nested conditionals are skipped whole.
func (pp *Preprocessor) skipCond(fr *frame) {
	depth := 0
	i := fr.idx
	for i < len(fr.toks) {
		t := fr.toks[i]
		if t.Kind == token.EOF {
			break
		}
		if t.Kind == token.Hash && t.AtBOL && i+1 < len(fr.toks) && !fr.toks[i+1].AtBOL {
			switch fr.toks[i+1].Text {
			case "if", "ifdef", "ifndef":
				depth++
			case "endif":
				if depth == 0 {
					fr.idx = i
					return
				}
				depth--
			case "elif", "else":
				if depth == 0 {
					fr.idx = i
					return
				}
			}
		}
		i++
	}
	fr.idx = i
}

func (pp *Preprocessor) defineDirective(line []ppToken) {
	if len(line) == 0 || line[0].ID == source.NoStringID {
		sp := source.Span{}
		if len(line) > 0 {
			sp = line[0].Span
		}
		pp.report(diag.PpMacroNameExpected, diag.SevError, sp, "macro name must be an identifier")
		return
	}
	name := line[0]
	rest := line[1:]

	m := &macro{
		name:    name.ID,
		objLike: true,
		defSpan: name.Span,
	}

	// "(" immediately after the name, without whitespace, starts a
	// parameter list.
	if len(rest) > 0 && rest[0].Kind == token.LParen && !rest[0].HasSpace {
		m.objLike = false
		params, body, ok := pp.parseParams(name, rest[1:])
		if !ok {
			return
		}
		m.params = params
		m.body = toRawTokens(body)
	} else {
		m.body = toRawTokens(rest)
	}
	pp.macros[name.ID] = m
}

func (pp *Preprocessor) parseParams(name ppToken, line []ppToken) ([]source.StringID, []ppToken, bool) {
	var params []source.StringID
	i := 0
	for i < len(line) && line[i].Kind != token.RParen {
		if len(params) > 0 {
			if line[i].Kind != token.Comma {
				pp.report(diag.PpMacroNameExpected, diag.SevError, line[i].Span,
					"expected ',' in macro parameter list")
				return nil, nil, false
			}
			i++
		}
		if i >= len(line) || line[i].ID == source.NoStringID {
			sp := name.Span
			if i < len(line) {
				sp = line[i].Span
			}
			pp.report(diag.PpMacroNameExpected, diag.SevError, sp,
				"expected an identifier in macro parameter list")
			return nil, nil, false
		}
		params = append(params, line[i].ID)
		i++
	}
	if i >= len(line) {
		pp.report(diag.PpUnterminatedArgs, diag.SevError, name.Span,
			"missing ')' in macro parameter list")
		return nil, nil, false
	}
	return params, line[i+1:], true
}

func (pp *Preprocessor) undefDirective(line []ppToken) {
	if len(line) == 0 || line[0].ID == source.NoStringID {
		sp := source.Span{}
		if len(line) > 0 {
			sp = line[0].Span
		}
		pp.report(diag.PpMacroNameExpected, diag.SevError, sp, "macro name must be an identifier")
		return
	}
	delete(pp.macros, line[0].ID)
	if len(line) > 1 {
		pp.report(diag.PpExtraTokens, diag.SevWarning, line[1].Span, "extra tokens after #undef")
	}
}

func (pp *Preprocessor) includeDirective(hash ppToken, line []ppToken) {
	path, quoted, ok := pp.includeTarget(hash, line)
	if !ok {
		return
	}

	includer := pp.fs.Get(hash.Span.File).Path
	full, found := pp.resolveInclude(path, quoted, includer)
	if !found {
		pp.report(diag.PpIncludeNotFound, diag.SevError, hash.Span, "'"+path+"' file not found")
		return
	}

	file, toks, err := pp.opts.LoadFile(full)
	if err != nil {
		pp.report(diag.PpIncludeNotFound, diag.SevError, hash.Span, full+": "+err.Error())
		return
	}
	pp.pushFileFrame(file.ID, toks)
}

func (pp *Preprocessor) includeTarget(hash ppToken, line []ppToken) (path string, quoted, ok bool) {
	for attempt := 0; attempt < 2; attempt++ {
		if len(line) == 0 {
			break
		}
		t := line[0]

		if t.Kind == token.String && len(t.Text) >= 2 {
			return t.Text[1 : len(t.Text)-1], true, true
		}

		if t.Is("<") {
			var sb strings.Builder
			for _, u := range line[1:] {
				if u.Is(">") {
					return sb.String(), false, true
				}
				sb.WriteString(u.Text)
			}
			break
		}

		// #include FOO: the operand must macro-expand to one of the two
		// forms above.
		if attempt == 0 && t.ID != source.NoStringID {
			line = pp.expandList(line)
			continue
		}
		break
	}
	pp.report(diag.PpIncludeNotFound, diag.SevError, hash.Span, "expected \"FILENAME\" or <FILENAME>")
	return "", false, false
}

func (pp *Preprocessor) resolveInclude(path string, quoted bool, includer string) (string, bool) {
	if filepath.IsAbs(path) {
		return path, fileExists(path)
	}
	if quoted {
		cand := filepath.Join(filepath.Dir(includer), path)
		if fileExists(cand) {
			return cand, true
		}
	}
	for _, dir := range pp.opts.IncludeDirs {
		cand := filepath.Join(dir, path)
		if fileExists(cand) {
			return cand, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func toRawTokens(line []ppToken) []token.Token {
	out := make([]token.Token, 0, len(line))
	for _, t := range line {
		out = append(out, t.Token.Token)
	}
	return out
}

func joinSpellings(line []ppToken) string {
	var sb strings.Builder
	for i, t := range line {
		if i > 0 && t.HasSpace {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}
