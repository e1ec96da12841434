package preproc

import (
	"strconv"
	"strings"

	"cexpand/internal/diag"
	"cexpand/internal/source"
	"cexpand/internal/token"
)

// evalCond evaluates a #if/#elif controlling expression. The standard
// order: resolve `defined` operators first, then macro-expand, then treat
// every remaining identifier as 0, then evaluate as a constant expression.
func (pp *Preprocessor) evalCond(head ppToken, line []ppToken) int64 {
	if len(line) == 0 {
		pp.report(diag.PpExpectedExpression, diag.SevError, head.Span,
			"expected an expression after #"+head.Text)
		return 0
	}

	line = pp.resolveDefined(line)
	line = pp.expandList(line)

	for i := range line {
		if line[i].ID != source.NoStringID {
			line[i] = numToken(0, line[i])
		}
	}

	ev := evaluator{pp: pp, toks: line, span: head.Span}
	v := ev.ternary()
	if !ev.failed && ev.pos < len(ev.toks) {
		pp.report(diag.PpExtraTokens, diag.SevWarning, ev.toks[ev.pos].Span,
			"extra tokens after #"+head.Text+" expression")
	}
	return v
}

// resolveDefined rewrites `defined NAME` and `defined(NAME)` into 1 or 0
// before any macro expansion happens.
func (pp *Preprocessor) resolveDefined(line []ppToken) []ppToken {
	out := make([]ppToken, 0, len(line))
	for i := 0; i < len(line); i++ {
		t := line[i]
		if t.Text != "defined" {
			out = append(out, t)
			continue
		}

		j := i + 1
		paren := j < len(line) && line[j].Kind == token.LParen
		if paren {
			j++
		}
		if j >= len(line) || line[j].ID == source.NoStringID {
			pp.report(diag.PpMacroNameExpected, diag.SevError, t.Span,
				"operand of 'defined' must be an identifier")
			out = append(out, numToken(0, t))
			continue
		}
		val := int64(0)
		if pp.macros[line[j].ID] != nil {
			val = 1
		}
		out = append(out, numToken(val, t))
		i = j
		if paren {
			if i+1 < len(line) && line[i+1].Kind == token.RParen {
				i++
			} else {
				pp.report(diag.PpExpectedExpression, diag.SevError, t.Span,
					"expected ')' after 'defined(' operand")
			}
		}
	}
	return out
}

func numToken(v int64, tmpl ppToken) ppToken {
	out := tmpl
	out.Kind = token.Number
	out.ID = source.NoStringID
	out.Text = strconv.FormatInt(v, 10)
	return out
}

// evaluator is a plain recursive-descent evaluator over an expanded token
// list. Any malformed input reports once and yields 0.
type evaluator struct {
	pp     *Preprocessor
	toks   []ppToken
	pos    int
	span   source.Span
	failed bool
}

func (ev *evaluator) fail(msg string) int64 {
	if !ev.failed {
		ev.failed = true
		sp := ev.span
		if ev.pos < len(ev.toks) {
			sp = ev.toks[ev.pos].Span
		}
		ev.pp.report(diag.PpExpectedExpression, diag.SevError, sp, msg)
	}
	return 0
}

func (ev *evaluator) peek() string {
	if ev.pos < len(ev.toks) {
		return ev.toks[ev.pos].Text
	}
	return ""
}

func (ev *evaluator) eat(text string) bool {
	if ev.peek() == text {
		ev.pos++
		return true
	}
	return false
}

func (ev *evaluator) ternary() int64 {
	cond := ev.lor()
	if !ev.eat("?") {
		return cond
	}
	then := ev.ternary()
	if !ev.eat(":") {
		return ev.fail("expected ':' in conditional expression")
	}
	els := ev.ternary()
	if cond != 0 {
		return then
	}
	return els
}

func (ev *evaluator) lor() int64 {
	v := ev.land()
	for ev.eat("||") {
		rhs := ev.land()
		if v != 0 || rhs != 0 {
			v = 1
		} else {
			v = 0
		}
	}
	return v
}

func (ev *evaluator) land() int64 {
	v := ev.bitor()
	for ev.eat("&&") {
		rhs := ev.bitor()
		if v != 0 && rhs != 0 {
			v = 1
		} else {
			v = 0
		}
	}
	return v
}

func (ev *evaluator) bitor() int64 {
	v := ev.bitxor()
	for ev.eat("|") {
		v |= ev.bitxor()
	}
	return v
}

func (ev *evaluator) bitxor() int64 {
	v := ev.bitand()
	for ev.eat("^") {
		v ^= ev.bitand()
	}
	return v
}

func (ev *evaluator) bitand() int64 {
	v := ev.equality()
	for ev.eat("&") {
		v &= ev.equality()
	}
	return v
}

func (ev *evaluator) equality() int64 {
	v := ev.relational()
	for {
		switch {
		case ev.eat("=="):
			v = b2i(v == ev.relational())
		case ev.eat("!="):
			v = b2i(v != ev.relational())
		default:
			return v
		}
	}
}

func (ev *evaluator) relational() int64 {
	v := ev.shift()
	for {
		switch {
		case ev.eat("<="):
			v = b2i(v <= ev.shift())
		case ev.eat(">="):
			v = b2i(v >= ev.shift())
		case ev.eat("<"):
			v = b2i(v < ev.shift())
		case ev.eat(">"):
			v = b2i(v > ev.shift())
		default:
			return v
		}
	}
}

func (ev *evaluator) shift() int64 {
	v := ev.additive()
	for {
		switch {
		case ev.eat("<<"):
			v <<= uint64(ev.additive()) & 63
		case ev.eat(">>"):
			v >>= uint64(ev.additive()) & 63
		default:
			return v
		}
	}
}

func (ev *evaluator) additive() int64 {
	v := ev.multiplicative()
	for {
		switch {
		case ev.eat("+"):
			v += ev.multiplicative()
		case ev.eat("-"):
			v -= ev.multiplicative()
		default:
			return v
		}
	}
}

func (ev *evaluator) multiplicative() int64 {
	v := ev.unary()
	for {
		switch {
		case ev.eat("*"):
			v *= ev.unary()
		case ev.eat("/"):
			if rhs := ev.unary(); rhs != 0 {
				v /= rhs
			} else {
				v = ev.fail("division by zero in #if expression")
			}
		case ev.eat("%"):
			if rhs := ev.unary(); rhs != 0 {
				v %= rhs
			} else {
				v = ev.fail("division by zero in #if expression")
			}
		default:
			return v
		}
	}
}

func (ev *evaluator) unary() int64 {
	switch {
	case ev.eat("!"):
		return b2i(ev.unary() == 0)
	case ev.eat("~"):
		return ^ev.unary()
	case ev.eat("-"):
		return -ev.unary()
	case ev.eat("+"):
		return ev.unary()
	}
	return ev.primary()
}

func (ev *evaluator) primary() int64 {
	if ev.eat("(") {
		v := ev.ternary()
		if !ev.eat(")") {
			return ev.fail("expected ')'")
		}
		return v
	}
	if ev.pos >= len(ev.toks) {
		return ev.fail("expected an expression")
	}
	t := ev.toks[ev.pos]
	switch t.Kind {
	case token.Number:
		ev.pos++
		return parseNumber(t.Text)
	case token.CharConst:
		ev.pos++
		return charValue(t.Text)
	}
	return ev.fail("expected an expression")
}

// parseNumber evaluates a C integer literal, accepting 0x/0 prefixes and
// trailing u/U/l/L suffixes. Malformed spellings yield 0.
func parseNumber(text string) int64 {
	s := strings.TrimRight(text, "uUlL")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0
	}
	return int64(v)
}

// charValue evaluates a character constant, quotes included.
func charValue(text string) int64 {
	if len(text) < 3 || text[0] != '\'' {
		return 0
	}
	body := text[1 : len(text)-1]
	if body == "" {
		return 0
	}
	if body[0] != '\\' {
		return int64(body[0])
	}
	if len(body) < 2 {
		return 0
	}
	switch body[1] {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	case '\\':
		return '\\'
	case '\'':
		return '\''
	case '"':
		return '"'
	}
	return int64(body[1])
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
