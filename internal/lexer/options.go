package lexer

import (
	"cexpand/internal/diag"
	"cexpand/internal/source"
)

type Options struct {
	// Reporter receives lexical diagnostics. May be nil; lexing always
	// continues regardless.
	Reporter diag.Reporter
}

func (lx *Lexer) report(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		diag.ReportError(lx.opts.Reporter, code, sp, msg)
	}
}
