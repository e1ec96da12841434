// Package preproc implements the C preprocessor as a pull-based token
// stream. Each produced token carries an instantiation location that
// resolves back to the point in the original file where its macro
// invocation began; tokens lexed from included files keep their own file
// ID, so callers can tell main-file tokens from foreign ones.
//
// Macro expansion follows the hideset algorithm (Prossor): every time a
// macro expands, its name is added to the resulting tokens' hidesets, which
// guarantees termination for recursive macros.
package preproc

import (
	"fmt"

	"cexpand/internal/diag"
	"cexpand/internal/lexer"
	"cexpand/internal/source"
	"cexpand/internal/token"
)

// Token is a preprocessed token. Inst is the instantiation point: for
// ordinary tokens it equals the token's own location; for tokens produced
// by macro expansion it is the offset of the outermost macro invocation.
type Token struct {
	token.Token
	Inst source.Loc
}

type ppToken struct {
	Token
	hs *hideset
}

// LoadFileFunc loads and raw-lexes a file for #include. Implementations may
// serve cached token lists.
type LoadFileFunc func(path string) (*source.File, []token.Token, error)

type Options struct {
	Reporter diag.Reporter
	// IncludeDirs are searched for #include targets, in order. The directory
	// of the including file is searched first for quoted includes.
	IncludeDirs []string
	// Defines are command-line macro definitions, "NAME" or "NAME=value".
	Defines []string
	// Undefines are macro names removed after Defines are installed.
	Undefines []string
	// LoadFile overrides how included files are read and lexed.
	LoadFile LoadFileFunc
}

// frame is one source of tokens: the main file, an included file, or the
// expansion of a single macro invocation.
type frame struct {
	toks   []ppToken
	idx    int
	isFile bool
}

type Preprocessor struct {
	fs       *source.FileSet
	interner *source.Interner
	opts     Options

	macros map[source.StringID]*macro
	conds  []condIncl
	frames []*frame

	eofTok Token
	done   bool
}

// New creates a preprocessor over the given main file. The interner must be
// the same one used to raw-lex the main file, so identity comparisons
// between raw and preprocessed tokens hold.
func New(fs *source.FileSet, mainFile *source.File, interner *source.Interner, opts Options) *Preprocessor {
	pp := &Preprocessor{
		fs:       fs,
		interner: interner,
		opts:     opts,
		macros:   make(map[source.StringID]*macro),
	}
	if pp.opts.LoadFile == nil {
		pp.opts.LoadFile = pp.defaultLoadFile
	}

	pp.installPredefines()

	toks := lexer.ScanFile(mainFile, interner, lexer.Options{Reporter: opts.Reporter})
	pp.pushFileFrame(mainFile.ID, toks)
	return pp
}

func (pp *Preprocessor) defaultLoadFile(path string) (*source.File, []token.Token, error) {
	id, err := pp.fs.Load(path)
	if err != nil {
		return nil, nil, err
	}
	f := pp.fs.Get(id)
	return f, lexer.ScanFile(f, pp.interner, lexer.Options{Reporter: pp.opts.Reporter}), nil
}

func (pp *Preprocessor) installPredefines() {
	for _, def := range pp.opts.Defines {
		pp.define(def)
	}
	for _, name := range pp.opts.Undefines {
		delete(pp.macros, pp.interner.Intern(name))
	}
}

// define installs a command-line style definition: "NAME" or "NAME=value".
func (pp *Preprocessor) define(def string) {
	name, value := def, "1"
	for i := 0; i < len(def); i++ {
		if def[i] == '=' {
			name, value = def[:i], def[i+1:]
			break
		}
	}
	bodyID := pp.fs.AddVirtual(fmt.Sprintf("<define:%s>", name), []byte(value))
	body := lexer.ScanFile(pp.fs.Get(bodyID), pp.interner, lexer.Options{})
	body = stripEOF(stripComments(body))

	pp.macros[pp.interner.Intern(name)] = &macro{
		name:    pp.interner.Intern(name),
		objLike: true,
		body:    body,
	}
}

func stripComments(toks []token.Token) []token.Token {
	out := toks[:0:0]
	for _, t := range toks {
		if t.Kind != token.Comment {
			out = append(out, t)
		}
	}
	return out
}

func stripEOF(toks []token.Token) []token.Token {
	if n := len(toks); n > 0 && toks[n-1].Kind == token.EOF {
		return toks[:n-1]
	}
	return toks
}

func (pp *Preprocessor) pushFileFrame(file source.FileID, toks []token.Token) {
	toks = stripComments(toks)
	wrapped := make([]ppToken, 0, len(toks))
	for _, t := range toks {
		wrapped = append(wrapped, ppToken{
			Token: Token{Token: t, Inst: t.Span.Loc()},
		})
	}
	pp.frames = append(pp.frames, &frame{toks: wrapped, isFile: true})
}

func (pp *Preprocessor) pushExpansion(toks []ppToken) {
	if len(toks) == 0 {
		return
	}
	pp.frames = append(pp.frames, &frame{toks: toks})
}

func (pp *Preprocessor) top() *frame {
	return pp.frames[len(pp.frames)-1]
}

// Next returns the next fully macro-expanded token. After the main file is
// exhausted it returns the EOF sentinel forever.
func (pp *Preprocessor) Next() Token {
	for {
		if pp.done {
			return pp.eofTok
		}

		fr := pp.top()
		if fr.idx >= len(fr.toks) {
			pp.popFrame()
			continue
		}

		cur := fr.toks[fr.idx]

		if cur.Kind == token.EOF {
			if len(pp.frames) == 1 {
				pp.eofTok = cur.Token
				pp.done = true
				return pp.eofTok
			}
			pp.popFrame()
			continue
		}

		// Directives only exist in file frames.
		if fr.isFile && cur.Kind == token.Hash && cur.AtBOL {
			pp.directive(fr)
			continue
		}

		if pp.tryExpand(cur) {
			continue
		}

		fr.idx++
		return cur.Token
	}
}

func (pp *Preprocessor) popFrame() {
	pp.frames = pp.frames[:len(pp.frames)-1]
	if len(pp.frames) == 0 {
		// The main frame normally ends at its EOF token, not here.
		pp.done = true
	}
}

// peekRaw looks at the next unconsumed token across frames without
// expanding or interpreting anything. EOF tokens of nested frames are
// transparent; only the bottom frame's EOF is visible.
func (pp *Preprocessor) peekRaw() (ppToken, bool) {
	for i := len(pp.frames) - 1; i >= 0; i-- {
		fr := pp.frames[i]
		for j := fr.idx; j < len(fr.toks); j++ {
			t := fr.toks[j]
			if t.Kind == token.EOF {
				if i == 0 {
					return t, true
				}
				break
			}
			return t, true
		}
	}
	return ppToken{}, false
}

// nextRaw consumes the next token across frames without expansion. EOF
// tokens of nested frames are skipped; the main file's EOF is returned.
func (pp *Preprocessor) nextRaw() ppToken {
	for {
		fr := pp.top()
		if fr.idx >= len(fr.toks) {
			if len(pp.frames) == 1 {
				return ppToken{Token: pp.eofTok}
			}
			pp.popFrame()
			continue
		}
		cur := fr.toks[fr.idx]
		if cur.Kind == token.EOF {
			if len(pp.frames) > 1 {
				pp.popFrame()
				continue
			}
			// The main EOF is left in place so Next still finds it after a
			// cut-off argument list; callers may see it any number of times.
			return cur
		}
		fr.idx++
		return cur
	}
}

func (pp *Preprocessor) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) {
	if pp.opts.Reporter != nil {
		pp.opts.Reporter.Report(code, sev, sp, msg, nil)
	}
}
