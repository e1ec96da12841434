// Package expand reconstructs a macro-expanded rendition of a C source
// file. It walks the file's raw token stream and its preprocessed token
// stream in lockstep, keyed by file offset, and records text splices:
// source text consumed by the preprocessor is bracketed in /* */ markers,
// and expansion results are spliced in at the offset of the invocation.
// Comments, whitespace, and preprocessor directives survive untouched, so
// the output still looks like the input.
package expand

import (
	"strings"

	"cexpand/internal/lexer"
	"cexpand/internal/preproc"
	"cexpand/internal/rewrite"
	"cexpand/internal/source"
	"cexpand/internal/token"
)

type Options struct {
	Preproc preproc.Options
}

// Rewrite runs the reconciliation over one file and materializes the
// result. The returned flag reports whether any splice was recorded; when
// it is false the returned bytes are the original content.
func Rewrite(fs *source.FileSet, file *source.File, interner *source.Interner, opts Options) ([]byte, bool) {
	// The raw scan is silent; the preprocessor's own scan reports lexical
	// diagnostics once.
	rawToks := lexer.ScanFile(file, interner, lexer.Options{})

	rc := &reconciler{
		fileID:    file.ID,
		raw:       newRawStream(rawToks),
		pp:        preproc.New(fs, file, interner, opts.Preproc),
		buf:       rewrite.NewBuffer(file.Content),
		warningID: interner.Intern("warning"),
		pragmaID:  interner.Intern("pragma"),
		markID:    interner.Intern("mark"),
	}
	rc.run()
	return rc.buf.Bytes(), rc.buf.Changed()
}

type reconciler struct {
	fileID source.FileID
	raw    *rawStream
	pp     *preproc.Preprocessor
	buf    *rewrite.Buffer

	warningID source.StringID
	pragmaID  source.StringID
	markID    source.StringID
}

func (rc *reconciler) run() {
	rawTok := rc.raw.next(false)
	ppTok := rc.pp.Next()

	for rawTok.Kind != token.EOF || ppTok.Kind != token.EOF {
		// Preprocessed tokens instantiated in another file (the body of an
		// include) have no place in this file's output.
		if ppTok.Inst.File != rc.fileID {
			ppTok = rc.pp.Next()
			continue
		}

		// A directive line exists only in the raw stream; keep it verbatim
		// and skip to the next line. #warning and #pragma mark would not
		// survive recompilation, so those two get a // inserted right after
		// the hash, turning the line into a null directive plus comment.
		if rawTok.Kind == token.Hash && rawTok.AtBOL {
			head := rc.raw.peekAt(0)
			if head.ID == rc.warningID ||
				(head.ID == rc.pragmaID && rc.raw.peekAt(1).ID == rc.markID) {
				rc.buf.InsertAfter(rawTok.Span.Start, "//")
			}
			rawTok = rc.raw.next(false)
			for !rawTok.AtBOL && rawTok.Kind != token.EOF {
				rawTok = rc.raw.next(false)
			}
			continue
		}

		ppOffs := ppTok.Inst.Off
		rawOffs := rawTok.Span.Start

		// Aligned and identical: nothing happened here.
		if ppOffs == rawOffs && token.Same(rawTok, ppTok.Token) {
			rawTok = rc.raw.next(false)
			ppTok = rc.pp.Next()
			continue
		}

		if rawOffs <= ppOffs {
			rc.commentOutRun(&rawTok, ppTok, rawOffs, ppOffs)
			continue
		}

		rc.insertExpansion(&ppTok, rawOffs)
	}
}

// commentOutRun brackets a run of raw tokens the preprocessor consumed
// (a macro invocation, a dead conditional branch) in /* */ markers. One
// marker pair covers the whole run. The run ends at an original comment,
// at the start of a new line once past the preprocessed position, or when
// the streams resynchronize on an identical token.
func (rc *reconciler) commentOutRun(rawTok *token.Token, ppTok preproc.Token, rawOffs, ppOffs uint32) {
	open := "/*"
	if !rawTok.HasSpace {
		open = " /*"
	}
	rc.buf.InsertBefore(rawOffs, open)

	var endPos uint32
	for {
		endPos = rawTok.Span.End
		*rawTok = rc.raw.next(true)
		rawOffs = rawTok.Span.Start

		if rawTok.Kind == token.Comment {
			// The run must not swallow a comment marker.
			*rawTok = rc.raw.next(false)
			break
		}
		if rawTok.Kind == token.EOF {
			break
		}
		if rawOffs > ppOffs || rawTok.AtBOL {
			break
		}
		if rawOffs == ppOffs && token.Same(*rawTok, ppTok.Token) {
			break
		}
	}

	rc.buf.InsertAfter(endPos-1, "*/")
}

// insertExpansion splices in a run of preprocessed tokens that have no raw
// counterpart: the result of a macro expansion. The whole run shares one
// instantiation offset and is inserted there as space-separated spellings.
func (rc *reconciler) insertExpansion(ppTok *preproc.Token, rawOffs uint32) {
	insertPos := ppTok.Inst.Off

	var sb strings.Builder
	for ppTok.Inst.File == rc.fileID && ppTok.Inst.Off < rawOffs && ppTok.Kind != token.EOF {
		sb.WriteByte(' ')
		sb.WriteString(ppTok.Text)
		*ppTok = rc.pp.Next()
	}
	sb.WriteByte(' ')

	rc.buf.InsertBefore(insertPos, sb.String())
}
