package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"cexpand/internal/diag"
	"cexpand/internal/source"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan, color.Bold)
	noteColor = color.New(color.FgBlue)
)

// Pretty renders diagnostics in a human-readable form, one per block:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//	  <source line>
//	  ^~~~
//
// Callers are expected to Sort() the bag beforehand.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		printHeader(w, d.Severity, d.Code, d.Message, d.Primary, fs, opts)
		printContext(w, d.Primary, fs, opts)
		if opts.ShowNotes {
			for _, n := range d.Notes {
				printHeader(w, diag.SevInfo, diag.UnknownCode, n.Msg, n.Span, fs, opts)
				printContext(w, n.Span, fs, opts)
			}
		}
	}
}

func printHeader(w io.Writer, sev diag.Severity, code diag.Code, msg string, sp source.Span, fs *source.FileSet, opts PrettyOpts) {
	if fs != nil && int(sp.File) < fs.Len() && !sp.Empty() {
		start, _ := fs.Resolve(sp)
		fmt.Fprintf(w, "%s:%d:%d: ", fs.Get(sp.File).Path, start.Line, start.Col)
	}

	sevText := sev.String()
	if opts.Color {
		sevText = severityColor(sev).Sprint(sevText)
	}
	if code == diag.UnknownCode {
		fmt.Fprintf(w, "%s: %s\n", sevText, msg)
		return
	}
	fmt.Fprintf(w, "%s %s: %s\n", sevText, code, msg)
}

func printContext(w io.Writer, sp source.Span, fs *source.FileSet, opts PrettyOpts) {
	if fs == nil || int(sp.File) >= fs.Len() || sp.Empty() {
		return
	}
	file := fs.Get(sp.File)
	start, end := fs.Resolve(sp)

	lo := start.Line
	if ctx := uint32(max(int8(0), opts.Context)); ctx < lo {
		lo -= ctx
	} else {
		lo = 1
	}
	for line := lo; line < start.Line; line++ {
		fmt.Fprintf(w, "  %s\n", file.GetLine(line))
	}

	lineText := file.GetLine(start.Line)
	fmt.Fprintf(w, "  %s\n", lineText)

	width := 1
	if end.Line == start.Line && end.Col > start.Col {
		width = int(end.Col - start.Col)
	} else if end.Line > start.Line {
		width = len(lineText) - int(start.Col) + 1
	}
	if width < 1 {
		width = 1
	}

	marker := "^" + strings.Repeat("~", width-1)
	if opts.Color {
		marker = severityColor(diag.SevInfo).Sprint(marker)
	}
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", int(start.Col-1)), marker)
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errColor
	case diag.SevWarning:
		return warnColor
	case diag.SevInfo:
		return infoColor
	}
	return noteColor
}
