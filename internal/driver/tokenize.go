package driver

import (
	"cexpand/internal/diag"
	"cexpand/internal/lexer"
	"cexpand/internal/source"
	"cexpand/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
}

// Tokenize raw-lexes one file: the token stream the rewriter walks, with
// comments and directive tokens kept.
func Tokenize(path string, maxDiagnostics int) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)

	bag := diag.NewBag(maxDiagnostics)
	interner := source.NewInterner()
	tokens := lexer.ScanFile(file, interner, lexer.Options{
		Reporter: &diag.BagReporter{Bag: bag},
	})

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  tokens,
		Bag:     bag,
	}, nil
}
