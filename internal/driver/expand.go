package driver

import (
	"path/filepath"
	"strings"

	"cexpand/internal/diag"
	"cexpand/internal/expand"
	"cexpand/internal/preproc"
	"cexpand/internal/source"
)

// ExpandOptions configures one rewrite run.
type ExpandOptions struct {
	MaxDiagnostics int
	IncludeDirs    []string
	Defines        []string
	Undefines      []string
	// LoadFile overrides include loading entirely; it wins over Cache.
	LoadFile preproc.LoadFileFunc
	// Cache, when set, serves include-file token lists by content hash.
	Cache *DiskCache
}

// ExpandResult is the outcome of rewriting one file.
type ExpandResult struct {
	FileSet *source.FileSet
	File    *source.File
	Bag     *diag.Bag
	Output  []byte
	Changed bool
}

// Expand loads a file from disk and rewrites its macro invocations.
func Expand(path string, opts ExpandOptions) (*ExpandResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return expandFile(fs, fs.Get(fileID), opts), nil
}

// ExpandSource rewrites in-memory content (stdin, tests).
func ExpandSource(name string, content []byte, opts ExpandOptions) *ExpandResult {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual(name, content)
	return expandFile(fs, fs.Get(fileID), opts)
}

func expandFile(fs *source.FileSet, file *source.File, opts ExpandOptions) *ExpandResult {
	bag := diag.NewBag(opts.MaxDiagnostics)
	interner := source.NewInterner()

	loadFile := opts.LoadFile
	if loadFile == nil && opts.Cache != nil {
		loadFile = CachingLoader(fs, interner, opts.Cache)
	}

	output, changed := expand.Rewrite(fs, file, interner, expand.Options{
		Preproc: preproc.Options{
			Reporter:    &diag.BagReporter{Bag: bag},
			IncludeDirs: opts.IncludeDirs,
			Defines:     opts.Defines,
			Undefines:   opts.Undefines,
			LoadFile:    loadFile,
		},
	})

	return &ExpandResult{
		FileSet: fs,
		File:    file,
		Bag:     bag,
		Output:  output,
		Changed: changed,
	}
}

// OutputPath resolves the destination for a rewritten file. "-" means
// stdout. An explicit destination wins; otherwise the input's extension is
// replaced with ".cpp". Stdin input without an explicit destination goes to
// stdout.
func OutputPath(inputPath, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if inputPath == "" || inputPath == "-" {
		return "-"
	}
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".cpp"
}
