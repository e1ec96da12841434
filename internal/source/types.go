package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	// FileHadBOM indicates a UTF-8 BOM is present at the start of the file.
	// The BOM bytes stay in Content so the rewriter can reproduce them.
	FileHadBOM
)

// File captures metadata and content for a single source file.
//
// Content holds the file bytes exactly as read. The rewriter's contract is
// that every original byte survives into the output, so no newline or BOM
// normalization is ever applied.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// Loc is a single byte position in a file. Preprocessed tokens carry a Loc
// that resolves to the point of macro instantiation in the original file.
type Loc struct {
	File FileID
	Off  uint32
}
