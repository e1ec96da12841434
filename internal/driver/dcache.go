package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"cexpand/internal/lexer"
	"cexpand/internal/preproc"
	"cexpand/internal/source"
	"cexpand/internal/token"
)

// Bump when the payload format changes.
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores raw token lists of include files, keyed by content
// hash. Headers are re-read far more often than they change, so a hit
// skips the whole scan. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the serialized form of one lexed include file.
type DiskPayload struct {
	Schema      uint16
	Path        string
	ContentHash [32]byte
	Tokens      []tokenRecord
}

// tokenRecord is a token without its FileID and interned identity; both
// are file-set specific and restored on load.
type tokenRecord struct {
	Kind     uint8
	Start    uint32
	End      uint32
	Text     string
	HasSpace bool
	AtBOL    bool
}

// OpenDiskCache initializes a disk cache at the standard location:
// $XDG_CACHE_HOME/<app>, falling back to ~/.cache/<app>.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt initializes a disk cache rooted at an explicit directory.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key [32]byte) string {
	return filepath.Join(c.dir, "toks", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and writes a payload; the write is atomic via rename.
func (c *DiskCache) Put(key [32]byte, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload. A missing entry is (false, nil).
func (c *DiskCache) Get(key [32]byte, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return out.Schema == diskCacheSchemaVersion, nil
}

// DropAll invalidates the whole cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "toks"))
}

func payloadFromTokens(file *source.File, toks []token.Token) *DiskPayload {
	records := make([]tokenRecord, 0, len(toks))
	for _, t := range toks {
		records = append(records, tokenRecord{
			Kind:     uint8(t.Kind),
			Start:    t.Span.Start,
			End:      t.Span.End,
			Text:     t.Text,
			HasSpace: t.HasSpace,
			AtBOL:    t.AtBOL,
		})
	}
	return &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Path:        file.Path,
		ContentHash: file.Hash,
		Tokens:      records,
	}
}

// restore rebuilds tokens for the given file, re-interning identifier
// identities into the caller's interner.
func (p *DiskPayload) restore(fileID source.FileID, interner *source.Interner) []token.Token {
	toks := make([]token.Token, 0, len(p.Tokens))
	for _, r := range p.Tokens {
		t := token.Token{
			Kind:     token.Kind(r.Kind),
			Span:     source.Span{File: fileID, Start: r.Start, End: r.End},
			Text:     r.Text,
			HasSpace: r.HasSpace,
			AtBOL:    r.AtBOL,
		}
		if t.Kind == token.Ident || t.Kind == token.Keyword {
			t.ID = interner.Intern(t.Text)
		}
		toks = append(toks, t)
	}
	return toks
}

// CachingLoader builds a preproc include loader that serves lexed token
// lists from the cache when the file content hash matches.
func CachingLoader(fs *source.FileSet, interner *source.Interner, cache *DiskCache) preproc.LoadFileFunc {
	return func(path string) (*source.File, []token.Token, error) {
		id, err := fs.Load(path)
		if err != nil {
			return nil, nil, err
		}
		f := fs.Get(id)

		var payload DiskPayload
		if ok, _ := cache.Get(f.Hash, &payload); ok {
			return f, payload.restore(f.ID, interner), nil
		}

		toks := lexer.ScanFile(f, interner, lexer.Options{})
		// Cache write failures only cost the next run a rescan.
		_ = cache.Put(f.Hash, payloadFromTokens(f, toks))
		return f, toks, nil
	}
}
