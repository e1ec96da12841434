package source

import (
	"testing"
)

func TestAddVirtualKeepsBytesExact(t *testing.T) {
	fs := NewFileSet()
	content := []byte("int x;\r\n// tail\r\n")
	id := fs.AddVirtual("test.c", content)

	f := fs.Get(id)
	if string(f.Content) != string(content) {
		t.Errorf("content was altered: %q", f.Content)
	}
	if f.Flags&FileVirtual == 0 {
		t.Error("expected FileVirtual flag")
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.c", []byte("abc\ndef\n"))

	tests := []struct {
		off  uint32
		line uint32
		col  uint32
	}{
		{0, 1, 1},
		{2, 1, 3},
		{4, 2, 1},
		{6, 2, 3},
	}
	for _, tt := range tests {
		got := fs.ResolveLoc(Loc{File: id, Off: tt.off})
		if got.Line != tt.line || got.Col != tt.col {
			t.Errorf("off %d: got %d:%d, want %d:%d", tt.off, got.Line, got.Col, tt.line, tt.col)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.c", []byte("first\nsecond\nthird"))
	f := fs.Get(id)

	tests := []struct {
		num  uint32
		want string
	}{
		{1, "first"},
		{2, "second"},
		{3, "third"},
		{4, ""},
		{0, ""},
	}
	for _, tt := range tests {
		if got := f.GetLine(tt.num); got != tt.want {
			t.Errorf("GetLine(%d) = %q, want %q", tt.num, got, tt.want)
		}
	}
}

func TestGetLatestTracksNewestVersion(t *testing.T) {
	fs := NewFileSet()
	fs.AddVirtual("a.c", []byte("old"))
	second := fs.AddVirtual("a.c", []byte("new"))

	id, ok := fs.GetLatest("a.c")
	if !ok {
		t.Fatal("GetLatest did not find a.c")
	}
	if id != second {
		t.Errorf("GetLatest = %d, want %d", id, second)
	}
}
