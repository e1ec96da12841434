// Package rewrite provides an offset-indexed text-splice buffer: edits
// accumulate against an immutable original byte buffer and are materialized
// once at the end. Offsets always refer to original positions, never to
// post-edit positions, so well-ordered edits can never conflict.
package rewrite

import (
	"fmt"
	"sort"

	"fortio.org/safecast"
)

// A splice point sits in the gap before the original byte at `gap`.
// Within one gap, text from InsertAfter(gap-1) comes first, in call order;
// text from InsertBefore(gap) comes last, each call landing immediately
// before the original byte and before earlier InsertBefore text at the same
// gap. This ordering is what keeps an expansion inserted at an offset ahead
// of a comment-out marker opened at the same offset, and a closing marker
// ahead of the next run's opening marker.
type edit struct {
	gap   uint32
	after bool // issued via InsertAfter
	seq   int
	text  string
}

// Buffer accumulates insertions over an original buffer.
type Buffer struct {
	original []byte
	edits    []edit
	seq      int
}

// NewBuffer creates a splice buffer over the original bytes. The slice is
// not copied; callers must not mutate it.
func NewBuffer(original []byte) *Buffer {
	return &Buffer{original: original}
}

// InsertBefore records text that will appear immediately preceding the byte
// originally at off.
func (b *Buffer) InsertBefore(off uint32, text string) {
	if text == "" {
		return
	}
	b.edits = append(b.edits, edit{gap: off, after: false, seq: b.seq, text: text})
	b.seq++
}

// InsertAfter records text that will appear immediately following the byte
// originally at off.
func (b *Buffer) InsertAfter(off uint32, text string) {
	if text == "" {
		return
	}
	b.edits = append(b.edits, edit{gap: off + 1, after: true, seq: b.seq, text: text})
	b.seq++
}

// Changed reports whether any edits were recorded.
func (b *Buffer) Changed() bool {
	return len(b.edits) > 0
}

// Len returns the number of recorded edits.
func (b *Buffer) Len() int {
	return len(b.edits)
}

// Bytes materializes the result: the original bytes with all insertions
// applied. With zero edits the original slice is returned as is.
func (b *Buffer) Bytes() []byte {
	if len(b.edits) == 0 {
		return b.original
	}

	ordered := make([]edit, len(b.edits))
	copy(ordered, b.edits)
	sort.SliceStable(ordered, func(i, j int) bool {
		ei, ej := ordered[i], ordered[j]
		if ei.gap != ej.gap {
			return ei.gap < ej.gap
		}
		// InsertAfter text precedes InsertBefore text at the same gap.
		if ei.after != ej.after {
			return ei.after
		}
		if ei.after {
			return ei.seq < ej.seq
		}
		return ei.seq > ej.seq
	})

	total := len(b.original)
	for _, e := range ordered {
		total += len(e.text)
	}
	out := make([]byte, 0, total)

	lim, err := safecast.Conv[uint32](len(b.original))
	if err != nil {
		panic(fmt.Errorf("original buffer overflow: %w", err))
	}

	var pos uint32
	for _, e := range ordered {
		gap := e.gap
		if gap > lim {
			gap = lim
		}
		out = append(out, b.original[pos:gap]...)
		out = append(out, e.text...)
		pos = gap
	}
	out = append(out, b.original[pos:]...)
	return out
}
