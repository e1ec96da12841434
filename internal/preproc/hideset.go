package preproc

import (
	"cexpand/internal/source"
)

// hideset is a persistent set of macro names a token was expanded from.
// A macro is applied at most once per token: if a token carries the macro's
// name in its hideset, it is not expanded again. Sharing tails keeps the
// sets cheap; they are tiny in practice.
type hideset struct {
	next *hideset
	name source.StringID
}

func (hs *hideset) contains(name source.StringID) bool {
	for ; hs != nil; hs = hs.next {
		if hs.name == name {
			return true
		}
	}
	return false
}

func (hs *hideset) with(name source.StringID) *hideset {
	return &hideset{next: hs, name: name}
}

func hidesetUnion(a, b *hideset) *hideset {
	for ; a != nil; a = a.next {
		if !b.contains(a.name) {
			b = b.with(a.name)
		}
	}
	return b
}

func hidesetIntersect(a, b *hideset) *hideset {
	var out *hideset
	for ; a != nil; a = a.next {
		if b.contains(a.name) {
			out = out.with(a.name)
		}
	}
	return out
}
