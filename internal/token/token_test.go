package token

import (
	"testing"

	"cexpand/internal/source"
)

func TestSameKindAndIdentity(t *testing.T) {
	in := source.NewInterner()
	foo := in.Intern("foo")
	bar := in.Intern("bar")

	tests := []struct {
		name string
		a, b Token
		want bool
	}{
		{
			name: "identical identifiers",
			a:    Token{Kind: Ident, ID: foo},
			b:    Token{Kind: Ident, ID: foo},
			want: true,
		},
		{
			name: "keyword vs raw identifier, same name",
			a:    Token{Kind: Keyword, ID: foo},
			b:    Token{Kind: Ident, ID: foo},
			want: true,
		},
		{
			name: "different names",
			a:    Token{Kind: Ident, ID: foo},
			b:    Token{Kind: Ident, ID: bar},
			want: false,
		},
		{
			name: "same punct kind",
			a:    Token{Kind: LParen},
			b:    Token{Kind: LParen},
			want: true,
		},
		{
			name: "identifier vs punct",
			a:    Token{Kind: Ident, ID: foo},
			b:    Token{Kind: LParen},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Same(tt.a, tt.b); got != tt.want {
				t.Errorf("Same() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsKeyword(t *testing.T) {
	if !IsKeyword("while") {
		t.Error("expected 'while' to be a keyword")
	}
	if IsKeyword("While") {
		t.Error("keywords must be case-sensitive")
	}
	if IsKeyword("warning") {
		t.Error("'warning' is not a C keyword")
	}
}
