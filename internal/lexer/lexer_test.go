package lexer_test

import (
	"testing"

	"cexpand/internal/diag"
	"cexpand/internal/lexer"
	"cexpand/internal/source"
	"cexpand/internal/token"
)

func scan(t *testing.T, input string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.c", []byte(input))
	bag := diag.NewBag(100)
	toks := lexer.ScanFile(fs.Get(id), source.NewInterner(), lexer.Options{
		Reporter: &diag.BagReporter{Bag: bag},
	})
	return toks, bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.Kind)
	}
	return out
}

func TestScanBasicDeclaration(t *testing.T) {
	toks, bag := scan(t, "int x = 42;\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}

	want := []token.Kind{token.Keyword, token.Ident, token.Punct, token.Number, token.Punct, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: kind %v, want %v", i, got[i], want[i])
		}
	}

	if !toks[0].AtBOL {
		t.Error("first token must be at beginning of line")
	}
	if toks[0].HasSpace {
		t.Error("first token must not have leading space")
	}
	if !toks[1].HasSpace {
		t.Error("'x' must have leading space")
	}
	if toks[1].ID == source.NoStringID {
		t.Error("identifier must be interned")
	}
}

func TestKeywordAndIdentShareIdentity(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.c", []byte("while while"))
	in := source.NewInterner()
	toks := lexer.ScanFile(fs.Get(id), in, lexer.Options{})

	if toks[0].Kind != token.Keyword {
		t.Fatalf("kind = %v, want Keyword", toks[0].Kind)
	}
	if toks[0].ID != toks[1].ID || toks[0].ID == source.NoStringID {
		t.Errorf("identity mismatch: %d vs %d", toks[0].ID, toks[1].ID)
	}
	if !token.Same(toks[0], token.Token{Kind: token.Ident, ID: toks[1].ID}) {
		t.Error("keyword and identifier with same name must compare the same")
	}
}

func TestCommentsAreTokens(t *testing.T) {
	toks, bag := scan(t, "a /* mid */ b // tail\nc\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}

	want := []token.Kind{token.Ident, token.Comment, token.Ident, token.Comment, token.Ident, token.EOF}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: kind %v, want %v (all: %v)", i, got[i], want[i], got)
		}
	}
	if toks[1].Text != "/* mid */" {
		t.Errorf("block comment text = %q", toks[1].Text)
	}
	if toks[3].Text != "// tail" {
		t.Errorf("line comment text = %q", toks[3].Text)
	}
	if !toks[2].HasSpace {
		t.Error("token after a comment must count as preceded by space")
	}
	if !toks[4].AtBOL {
		t.Error("'c' must be at beginning of line")
	}
}

func TestDirectiveLineLexesRawTokens(t *testing.T) {
	toks, _ := scan(t, "#include <stdio.h>\n")

	if toks[0].Kind != token.Hash || !toks[0].AtBOL {
		t.Fatalf("expected hash at BOL, got %+v", toks[0])
	}
	if toks[1].Kind != token.Ident || toks[1].Text != "include" {
		t.Errorf("expected raw 'include' identifier, got %+v", toks[1])
	}
}

func TestLineSpliceDoesNotStartLine(t *testing.T) {
	toks, _ := scan(t, "#define X \\\n  1\nint y;\n")

	// The '1' continues the directive line: no AtBOL.
	var one token.Token
	for _, tok := range toks {
		if tok.Text == "1" {
			one = tok
		}
	}
	if one.Kind != token.Number {
		t.Fatalf("did not find the continued '1' token: %v", toks)
	}
	if one.AtBOL {
		t.Error("token after a spliced newline must not be at beginning of line")
	}
	if !one.HasSpace {
		t.Error("token after a spliced newline must have leading space")
	}
}

func TestPunctLongestMatch(t *testing.T) {
	tests := []struct {
		input string
		text  string
		kind  token.Kind
	}{
		{"a <<= b", "<<=", token.Punct},
		{"a ## b", "##", token.HashHash},
		{"f(x)", "(", token.LParen},
		{"a >> b", ">>", token.Punct},
		{"a -> b", "->", token.Punct},
	}
	for _, tt := range tests {
		toks, _ := scan(t, tt.input)
		found := false
		for _, tok := range toks {
			if tok.Text == tt.text && tok.Kind == tt.kind {
				found = true
			}
		}
		if !found {
			t.Errorf("input %q: did not lex %q as %v: %v", tt.input, tt.text, tt.kind, kinds(toks))
		}
	}
}

func TestStringAndCharLiterals(t *testing.T) {
	toks, bag := scan(t, `char *s = "a \"b\" c"; char c = '\'';`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}

	var str, chr token.Token
	for _, tok := range toks {
		switch tok.Kind {
		case token.String:
			str = tok
		case token.CharConst:
			chr = tok
		}
	}
	if str.Text != `"a \"b\" c"` {
		t.Errorf("string text = %q", str.Text)
	}
	if chr.Text != `'\''` {
		t.Errorf("char text = %q", chr.Text)
	}
}

func TestUnterminatedBlockCommentReported(t *testing.T) {
	_, bag := scan(t, "int x; /* never closed")
	if !bag.HasErrors() {
		t.Fatal("expected a diagnostic for an unterminated block comment")
	}
	if bag.Items()[0].Code != diag.LexUnterminatedBlockComment {
		t.Errorf("code = %v", bag.Items()[0].Code)
	}
}

func TestPpNumberForms(t *testing.T) {
	for _, input := range []string{"0x1f", "1e+10", "3.14f", ".5", "0755u", "1.0e-3"} {
		toks, bag := scan(t, input)
		if bag.HasErrors() {
			t.Errorf("%q: unexpected diagnostics", input)
		}
		if toks[0].Kind != token.Number || toks[0].Text != input {
			t.Errorf("%q lexed as %v %q", input, toks[0].Kind, toks[0].Text)
		}
	}
}
