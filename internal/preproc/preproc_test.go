package preproc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cexpand/internal/diag"
	"cexpand/internal/lexer"
	"cexpand/internal/source"
	"cexpand/internal/token"
)

func lexScan(f *source.File, interner *source.Interner) []token.Token {
	return lexer.ScanFile(f, interner, lexer.Options{})
}

func writeTempFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

type ppFixture struct {
	fs       *source.FileSet
	interner *source.Interner
	bag      *diag.Bag
	pp       *Preprocessor
	mainID   source.FileID
}

func newFixture(t *testing.T, src string, opts Options) *ppFixture {
	t.Helper()
	fs := source.NewFileSet()
	interner := source.NewInterner()
	bag := diag.NewBag(64)
	if opts.Reporter == nil {
		opts.Reporter = &diag.BagReporter{Bag: bag}
	}
	id := fs.AddVirtual("main.c", []byte(src))
	pp := New(fs, fs.Get(id), interner, opts)
	return &ppFixture{fs: fs, interner: interner, bag: bag, pp: pp, mainID: id}
}

func (fx *ppFixture) collect(t *testing.T) []Token {
	t.Helper()
	var out []Token
	for i := 0; i < 10000; i++ {
		tok := fx.pp.Next()
		if tok.Kind == token.EOF {
			return out
		}
		out = append(out, tok)
	}
	t.Fatal("preprocessor did not reach EOF")
	return nil
}

func texts(toks []Token) string {
	parts := make([]string, 0, len(toks))
	for _, t := range toks {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " ")
}

func expandText(t *testing.T, src string) string {
	t.Helper()
	fx := newFixture(t, src, Options{})
	return texts(fx.collect(t))
}

func TestObjectMacro(t *testing.T) {
	got := expandText(t, "#define N 10\nint a = N;\n")
	want := "int a = 10 ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestObjectMacroMultiToken(t *testing.T) {
	got := expandText(t, "#define PAIR 1 + 2\nx = PAIR;\n")
	want := "x = 1 + 2 ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFunctionMacro(t *testing.T) {
	got := expandText(t, "#define ADD(x, y) ((x)+(y))\nint z = ADD(1, 2);\n")
	want := "int z = ( ( 1 ) + ( 2 ) ) ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFunctionMacroNameWithoutParen(t *testing.T) {
	got := expandText(t, "#define F(x) x\nint F = 3;\n")
	want := "int F = 3 ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNestedExpansion(t *testing.T) {
	got := expandText(t, "#define A B\n#define B C\n#define C 42\nint v = A;\n")
	want := "int v = 42 ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRecursiveMacroStops(t *testing.T) {
	got := expandText(t, "#define LOOP LOOP\nint LOOP;\n")
	want := "int LOOP ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMutuallyRecursiveMacrosStop(t *testing.T) {
	got := expandText(t, "#define A B\n#define B A\nA;\n")
	want := "A ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestArgumentsExpandBeforeSubstitution(t *testing.T) {
	got := expandText(t, "#define N 5\n#define ID(x) x\nint v = ID(N);\n")
	want := "int v = 5 ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStringize(t *testing.T) {
	got := expandText(t, "#define STR(x) #x\nchar *s = STR(a + b);\n")
	want := `char * s = "a + b" ;`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStringizeEscapesQuotesAndBackslashes(t *testing.T) {
	got := expandText(t, "#define STR(x) #x\nchar *s = STR(\"hi\\n\");\n")
	want := `char * s = "\"hi\\n\"" ;`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPaste(t *testing.T) {
	got := expandText(t, "#define GLUE(a, b) a##b\nint GLUE(foo, bar) = 1;\n")
	want := "int foobar = 1 ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPasteFormsNumber(t *testing.T) {
	got := expandText(t, "#define GLUE(a, b) a##b\nint v = GLUE(1, 2);\n")
	want := "int v = 12 ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPastedTokenIsExpandable(t *testing.T) {
	got := expandText(t, "#define FOOBAR 7\n#define GLUE(a, b) a##b\nint v = GLUE(FOO, BAR);\n")
	want := "int v = 7 ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNestedParensInArguments(t *testing.T) {
	got := expandText(t, "#define ID(x) x\nint v = ID((1, 2));\n")
	want := "int v = ( 1 , 2 ) ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestUndef(t *testing.T) {
	got := expandText(t, "#define N 10\n#undef N\nint a = N;\n")
	want := "int a = N ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCommandLineDefines(t *testing.T) {
	fx := newFixture(t, "int a = N;\nint b = FLAG;\n", Options{
		Defines: []string{"N=10", "FLAG"},
	})
	got := texts(fx.collect(t))
	want := "int a = 10 ; int b = 1 ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCommandLineUndefines(t *testing.T) {
	fx := newFixture(t, "int a = N;\n", Options{
		Defines:   []string{"N=10"},
		Undefines: []string{"N"},
	})
	got := texts(fx.collect(t))
	want := "int a = N ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestIfdef(t *testing.T) {
	got := expandText(t, "#define X 1\n#ifdef X\nint yes;\n#endif\n#ifdef Y\nint no;\n#endif\n")
	want := "int yes ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestIfndefElse(t *testing.T) {
	got := expandText(t, "#ifndef X\nint a;\n#else\nint b;\n#endif\n")
	want := "int a ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestIfElifElseChain(t *testing.T) {
	cases := []struct {
		define string
		want   string
	}{
		{"#define SEL 1\n", "int one ;"},
		{"#define SEL 2\n", "int two ;"},
		{"#define SEL 3\n", "int other ;"},
	}
	for _, tc := range cases {
		src := tc.define + "#if SEL == 1\nint one;\n#elif SEL == 2\nint two;\n#else\nint other;\n#endif\n"
		got := expandText(t, src)
		if got != tc.want {
			t.Errorf("%q: got %q, want %q", tc.define, got, tc.want)
		}
	}
}

func TestNestedConditionalsSkipWhole(t *testing.T) {
	src := "#if 0\n#if 1\nint hidden;\n#endif\nint also;\n#else\nint shown;\n#endif\n"
	got := expandText(t, src)
	want := "int shown ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNullDirectiveInSkippedBranch(t *testing.T) {
	// The identifier after the lone '#' sits on the next line; it must not
	// be read as that directive's name while skipping.
	src := "#if 0\n#\nendif\n#\nif\n#endif\nint x;\n"
	got := expandText(t, src)
	want := "int x ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestIfExpressions(t *testing.T) {
	cases := []struct {
		expr string
		live bool
	}{
		{"1", true},
		{"0", false},
		{"2 + 3 * 4 == 14", true},
		{"(1 << 4) == 16", true},
		{"defined FOO", true},
		{"defined(BAR)", false},
		{"!defined(BAR)", true},
		{"FOO > 0 && UNDEFINED_NAME == 0", true},
		{"1 ? 0 : 1", false},
		{"5 / 2 == 2", true},
		{"'A' == 65", true},
		{"0x10 == 16", true},
		{"10UL == 10", true},
	}
	for _, tc := range cases {
		src := "#define FOO 1\n#if " + tc.expr + "\nlive\n#endif\n"
		got := expandText(t, src)
		want := ""
		if tc.live {
			want = "live"
		}
		if got != want {
			t.Errorf("#if %s: got %q, want %q", tc.expr, got, want)
		}
	}
}

func TestIfDivisionByZeroReports(t *testing.T) {
	fx := newFixture(t, "#if 1 / 0\nx\n#endif\n", Options{})
	fx.collect(t)
	if !fx.bag.HasErrors() {
		t.Error("expected a division-by-zero error")
	}
}

func TestWarningAndErrorDirectives(t *testing.T) {
	fx := newFixture(t, "#warning careful now\n#error boom\n", Options{})
	fx.collect(t)
	if !fx.bag.HasWarnings() {
		t.Error("expected #warning to report a warning")
	}
	if !fx.bag.HasErrors() {
		t.Error("expected #error to report an error")
	}
	var msgs []string
	for _, d := range fx.bag.Items() {
		msgs = append(msgs, d.Message)
	}
	joined := strings.Join(msgs, "|")
	if !strings.Contains(joined, "careful now") || !strings.Contains(joined, "boom") {
		t.Errorf("unexpected messages: %q", joined)
	}
}

func TestInclude(t *testing.T) {
	fs := source.NewFileSet()
	interner := source.NewInterner()
	load := func(path string) (*source.File, []token.Token, error) {
		id := fs.AddVirtual(path, []byte("#define FROM_HEADER 9\nint header_var;\n"))
		f := fs.Get(id)
		return f, lexScan(f, interner), nil
	}
	resolve := t.TempDir()
	writeTempFile(t, resolve, "inc.h", "")

	id := fs.AddVirtual("main.c", []byte("#include \"inc.h\"\nint v = FROM_HEADER;\n"))
	bag := diag.NewBag(16)
	pp := New(fs, fs.Get(id), interner, Options{
		Reporter:    &diag.BagReporter{Bag: bag},
		IncludeDirs: []string{resolve},
		LoadFile:    load,
	})
	fx := &ppFixture{fs: fs, interner: interner, bag: bag, pp: pp, mainID: id}
	got := texts(fx.collect(t))
	want := "int header_var ; int v = 9 ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if bag.HasErrors() {
		t.Errorf("unexpected errors: %+v", bag.Items())
	}
}

func TestIncludeNotFound(t *testing.T) {
	fx := newFixture(t, "#include \"nope.h\"\nint x;\n", Options{})
	got := texts(fx.collect(t))
	if got != "int x ;" {
		t.Errorf("got %q", got)
	}
	if !fx.bag.HasErrors() {
		t.Error("expected an include-not-found error")
	}
}

func TestInstantiationPoints(t *testing.T) {
	src := "#define N 10\nint a = N;\n"
	fx := newFixture(t, src, Options{})
	toks := fx.collect(t)

	nOff := uint32(strings.Index(src, "N;"))
	for _, tok := range toks {
		if tok.Inst.File != fx.mainID {
			t.Errorf("token %q: instantiation in foreign file", tok.Text)
		}
		if tok.Text == "10" {
			if tok.Inst.Off != nOff {
				t.Errorf("expansion token %q: Inst.Off = %d, want %d", tok.Text, tok.Inst.Off, nOff)
			}
		} else if tok.Inst.Off != tok.Span.Start {
			t.Errorf("file token %q: Inst.Off = %d, want its own offset %d", tok.Text, tok.Inst.Off, tok.Span.Start)
		}
	}
}

func TestIncludedTokensAreForeign(t *testing.T) {
	fs := source.NewFileSet()
	interner := source.NewInterner()
	load := func(path string) (*source.File, []token.Token, error) {
		id := fs.AddVirtual(path, []byte("int from_header;\n"))
		f := fs.Get(id)
		return f, lexScan(f, interner), nil
	}
	resolve := t.TempDir()
	writeTempFile(t, resolve, "h.h", "")

	id := fs.AddVirtual("main.c", []byte("#include \"h.h\"\nint own;\n"))
	pp := New(fs, fs.Get(id), interner, Options{IncludeDirs: []string{resolve}, LoadFile: load})
	fx := &ppFixture{fs: fs, interner: interner, pp: pp, mainID: id}
	toks := fx.collect(t)

	foreign := 0
	for _, tok := range toks {
		if tok.Inst.File != id {
			foreign++
		}
	}
	if foreign != 3 {
		t.Errorf("foreign token count = %d, want 3 (int from_header ;)", foreign)
	}
}

func TestDirectivesInsideExpansionAreNotInterpreted(t *testing.T) {
	got := expandText(t, "#define EMIT # define X 1\nEMIT\n")
	want := "# define X 1"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMacroSpanningLinesViaSplice(t *testing.T) {
	got := expandText(t, "#define BIG(a, b) \\\n  ((a) * (b))\nint v = BIG(2, 3);\n")
	want := "int v = ( ( 2 ) * ( 3 ) ) ;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTooFewArgsReports(t *testing.T) {
	fx := newFixture(t, "#define ADD(x, y) x + y\nint v = ADD(1);\n", Options{})
	got := texts(fx.collect(t))
	if !fx.bag.HasErrors() {
		t.Error("expected too-few-arguments error")
	}
	if got != "int v = 1 + ;" {
		t.Errorf("got %q", got)
	}
}

func TestArgumentListCutOffAtEOF(t *testing.T) {
	fx := newFixture(t, "#define F(a) a\nF(1", Options{})
	got := texts(fx.collect(t))
	if got != "" {
		t.Errorf("got %q, want no tokens", got)
	}
	if !fx.bag.HasErrors() {
		t.Error("expected unterminated-argument-list error")
	}
	for i := 0; i < 3; i++ {
		if tok := fx.pp.Next(); tok.Kind != token.EOF {
			t.Fatalf("pull %d after exhaustion: got kind %v, want EOF", i, tok.Kind)
		}
	}
}

func TestExpansionFirstTokenKeepsInvocationLayout(t *testing.T) {
	fx := newFixture(t, "#define N 10\nN\n", Options{})
	toks := fx.collect(t)
	if len(toks) != 1 {
		t.Fatalf("token count = %d, want 1", len(toks))
	}
	if !toks[0].AtBOL {
		t.Error("first expansion token should keep the invocation's AtBOL flag")
	}
}
