package token

var keywords = map[string]struct{}{
	"auto":       {},
	"break":      {},
	"case":       {},
	"char":       {},
	"const":      {},
	"continue":   {},
	"default":    {},
	"do":         {},
	"double":     {},
	"else":       {},
	"enum":       {},
	"extern":     {},
	"float":      {},
	"for":        {},
	"goto":       {},
	"if":         {},
	"inline":     {},
	"int":        {},
	"long":       {},
	"register":   {},
	"restrict":   {},
	"return":     {},
	"short":      {},
	"signed":     {},
	"sizeof":     {},
	"static":     {},
	"struct":     {},
	"switch":     {},
	"typedef":    {},
	"union":      {},
	"unsigned":   {},
	"void":       {},
	"volatile":   {},
	"while":      {},
	"_Bool":      {},
	"_Complex":   {},
	"_Imaginary": {},
}

// IsKeyword reports whether ident is a C keyword. Keywords are
// case-sensitive; only the exact spellings above are recognized.
func IsKeyword(ident string) bool {
	_, ok := keywords[ident]
	return ok
}
