package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident
	// Keyword represents a C keyword; its interned ID is still set, so a
	// keyword and a raw-lexed identifier with the same spelling compare as
	// the same name.
	Keyword
	// Number represents a pp-number (integer or floating literal, any base).
	Number
	// String represents a string literal, quotes included.
	String
	// CharConst represents a character constant, quotes included.
	CharConst
	// Comment represents a line or block comment, markers included.
	Comment

	// Hash represents '#'.
	Hash
	// HashHash represents the '##' paste operator.
	HashHash
	// LParen represents '('.
	LParen
	// RParen represents ')'.
	RParen
	// Comma represents ','.
	Comma
	// Punct represents any other punctuator; the spelling is in Text.
	Punct
)

var kindNames = [...]string{
	Invalid:   "Invalid",
	EOF:       "EOF",
	Ident:     "Ident",
	Keyword:   "Keyword",
	Number:    "Number",
	String:    "String",
	CharConst: "CharConst",
	Comment:   "Comment",
	Hash:      "Hash",
	HashHash:  "HashHash",
	LParen:    "LParen",
	RParen:    "RParen",
	Comma:     "Comma",
	Punct:     "Punct",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}
