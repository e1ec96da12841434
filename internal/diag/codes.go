package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedChar         Code = 1003
	LexUnterminatedBlockComment Code = 1004

	// Preprocessor
	PpInfo               Code = 2000
	PpInvalidDirective   Code = 2001
	PpMacroNameExpected  Code = 2002
	PpUnterminatedArgs   Code = 2003
	PpTooManyArgs        Code = 2004
	PpTooFewArgs         Code = 2005
	PpIncludeNotFound    Code = 2006
	PpExpectedExpression Code = 2007
	PpStrayElse          Code = 2008
	PpStrayElif          Code = 2009
	PpStrayEndif         Code = 2010
	PpBadPaste           Code = 2011
	PpStringizeOperand   Code = 2012
	PpExtraTokens        Code = 2013
	PpUserWarning        Code = 2014
	PpUserError          Code = 2015

	// Driver / IO
	IoInfo        Code = 3000
	IoReadFailed  Code = 3001
	IoWriteFailed Code = 3002
)

func (c Code) String() string {
	return fmt.Sprintf("CX%04d", uint16(c))
}

// ID returns the stable string form used in CLI output and tests.
func (c Code) ID() string { return c.String() }
