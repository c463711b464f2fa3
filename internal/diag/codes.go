package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadValueName       Code = 1003
	LexUnterminatedType   Code = 1004

	// Syntax of the text IR
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynExpectModule       Code = 2002
	SynExpectOpName       Code = 2003
	SynExpectType         Code = 2004
	SynUnclosedParen      Code = 2005
	SynUnclosedBrace      Code = 2006
	SynUnclosedBracket    Code = 2007
	SynTrailingInput      Code = 2008
	SynDuplicateAttribute Code = 2009

	// Value binding and structure
	IRInfo                Code = 3000
	IRUndefinedValue      Code = 3001
	IRRedefinedValue      Code = 3002
	IRResultCountMismatch Code = 3003
	IRInvalidGraph        Code = 3004

	// I/O
	IOLoadFileError Code = 4001
	IODecodeError   Code = 4002

	// Pipeline
	PipeInfo       Code = 5000
	PipePassFailed Code = 5001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:           "Unknown error",
		LexInfo:               "Lexical information",
		LexUnknownChar:        "Unknown character",
		LexUnterminatedString: "Unterminated string literal",
		LexBadValueName:       "Malformed value name",
		LexUnterminatedType:   "Unterminated type",
		SynInfo:               "Syntax information",
		SynUnexpectedToken:    "Unexpected token",
		SynExpectModule:       "Expected 'module'",
		SynExpectOpName:       "Expected quoted operation name",
		SynExpectType:         "Expected type",
		SynUnclosedParen:      "Unclosed parenthesis",
		SynUnclosedBrace:      "Unclosed brace",
		SynUnclosedBracket:    "Unclosed bracket",
		SynTrailingInput:      "Unexpected input after module",
		SynDuplicateAttribute: "Duplicate attribute",
		IRInfo:                "IR information",
		IRUndefinedValue:      "Use of undefined value",
		IRRedefinedValue:      "Value redefined",
		IRResultCountMismatch: "Result count does not match type list",
		IRInvalidGraph:        "Invalid IR graph",
		IOLoadFileError:       "I/O load file error",
		IODecodeError:         "Cannot decode IR snapshot",
		PipeInfo:              "Pipeline information",
		PipePassFailed:        "Pass failed",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("IR%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PIPE%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
