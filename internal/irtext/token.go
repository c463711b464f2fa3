package irtext

import (
	"fmt"

	"offload/internal/source"
)

// Kind is the category of a text IR token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of input.
	EOF
	// Ident is a bare word: module, devices, offload, attribute keys.
	Ident
	// String is a double-quoted literal; Text holds the decoded value.
	String
	// Value is a %name reference; Text holds the name without '%'.
	Value
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Colon
	Eq
	Caret
)

var kindNames = [...]string{
	Invalid:  "invalid",
	EOF:      "end of file",
	Ident:    "identifier",
	String:   "string",
	Value:    "value",
	LParen:   "'('",
	RParen:   "')'",
	LBrace:   "'{'",
	RBrace:   "'}'",
	LBracket: "'['",
	RBracket: "']'",
	Comma:    "','",
	Colon:    "':'",
	Eq:       "'='",
	Caret:    "'^'",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Token is a single lexeme with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// Is reports whether t is an identifier spelled word.
func (t Token) Is(word string) bool {
	return t.Kind == Ident && t.Text == word
}
