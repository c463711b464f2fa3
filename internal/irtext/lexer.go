package irtext

import (
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"offload/internal/diag"
	"offload/internal/source"
)

// Lexer splits a text IR file into tokens.
type Lexer struct {
	file     *source.File
	cur      cursor
	reporter diag.Reporter
	look     *Token // 1 элементный буфер
}

// NewLexer creates a lexer over file. reporter may be nil.
func NewLexer(file *source.File, reporter diag.Reporter) *Lexer {
	return &Lexer{file: file, cur: newCursor(file), reporter: reporter}
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() Token {
	if lx.look == nil {
		tok := lx.scan()
		lx.look = &tok
	}
	return *lx.look
}

// Next consumes and returns the next token. After EOF it keeps returning EOF.
func (lx *Lexer) Next() Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}
	return lx.scan()
}

// ScanType reads one type in raw mode: everything up to a ',' or ')' that is
// not nested inside <>, () or []. Surrounding blanks are trimmed. It returns
// ok=false with an empty span at the stop position when no type is present.
func (lx *Lexer) ScanType() (string, source.Span, bool) {
	if lx.look != nil {
		lx.cur.off = lx.look.Span.Start
		lx.look = nil
	}
	lx.skipTrivia()
	start := lx.cur.off
	end := start
	depth := 0
	for !lx.cur.eof() {
		ch := lx.cur.peek()
		if depth == 0 && (ch == ',' || ch == ')' || ch == '\n') {
			break
		}
		switch ch {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		}
		lx.cur.bump()
		if !isBlank(ch) {
			end = lx.cur.off
		}
	}
	sp := source.Span{File: lx.file.ID, Start: start, End: end}
	if depth > 0 {
		lx.report(diag.LexUnterminatedType, sp, "unterminated type: unbalanced brackets")
	}
	if end == start {
		return "", sp, false
	}
	return string(lx.file.Content[start:end]), sp, true
}

// EmptySpan returns a zero-width span at the current position.
func (lx *Lexer) EmptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cur.off, End: lx.cur.off}
}

func (lx *Lexer) scan() Token {
	lx.skipTrivia()
	start := lx.cur.off
	if lx.cur.eof() {
		return Token{Kind: EOF, Span: lx.cur.spanFrom(start)}
	}

	ch := lx.cur.bump()
	kind := Invalid
	switch ch {
	case '(':
		kind = LParen
	case ')':
		kind = RParen
	case '{':
		kind = LBrace
	case '}':
		kind = RBrace
	case '[':
		kind = LBracket
	case ']':
		kind = RBracket
	case ',':
		kind = Comma
	case ':':
		kind = Colon
	case '=':
		kind = Eq
	case '^':
		kind = Caret
	case '"':
		return lx.scanString(start)
	case '%':
		return lx.scanValue(start)
	default:
		if isIdentStart(ch) {
			for isIdentContinue(lx.cur.peek()) {
				lx.cur.bump()
			}
			return Token{Kind: Ident, Span: lx.cur.spanFrom(start), Text: lx.cur.text(start)}
		}
		sp := lx.cur.spanFrom(start)
		lx.report(diag.LexUnknownChar, sp, fmt.Sprintf("unknown character %q", rune(ch)))
		return Token{Kind: Invalid, Span: sp, Text: lx.cur.text(start)}
	}
	return Token{Kind: kind, Span: lx.cur.spanFrom(start), Text: lx.cur.text(start)}
}

func (lx *Lexer) scanValue(start uint32) Token {
	for isValueNameByte(lx.cur.peek()) {
		lx.cur.bump()
	}
	sp := lx.cur.spanFrom(start)
	if sp.Len() == 1 {
		lx.report(diag.LexBadValueName, sp, "expected value name after '%'")
		return Token{Kind: Invalid, Span: sp, Text: "%"}
	}
	return Token{Kind: Value, Span: sp, Text: lx.cur.text(start + 1)}
}

// scanString reads a Go-style quoted literal and NFC-normalizes the result,
// so device names and attribute values compare equal regardless of how the
// producer composed them.
func (lx *Lexer) scanString(start uint32) Token {
	for {
		if lx.cur.eof() || lx.cur.peek() == '\n' {
			sp := lx.cur.spanFrom(start)
			lx.report(diag.LexUnterminatedString, sp, "unterminated string literal")
			return Token{Kind: Invalid, Span: sp, Text: lx.cur.text(start)}
		}
		ch := lx.cur.bump()
		if ch == '\\' {
			lx.cur.bump()
			continue
		}
		if ch == '"' {
			break
		}
	}
	sp := lx.cur.spanFrom(start)
	raw := lx.cur.text(start)
	val, err := strconv.Unquote(raw)
	if err != nil {
		lx.report(diag.LexUnterminatedString, sp, fmt.Sprintf("malformed string literal %s", raw))
		return Token{Kind: Invalid, Span: sp, Text: raw}
	}
	return Token{Kind: String, Span: sp, Text: norm.NFC.String(val)}
}

func (lx *Lexer) skipTrivia() {
	for !lx.cur.eof() {
		ch := lx.cur.peek()
		if isBlank(ch) || ch == '\n' {
			lx.cur.bump()
			continue
		}
		if b0, b1, ok := lx.cur.peek2(); ok && b0 == '/' && b1 == '/' {
			for !lx.cur.eof() && lx.cur.peek() != '\n' {
				lx.cur.bump()
			}
			continue
		}
		return
	}
}

func (lx *Lexer) report(code diag.Code, sp source.Span, msg string) {
	if lx.reporter != nil {
		lx.reporter.Report(code, diag.SevError, sp, msg, nil)
	}
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r'
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentContinue(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9') || b == '.'
}

func isValueNameByte(b byte) bool {
	return isIdentContinue(b) || b == '$' || b == '-'
}
