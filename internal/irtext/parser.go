package irtext

import (
	"fmt"

	"offload/internal/diag"
	"offload/internal/source"
)

type parser struct {
	lx       *Lexer
	reporter diag.Reporter
	errors   int
	lastSpan source.Span
}

func (p *parser) peek() Token { return p.lx.Peek() }

func (p *parser) at(k Kind) bool { return p.lx.Peek().Kind == k }

func (p *parser) advance() Token {
	tok := p.lx.Next()
	p.lastSpan = tok.Span
	return tok
}

func (p *parser) eat(k Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(k Kind, code diag.Code, what string) (Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	tok := p.peek()
	p.err(code, tok.Span, fmt.Sprintf("expected %s, found %s", what, describe(tok)))
	return tok, false
}

func (p *parser) err(code diag.Code, sp source.Span, msg string) {
	p.errors++
	if p.reporter != nil {
		p.reporter.Report(code, diag.SevError, sp, msg, nil)
	}
}

func describe(tok Token) string {
	switch tok.Kind {
	case EOF:
		return "end of file"
	case Ident, Value, Invalid:
		return fmt.Sprintf("%q", tok.Text)
	case String:
		return fmt.Sprintf("string %q", tok.Text)
	default:
		return tok.Kind.String()
	}
}

// parseModule: module [devices [...]] region EOF
func (p *parser) parseModule() *moduleSyntax {
	mod := &moduleSyntax{}
	if !p.peek().Is("module") {
		p.err(diag.SynExpectModule, p.peek().Span, fmt.Sprintf("expected 'module', found %s", describe(p.peek())))
		return nil
	}
	p.advance()

	if p.peek().Is("devices") {
		p.advance()
		mod.HasDevices = true
		mod.Devices = []string{}
		if _, ok := p.expect(LBracket, diag.SynUnexpectedToken, "'[' after 'devices'"); !ok {
			return nil
		}
		for !p.at(RBracket) && !p.at(EOF) {
			tok, ok := p.expect(String, diag.SynUnexpectedToken, "device name string")
			if !ok {
				return nil
			}
			mod.Devices = append(mod.Devices, tok.Text)
			if !p.eat(Comma) {
				break
			}
		}
		if _, ok := p.expect(RBracket, diag.SynUnclosedBracket, "']' to close device list"); !ok {
			return nil
		}
	}

	body, ok := p.parseRegion()
	if !ok {
		return nil
	}
	mod.Body = body
	if !p.at(EOF) {
		p.err(diag.SynTrailingInput, p.peek().Span, fmt.Sprintf("unexpected %s after module", describe(p.peek())))
	}
	return mod
}

// parseRegion: { [^(params):] ops }
func (p *parser) parseRegion() (*regionSyntax, bool) {
	open, ok := p.expect(LBrace, diag.SynUnexpectedToken, "'{'")
	if !ok {
		return nil, false
	}
	reg := &regionSyntax{}
	if p.eat(Caret) {
		if !p.parseParams(reg) {
			return nil, false
		}
	}
	for !p.at(RBrace) {
		if p.at(EOF) {
			p.err(diag.SynUnclosedBrace, open.Span, "unclosed '{'")
			return nil, false
		}
		op, ok := p.parseOp()
		if !ok {
			return nil, false
		}
		reg.Ops = append(reg.Ops, op)
	}
	p.advance()
	return reg, true
}

func (p *parser) parseParams(reg *regionSyntax) bool {
	if _, ok := p.expect(LParen, diag.SynUnexpectedToken, "'(' after '^'"); !ok {
		return false
	}
	for !p.at(RParen) {
		tok, ok := p.expect(Value, diag.SynUnexpectedToken, "parameter name")
		if !ok {
			return false
		}
		if _, ok := p.expect(Colon, diag.SynUnexpectedToken, "':' after parameter name"); !ok {
			return false
		}
		typ, sp, ok := p.lx.ScanType()
		if !ok {
			p.err(diag.SynExpectType, sp, "expected parameter type")
			return false
		}
		reg.Params = append(reg.Params, paramSyntax{Ref: valueRef{Name: tok.Text, Span: tok.Span}, Type: irType(typ)})
		if !p.eat(Comma) {
			break
		}
	}
	if _, ok := p.expect(RParen, diag.SynUnclosedParen, "')' to close parameter list"); !ok {
		return false
	}
	_, ok := p.expect(Colon, diag.SynUnexpectedToken, "':' after parameter list")
	return ok
}

// parseOp: [results =] "name"(operands) [(regions)] [[attrs]] : (types)
func (p *parser) parseOp() (*opSyntax, bool) {
	op := &opSyntax{}
	if p.at(Value) {
		for {
			tok, ok := p.expect(Value, diag.SynUnexpectedToken, "result name")
			if !ok {
				return nil, false
			}
			op.Results = append(op.Results, valueRef{Name: tok.Text, Span: tok.Span})
			if !p.eat(Comma) {
				break
			}
		}
		if _, ok := p.expect(Eq, diag.SynUnexpectedToken, "'=' after result names"); !ok {
			return nil, false
		}
	}

	name, ok := p.expect(String, diag.SynExpectOpName, "quoted operation name")
	if !ok {
		return nil, false
	}
	op.Name, op.NameSpan = name.Text, name.Span

	open, ok := p.expect(LParen, diag.SynUnexpectedToken, "'(' before operands")
	if !ok {
		return nil, false
	}
	for !p.at(RParen) {
		tok, ok := p.expect(Value, diag.SynUnexpectedToken, "operand")
		if !ok {
			return nil, false
		}
		op.Operands = append(op.Operands, valueRef{Name: tok.Text, Span: tok.Span})
		if !p.eat(Comma) {
			break
		}
	}
	if !p.eat(RParen) {
		p.err(diag.SynUnclosedParen, open.Span, fmt.Sprintf("unclosed '(' in operand list, found %s", describe(p.peek())))
		return nil, false
	}

	if p.at(LParen) {
		p.advance()
		for {
			reg, ok := p.parseRegion()
			if !ok {
				return nil, false
			}
			op.Regions = append(op.Regions, reg)
			if !p.eat(Comma) {
				break
			}
		}
		if _, ok := p.expect(RParen, diag.SynUnclosedParen, "')' after regions"); !ok {
			return nil, false
		}
	}

	if p.at(LBracket) {
		if !p.parseAttrs(op) {
			return nil, false
		}
	}

	if _, ok := p.expect(Colon, diag.SynUnexpectedToken, "':' before result types"); !ok {
		return nil, false
	}
	tl, ok := p.expect(LParen, diag.SynExpectType, "'(' to open result types")
	if !ok {
		return nil, false
	}
	for {
		typ, sp, ok := p.lx.ScanType()
		if !ok {
			if len(op.Types) > 0 {
				p.err(diag.SynExpectType, sp, "expected type after ','")
				return nil, false
			}
			break
		}
		op.Types = append(op.Types, irType(typ))
		if !p.eat(Comma) {
			break
		}
	}
	if _, ok := p.expect(RParen, diag.SynUnclosedParen, "')' to close result types"); !ok {
		return nil, false
	}
	op.TypeSpan = tl.Span.Cover(p.lastSpan)
	return op, true
}

func (p *parser) parseAttrs(op *opSyntax) bool {
	open := p.advance()
	seen := make(map[string]source.Span)
	for !p.at(RBracket) {
		key, ok := p.expect(Ident, diag.SynUnexpectedToken, "attribute name")
		if !ok {
			return false
		}
		if prev, dup := seen[key.Text]; dup {
			diag.ReportError(p.reporter, diag.SynDuplicateAttribute, key.Span,
				fmt.Sprintf("duplicate attribute %q", key.Text)).
				WithNote(prev, "first set here").
				Emit()
			p.errors++
		}
		seen[key.Text] = key.Span

		if key.Text == "offload" && !p.at(Eq) {
			op.Offload = true
		} else {
			if _, ok := p.expect(Eq, diag.SynUnexpectedToken, "'=' after attribute name"); !ok {
				return false
			}
			val, ok := p.expect(String, diag.SynUnexpectedToken, "quoted attribute value")
			if !ok {
				return false
			}
			op.Attrs = append(op.Attrs, attrSyntax{Attr: attr(key.Text, val.Text), Span: key.Span.Cover(val.Span)})
		}
		if !p.eat(Comma) {
			break
		}
	}
	if !p.eat(RBracket) {
		p.err(diag.SynUnclosedBracket, open.Span, fmt.Sprintf("unclosed '[' in attribute list, found %s", describe(p.peek())))
		return false
	}
	return true
}
