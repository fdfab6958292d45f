package selector

import (
	"fmt"
	"strconv"
)

// Grammar, loosest binding first:
//
//	or    := and { "or" and }
//	and   := unary { "and" unary }
//	unary := "not" unary | primary
//	primary := "(" or ")" | ident op int | ident
type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) keyword(word string) bool {
	t := p.peek()
	return t.kind == tokIdent && t.text == word
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.keyword("or") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &orNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.keyword("and") {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &andNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.keyword("not") {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &notNode{inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, fmt.Errorf("expected ) at position %d", closing.pos)
		}
		return inner, nil
	case tokIdent:
		if t.text == "and" || t.text == "or" || t.text == "not" {
			return nil, fmt.Errorf("unexpected keyword %q at position %d", t.text, t.pos)
		}
		if p.peek().kind != tokOp {
			return &axisNode{name: t.text}, nil
		}
		op := p.next()
		val := p.next()
		if val.kind != tokInt {
			return nil, fmt.Errorf("expected integer after %q at position %d", op.text, val.pos)
		}
		n, err := strconv.Atoi(val.text)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q at position %d", val.text, val.pos)
		}
		return &cmpNode{axis: t.text, op: op.text, value: n}, nil
	case tokInt:
		return nil, fmt.Errorf("unexpected integer %q at position %d", t.text, t.pos)
	case tokEOF:
		return nil, fmt.Errorf("unexpected end of condition")
	default:
		return nil, fmt.Errorf("unexpected %q at position %d", t.text, t.pos)
	}
}
