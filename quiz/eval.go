package quiz

import (
	"errors"
	"strconv"
	"unicode"
)

// A closed recursive-descent evaluator over digits, + - * / ( ) and '.'.
// It can only ever perform arithmetic on numeric literals: there are no
// identifiers, no calls, no assignment. The validator guarantees the charset
// before this runs, but the parser rejects anything unexpected on its own.

type parser struct {
	src []rune
	pos int
}

func evaluate(expr string) (float64, error) {
	p := &parser{src: []rune(expr)}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return 0, errors.New("unexpected trailing input")
	}
	return v, nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) peek() (rune, bool) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

// expr := term (('+' | '-') term)*
func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peek()
		if !ok || (op != '+' && op != '-') {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

// term := factor (('*' | '/') factor)*
func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peek()
		if !ok || (op != '*' && op != '/') {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, errors.New("division by zero")
			}
			left /= right
		}
	}
}

// factor := ('+' | '-')? (number | '(' expr ')')
func (p *parser) parseFactor() (float64, error) {
	r, ok := p.peek()
	if !ok {
		return 0, errors.New("unexpected end of expression")
	}
	switch {
	case r == '+':
		p.pos++
		return p.parseFactor()
	case r == '-':
		p.pos++
		v, err := p.parseFactor()
		return -v, err
	case r == '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if r, ok := p.peek(); !ok || r != ')' {
			return 0, errors.New("unbalanced parentheses")
		}
		p.pos++
		return v, nil
	case r >= '0' && r <= '9':
		return p.parseNumber()
	default:
		return 0, errors.New("unexpected character " + strconv.QuoteRune(r))
	}
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.pos < len(p.src) && p.src[p.pos] == '.' {
		p.pos++
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
	}
	v, err := strconv.ParseFloat(string(p.src[start:p.pos]), 64)
	if err != nil {
		return 0, errors.New("invalid number")
	}
	return v, nil
}
