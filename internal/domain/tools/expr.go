package tools

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const maxExprDepth = 64

var (
	// ErrSyntax is returned for malformed expressions
	ErrSyntax = errors.New("syntax error")
	// ErrDivisionByZero is returned when a divisor evaluates to zero
	ErrDivisionByZero = errors.New("division by zero")
)

var glyphs = strings.NewReplacer("×", "*", "÷", "/", "−", "-")

// Evaluate computes an arithmetic expression. The grammar is numeric
// literals, binary + - * /, unary minus and parentheses; nothing else
// is accepted.
//
//	expr   = term { ("+" | "-") term }
//	term   = unary { ("*" | "/") unary }
//	unary  = ("-" | "+") unary | primary
//	primary = number | "(" expr ")"
func Evaluate(input string) (float64, error) {
	p := &parser{src: glyphs.Replace(input)}
	p.skipSpace()
	if p.done() {
		return 0, fmt.Errorf("%w: empty expression", ErrSyntax)
	}

	v, err := p.expr(0)
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if !p.done() {
		return 0, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, p.src[p.pos], p.pos)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: result out of range", ErrSyntax)
	}
	return v, nil
}

// FormatNumber renders integers without a fractional part
func FormatNumber(v float64) string {
	if v == 0 {
		// drops the sign of -0
		v = 0
	}
	if math.Abs(v) >= 1e21 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type parser struct {
	src string
	pos int
}

func (p *parser) done() bool {
	return p.pos >= len(p.src)
}

func (p *parser) skipSpace() {
	for !p.done() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.done() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expr(depth int) (float64, error) {
	if depth > maxExprDepth {
		return 0, fmt.Errorf("%w: nesting too deep", ErrSyntax)
	}

	left, err := p.term(depth)
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.term(depth)
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

func (p *parser) term(depth int) (float64, error) {
	left, err := p.unary(depth)
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.unary(depth)
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
			continue
		}
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		left /= right
	}
}

func (p *parser) unary(depth int) (float64, error) {
	if depth > maxExprDepth {
		return 0, fmt.Errorf("%w: nesting too deep", ErrSyntax)
	}
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.unary(depth + 1)
		return -v, err
	case '+':
		p.pos++
		return p.unary(depth + 1)
	}
	return p.primary(depth)
}

func (p *parser) primary(depth int) (float64, error) {
	c := p.peek()
	if c == '(' {
		p.pos++
		v, err := p.expr(depth + 1)
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("%w: missing ')'", ErrSyntax)
		}
		p.pos++
		return v, nil
	}
	return p.number()
}

func (p *parser) number() (float64, error) {
	start := p.pos
	dot := false
	for !p.done() {
		c := p.src[p.pos]
		if c == '.' && !dot {
			dot = true
		} else if c < '0' || c > '9' {
			break
		}
		p.pos++
	}
	lit := p.src[start:p.pos]
	if lit == "" || lit == "." {
		if p.done() {
			return 0, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
		}
		return 0, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, p.src[start], start)
	}
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad number %q", ErrSyntax, lit)
	}
	return v, nil
}
