package util

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ErrInvalidExpression is returned for any amount input that cannot be
// evaluated to a finite number
var ErrInvalidExpression = errors.New("invalid amount expression")

var (
	bareNumberPattern    = regexp.MustCompile(`^-?\d+\.?\d*$`)
	allowedCharsPattern  = regexp.MustCompile(`^[\d+\-*/().]+$`)
	consecutiveOpPattern = regexp.MustCompile(`[+\-*/]{2,}`)
)

// ParseAmount evaluates a quick-add amount input: either a plain number or a
// small arithmetic expression over decimal literals with + - * / and
// parentheses, standard precedence. The input is end-user supplied, so the
// evaluator is a dedicated parser over this grammar and nothing else.
// The result is rounded to 2 decimal places.
func ParseAmount(expression string) (decimal.Decimal, error) {
	cleaned := stripWhitespace(expression)
	if cleaned == "" {
		return decimal.Zero, ErrInvalidExpression
	}

	// A bare numeric literal short-circuits expression evaluation
	if bareNumberPattern.MatchString(cleaned) {
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return decimal.Zero, ErrInvalidExpression
		}
		return d.Round(2), nil
	}

	if !allowedCharsPattern.MatchString(cleaned) {
		return decimal.Zero, ErrInvalidExpression
	}
	if consecutiveOpPattern.MatchString(cleaned) {
		return decimal.Zero, ErrInvalidExpression
	}

	p := &amountParser{input: cleaned}
	result, err := p.parseExpression()
	if err != nil {
		return decimal.Zero, ErrInvalidExpression
	}
	if p.pos != len(p.input) {
		return decimal.Zero, ErrInvalidExpression
	}

	return result.Round(2), nil
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// amountParser is a recursive-descent parser over the validated input:
//
//	expression := term { ("+" | "-") term }
//	term       := factor { ("*" | "/") factor }
//	factor     := number | "(" expression ")" | "-" factor
type amountParser struct {
	input string
	pos   int
}

func (p *amountParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *amountParser) parseExpression() (decimal.Decimal, error) {
	left, err := p.parseTerm()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Add(right)
		case '-':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Sub(right)
		default:
			return left, nil
		}
	}
}

func (p *amountParser) parseTerm() (decimal.Decimal, error) {
	left, err := p.parseFactor()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			right, err := p.parseFactor()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Mul(right)
		case '/':
			p.pos++
			right, err := p.parseFactor()
			if err != nil {
				return decimal.Zero, err
			}
			if right.IsZero() {
				return decimal.Zero, ErrInvalidExpression
			}
			left = left.Div(right)
		default:
			return left, nil
		}
	}
}

func (p *amountParser) parseFactor() (decimal.Decimal, error) {
	switch {
	case p.peek() == '(':
		p.pos++
		inner, err := p.parseExpression()
		if err != nil {
			return decimal.Zero, err
		}
		if p.peek() != ')' {
			return decimal.Zero, ErrInvalidExpression
		}
		p.pos++
		return inner, nil
	case p.peek() == '-':
		p.pos++
		inner, err := p.parseFactor()
		if err != nil {
			return decimal.Zero, err
		}
		return inner.Neg(), nil
	default:
		return p.parseNumber()
	}
}

func (p *amountParser) parseNumber() (decimal.Decimal, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return decimal.Zero, ErrInvalidExpression
	}
	d, err := decimal.NewFromString(p.input[start:p.pos])
	if err != nil {
		return decimal.Zero, ErrInvalidExpression
	}
	return d, nil
}
