package payroll

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Formula grammar:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/" | "//" | "%") unary }
//	unary   = ("+" | "-") unary | primary
//	primary = number | code | "(" expr ")"
//
// A code is a component reference ([A-Za-z_][A-Za-z0-9_]*). Anything else,
// including calls, attribute access and comparison operators, is rejected.

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokCode
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func lex(src string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			seenDot := false
			for i < len(src) && (isDigit(src[i]) || (src[i] == '.' && !seenDot)) {
				if src[i] == '.' {
					seenDot = true
				}
				i++
			}
			if i < len(src) && (isIdentStart(src[i]) || src[i] == '.') {
				return nil, unsupportedf(src, i, "malformed number")
			}
			tokens = append(tokens, token{kind: tokNumber, text: src[start:i], pos: start})
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokCode, text: src[start:i], pos: start})
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			tokens = append(tokens, token{kind: tokOp, text: "//", pos: i})
			i += 2
		case c == '*' && i+1 < len(src) && src[i+1] == '*':
			return nil, unsupportedf(src, i, "exponentiation is not allowed")
		case c == '+' || c == '-' || c == '*' || c == '/' || c == '%':
			tokens = append(tokens, token{kind: tokOp, text: string(c), pos: i})
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		default:
			return nil, unsupportedf(src, i, "unexpected character %q", c)
		}
	}
	tokens = append(tokens, token{kind: tokEOF, pos: len(src)})
	return tokens, nil
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }

type node interface {
	eval(env func(string) (decimal.Decimal, error)) (decimal.Decimal, error)
}

type numberNode struct{ value decimal.Decimal }

type codeNode struct{ code string }

type unaryNode struct {
	op      string
	operand node
}

type binaryNode struct {
	op          string
	left, right node
}

func (n numberNode) eval(func(string) (decimal.Decimal, error)) (decimal.Decimal, error) {
	return n.value, nil
}

func (n codeNode) eval(env func(string) (decimal.Decimal, error)) (decimal.Decimal, error) {
	return env(n.code)
}

func (n unaryNode) eval(env func(string) (decimal.Decimal, error)) (decimal.Decimal, error) {
	value, err := n.operand.eval(env)
	if err != nil {
		return decimal.Zero, err
	}
	if n.op == "-" {
		return value.Neg(), nil
	}
	return value, nil
}

func (n binaryNode) eval(env func(string) (decimal.Decimal, error)) (decimal.Decimal, error) {
	left, err := n.left.eval(env)
	if err != nil {
		return decimal.Zero, err
	}
	right, err := n.right.eval(env)
	if err != nil {
		return decimal.Zero, err
	}
	switch n.op {
	case "+":
		return left.Add(right), nil
	case "-":
		return left.Sub(right), nil
	case "*":
		return left.Mul(right), nil
	}
	if right.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	switch n.op {
	case "/":
		return left.Div(right), nil
	case "//":
		quotient, _ := left.QuoRem(right, 0)
		return quotient, nil
	default:
		return left.Mod(right), nil
	}
}

type parser struct {
	src    string
	tokens []token
	pos    int
	codes  []string
	seen   map[string]bool
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokOp || (tok.text != "+" && tok.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: tok.text, left: left, right: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokOp || tok.text == "+" || tok.text == "-" {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: tok.text, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	tok := p.peek()
	if tok.kind == tokOp && (tok.text == "+" || tok.text == "-") {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: tok.text, operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		text := tok.text
		if strings.HasSuffix(text, ".") {
			text += "0"
		}
		value, err := decimal.NewFromString(text)
		if err != nil {
			return nil, unsupportedf(p.src, tok.pos, "invalid number %q", tok.text)
		}
		return numberNode{value: value}, nil
	case tokCode:
		if p.peek().kind == tokLParen {
			return nil, unsupportedf(p.src, tok.pos, "function call %q is not allowed", tok.text)
		}
		if !p.seen[tok.text] {
			p.seen[tok.text] = true
			p.codes = append(p.codes, tok.text)
		}
		return codeNode{code: tok.text}, nil
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, unsupportedf(p.src, closing.pos, "expected ')'")
		}
		return inner, nil
	case tokEOF:
		return nil, unsupportedf(p.src, tok.pos, "unexpected end of expression")
	default:
		return nil, unsupportedf(p.src, tok.pos, "unexpected %q", tok.text)
	}
}

// Expr is a parsed formula.
type Expr struct {
	src   string
	root  node
	codes []string
}

// ParseExpr parses a formula. Any syntax outside the arithmetic grammar yields
// an *UnsupportedExpressionError.
func ParseExpr(src string) (*Expr, error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, tokens: tokens, seen: map[string]bool{}}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, unsupportedf(src, tok.pos, "unexpected %q", tok.text)
	}
	return &Expr{src: src, root: root, codes: p.codes}, nil
}

func (e *Expr) String() string { return e.src }

// Codes lists the component codes referenced by the formula in order of first appearance.
func (e *Expr) Codes() []string {
	out := make([]string, len(e.codes))
	copy(out, e.codes)
	return out
}

// Eval evaluates the formula, looking up component codes in values. A code
// missing from values is rejected. The result is quantized to two digits.
func (e *Expr) Eval(values map[string]decimal.Decimal) (decimal.Decimal, error) {
	result, err := e.root.eval(func(code string) (decimal.Decimal, error) {
		value, ok := values[code]
		if !ok {
			return decimal.Zero, unsupportedf(e.src, 0, "name %q is not allowed", code)
		}
		return value, nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return ToMoney(result), nil
}

// Evaluate parses and evaluates a purely numeric formula.
func Evaluate(src string) (decimal.Decimal, error) {
	expr, err := ParseExpr(src)
	if err != nil {
		return decimal.Zero, err
	}
	return expr.Eval(nil)
}
