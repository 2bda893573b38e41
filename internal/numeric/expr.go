package numeric

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseError reports why an expression could not be compiled.
type ParseError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q at offset %d: %s", e.Input, e.Pos, e.Msg)
}

// Expr is a compiled single-variable function of x.
type Expr struct {
	src  string
	root node

	// Degrees makes the trig functions read their argument in degrees.
	Degrees bool
}

// String returns the source text the expression was compiled from.
func (e *Expr) String() string { return e.src }

// Eval evaluates the expression at x. The second result is false where the function
// is undefined: division by zero, a domain error or a non-finite value.
func (e *Expr) Eval(x float64) (float64, bool) {
	v := e.root.eval(x, e.Degrees)
	if !IsFinite(v) {
		return math.NaN(), false
	}
	return v, true
}

// ParseExpr compiles an expression in x. Supported: numbers, x, pi, e, the binary
// operators + - * / ^, unary minus, parentheses, implicit multiplication (2x, 3(x+1))
// and the functions sin cos tan asin acos atan sqrt abs ln log exp.
func ParseExpr(src string) (*Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	root, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %q", t.text)
	}
	return &Expr{src: src, root: root}, nil
}

// --- lexer ---

type tokKind int

const (
	tokEOF tokKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
	num  float64
	pos  int
}

var operatorAliases = map[rune]string{
	'−': "-",
	'–': "-",
	'×': "*",
	'·': "*",
	'÷': "/",
}

func lex(src string) ([]token, error) {
	var toks []token
	runes := []rune(src)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			text := string(runes[start:i])
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &ParseError{Input: src, Pos: start, Msg: fmt.Sprintf("bad number %q", text)}
			}
			toks = append(toks, token{kind: tokNum, text: text, num: v, pos: start})
		case unicode.IsLetter(r) && r != 'π':
			start := i
			for i < len(runes) && unicode.IsLetter(runes[i]) && runes[i] != 'π' {
				i++
			}
			toks = append(toks, splitIdent(strings.ToLower(string(runes[start:i])), start)...)
		case r == 'π':
			toks = append(toks, token{kind: tokIdent, text: "pi", pos: i})
			i++
		case r == '²' || r == '³':
			exp := "2"
			if r == '³' {
				exp = "3"
			}
			toks = append(toks,
				token{kind: tokOp, text: "^", pos: i},
				token{kind: tokNum, text: exp, num: float64(exp[0] - '0'), pos: i})
			i++
		case strings.ContainsRune("+-*/^", r):
			toks = append(toks, token{kind: tokOp, text: string(r), pos: i})
			i++
		case operatorAliases[r] != "":
			toks = append(toks, token{kind: tokOp, text: operatorAliases[r], pos: i})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		default:
			return nil, &ParseError{Input: src, Pos: i, Msg: fmt.Sprintf("unknown token %q", string(r))}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(runes)})
	return toks, nil
}

// splitIdent breaks a run of letters into known names, so "xsin" or "2pix" lex the
// way a reader would expect. Unknown names are kept whole and rejected by the parser.
func splitIdent(word string, pos int) []token {
	var out []token
	for len(word) > 0 {
		matched := ""
		for _, name := range identNames {
			if strings.HasPrefix(word, name) && len(name) > len(matched) {
				matched = name
			}
		}
		if matched == "" {
			return append(out, token{kind: tokIdent, text: word, pos: pos})
		}
		out = append(out, token{kind: tokIdent, text: matched, pos: pos})
		word = word[len(matched):]
		pos += len(matched)
	}
	return out
}

var identNames = []string{"x", "pi", "e", "sin", "cos", "tan", "asin", "acos", "atan", "sqrt", "abs", "ln", "log", "exp"}

// --- parser ---

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &ParseError{Input: p.src, Pos: t.pos, Msg: fmt.Sprintf(format, args...)}
}

// sum := product (('+'|'-') product)*
func (p *parser) parseSum() (node, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = binary{op: t.text[0], l: left, r: right}
	}
}

// product := unary (('*'|'/') unary | power)*
func (p *parser) parseProduct() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		switch {
		case t.kind == tokOp && (t.text == "*" || t.text == "/"):
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = binary{op: t.text[0], l: left, r: right}
		case t.kind == tokNum || t.kind == tokIdent || t.kind == tokLParen:
			right, err := p.parsePower()
			if err != nil {
				return nil, err
			}
			left = binary{op: '*', l: left, r: right}
		default:
			return left, nil
		}
	}
}

// unary := ('-'|'+') unary | power
func (p *parser) parseUnary() (node, error) {
	t := p.peek()
	if t.kind == tokOp && (t.text == "-" || t.text == "+") {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if t.text == "-" {
			return neg{operand}, nil
		}
		return operand, nil
	}
	return p.parsePower()
}

// power := primary ('^' unary)?  (right associative)
func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind == tokOp && t.text == "^" {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return binary{op: '^', l: base, r: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		return constant(t.num), nil
	case tokLParen:
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, p.errorf(c, "expected )")
		}
		return inner, nil
	case tokIdent:
		switch t.text {
		case "x":
			return variable{}, nil
		case "pi":
			return constant(math.Pi), nil
		case "e":
			return constant(math.E), nil
		}
		fn, ok := functions[t.text]
		if !ok {
			return nil, p.errorf(t, "unknown identifier %q", t.text)
		}
		if c := p.peek(); c.kind != tokLParen {
			arg, err := p.parsePower()
			if err != nil {
				return nil, err
			}
			return call{name: t.text, fn: fn, arg: arg}, nil
		}
		p.next()
		arg, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, p.errorf(c, "expected ) after %s argument", t.text)
		}
		return call{name: t.text, fn: fn, arg: arg}, nil
	case tokEOF:
		return nil, p.errorf(t, "unexpected end of expression")
	default:
		return nil, p.errorf(t, "unexpected %q", t.text)
	}
}

// --- AST ---

type node interface {
	eval(x float64, degrees bool) float64
}

type constant float64

func (c constant) eval(float64, bool) float64 { return float64(c) }

type variable struct{}

func (variable) eval(x float64, _ bool) float64 { return x }

type neg struct{ n node }

func (n neg) eval(x float64, d bool) float64 { return -n.n.eval(x, d) }

type binary struct {
	op   byte
	l, r node
}

func (b binary) eval(x float64, d bool) float64 {
	l, r := b.l.eval(x, d), b.r.eval(x, d)
	switch b.op {
	case '+':
		return l + r
	case '-':
		return l - r
	case '*':
		return l * r
	case '/':
		if r == 0 {
			return math.NaN()
		}
		return l / r
	case '^':
		return math.Pow(l, r)
	}
	return math.NaN()
}

type fnSpec struct {
	f    func(float64) float64
	trig bool // argument is an angle
	inv  bool // result is an angle
}

type call struct {
	name string
	fn   fnSpec
	arg  node
}

func (c call) eval(x float64, degrees bool) float64 {
	a := c.arg.eval(x, degrees)
	if degrees && c.fn.trig {
		a = Radians(a)
	}
	v := c.fn.f(a)
	if degrees && c.fn.inv {
		v = Degrees(v)
	}
	return v
}

var functions = map[string]fnSpec{
	"sin": {f: math.Sin, trig: true},
	"cos": {f: math.Cos, trig: true},
	"tan": {f: func(a float64) float64 {
		if math.Abs(math.Cos(a)) < 1e-12 {
			return math.NaN()
		}
		return math.Tan(a)
	}, trig: true},
	"asin": {f: math.Asin, inv: true},
	"acos": {f: math.Acos, inv: true},
	"atan": {f: math.Atan, inv: true},
	"sqrt": {f: math.Sqrt},
	"abs":  {f: math.Abs},
	"ln":   {f: logOrNaN(math.Log)},
	"log":  {f: logOrNaN(math.Log10)},
	"exp":  {f: math.Exp},
}

func logOrNaN(f func(float64) float64) func(float64) float64 {
	return func(a float64) float64 {
		if a <= 0 {
			return math.NaN()
		}
		return f(a)
	}
}
