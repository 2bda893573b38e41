package numeric

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Term is one signed monomial of a linear-style algebraic expression, e.g. "-2x" or "3ab^2".
type Term struct {
	Text  string  // as written, without the leading sign
	Sign  int     // +1 or -1
	Coef  float64 // magnitude; signed value is Sign*Coef
	Vars  map[string]int
	Index int // position in the source expression
}

// Value returns the signed coefficient.
func (t Term) Value() float64 {
	return float64(t.Sign) * t.Coef
}

// Signature identifies like terms: variables sorted with their exponents, "" for constants.
func (t Term) Signature() string {
	return signature(t.Vars)
}

func signature(vars map[string]int) string {
	names := make([]string, 0, len(vars))
	for v := range vars {
		names = append(names, v)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, v := range names {
		b.WriteString(v)
		if vars[v] != 1 {
			b.WriteString("^")
			b.WriteString(strconv.Itoa(vars[v]))
		}
	}
	return b.String()
}

// ParseTerms splits an expression such as "5x + 3 - 2x + 7" into signed terms.
func ParseTerms(src string) ([]Term, error) {
	s := normalizeOperators(src)
	var terms []Term
	sign := 1
	start := -1
	runes := []rune(s)
	flush := func(end int) error {
		if start < 0 {
			return &ParseError{Input: src, Pos: end, Msg: "missing term"}
		}
		text := strings.TrimSpace(string(runes[start:end]))
		t, err := parseTerm(src, start, text)
		if err != nil {
			return err
		}
		t.Sign = sign
		t.Index = len(terms)
		terms = append(terms, t)
		start = -1
		return nil
	}
	for i, r := range runes {
		switch {
		case r == '+' || r == '-':
			if start < 0 && len(terms) == 0 && i == firstNonSpace(runes) {
				if r == '-' {
					sign = -1
				}
				continue
			}
			if err := flush(i); err != nil {
				return nil, err
			}
			sign = 1
			if r == '-' {
				sign = -1
			}
		case unicode.IsSpace(r):
		default:
			if start < 0 {
				start = i
			}
		}
	}
	if err := flush(len(runes)); err != nil {
		return nil, err
	}
	return terms, nil
}

func firstNonSpace(runes []rune) int {
	for i, r := range runes {
		if !unicode.IsSpace(r) {
			return i
		}
	}
	return 0
}

func normalizeOperators(s string) string {
	return strings.NewReplacer("−", "-", "–", "-", "×", "*", "·", "*").Replace(s)
}

// parseTerm reads [coefficient][*]variables, where the coefficient is a decimal or
// a fraction and each variable is a letter with an optional ^exponent.
func parseTerm(src string, offset int, text string) (Term, error) {
	t := Term{Text: text, Coef: 1, Vars: map[string]int{}}
	runes := []rune(text)
	i := 0
	for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.' || runes[i] == '/') {
		i++
	}
	if i > 0 {
		c, err := parseCoefficient(string(runes[:i]))
		if err != nil {
			return Term{}, &ParseError{Input: src, Pos: offset, Msg: err.Error()}
		}
		t.Coef = c
	}
	if i < len(runes) && runes[i] == '*' {
		i++
	}
	for i < len(runes) {
		r := runes[i]
		if !unicode.IsLetter(r) {
			return Term{}, &ParseError{Input: src, Pos: offset + i, Msg: fmt.Sprintf("unexpected %q in term %q", string(r), text)}
		}
		name := string(unicode.ToLower(r))
		i++
		exp := 1
		if i < len(runes) && runes[i] == '^' {
			i++
			j := i
			for j < len(runes) && unicode.IsDigit(runes[j]) {
				j++
			}
			if j == i {
				return Term{}, &ParseError{Input: src, Pos: offset + i, Msg: "missing exponent"}
			}
			exp, _ = strconv.Atoi(string(runes[i:j]))
			i = j
		} else if i < len(runes) && (runes[i] == '²' || runes[i] == '³') {
			exp = 2
			if runes[i] == '³' {
				exp = 3
			}
			i++
		}
		t.Vars[name] += exp
		if i < len(runes) && runes[i] == '*' {
			i++
		}
	}
	return t, nil
}

func parseCoefficient(s string) (float64, error) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, fmt.Errorf("bad coefficient %q", s)
		}
		return n / d, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad coefficient %q", s)
	}
	return v, nil
}

// FormatTerm writes a signed coefficient and signature the way a textbook would:
// 1x is "x", -1x is "-x", constants keep their number.
func FormatTerm(value float64, sig string) string {
	if sig == "" {
		return Format(value)
	}
	switch {
	case math.Abs(value-1) < Epsilon:
		return sig
	case math.Abs(value+1) < Epsilon:
		return "-" + sig
	}
	return Format(value) + sig
}
