package numeric

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Fraction is a parsed "num/den" string. Mixed numbers ("1 3/4") are converted to
// improper form.
type Fraction struct {
	Num int
	Den int
}

func (f Fraction) String() string {
	return fmt.Sprintf("%d/%d", f.Num, f.Den)
}

// Value returns num/den as a float.
func (f Fraction) Value() float64 {
	return float64(f.Num) / float64(f.Den)
}

// ParseFraction parses "3/8", "1 3/4" or a whole number "2". Sign and zero checks
// are left to the caller so it can report them against its own field.
func ParseFraction(s string) (Fraction, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "−", "-"))
	whole := 0
	if w, rest, ok := strings.Cut(s, " "); ok && strings.Contains(rest, "/") {
		n, err := strconv.Atoi(w)
		if err != nil {
			return Fraction{}, fmt.Errorf("bad whole part %q", w)
		}
		whole = n
		s = strings.TrimSpace(rest)
	}
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Fraction{}, fmt.Errorf("bad fraction %q", s)
		}
		return Fraction{Num: n, Den: 1}, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return Fraction{}, fmt.Errorf("bad numerator %q", num)
	}
	d, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil {
		return Fraction{}, fmt.Errorf("bad denominator %q", den)
	}
	if whole != 0 {
		wd, ok := mulInt(whole, d)
		if whole < 0 {
			n = -n
		}
		if !ok || (n > 0 && wd > math.MaxInt-n) || (n < 0 && wd < math.MinInt-n) {
			return Fraction{}, fmt.Errorf("fraction %q is too large", s)
		}
		n += wd
	}
	return Fraction{Num: n, Den: d}, nil
}

// mulInt multiplies a and b, reporting false on overflow.
func mulInt(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) {
		return 0, false
	}
	return p, true
}
