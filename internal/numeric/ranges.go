package numeric

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrInvalidRange = errors.New("invalid range")
	ErrNotANumber   = errors.New("not a number")
)

// Limits on the intervals CheckRange accepts. MaxBound leaves room to pad and
// average bounds without overflowing.
const (
	MaxBound = 1e300
	MinSpan  = 1e-12
)

// CheckRange verifies that [lo, hi] is a finite, non-empty interval that can be
// mapped onto a viewport: bounded by MaxBound, and wide enough relative to its
// bounds for neighbouring pixels to land on distinct values.
func CheckRange(lo, hi float64) error {
	if !IsFinite(lo) || !IsFinite(hi) {
		return fmt.Errorf("%w: bounds must be finite", ErrInvalidRange)
	}
	if lo >= hi {
		return fmt.Errorf("%w: min %s must be less than max %s", ErrInvalidRange, Format(lo), Format(hi))
	}
	if math.Abs(lo) > MaxBound || math.Abs(hi) > MaxBound {
		return fmt.Errorf("%w: [%s, %s] is too wide to draw", ErrInvalidRange, Format(lo), Format(hi))
	}
	span := hi - lo
	if span < MinSpan || span < math.Max(math.Abs(lo), math.Abs(hi))*Epsilon {
		return fmt.Errorf("%w: [%s, %s] is too narrow to draw", ErrInvalidRange, Format(lo), Format(hi))
	}
	return nil
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// GridStep picks the spacing of grid lines for a span. Small lesson ranges get the
// familiar 1/2/5 steps; anything that would produce more than maxLines lines is
// rescaled to a nice step instead.
func GridStep(span float64, maxLines int) float64 {
	span = math.Abs(span)
	step := 1.0
	switch {
	case span > 20:
		step = 5
	case span > 10:
		step = 2
	}
	if span/step > float64(maxLines) || span/step < 2 {
		step = NiceStep(span, maxLines/2)
	}
	return step
}

// NiceStep returns a 1, 2 or 5 times power-of-ten step that divides span into
// roughly target pieces.
func NiceStep(span float64, target int) float64 {
	if target < 1 {
		target = 1
	}
	if span <= 0 || !IsFinite(span) {
		return 1
	}
	raw := span / float64(target)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	norm := raw / mag
	var nice float64
	switch {
	case norm < 1.5:
		nice = 1
	case norm < 3:
		nice = 2
	case norm < 7:
		nice = 5
	default:
		nice = 10
	}
	return nice * mag
}

// MaxTicks bounds the length of Ticks.
const MaxTicks = 1000

// Ticks returns the multiples of step inside [lo, hi], computed by index so that
// long runs do not accumulate floating drift. It returns nil when the run would
// exceed MaxTicks or the multiples are too large to tell apart.
func Ticks(lo, hi, step float64) []float64 {
	if step <= 0 || lo > hi || !IsFinite(lo) || !IsFinite(hi) || !IsFinite(step) {
		return nil
	}
	first := math.Ceil(lo/step - Epsilon)
	last := math.Floor(hi/step + Epsilon)
	// past 2^53 adding one no longer moves to the next multiple
	if first+1 == first || last+1 == last || last < first || last-first >= MaxTicks {
		return nil
	}
	n := int(last - first)
	out := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		v := (first + float64(i)) * step
		if math.Abs(v) < step*Epsilon {
			v = 0
		}
		out = append(out, v)
	}
	return out
}

// LeadingNumber parses the numeric prefix of a measurement label such as "10m" or
// "2.5 cm". It returns false for labels that do not start with a number.
func LeadingNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	seenDigit := false
scan:
	for i, r := range s {
		switch {
		case unicode.IsDigit(r):
			seenDigit = true
			end = i + 1
		case r == '.' || (i == 0 && (r == '-' || r == '+')):
			end = i + 1
		default:
			break scan
		}
	}
	if !seenDigit {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
