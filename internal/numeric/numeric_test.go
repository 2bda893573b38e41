package numeric

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrigExactQuarterTurns(t *testing.T) {
	assert.Equal(t, 0.0, SinDeg(180))
	assert.Equal(t, 1.0, SinDeg(90))
	assert.Equal(t, -1.0, SinDeg(-90))
	assert.Equal(t, 0.0, CosDeg(270))
	assert.InDelta(t, 0.5, SinDeg(30), 1e-12)

	_, ok := TanDeg(90)
	assert.False(t, ok)
	v, ok := TanDeg(45)
	require.True(t, ok)
	assert.InDelta(t, 1.0, v, 1e-12)
}

func TestNormalizeDegrees(t *testing.T) {
	assert.Equal(t, 270.0, NormalizeDegrees(-90))
	assert.Equal(t, 0.0, NormalizeDegrees(360))
	assert.InDelta(t, 10.0, NormalizeDegrees(730), 1e-9)
}

func TestSumsTo(t *testing.T) {
	assert.True(t, SumsTo(180, 60, 60, 60))
	assert.True(t, SumsTo(180, 59.9995, 60, 60))
	assert.False(t, SumsTo(180, 59.99, 60, 60))
}

func TestCheckRange(t *testing.T) {
	require.NoError(t, CheckRange(-5, 5))
	assert.True(t, errors.Is(CheckRange(5, 5), ErrInvalidRange))
	assert.True(t, errors.Is(CheckRange(3, -1), ErrInvalidRange))
	assert.True(t, errors.Is(CheckRange(math.Inf(-1), 0), ErrInvalidRange))
}

func TestGridStep(t *testing.T) {
	assert.Equal(t, 1.0, GridStep(10, 40))
	assert.Equal(t, 2.0, GridStep(20, 40))
	assert.Equal(t, 5.0, GridStep(40, 40))
	// a huge range is rescaled instead of drawing thousands of lines
	assert.LessOrEqual(t, 1e6/GridStep(1e6, 40), 40.0)
	// a tiny range still gets a few lines
	assert.GreaterOrEqual(t, 0.01/GridStep(0.01, 40), 2.0)
}

func TestTicks(t *testing.T) {
	assert.Equal(t, []float64{-2, -1, 0, 1, 2}, Ticks(-2, 2, 1))
	assert.Equal(t, []float64{0, 0.5, 1}, Ticks(-0.2, 1.1, 0.5))
	got := Ticks(0, 1, 0.1)
	require.Len(t, got, 11)
	assert.InDelta(t, 1.0, got[10], 1e-12)
}

func TestTicksAtExtremeMagnitudes(t *testing.T) {
	tests := []struct {
		name         string
		lo, hi, step float64
		wantLen      int
	}{
		{"beyond exact integers", 1e16, 1.000000000000002e16, 1, 0},
		{"offset run", 1e15, 1e15 + 4, 1, 5},
		{"too many", 0, 1e6, 1, 0},
		{"at the cap", 0, MaxTicks - 1, 1, MaxTicks},
		{"tiny step", 0, 1e-10, 1e-11, 11},
		{"infinite bound", 0, math.Inf(1), 1, 0},
		{"nan step", 0, 1, math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done := make(chan []float64, 1)
			go func() { done <- Ticks(tt.lo, tt.hi, tt.step) }()
			select {
			case got := <-done:
				assert.Len(t, got, tt.wantLen)
			case <-time.After(2 * time.Second):
				t.Fatal("Ticks did not return")
			}
		})
	}
}

func TestCheckRangeRejectsUndrawableSpans(t *testing.T) {
	assert.NoError(t, CheckRange(-1e300, 1e300))
	assert.NoError(t, CheckRange(0, 1e-10))
	assert.NoError(t, CheckRange(1e6, 1e6+1))
	assert.ErrorIs(t, CheckRange(-1e308, 1e308), ErrInvalidRange)
	assert.ErrorIs(t, CheckRange(0, 1e-320), ErrInvalidRange)
	assert.ErrorIs(t, CheckRange(1e15, 1e15+1), ErrInvalidRange)
}

func TestLeadingNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10", 10, true},
		{"10m", 10, true},
		{"2.5 cm", 2.5, true},
		{"x", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := LeadingNumber(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0", Format(-0.0))
	assert.Equal(t, "3", Format(3))
	assert.Equal(t, "2.5", Format(2.5))
	assert.Equal(t, "0.3", Format(0.1+0.2))
	assert.Equal(t, "-4", Format(-4))
	assert.Equal(t, "1,234,567", Format(1234567))
	assert.Equal(t, "1e+300", Format(1e300))
	assert.Equal(t, "-2.5e+16", Format(-2.5e16))
	assert.Equal(t, "72°", FormatDegrees(72))
	assert.Equal(t, "37.5%", FormatPercent(0.375))
}

func TestParseExpr(t *testing.T) {
	tests := []struct {
		src  string
		x    float64
		want float64
	}{
		{"x^2", 3, 9},
		{"2*x+3", 2, 7},
		{"2x + 3", 2, 7},
		{"-x^2", 2, -4},
		{"3(x+1)", 1, 6},
		{"(x-1)(x+1)", 3, 8},
		{"2^3^2", 0, 512},
		{"x/2", 5, 2.5},
		{"sqrt(x)", 16, 4},
		{"abs(x)", -3, 3},
		{"2pi", 0, 2 * math.Pi},
		{"x²", 4, 16},
		{"x − 1", 4, 3},
		{"ln(e)", 0, 1},
		{"sin x", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := ParseExpr(tt.src)
			require.NoError(t, err)
			got, ok := e.Eval(tt.x)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseExprErrors(t *testing.T) {
	for _, src := range []string{"", "x +", "y + 1", "2 $ x", "sin(x", "(x", "foo(x)"} {
		_, err := ParseExpr(src)
		var pe *ParseError
		assert.True(t, errors.As(err, &pe), "expected parse error for %q, got %v", src, err)
	}
}

func TestExprUndefined(t *testing.T) {
	e, err := ParseExpr("1/x")
	require.NoError(t, err)
	_, ok := e.Eval(0)
	assert.False(t, ok)

	e, err = ParseExpr("sqrt(x)")
	require.NoError(t, err)
	_, ok = e.Eval(-1)
	assert.False(t, ok)

	e, err = ParseExpr("log(x)")
	require.NoError(t, err)
	_, ok = e.Eval(0)
	assert.False(t, ok)
}

func TestExprDegrees(t *testing.T) {
	e, err := ParseExpr("sin(x)")
	require.NoError(t, err)
	e.Degrees = true
	v, ok := e.Eval(90)
	require.True(t, ok)
	assert.InDelta(t, 1.0, v, 1e-12)
}

func TestParseTerms(t *testing.T) {
	terms, err := ParseTerms("5x + 3 - 2x + 7")
	require.NoError(t, err)
	require.Len(t, terms, 4)
	assert.Equal(t, 5.0, terms[0].Value())
	assert.Equal(t, "x", terms[0].Signature())
	assert.Equal(t, 3.0, terms[1].Value())
	assert.Equal(t, "", terms[1].Signature())
	assert.Equal(t, -2.0, terms[2].Value())
	assert.Equal(t, "x", terms[2].Signature())

	terms, err = ParseTerms("-x + 2xy - 3yx + 1/2a²")
	require.NoError(t, err)
	require.Len(t, terms, 4)
	assert.Equal(t, -1.0, terms[0].Value())
	assert.Equal(t, "xy", terms[1].Signature())
	assert.Equal(t, "xy", terms[2].Signature())
	assert.Equal(t, "a^2", terms[3].Signature())
	assert.Equal(t, 0.5, terms[3].Value())

	_, err = ParseTerms("3x + (2 - x)")
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
	_, err = ParseTerms("3x +")
	assert.True(t, errors.As(err, &pe))
}

func TestFormatTerm(t *testing.T) {
	assert.Equal(t, "x", FormatTerm(1, "x"))
	assert.Equal(t, "-x", FormatTerm(-1, "x"))
	assert.Equal(t, "3x", FormatTerm(3, "x"))
	assert.Equal(t, "10", FormatTerm(10, ""))
}

func TestParseFraction(t *testing.T) {
	f, err := ParseFraction("3/8")
	require.NoError(t, err)
	assert.Equal(t, Fraction{3, 8}, f)

	f, err = ParseFraction("1 3/4")
	require.NoError(t, err)
	assert.Equal(t, Fraction{7, 4}, f)

	f, err = ParseFraction("2")
	require.NoError(t, err)
	assert.Equal(t, Fraction{2, 1}, f)

	f, err = ParseFraction("-2 1/4")
	require.NoError(t, err)
	assert.Equal(t, Fraction{-9, 4}, f)

	_, err = ParseFraction("three/8")
	assert.Error(t, err)

	for _, s := range []string{"4611686018427387904 1/2", "-4611686018427387904 1/2", "1 9223372036854775807/1"} {
		_, err = ParseFraction(s)
		assert.Error(t, err, s)
	}
}
