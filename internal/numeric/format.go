package numeric

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Format renders a value for a diagram label: integers get thousands separators,
// fractional values keep at most two decimals with trailing zeros removed.
func Format(v float64) string {
	if math.IsNaN(v) {
		return "undefined"
	}
	if math.IsInf(v, 1) {
		return "∞"
	}
	if math.IsInf(v, -1) {
		return "-∞"
	}
	if math.Abs(v) >= 1e15 {
		return strconv.FormatFloat(v, 'g', 4, 64)
	}
	r := math.Round(v*100) / 100
	if r == 0 {
		return "0"
	}
	if r == math.Trunc(r) && math.Abs(r) < 1e15 {
		return printer.Sprintf("%d", int64(r))
	}
	s := printer.Sprintf("%.2f", r)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// FormatDegrees renders an angle with a degree sign.
func FormatDegrees(v float64) string {
	return Format(v) + "°"
}

// FormatPercent renders a share in [0, 1] as a percentage with one decimal.
func FormatPercent(share float64) string {
	p := math.Round(share*1000) / 10
	return Format(p) + "%"
}
