package numeric

import "math"

// AngleTolerance is the slack, in degrees, allowed when checking that a set of
// angles adds up to a target such as 180 or 360.
const AngleTolerance = 1e-3

// Epsilon is the tolerance used for boundary and degeneracy checks on plain values.
const Epsilon = 1e-9

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// NormalizeDegrees wraps an angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}

// SinDeg returns the sine of an angle in degrees. Multiples of 90 are exact.
func SinDeg(deg float64) float64 {
	if q, ok := quarterTurns(deg); ok {
		return [4]float64{0, 1, 0, -1}[q]
	}
	return math.Sin(Radians(deg))
}

// CosDeg returns the cosine of an angle in degrees. Multiples of 90 are exact.
func CosDeg(deg float64) float64 {
	if q, ok := quarterTurns(deg); ok {
		return [4]float64{1, 0, -1, 0}[q]
	}
	return math.Cos(Radians(deg))
}

// TanDeg returns the tangent of an angle in degrees and false where it is undefined.
func TanDeg(deg float64) (float64, bool) {
	c := CosDeg(deg)
	if c == 0 {
		return math.NaN(), false
	}
	return SinDeg(deg) / c, true
}

// Atan2Deg is math.Atan2 reported in degrees.
func Atan2Deg(y, x float64) float64 {
	return Degrees(math.Atan2(y, x))
}

// AsinDeg returns asin(v) in degrees, false when |v| > 1.
func AsinDeg(v float64) (float64, bool) {
	if v < -1 || v > 1 || math.IsNaN(v) {
		return math.NaN(), false
	}
	return Degrees(math.Asin(v)), true
}

// AcosDeg returns acos(v) in degrees, false when |v| > 1.
func AcosDeg(v float64) (float64, bool) {
	if v < -1 || v > 1 || math.IsNaN(v) {
		return math.NaN(), false
	}
	return Degrees(math.Acos(v)), true
}

// AnglesEqual reports whether two angles in degrees agree within AngleTolerance.
func AnglesEqual(a, b float64) bool {
	return math.Abs(a-b) <= AngleTolerance
}

// SumsTo reports whether the angles add up to target within AngleTolerance.
func SumsTo(target float64, angles ...float64) bool {
	sum := 0.0
	for _, a := range angles {
		sum += a
	}
	return AnglesEqual(sum, target)
}

func quarterTurns(deg float64) (int, bool) {
	q := deg / 90
	if q != math.Trunc(q) || math.IsInf(q, 0) {
		return 0, false
	}
	n := int(math.Mod(q, 4))
	if n < 0 {
		n += 4
	}
	return n, true
}
