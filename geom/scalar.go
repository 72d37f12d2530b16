package geom

import "math"

// Tau is a full turn in radians.
const Tau = 2 * math.Pi

// FrameMillis is the frame duration ExpDecay is calibrated against (60 fps).
const FrameMillis = 1000.0 / 60.0

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// ExpDecay moves a towards b with a frame rate independent exponential
// decay. dt is the elapsed time in milliseconds.
func ExpDecay(a, b, decay, dt float64) float64 {
	return b + (a-b)*math.Exp(-decay*(dt/FrameMillis))
}

// Remainder is the modulo operation with the sign of b, so Remainder(-1, 3)
// is 2.
func Remainder(a, b float64) float64 {
	return math.Mod(math.Mod(a, b)+b, b)
}

// Wrap wraps v into [lo, hi).
func Wrap(v, lo, hi float64) float64 {
	return Remainder(v-lo, hi-lo) + lo
}

// MapRange maps v from [inLo, inHi] to [outLo, outHi]. It does not clamp.
func MapRange(v, inLo, inHi, outLo, outHi float64) float64 {
	return (v-inLo)/(inHi-inLo)*(outHi-outLo) + outLo
}

// MoveTowards moves a towards b by at most maxDelta.
func MoveTowards(a, b, maxDelta float64) float64 {
	d := b - a
	if math.Abs(d) <= maxDelta {
		return b
	}
	return a + math.Copysign(maxDelta, d)
}

// InRange reports whether v lies in [lo, hi).
func InRange(v, lo, hi float64) bool {
	return v >= lo && v < hi
}

// OpenUpperBound returns the largest float64 strictly below max, the
// upper bound to clamp against when values must stay inside [0, max).
func OpenUpperBound(max float64) float64 {
	return math.Nextafter(max, math.Inf(-1))
}
