package math

import (
	stdmath "math"

	"golang.org/x/exp/constraints"
)

const (
	PI             float32 = 3.14159265358979323846
	DEG2RAD_MULTI  float32 = PI / 180.0
	RAD2DEG_MULTI  float32 = 180.0 / PI
	FLOAT_EPSILON  float32 = 1.192092896e-07
	K_INFINITY     float32 = 1e30
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

func Abs[T constraints.Signed | constraints.Float](f T) T {
	if f < 0 {
		return -f
	}
	return f
}

func sqrt(x float32) float32 {
	return float32(stdmath.Sqrt(float64(x)))
}

func sin(x float32) float32 {
	return float32(stdmath.Sin(float64(x)))
}

func cos(x float32) float32 {
	return float32(stdmath.Cos(float64(x)))
}

func tan(x float32) float32 {
	return float32(stdmath.Tan(float64(x)))
}

/**
 * @brief Converts provided degrees to radians.
 */
func DegToRad(degrees float32) float32 {
	return degrees * DEG2RAD_MULTI
}

/**
 * @brief Converts provided radians to degrees.
 */
func RadToDeg(radians float32) float32 {
	return radians * RAD2DEG_MULTI
}
