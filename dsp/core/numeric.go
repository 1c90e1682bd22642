package core

import "math"

const defaultEpsilon = 1e-12

// MagnitudeFloorDB is the lowest level reported by MagnitudeToDB.
const MagnitudeFloorDB = -120.0

// NearlyEqual reports whether a and b are equal within eps, using a
// relative comparison for large magnitudes.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// AllFinite reports whether every element of data is finite. It returns the
// index of the first offending element, or -1.
func AllFinite(data []float64) (bool, int) {
	for i, v := range data {
		if !IsFinite(v) {
			return false, i
		}
	}
	return true, -1
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// DBPowerToLinear converts dB to linear power (10*log10 convention).
func DBPowerToLinear(db float64) float64 {
	return math.Pow(10, db/10)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// LinearPowerToDB converts linear power to dB (10*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearPowerToDB(power float64) float64 {
	if power < 0 {
		return math.NaN()
	}

	if power == 0 {
		return math.Inf(-1)
	}

	return 10 * math.Log10(power)
}

// MagnitudeToDB converts a non-negative magnitude to dB, clamped from below
// at MagnitudeFloorDB so that exact notch zeros stay plottable.
func MagnitudeToDB(mag float64) float64 {
	db := LinearToDB(math.Abs(mag))
	if math.IsInf(db, -1) || db < MagnitudeFloorDB {
		return MagnitudeFloorDB
	}
	return db
}

// MagnitudesToDB applies MagnitudeToDB to every element of mags, writing into
// dst (reallocated when too short) and returning it.
func MagnitudesToDB(dst, mags []float64) []float64 {
	dst = EnsureLen(dst, len(mags))
	for i, m := range mags {
		dst[i] = MagnitudeToDB(m)
	}
	return dst
}
