package gateway

import "math"

// MinorUnits converts a major-unit decimal amount (e.g. 19.99) to integer
// minor units (1999). Rounding is half-up to the nearest minor unit; amounts
// are never negative here so math.Round's half-away-from-zero is exactly
// half-up. This is the only place amounts change representation.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// MajorUnits converts integer minor units back to the decimal amount.
func MajorUnits(minor int64) float64 {
	return float64(minor) / 100
}
