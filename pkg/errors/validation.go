package errors

import "math"

// ValidateLevels checks a programmatic level count.
// Textual input goes through params.Resolve instead, which never fails.
func ValidateLevels(levels, max int) error {
	if levels < 0 {
		return New(ErrCodeInvalidParameter, "levels must be non-negative, got %d", levels)
	}
	if levels > max {
		return New(ErrCodeResourceExhausted, "levels %d exceeds limit of %d", levels, max)
	}
	return nil
}

// ValidateProbability checks that p is a probability in [0, 1].
func ValidateProbability(name string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return New(ErrCodeInvalidParameter, "%s must be in [0, 1], got %v", name, p)
	}
	return nil
}

// ValidatePositive checks that a geometry or style measure is finite and > 0.
func ValidatePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return New(ErrCodeInvalidParameter, "%s must be positive, got %v", name, v)
	}
	return nil
}

// ValidateNonNegative checks that a spacing or padding is finite and >= 0.
func ValidateNonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return New(ErrCodeInvalidParameter, "%s must be non-negative, got %v", name, v)
	}
	return nil
}
