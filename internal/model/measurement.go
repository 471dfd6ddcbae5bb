package model

import "math"

// RPM is a validated spindle speed in revolutions per minute.
type RPM float64

// Distance is a validated length in mm.
type Distance float64

// NewRPM returns v as an RPM, rejecting non-positive and non-finite values.
func NewRPM(v float64) (RPM, error) {
	if err := validatePositive("rpm", v); err != nil {
		return 0, err
	}
	return RPM(v), nil
}

// NewDistance returns v as a Distance, rejecting non-positive and non-finite values.
func NewDistance(field string, v float64) (Distance, error) {
	if err := validatePositive(field, v); err != nil {
		return 0, err
	}
	return Distance(v), nil
}

// ValidateFlutes checks that a tool has at least one cutting edge.
func ValidateFlutes(n int) error {
	if n <= 0 {
		return newValidationError("flutes", n, ErrNonPositive)
	}
	return nil
}

func validatePositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return newValidationError(field, v, ErrNonPositive)
	}
	return nil
}

// Range is a closed [Lower, Upper] interval used for chiploads and multipliers.
type Range struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Scale multiplies both endpoints by k.
func (r Range) Scale(k float64) Range {
	return Range{Lower: r.Lower * k, Upper: r.Upper * k}
}

// Contains reports whether x lies within the range, endpoints included.
func (r Range) Contains(x float64) bool {
	return x >= r.Lower && x <= r.Upper
}

// Midpoint returns the center of the range.
func (r Range) Midpoint() float64 {
	return (r.Lower + r.Upper) / 2
}

// Width returns Upper - Lower.
func (r Range) Width() float64 {
	return r.Upper - r.Lower
}

// validate checks that both endpoints are positive and ordered.
func (r Range) validate(field string) error {
	if err := validatePositive(field+".lower", r.Lower); err != nil {
		return err
	}
	if err := validatePositive(field+".upper", r.Upper); err != nil {
		return err
	}
	if r.Lower > r.Upper {
		return newValidationError(field, r, ErrInvalidRange)
	}
	return nil
}
