package instruments

import "fmt"

// Range validates a floating-point register value against instrument limits.
// Limits are owned by the driver instance that declares them, never shared
// mutable package state.
type Range struct {
	Min, Max float64
}

// Check returns an error if v lies outside the range.
func (r Range) Check(v float64) error {
	if v < r.Min || v > r.Max {
		return fmt.Errorf("value %g outside range %g to %g", v, r.Min, r.Max)
	}
	return nil
}

// Clamp truncates v to the range. Registers documented with truncating
// semantics accept any input and coerce it to the nearest limit.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// IntRange validates an integer register value.
type IntRange struct {
	Min, Max int
}

// Check returns an error if v lies outside the range.
func (r IntRange) Check(v int) error {
	if v < r.Min || v > r.Max {
		return fmt.Errorf("value %d outside range %d to %d", v, r.Min, r.Max)
	}
	return nil
}
