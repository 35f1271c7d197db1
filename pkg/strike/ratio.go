// Package strike holds the fixed conversion ratios and the strike table
// generation logic that is the computational core of the tool.
package strike

import (
	"errors"
	"fmt"
	"math"
)

// ConfigurationError reports invalid generator parameters or a missing
// ratio definition. It is fatal to the affected instrument's pipeline
// branch only.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// ConversionRatio is a fixed published conversion between a tracked ETF and
// its reference asset: units of the asset held per outstanding share.
// Instances are created once at startup and never mutated.
type ConversionRatio struct {
	PairID            string
	Units             float64
	SharesOutstanding float64
}

// NewConversionRatio validates both operands so every ratio in the registry
// is finite and positive.
func NewConversionRatio(pairID string, units, sharesOutstanding float64) (ConversionRatio, error) {
	if !positiveFinite(units) {
		return ConversionRatio{}, &ConfigurationError{
			Reason: fmt.Sprintf("pair %s: units must be a finite positive number, got %v", pairID, units),
		}
	}
	if !positiveFinite(sharesOutstanding) {
		return ConversionRatio{}, &ConfigurationError{
			Reason: fmt.Sprintf("pair %s: shares outstanding must be a finite positive number, got %v", pairID, sharesOutstanding),
		}
	}
	return ConversionRatio{PairID: pairID, Units: units, SharesOutstanding: sharesOutstanding}, nil
}

// Ratio returns units per share, the divisor that converts a strike level
// into a reference-asset price.
func (r ConversionRatio) Ratio() float64 {
	return r.Units / r.SharesOutstanding
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
