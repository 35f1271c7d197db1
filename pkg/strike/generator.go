package strike

import (
	"fmt"
	"math"
	"time"
)

// Row is one strike level and its reference-asset equivalent price.
type Row struct {
	Strike    float64
	Converted float64
}

// Table is the ordered result of one generation run, ascending by strike.
type Table struct {
	PairID      string
	Ratio       ConversionRatio
	Rows        []Row
	GeneratedAt time.Time
}

// Generate produces the strike table for [low, high] at the given step.
// It is a pure function of its inputs: converted values depend only on the
// strike and the ratio, and the row count is floor((high-low)/step)+1.
// An inverted range yields an empty table; a non-positive step is a
// ConfigurationError.
func Generate(ratio ConversionRatio, low, high, step float64, now time.Time) (Table, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return Table{}, &ConfigurationError{
			Reason: fmt.Sprintf("pair %s: step must be a positive number, got %v", ratio.PairID, step),
		}
	}
	table := Table{PairID: ratio.PairID, Ratio: ratio, GeneratedAt: now}
	if low > high {
		return table, nil
	}

	divisor := ratio.Ratio()

	// Strikes are computed as low + k*step rather than by accumulation,
	// and the upper bound carries an epsilon so the final row is not lost
	// to floating-point drift.
	limit := high + step*1e-9
	for k := 0; ; k++ {
		strike := low + float64(k)*step
		if strike > limit {
			break
		}
		table.Rows = append(table.Rows, Row{
			Strike:    strike,
			Converted: strike / divisor,
		})
	}
	return table, nil
}
