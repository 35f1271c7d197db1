package strike

import "fmt"

// Registry holds the process-wide conversion ratio table. It is populated
// once at startup from configuration and is read-only afterwards.
type Registry struct {
	ratios map[string]ConversionRatio
}

func NewRegistry(ratios ...ConversionRatio) *Registry {
	m := make(map[string]ConversionRatio, len(ratios))
	for _, r := range ratios {
		m[r.PairID] = r
	}
	return &Registry{ratios: m}
}

// RatioFor looks up the fixed ratio for a pair. An undefined pair id is a
// ConfigurationError.
func (r *Registry) RatioFor(pairID string) (ConversionRatio, error) {
	ratio, ok := r.ratios[pairID]
	if !ok {
		return ConversionRatio{}, &ConfigurationError{
			Reason: fmt.Sprintf("no conversion ratio defined for pair %s", pairID),
		}
	}
	return ratio, nil
}
