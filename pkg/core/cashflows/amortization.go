package cashflows

import "fmt"

// DepreciationTable resolves a depreciation descriptor into a yearly
// percentage series (fractions, not percents). Implementations are read-only
// lookups; the default covers MACRS and user-supplied custom plans.
type DepreciationTable interface {
	Percentages(scheme string, plan []float64) ([]float64, error)
}

// macrs holds the IRS accelerated-depreciation percentages by recovery
// period, in percent.
var macrs = map[int][]float64{
	20: {3.750, 7.219, 6.677, 6.177, 5.713, 5.285, 4.888, 4.522, 4.462, 4.461, 4.462,
		4.461, 4.462, 4.461, 4.462, 4.461, 4.462, 4.461, 4.462, 4.461, 2.231},
	15: {5.0, 9.5, 8.55, 7.7, 6.93, 6.23, 5.9, 5.9, 5.91, 5.9, 5.91, 5.9, 5.91, 5.9, 5.91, 2.95},
	10: {10.00, 18.00, 14.40, 11.52, 9.22, 7.37, 6.55, 6.55, 6.56, 6.55, 3.28},
	7:  {14.29, 24.49, 17.49, 12.49, 8.93, 8.92, 8.93, 4.46},
	5:  {20.00, 32.00, 19.20, 11.52, 11.52, 5.76},
	3:  {33.33, 44.45, 14.81, 7.41},
}

// StandardTable is the built-in DepreciationTable: scheme "MACRS" keyed by
// recovery length, scheme "custom" taking the plan as literal percentages.
type StandardTable struct{}

// Percentages implements DepreciationTable.
func (StandardTable) Percentages(scheme string, plan []float64) ([]float64, error) {
	switch normalizeScheme(scheme) {
	case "macrs":
		if len(plan) == 0 {
			return nil, fmt.Errorf("%w: MACRS requires a recovery period", ErrMissingParameter)
		}
		years := int(plan[0])
		pcts, ok := macrs[years]
		if !ok {
			return nil, fmt.Errorf("%w: no MACRS table for a %d-year recovery period", ErrUnknownDepreciation, years)
		}
		out := make([]float64, len(pcts))
		for i, p := range pcts {
			out[i] = p / 100.0
		}
		return out, nil
	case "custom":
		if len(plan) == 0 {
			return nil, fmt.Errorf("%w: custom depreciation requires a percentage plan", ErrMissingParameter)
		}
		out := make([]float64, len(plan))
		for i, p := range plan {
			out[i] = p / 100.0
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDepreciation, scheme)
	}
}

func normalizeScheme(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
