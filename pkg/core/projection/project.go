package projection

import (
	"fmt"
	"log/slog"
	"math"

	"tea_engine/pkg/core/cashflows"
)

// ProjectLength returns the project horizon in years: the explicit setting
// when given, else the least common multiple of all component lifetimes plus
// the baseline construction year.
func ProjectLength(settings *cashflows.GlobalSettings, components []*cashflows.Component) int {
	if settings.ProjectTime > 0 {
		return settings.ProjectTime
	}
	length := 1
	for _, comp := range components {
		length = lcm(length, comp.Lifetime)
	}
	return length + 1
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	return a * b / gcd(a, b)
}

// Projector maps component-lifetime tables onto the unified project calendar,
// applying start offsets, rebuild repetition, tax and inflation.
type Projector struct {
	log *slog.Logger

	warnedNominal map[string]bool
}

// NewProjector creates a calendar projector.
func NewProjector(log *slog.Logger) *Projector {
	if log == nil {
		log = slog.Default()
	}
	return &Projector{log: log, warnedNominal: make(map[string]bool)}
}

// Project builds the project-calendar table for every component and cash
// flow. lifetimes holds the per-build tables from the LifetimeEngine.
func (p *Projector) Project(settings *cashflows.GlobalSettings, components []*cashflows.Component, lifetimes Tables) (Tables, error) {
	horizon := ProjectLength(settings, components)
	out := make(Tables, len(components))
	for _, comp := range components {
		tax := comp.TaxRate(settings.Tax)
		inflation := comp.InflationRate(settings.Inflation)
		for _, cf := range comp.CashFlows {
			life, ok := lifetimes[comp.Name][cf.Name]
			if !ok {
				return nil, fmt.Errorf("%w: no lifetime table for %q", cashflows.ErrComputation,
					cashflows.PairID(comp.Name, cf.Name))
			}
			if len(life) != comp.Lifetime+1 {
				return nil, fmt.Errorf("%w: lifetime table for %q has %d entries, want %d",
					cashflows.ErrComputation, cf.Name, len(life), comp.Lifetime+1)
			}
			projected := p.projectOne(comp, cf, life, tax, inflation, horizon)
			out.Set(comp.Name, cf.Name, projected)
		}
	}
	return out, nil
}

// projectOne walks the calendar for a single cash flow. Calendar years break
// down into: before start (zero), operating years (lifetime table indexed by
// the year's offset within the current build), overlap years where a retiring
// build's final year coincides with a rebuild's construction year (both are
// summed), the terminal decommission year (final lifetime value only), and
// everything after (zero).
func (p *Projector) projectOne(comp *cashflows.Component, cf *cashflows.CashFlow, life []float64, tax, inflation float64, horizon int) []float64 {
	taxMult := 1.0
	if cf.Taxable {
		taxMult = 1.0 - tax
	}
	inflRate := 1.0
	switch cf.Inflation {
	case cashflows.InflationReal:
		inflRate = 1.0 + inflation
	case cashflows.InflationNominal:
		p.warnNominal(comp.Name, cf.Name)
	}

	start := comp.StartTime
	end := horizon
	if comp.Repetitions > 0 {
		end = start + comp.Lifetime*comp.Repetitions
	}

	projected := make([]float64, horizon)
	for y := 0; y < horizon; y++ {
		if y < start || y > end {
			continue
		}
		var value float64
		switch {
		case y == end && comp.Repetitions > 0:
			// Terminal decommission: the last build's final year, even though
			// the component no longer operates.
			value = life[comp.Lifetime]
		case y >= end:
			continue
		default:
			r := (y - start) % comp.Lifetime
			if r != 0 {
				value = life[r]
			} else {
				// A build boundary: a new construction, a retiring build's
				// final year, or both at once.
				if y != horizon-1 {
					value += life[0]
				}
				if y != start {
					value += life[comp.Lifetime]
				}
			}
		}
		projected[y] = value * taxMult * math.Pow(inflRate, float64(-y))
	}
	return projected
}

func (p *Projector) warnNominal(component, cashflow string) {
	key := cashflows.PairID(component, cashflow)
	if p.warnedNominal[key] {
		return
	}
	p.warnedNominal[key] = true
	p.log.Warn("nominal inflation is not supported and applies no adjustment",
		"component", component, "cashflow", cashflow)
}
