// Package projection computes per-build lifetime tables and maps them onto
// the full multi-component project calendar.
package projection

import (
	"fmt"
	"log/slog"
	"math"

	"tea_engine/pkg/core/cashflows"
)

// Tables indexes yearly value arrays by component name, then cash flow name.
// The same shape is used for lifetime tables (length lifetime+1) and project
// tables (length horizon).
type Tables map[string]map[string][]float64

// Set stores a value array, creating the component bucket on first use.
func (t Tables) Set(component, cashflow string, values []float64) {
	bucket, ok := t[component]
	if !ok {
		bucket = make(map[string][]float64)
		t[component] = bucket
	}
	bucket[cashflow] = values
}

// Lookup returns the stored array for a "Component|CashFlow" pair.
func (t Tables) Lookup(pair string) ([]float64, bool) {
	comp, cf, ok := cashflows.SplitPair(pair)
	if !ok {
		return nil, false
	}
	values, found := t[comp][cf]
	return values, found
}

// LifetimeEngine evaluates one cash flow's value for every year of its
// component's own lifetime. Cross-cashflow drivers are read from the tables
// of flows evaluated earlier in the resolved order.
type LifetimeEngine struct {
	vars cashflows.Variables
	log  *slog.Logger
}

// NewLifetimeEngine creates an engine over one variable snapshot.
func NewLifetimeEngine(vars cashflows.Variables, log *slog.Logger) *LifetimeEngine {
	if log == nil {
		log = slog.Default()
	}
	return &LifetimeEngine{vars: vars, log: log}
}

// Compute returns the lifetime value array (length lifetime+1) for one cash
// flow. computed holds the lifetime tables of already-evaluated flows.
func (e *LifetimeEngine) Compute(comp *cashflows.Component, cf *cashflows.CashFlow, computed Tables) ([]float64, error) {
	n := comp.Lifetime + 1
	mult, err := cf.Multiplier.Resolve(e.vars)
	if err != nil {
		return nil, fmt.Errorf("component %q cash flow %q: %w", comp.Name, cf.Name, err)
	}
	alpha, err := cf.ExtendAlpha(comp.Lifetime)
	if err != nil {
		return nil, err
	}
	driver, err := e.resolveDriver(comp, cf, alpha, computed)
	if err != nil {
		return nil, err
	}

	values := make([]float64, n)
	switch cf.Kind {
	case cashflows.Recurring:
		// No scaling ratio: one price times one quantity per year.
		for y := 0; y < n; y++ {
			values[y] = mult * alpha[y] * driver[y]
		}
	default:
		for y := 0; y < n; y++ {
			values[y] = mult * alpha[y] * math.Pow(driver[y]/cf.Reference, cf.ScaleX)
		}
	}
	e.log.Debug("lifetime cash flow computed",
		"component", comp.Name, "cashflow", cf.Name, "years", n, "multiplier", mult)
	return values, nil
}

// ComputeRecurringIntrayear collapses sub-year alpha/driver samples into the
// yearly table: value[y] = mult * sum(alpha[y][i] * driver[y][i]). Entries may
// be nil for years without activity; year 0 is typically left nil since no
// recurring activity happens during construction.
func (e *LifetimeEngine) ComputeRecurringIntrayear(comp *cashflows.Component, cf *cashflows.CashFlow, alphas, drivers [][]float64) ([]float64, error) {
	n := comp.Lifetime + 1
	if len(alphas) != n || len(drivers) != n {
		return nil, fmt.Errorf("%w: cash flow %q intra-year samples cover %d/%d years, want %d",
			cashflows.ErrCashflowLength, cf.Name, len(alphas), len(drivers), n)
	}
	mult, err := cf.Multiplier.Resolve(e.vars)
	if err != nil {
		return nil, fmt.Errorf("component %q cash flow %q: %w", comp.Name, cf.Name, err)
	}
	values := make([]float64, n)
	for y := 0; y < n; y++ {
		if len(alphas[y]) != len(drivers[y]) {
			return nil, fmt.Errorf("%w: cash flow %q year %d has %d alpha but %d driver samples",
				cashflows.ErrCashflowLength, cf.Name, y, len(alphas[y]), len(drivers[y]))
		}
		sum := 0.0
		for i := range alphas[y] {
			sum += alphas[y][i] * drivers[y][i]
		}
		values[y] = mult * sum
	}
	return values, nil
}

// resolveDriver produces the per-year driver array for one cash flow,
// applying the variant-specific shaping rules.
func (e *LifetimeEngine) resolveDriver(comp *cashflows.Component, cf *cashflows.CashFlow, alpha []float64, computed Tables) ([]float64, error) {
	n := comp.Lifetime + 1

	var raw []float64
	switch {
	case cf.Driver.IsLiteral():
		raw = cf.Driver.Values
	default:
		if vals, ok := e.vars[cf.Driver.Ref]; ok {
			raw = vals
			break
		}
		vals, ok := computed.Lookup(cf.Driver.Ref)
		if !ok {
			// The resolver guarantees evaluation order, so a miss here is an
			// internal defect, not bad input.
			return nil, fmt.Errorf("%w: cash flow %q driver %q not evaluated yet",
				cashflows.ErrComputation, cf.Name, cf.Driver.Ref)
		}
		raw = vals
	}

	if cf.Kind == cashflows.Amortizor && cf.Role == cashflows.RoleCredit {
		return creditDriver(raw, alpha, n), nil
	}

	switch len(raw) {
	case n:
		out := make([]float64, n)
		copy(out, raw)
		return out, nil
	case 1:
		// A scalar driver holds for every lifetime year; alpha decides
		// which years are active.
		out := make([]float64, n)
		for y := range out {
			out[y] = raw[0]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cash flow %q driver has %d entries, want 1 or %d",
			cashflows.ErrDriverLengthMismatch, cf.Name, len(raw), n)
	}
}

// creditDriver shapes the tax-credit leg's driver: the originating Capex's
// construction-year value, sign-flipped, placed at every year the
// depreciation percentages occupy, zero during construction.
func creditDriver(raw, alpha []float64, n int) []float64 {
	magnitude := -raw[0]
	out := make([]float64, n)
	for y := 1; y < n; y++ {
		if alpha[y] != 0 {
			out[y] = magnitude
		}
	}
	return out
}
