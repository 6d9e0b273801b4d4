// Package indicators aggregates projected cash-flow tables into economic
// metrics: NPV, IRR, PI and the NPV-search multiplier.
package indicators

import (
	"fmt"
	"math"

	"tea_engine/pkg/core/cashflows"
	"tea_engine/pkg/core/projection"
)

// IRRSentinel is reported when no real IRR root can be found. Root-finding
// failure is the one deliberately non-fatal error: other requested indicators
// still complete.
const IRRSentinel = -10.0

// activeSet answers "is this pair aggregated" quickly.
type activeSet map[string]bool

func newActiveSet(settings *cashflows.GlobalSettings) activeSet {
	set := make(activeSet, len(settings.ActivePairs))
	for _, pair := range settings.ActivePairs {
		set[pair] = true
	}
	return set
}

// FCFF sums the projected values of all active pairs per project year,
// scaling mult-target flows by mult when non-nil.
func FCFF(settings *cashflows.GlobalSettings, components []*cashflows.Component, tables projection.Tables, horizon int, mult *float64) []float64 {
	active := newActiveSet(settings)
	fcff := make([]float64, horizon)
	for _, comp := range components {
		for _, cf := range comp.CashFlows {
			if !active[cashflows.PairID(comp.Name, cf.Name)] {
				continue
			}
			scale := 1.0
			if mult != nil && cf.MultTarget {
				scale = *mult
			}
			values := tables[comp.Name][cf.Name]
			for y := 0; y < horizon && y < len(values); y++ {
				fcff[y] += values[y] * scale
			}
		}
	}
	return fcff
}

// NPV discounts a yearly stream at the given rate, year 0 undiscounted.
func NPV(rate float64, fcff []float64) float64 {
	npv := 0.0
	for y, v := range fcff {
		npv += v / math.Pow(1.0+rate, float64(y))
	}
	return npv
}

// PI is the profitability index: -NPV divided by the year-0 cash flow.
func PI(rate float64, fcff []float64) float64 {
	return -NPV(rate, fcff) / fcff[0]
}

// IRR finds the discount rate at which the stream's NPV is zero, by Newton
// iteration with a bisection fallback. It returns an error when no real root
// exists in (-1, 10]; callers report IRRSentinel in that case.
func IRR(fcff []float64) (float64, error) {
	f := func(r float64) float64 { return NPV(r, fcff) }
	df := func(r float64) float64 {
		d := 0.0
		for y, v := range fcff {
			if y == 0 {
				continue
			}
			d -= float64(y) * v / math.Pow(1.0+r, float64(y+1))
		}
		return d
	}

	const tol = 1e-9
	r := 0.1
	for i := 0; i < 100; i++ {
		fr := f(r)
		if math.Abs(fr) < tol {
			return r, nil
		}
		d := df(r)
		if d == 0 || math.IsNaN(d) {
			break
		}
		next := r - fr/d
		if next <= -1.0 || next > 10.0 {
			// Rootless streams push Newton toward rates where the NPV merely
			// decays to zero; only the scan's sign change confirms a root.
			break
		}
		if math.Abs(next-r) < tol {
			return next, nil
		}
		r = next
	}

	return irrBisect(f, tol)
}

// irrBisect scans (-1, 10] for a sign change, then bisects.
func irrBisect(f func(float64) float64, tol float64) (float64, error) {
	const steps = 2200
	lo, hi := -0.99, 10.0
	prevR, prevF := lo, f(lo)
	for i := 1; i <= steps; i++ {
		r := lo + (hi-lo)*float64(i)/steps
		fr := f(r)
		if prevF == 0 {
			return prevR, nil
		}
		if prevF*fr < 0 {
			a, b := prevR, r
			fa := prevF
			for j := 0; j < 200; j++ {
				mid := (a + b) / 2.0
				fm := f(mid)
				if math.Abs(fm) < tol || (b-a)/2.0 < tol {
					return mid, nil
				}
				if fa*fm < 0 {
					b = mid
				} else {
					a, fa = mid, fm
				}
			}
			return (a + b) / 2.0, nil
		}
		prevR, prevF = r, fr
	}
	return 0, fmt.Errorf("%w: no real IRR root in (-1, 10]", cashflows.ErrComputation)
}

// NPVSearch solves for the multiplier on mult-target cash flows such that the
// resulting NPV hits the settings target. NPV is linear in the multiplier, so
// the solution is closed-form.
func NPVSearch(settings *cashflows.GlobalSettings, components []*cashflows.Component, tables projection.Tables) (float64, error) {
	active := newActiveSet(settings)
	multiplied := 0.0 // discounted contributions carrying the unknown
	others := 0.0
	for _, comp := range components {
		for _, cf := range comp.CashFlows {
			if !active[cashflows.PairID(comp.Name, cf.Name)] {
				continue
			}
			discounted := NPV(settings.DiscountRate, tables[comp.Name][cf.Name])
			if cf.MultTarget {
				multiplied += discounted
			} else {
				others += discounted
			}
		}
	}
	if multiplied == 0 {
		return 0, fmt.Errorf("%w: the mult-target cash flows discount to zero", cashflows.ErrComputation)
	}
	return (settings.NPVTarget - others) / multiplied, nil
}
