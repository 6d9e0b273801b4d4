// Package pipeline runs the full techno-economic computation: depreciation
// expansion, dependency resolution, lifetime tables, calendar projection and
// indicator aggregation.
package pipeline

import (
	"log/slog"
	"math"

	"github.com/google/uuid"

	"tea_engine/pkg/core/cashflows"
	"tea_engine/pkg/core/depgraph"
	"tea_engine/pkg/core/indicators"
	"tea_engine/pkg/core/projection"
)

// RunResult carries everything one invocation produced.
type RunResult struct {
	// RunID identifies this invocation in logs and persisted records.
	RunID string `json:"run_id"`

	// Indicators holds the requested metrics: NPV, IRR, PI, NPV_mult.
	Indicators map[string]float64 `json:"indicators"`

	// ProjectTables are the full per-component, per-cashflow projected
	// arrays, kept for external reporting.
	ProjectTables projection.Tables `json:"project_tables"`

	// Horizon is the project length in years.
	Horizon int `json:"horizon"`
}

// Orchestrator wires the pipeline stages together. It holds no per-run state:
// every Run recomputes lifetime and project tables from the immutable
// definitions and a fresh variable snapshot.
type Orchestrator struct {
	table cashflows.DepreciationTable
	log   *slog.Logger
}

// New creates an orchestrator. A nil table selects the built-in MACRS/custom
// lookup; a nil logger selects slog.Default.
func New(table cashflows.DepreciationTable, log *slog.Logger) *Orchestrator {
	if table == nil {
		table = cashflows.StandardTable{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{table: table, log: log}
}

// Run executes the pipeline. The caller's definitions are never mutated:
// depreciation legs are attached to working copies of the components.
func (o *Orchestrator) Run(settings *cashflows.GlobalSettings, components []*cashflows.Component, vars cashflows.Variables) (*RunResult, error) {
	working, err := o.expand(components)
	if err != nil {
		return nil, err
	}

	// Validation runs against the expanded set, so the synthesized
	// amortization legs can be named in the active pairs like any
	// user-defined cash flow.
	if err := cashflows.Validate(settings, working); err != nil {
		return nil, err
	}

	ordered, err := depgraph.Resolve(working, vars)
	if err != nil {
		return nil, err
	}
	o.log.Debug("evaluation order resolved", "order", ordered)

	byName := make(map[string]*cashflows.Component, len(working))
	for _, comp := range working {
		byName[comp.Name] = comp
	}

	engine := projection.NewLifetimeEngine(vars, o.log)
	lifetimes := make(projection.Tables, len(working))
	for _, id := range ordered {
		compName, cfName, _ := cashflows.SplitPair(id)
		comp := byName[compName]
		values, err := engine.Compute(comp, comp.CashFlow(cfName), lifetimes)
		if err != nil {
			return nil, err
		}
		lifetimes.Set(compName, cfName, values)
	}

	projector := projection.NewProjector(o.log)
	projected, err := projector.Project(settings, working, lifetimes)
	if err != nil {
		return nil, err
	}
	horizon := projection.ProjectLength(settings, working)
	o.log.Info("project tables computed", "horizon", horizon, "components", len(working))

	result := &RunResult{
		RunID:         uuid.NewString(),
		Indicators:    make(map[string]float64),
		ProjectTables: projected,
		Horizon:       horizon,
	}
	if err := o.computeIndicators(settings, working, projected, horizon, result); err != nil {
		return nil, err
	}
	return result, nil
}

// expand attaches synthesized amortization legs to copies of the components,
// leaving the caller's definitions untouched.
func (o *Orchestrator) expand(components []*cashflows.Component) ([]*cashflows.Component, error) {
	working := make([]*cashflows.Component, len(components))
	for i, comp := range components {
		clone := *comp
		clone.CashFlows = make([]*cashflows.CashFlow, len(comp.CashFlows), len(comp.CashFlows)+2)
		copy(clone.CashFlows, comp.CashFlows)
		for _, cf := range comp.CashFlows {
			legs, err := cashflows.ExpandDepreciation(&clone, cf, o.table)
			if err != nil {
				return nil, err
			}
			if len(legs) > 0 {
				o.log.Debug("depreciation legs synthesized",
					"component", comp.Name, "capex", cf.Name, "legs", len(legs))
				clone.CashFlows = append(clone.CashFlows, legs...)
			}
		}
		working[i] = &clone
	}
	return working, nil
}

// computeIndicators fills in each requested metric independently, so one
// failure does not suppress results already obtained for the others: IRR
// falls back to its sentinel, an undefined PI is skipped with a warning.
func (o *Orchestrator) computeIndicators(settings *cashflows.GlobalSettings, components []*cashflows.Component, projected projection.Tables, horizon int, result *RunResult) error {
	if settings.WantsIndicator(cashflows.IndicatorNPVSearch) {
		mult, err := indicators.NPVSearch(settings, components, projected)
		if err != nil {
			return err
		}
		result.Indicators[cashflows.ResultNPVMult] = mult

		// Round-trip sanity check against the target.
		fcff := indicators.FCFF(settings, components, projected, horizon, &mult)
		check := indicators.NPV(settings.DiscountRate, fcff)
		if diff := math.Abs(check - settings.NPVTarget); diff > 1e-6*math.Max(1.0, math.Abs(settings.NPVTarget)) {
			o.log.Warn("NPV-search round trip mismatch",
				"target", settings.NPVTarget, "recomputed", check, "multiplier", mult)
		} else {
			o.log.Debug("NPV-search solved", "multiplier", mult, "recomputed", check)
		}
	}

	fcff := indicators.FCFF(settings, components, projected, horizon, nil)

	if settings.WantsIndicator(cashflows.IndicatorNPV) {
		result.Indicators[string(cashflows.IndicatorNPV)] = indicators.NPV(settings.DiscountRate, fcff)
	}
	if settings.WantsIndicator(cashflows.IndicatorIRR) {
		irr, err := indicators.IRR(fcff)
		if err != nil {
			o.log.Warn("IRR root finding failed, reporting sentinel", "sentinel", indicators.IRRSentinel, "err", err)
			irr = indicators.IRRSentinel
		}
		result.Indicators[string(cashflows.IndicatorIRR)] = irr
	}
	if settings.WantsIndicator(cashflows.IndicatorPI) {
		if fcff[0] == 0 {
			o.log.Warn("PI is undefined for a zero year-0 cash flow, skipping")
		} else {
			result.Indicators[string(cashflows.IndicatorPI)] = indicators.PI(settings.DiscountRate, fcff)
		}
	}
	return nil
}
