// Package config loads scenario definitions and variable snapshots for the
// stand-alone runner. The core engine never reads files itself; it takes the
// validated values this package produces.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"tea_engine/pkg/core/cashflows"
)

// Scenario is the file-level shape of a run definition.
type Scenario struct {
	Name       string          `yaml:"name"`
	Global     globalYAML      `yaml:"global"`
	Components []componentYAML `yaml:"components"`
}

type globalYAML struct {
	DiscountRate float64  `yaml:"discount_rate"`
	Tax          float64  `yaml:"tax"`
	Inflation    float64  `yaml:"inflation"`
	Indicators   []string `yaml:"indicators"`
	NPVTarget    float64  `yaml:"npv_target"`
	ProjectTime  int      `yaml:"project_time"`
	Active       []string `yaml:"active"`
}

type componentYAML struct {
	Name        string         `yaml:"name"`
	Lifetime    int            `yaml:"lifetime"`
	StartTime   int            `yaml:"start_time"`
	Repetitions int            `yaml:"repetitions"`
	Tax         *float64       `yaml:"tax"`
	Inflation   *float64       `yaml:"inflation"`
	CashFlows   []cashflowYAML `yaml:"cash_flows"`
}

type cashflowYAML struct {
	Name       string      `yaml:"name"`
	Type       string      `yaml:"type"`
	Taxable    bool        `yaml:"taxable"`
	Inflation  string      `yaml:"inflation"`
	Multiply   interface{} `yaml:"multiply"`
	MultTarget bool        `yaml:"mult_target"`
	Driver     interface{} `yaml:"driver"`
	Alpha      interface{} `yaml:"alpha"`
	Reference  float64     `yaml:"reference"`
	X          float64     `yaml:"x"`

	Depreciation *struct {
		Scheme string    `yaml:"scheme"`
		Plan   []float64 `yaml:"plan"`
	} `yaml:"depreciation"`
}

// LoadScenario reads a YAML scenario file into engine definitions.
func LoadScenario(path string) (string, *cashflows.GlobalSettings, []*cashflows.Component, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, nil, fmt.Errorf("reading scenario file: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return "", nil, nil, fmt.Errorf("parsing scenario file: %w", err)
	}

	settings := &cashflows.GlobalSettings{
		DiscountRate: sc.Global.DiscountRate,
		Tax:          sc.Global.Tax,
		Inflation:    sc.Global.Inflation,
		NPVTarget:    sc.Global.NPVTarget,
		ProjectTime:  sc.Global.ProjectTime,
		ActivePairs:  sc.Global.Active,
	}
	for _, ind := range sc.Global.Indicators {
		settings.Indicators = append(settings.Indicators, cashflows.Indicator(ind))
	}

	components := make([]*cashflows.Component, 0, len(sc.Components))
	for _, cy := range sc.Components {
		comp := &cashflows.Component{
			Name:        cy.Name,
			Lifetime:    cy.Lifetime,
			StartTime:   cy.StartTime,
			Repetitions: cy.Repetitions,
			Tax:         cy.Tax,
			Inflation:   cy.Inflation,
		}
		for _, fy := range cy.CashFlows {
			cf, err := buildCashFlow(fy)
			if err != nil {
				return "", nil, nil, fmt.Errorf("component %q: %w", cy.Name, err)
			}
			comp.CashFlows = append(comp.CashFlows, cf)
		}
		components = append(components, comp)
	}
	return sc.Name, settings, components, nil
}

func buildCashFlow(fy cashflowYAML) (*cashflows.CashFlow, error) {
	cf := &cashflows.CashFlow{
		Name:       fy.Name,
		Taxable:    fy.Taxable,
		MultTarget: fy.MultTarget,
		Reference:  fy.Reference,
		ScaleX:     fy.X,
	}

	switch fy.Type {
	case "capex", "Capex", "":
		cf.Kind = cashflows.Capex
	case "recurring", "Recurring":
		cf.Kind = cashflows.Recurring
	default:
		return nil, fmt.Errorf("%w: cash flow %q has unknown type %q", cashflows.ErrConfiguration, fy.Name, fy.Type)
	}

	if fy.Inflation == "" {
		cf.Inflation = cashflows.InflationNone
	} else {
		cf.Inflation = cashflows.InflationMode(fy.Inflation)
	}

	switch m := fy.Multiply.(type) {
	case nil:
	case string:
		cf.Multiplier = cashflows.Multiplier{Name: m}
	default:
		val, err := toFloat(m)
		if err != nil {
			return nil, fmt.Errorf("cash flow %q multiply: %w", fy.Name, err)
		}
		cf.Multiplier = cashflows.Multiplier{Value: val}
	}

	switch d := fy.Driver.(type) {
	case nil:
	case string:
		cf.Driver = cashflows.Driver{Ref: d}
	default:
		vals, err := toFloats(d)
		if err != nil {
			return nil, fmt.Errorf("cash flow %q driver: %w", fy.Name, err)
		}
		cf.Driver = cashflows.Driver{Values: vals}
	}

	if fy.Alpha != nil {
		vals, err := toFloats(fy.Alpha)
		if err != nil {
			return nil, fmt.Errorf("cash flow %q alpha: %w", fy.Name, err)
		}
		cf.Alpha = vals
	}

	if fy.Depreciation != nil {
		cf.Depreciation = &cashflows.DepreciationSpec{
			Scheme: fy.Depreciation.Scheme,
			Plan:   fy.Depreciation.Plan,
		}
	}
	return cf, nil
}

// toFloat coerces the number types the YAML decoder produces.
func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

// toFloats coerces a scalar or list into a value slice.
func toFloats(v interface{}) ([]float64, error) {
	if list, ok := v.([]interface{}); ok {
		out := make([]float64, len(list))
		for i, item := range list {
			f, err := toFloat(item)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	return []float64{f}, nil
}
