package cashflows

import "fmt"

// ExpandDepreciation synthesizes the amortization legs for one Capex cash
// flow. A flow without a depreciation descriptor yields no legs. Otherwise
// exactly two Amortizor flows are returned:
//
//   - a non-taxed, positive "tax credit" leg whose alpha is the resolved
//     percentage series and whose driver is the originating Capex, and
//   - a taxed, negative "depreciation" leg whose alpha is -1 at the same
//     years and whose driver is the credit leg.
//
// Both legs are meant to be appended to the owning component and then flow
// through dependency resolution and lifetime evaluation like any other cash
// flow; the scaling by the Capex's actual construction-year value happens
// there, through the driver references.
func ExpandDepreciation(comp *Component, capex *CashFlow, table DepreciationTable) ([]*CashFlow, error) {
	if capex.Kind != Capex || capex.Depreciation == nil {
		return nil, nil
	}
	pcts, err := table.Percentages(capex.Depreciation.Scheme, capex.Depreciation.Plan)
	if err != nil {
		return nil, fmt.Errorf("component %q cash flow %q: %w", comp.Name, capex.Name, err)
	}
	if len(pcts) > comp.Lifetime {
		return nil, fmt.Errorf("%w: depreciation plan for %q has %d years but component %q lives %d",
			ErrCashflowLength, capex.Name, len(pcts), comp.Name, comp.Lifetime)
	}

	// The percentage series occupies years 1..n; year 0 is the build year.
	creditAlpha := make([]float64, comp.Lifetime+1)
	depAlpha := make([]float64, comp.Lifetime+1)
	for i, p := range pcts {
		creditAlpha[i+1] = p
		depAlpha[i+1] = -1.0
	}

	credit := &CashFlow{
		Name:      capex.Name + "_amortize",
		Kind:      Amortizor,
		Role:      RoleCredit,
		Taxable:   false,
		Inflation: InflationNone,
		Driver:    Driver{Ref: PairID(comp.Name, capex.Name)},
		Alpha:     creditAlpha,
		Reference: 1.0,
		ScaleX:    1.0,
	}
	depreciation := &CashFlow{
		Name:      "depreciate_" + capex.Name,
		Kind:      Amortizor,
		Role:      RoleDepreciation,
		Taxable:   true,
		Inflation: InflationNone,
		Driver:    Driver{Ref: PairID(comp.Name, credit.Name)},
		Alpha:     depAlpha,
		Reference: 1.0,
		ScaleX:    1.0,
	}
	return []*CashFlow{credit, depreciation}, nil
}
