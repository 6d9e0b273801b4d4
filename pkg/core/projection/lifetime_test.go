package projection

import (
	"math"
	"testing"

	"tea_engine/pkg/core/cashflows"
)

func almost(t *testing.T, got, want float64, label string) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: got %v, want %v", label, got, want)
	}
}

func TestComputeCapexScaling(t *testing.T) {
	comp := &cashflows.Component{Name: "plant", Lifetime: 3}
	cf := &cashflows.CashFlow{
		Name:      "build",
		Kind:      cashflows.Capex,
		Driver:    cashflows.Driver{Values: []float64{2}},
		Alpha:     []float64{-1000},
		Reference: 1,
		ScaleX:    0.6,
	}
	comp.CashFlows = []*cashflows.CashFlow{cf}

	eng := NewLifetimeEngine(nil, nil)
	values, err := eng.Compute(comp, cf, Tables{})
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 4 {
		t.Fatalf("got %d years, want lifetime+1 = 4", len(values))
	}
	almost(t, values[0], -1000*math.Pow(2.0, 0.6), "construction year")
	for y := 1; y < 4; y++ {
		almost(t, values[y], 0, "operating year of a capex")
	}
}

func TestComputeRecurring(t *testing.T) {
	comp := &cashflows.Component{Name: "plant", Lifetime: 3}
	cf := &cashflows.CashFlow{
		Name:       "sales",
		Kind:       cashflows.Recurring,
		Multiplier: cashflows.Multiplier{Name: "unit_price"},
		Driver:     cashflows.Driver{Ref: "demand"},
		Alpha:      []float64{1},
	}
	comp.CashFlows = []*cashflows.CashFlow{cf}

	vars := cashflows.Variables{
		"unit_price": {3.5},
		"demand":     {0, 100, 110, 120},
	}
	eng := NewLifetimeEngine(vars, nil)
	values, err := eng.Compute(comp, cf, Tables{})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 350, 385, 420}
	for y := range want {
		almost(t, values[y], want[y], "recurring year")
	}
}

func TestComputeScalarDriverBroadcast(t *testing.T) {
	comp := &cashflows.Component{Name: "plant", Lifetime: 2}
	cf := &cashflows.CashFlow{
		Name:   "upkeep",
		Kind:   cashflows.Recurring,
		Driver: cashflows.Driver{Values: []float64{10}},
		Alpha:  []float64{-2},
	}
	comp.CashFlows = []*cashflows.CashFlow{cf}

	values, err := NewLifetimeEngine(nil, nil).Compute(comp, cf, Tables{})
	if err != nil {
		t.Fatal(err)
	}
	// a scalar recurring driver covers operating years only
	want := []float64{0, -20, -20}
	for y := range want {
		almost(t, values[y], want[y], "broadcast year")
	}
}

func TestComputeCapexFullAlpha(t *testing.T) {
	// build cost, operating margin and decommission value in one flow: the
	// scalar driver must hold in every year, not just the construction year
	comp := &cashflows.Component{Name: "unit", Lifetime: 2}
	cf := &cashflows.CashFlow{
		Name:      "flow",
		Kind:      cashflows.Capex,
		Driver:    cashflows.Driver{Values: []float64{1}},
		Alpha:     []float64{-100, 40, 15},
		Reference: 1,
		ScaleX:    1,
	}
	comp.CashFlows = []*cashflows.CashFlow{cf}

	values, err := NewLifetimeEngine(nil, nil).Compute(comp, cf, Tables{})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{-100, 40, 15}
	for y := range want {
		almost(t, values[y], want[y], "lifetime year")
	}
}

func TestComputeAmortizationLegs(t *testing.T) {
	comp := &cashflows.Component{Name: "plant", Lifetime: 3}
	capex := &cashflows.CashFlow{
		Name:         "build",
		Kind:         cashflows.Capex,
		Driver:       cashflows.Driver{Values: []float64{1}},
		Alpha:        []float64{-500},
		Reference:    1,
		ScaleX:       1,
		Depreciation: &cashflows.DepreciationSpec{Scheme: "custom", Plan: []float64{50, 30, 20}},
	}
	comp.CashFlows = []*cashflows.CashFlow{capex}
	legs, err := cashflows.ExpandDepreciation(comp, capex, cashflows.StandardTable{})
	if err != nil {
		t.Fatal(err)
	}
	comp.CashFlows = append(comp.CashFlows, legs...)

	eng := NewLifetimeEngine(nil, nil)
	computed := Tables{}

	capexVals, err := eng.Compute(comp, capex, computed)
	if err != nil {
		t.Fatal(err)
	}
	computed.Set(comp.Name, capex.Name, capexVals)

	creditVals, err := eng.Compute(comp, legs[0], computed)
	if err != nil {
		t.Fatal(err)
	}
	computed.Set(comp.Name, legs[0].Name, creditVals)

	depVals, err := eng.Compute(comp, legs[1], computed)
	if err != nil {
		t.Fatal(err)
	}

	wantCredit := []float64{0, 250, 150, 100}
	wantDep := []float64{0, -250, -150, -100}
	for y := range wantCredit {
		almost(t, creditVals[y], wantCredit[y], "credit year")
		almost(t, depVals[y], wantDep[y], "depreciation year")
	}

	// total depreciation equals the spent capital, sign-flipped
	total := 0.0
	for _, v := range depVals {
		total += v
	}
	almost(t, total, -500, "total depreciation")
}

func TestComputeRecurringIntrayear(t *testing.T) {
	comp := &cashflows.Component{Name: "plant", Lifetime: 2}
	cf := &cashflows.CashFlow{
		Name:       "sales",
		Kind:       cashflows.Recurring,
		Multiplier: cashflows.Multiplier{Value: 2},
	}

	alphas := [][]float64{nil, {1, 1, 1}, {1, 1}}
	drivers := [][]float64{nil, {10, 20, 30}, {40, 50}}
	values, err := NewLifetimeEngine(nil, nil).ComputeRecurringIntrayear(comp, cf, alphas, drivers)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 120, 180}
	for y := range want {
		almost(t, values[y], want[y], "intra-year sum")
	}

	_, err = NewLifetimeEngine(nil, nil).ComputeRecurringIntrayear(comp, cf,
		[][]float64{nil, {1}, {1}}, [][]float64{nil, {1, 2}, {1}})
	if err == nil {
		t.Error("mismatched sample counts within a year must fail")
	}
}
