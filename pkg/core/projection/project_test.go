package projection

import (
	"math"
	"testing"

	"tea_engine/pkg/core/cashflows"
)

func TestProjectLength(t *testing.T) {
	a := &cashflows.Component{Name: "a", Lifetime: 2}
	b := &cashflows.Component{Name: "b", Lifetime: 3}

	settings := &cashflows.GlobalSettings{}
	if got := ProjectLength(settings, []*cashflows.Component{a, b}); got != 7 {
		t.Errorf("lcm(2,3)+1: got %d, want 7", got)
	}
	settings.ProjectTime = 30
	if got := ProjectLength(settings, []*cashflows.Component{a, b}); got != 30 {
		t.Errorf("explicit horizon: got %d, want 30", got)
	}
}

func TestProjectSingleBuild(t *testing.T) {
	comp := &cashflows.Component{
		Name:     "plant",
		Lifetime: 4,
		CashFlows: []*cashflows.CashFlow{{
			Name: "build", Kind: cashflows.Capex,
			Driver: cashflows.Driver{Values: []float64{1}},
			Alpha:  []float64{-1000, 0, 0, 0, 0}, Reference: 1, ScaleX: 1,
		}},
	}
	lifetimes := Tables{}
	lifetimes.Set("plant", "build", []float64{-1000, 0, 0, 0, 0})

	out, err := NewProjector(nil).Project(&cashflows.GlobalSettings{}, []*cashflows.Component{comp}, lifetimes)
	if err != nil {
		t.Fatal(err)
	}
	projected := out["plant"]["build"]
	if len(projected) != 5 {
		t.Fatalf("horizon: got %d, want 5", len(projected))
	}
	almost(t, projected[0], -1000, "construction year")
	for y := 1; y < 5; y++ {
		almost(t, projected[y], 0, "later year")
	}
}

func TestProjectRebuildBoundaries(t *testing.T) {
	life := []float64{-100, 40, 15} // build, operate, decommission
	comp := &cashflows.Component{
		Name:        "unit",
		Lifetime:    2,
		Repetitions: 2,
		CashFlows: []*cashflows.CashFlow{{
			Name: "flow", Kind: cashflows.Capex,
			Driver: cashflows.Driver{Values: []float64{1}},
			Alpha:  life, Reference: 1, ScaleX: 1,
		}},
	}
	lifetimes := Tables{}
	lifetimes.Set("unit", "flow", life)

	settings := &cashflows.GlobalSettings{ProjectTime: 5}
	out, err := NewProjector(nil).Project(settings, []*cashflows.Component{comp}, lifetimes)
	if err != nil {
		t.Fatal(err)
	}
	projected := out["unit"]["flow"]

	want := []float64{
		-100,        // first build
		40,          // operating
		-100 + 15,   // rebuild overlaps the retiring build's final year
		40,          // operating
		15,          // terminal decommission, no further build
	}
	for y := range want {
		almost(t, projected[y], want[y], "calendar year")
	}
}

func TestProjectStartOffset(t *testing.T) {
	life := []float64{-100, 40, 40}
	comp := &cashflows.Component{
		Name:      "late",
		Lifetime:  2,
		StartTime: 3,
		CashFlows: []*cashflows.CashFlow{{
			Name: "flow", Kind: cashflows.Capex,
			Driver: cashflows.Driver{Values: []float64{1}},
			Alpha:  life, Reference: 1, ScaleX: 1,
		}},
	}
	lifetimes := Tables{}
	lifetimes.Set("late", "flow", life)

	settings := &cashflows.GlobalSettings{ProjectTime: 8}
	out, err := NewProjector(nil).Project(settings, []*cashflows.Component{comp}, lifetimes)
	if err != nil {
		t.Fatal(err)
	}
	projected := out["late"]["flow"]
	for y := 0; y < 3; y++ {
		almost(t, projected[y], 0, "year before start")
	}
	almost(t, projected[3], -100, "shifted construction year")
	almost(t, projected[4], 40, "shifted operating year")
}

func TestProjectTaxAndInflation(t *testing.T) {
	life := []float64{0, 100, 100}
	comp := &cashflows.Component{
		Name:     "plant",
		Lifetime: 2,
		CashFlows: []*cashflows.CashFlow{{
			Name: "sales", Kind: cashflows.Recurring,
			Taxable:   true,
			Inflation: cashflows.InflationReal,
			Driver:    cashflows.Driver{Values: []float64{1}},
			Alpha:     life,
		}},
	}
	lifetimes := Tables{}
	lifetimes.Set("plant", "sales", life)

	settings := &cashflows.GlobalSettings{Tax: 0.25, Inflation: 0.02}
	out, err := NewProjector(nil).Project(settings, []*cashflows.Component{comp}, lifetimes)
	if err != nil {
		t.Fatal(err)
	}
	projected := out["plant"]["sales"]
	for y := 1; y <= 2; y++ {
		want := 100 * 0.75 * math.Pow(1.02, float64(-y))
		almost(t, projected[y], want, "taxed and deflated year")
	}
}

func TestProjectComponentOverrides(t *testing.T) {
	life := []float64{0, 100, 100}
	zero := 0.0
	comp := &cashflows.Component{
		Name:     "exempt",
		Lifetime: 2,
		Tax:      &zero, // overrides the global rate
		CashFlows: []*cashflows.CashFlow{{
			Name: "sales", Kind: cashflows.Recurring,
			Taxable: true,
			Driver:  cashflows.Driver{Values: []float64{1}},
			Alpha:   life,
		}},
	}
	lifetimes := Tables{}
	lifetimes.Set("exempt", "sales", life)

	settings := &cashflows.GlobalSettings{Tax: 0.25}
	out, err := NewProjector(nil).Project(settings, []*cashflows.Component{comp}, lifetimes)
	if err != nil {
		t.Fatal(err)
	}
	almost(t, out["exempt"]["sales"][1], 100, "component tax override")
}

func TestProjectMissingTable(t *testing.T) {
	comp := &cashflows.Component{
		Name:     "plant",
		Lifetime: 2,
		CashFlows: []*cashflows.CashFlow{{
			Name: "sales", Kind: cashflows.Recurring,
			Driver: cashflows.Driver{Values: []float64{1}},
			Alpha:  []float64{0, 1, 1},
		}},
	}
	_, err := NewProjector(nil).Project(&cashflows.GlobalSettings{}, []*cashflows.Component{comp}, Tables{})
	if err == nil {
		t.Fatal("projection without lifetime tables must fail")
	}
}
