package cashflows

import (
	"errors"
	"testing"
)

func validSettings() *GlobalSettings {
	return &GlobalSettings{
		DiscountRate: 0.10,
		Tax:          0.21,
		Indicators:   []Indicator{IndicatorNPV},
		ActivePairs:  []string{"plant|build"},
	}
}

func validComponent() *Component {
	return &Component{
		Name:     "plant",
		Lifetime: 4,
		CashFlows: []*CashFlow{{
			Name:      "build",
			Kind:      Capex,
			Driver:    Driver{Values: []float64{1}},
			Alpha:     []float64{-1000, 0, 0, 0, 0},
			Reference: 1,
			ScaleX:    1,
		}},
	}
}

func TestValidateAccepts(t *testing.T) {
	if err := Validate(validSettings(), []*Component{validComponent()}); err != nil {
		t.Fatalf("valid definitions rejected: %v", err)
	}
}

func TestValidateMissingParameters(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CashFlow)
	}{
		{"no alpha", func(cf *CashFlow) { cf.Alpha = nil }},
		{"no driver", func(cf *CashFlow) { cf.Driver = Driver{} }},
		{"no reference", func(cf *CashFlow) { cf.Reference = 0 }},
		{"no scale", func(cf *CashFlow) { cf.ScaleX = 0 }},
	}
	for _, tc := range cases {
		comp := validComponent()
		tc.mutate(comp.CashFlows[0])
		err := Validate(validSettings(), []*Component{comp})
		if !errors.Is(err, ErrMissingParameter) {
			t.Errorf("%s: got %v, want ErrMissingParameter", tc.name, err)
		}
		if !errors.Is(err, ErrConfiguration) {
			t.Errorf("%s: missing parameter should classify as configuration error", tc.name)
		}
	}
}

func TestValidateAlphaLength(t *testing.T) {
	comp := validComponent()
	comp.CashFlows[0].Alpha = []float64{-1000, 0} // lifetime is 4, want 5
	if err := Validate(validSettings(), []*Component{comp}); !errors.Is(err, ErrCashflowLength) {
		t.Errorf("got %v, want ErrCashflowLength", err)
	}
}

func TestValidateGlobalNameUniqueness(t *testing.T) {
	a := validComponent()
	b := validComponent()
	b.Name = "plant2"
	// same cash flow name in a different component is still illegal
	err := Validate(validSettings(), []*Component{a, b})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("got %v, want configuration error for duplicate cash flow name", err)
	}
}

func TestValidateActiveComponentMissing(t *testing.T) {
	settings := validSettings()
	settings.ActivePairs = []string{"reactor|build"}
	err := Validate(settings, []*Component{validComponent()})
	if !errors.Is(err, ErrActiveComponentMissing) {
		t.Errorf("got %v, want ErrActiveComponentMissing", err)
	}
}

func TestValidateNPVSearchNeedsMultTarget(t *testing.T) {
	settings := validSettings()
	settings.Indicators = []Indicator{IndicatorNPVSearch}
	settings.NPVTarget = 0
	err := Validate(settings, []*Component{validComponent()})
	if !errors.Is(err, ErrNoMultTarget) {
		t.Errorf("got %v, want ErrNoMultTarget", err)
	}

	comp := validComponent()
	comp.CashFlows[0].MultTarget = true
	if err := Validate(settings, []*Component{comp}); err != nil {
		t.Errorf("NPV_search with a mult target rejected: %v", err)
	}
}

func TestValidateStartTimeNeedsProjectTime(t *testing.T) {
	comp := validComponent()
	comp.StartTime = 2
	err := Validate(validSettings(), []*Component{comp})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("StartTime without ProjectTime: got %v, want configuration error", err)
	}

	settings := validSettings()
	settings.ProjectTime = 10
	if err := Validate(settings, []*Component{comp}); err != nil {
		t.Errorf("StartTime with explicit ProjectTime rejected: %v", err)
	}
}

func TestValidateRepetitionsNeedProjectTime(t *testing.T) {
	comp := validComponent()
	comp.Repetitions = 3
	if err := Validate(validSettings(), []*Component{comp}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Repetitions without ProjectTime: got %v, want configuration error", err)
	}
}

func TestExtendAlphaShaping(t *testing.T) {
	capex := &CashFlow{Name: "c", Kind: Capex, Alpha: []float64{-500}}
	out, err := capex.ExtendAlpha(3)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{-500, 0, 0, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("capex alpha: got %v, want %v", out, want)
		}
	}

	rec := &CashFlow{Name: "r", Kind: Recurring, Alpha: []float64{100}}
	out, err = rec.ExtendAlpha(3)
	if err != nil {
		t.Fatal(err)
	}
	want = []float64{0, 100, 100, 100}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("recurring alpha: got %v, want %v", out, want)
		}
	}
}
