package cashflows

import "fmt"

// Indicator names an economic metric the engine can compute.
type Indicator string

const (
	IndicatorNPV       Indicator = "NPV"
	IndicatorIRR       Indicator = "IRR"
	IndicatorPI        Indicator = "PI"
	IndicatorNPVSearch Indicator = "NPV_search"
)

// ResultNPVMult is the result key produced by an NPV_search run.
const ResultNPVMult = "NPV_mult"

// InflationMode controls how a cash flow is adjusted for inflation.
// "nominal" is accepted by the schema but currently applies no adjustment;
// the pipeline logs a warning when it is encountered.
type InflationMode string

const (
	InflationNone    InflationMode = "none"
	InflationReal    InflationMode = "real"
	InflationNominal InflationMode = "nominal"
)

// Kind tags the cash flow variant.
type Kind int

const (
	Capex Kind = iota
	Recurring
	Amortizor
)

func (k Kind) String() string {
	switch k {
	case Capex:
		return "Capex"
	case Recurring:
		return "Recurring"
	case Amortizor:
		return "Amortizor"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// AmortRole distinguishes the two synthetic legs produced by depreciation
// expansion. RoleNone is used for all user-defined cash flows.
type AmortRole int

const (
	RoleNone AmortRole = iota
	RoleCredit
	RoleDepreciation
)

// Variables is the externally supplied name -> value snapshot used to resolve
// drivers and multipliers. A scalar is stored as a length-1 slice.
type Variables map[string][]float64

// Scalar returns the single value stored under name. It reports false when
// the variable is absent or holds a per-year array.
func (v Variables) Scalar(name string) (float64, bool) {
	vals, ok := v[name]
	if !ok || len(vals) != 1 {
		return 0, false
	}
	return vals[0], true
}

// Multiplier scales a whole cash flow. Name, when set, refers to an external
// scalar variable; otherwise Value is used directly. The zero Multiplier
// resolves to 1.
type Multiplier struct {
	Value float64
	Name  string
}

// Resolve returns the effective multiplier against the variable snapshot.
func (m Multiplier) Resolve(vars Variables) (float64, error) {
	if m.Name != "" {
		val, ok := vars.Scalar(m.Name)
		if !ok {
			return 0, fmt.Errorf("%w: multiplier %q not found among variables", ErrMissingMultiplier, m.Name)
		}
		return val, nil
	}
	if m.Value == 0 {
		return 1.0, nil
	}
	return m.Value, nil
}

// Driver is the quantity a cash flow's price coefficient is multiplied with.
// Exactly one of Values (a pre-evaluated literal, scalar or per-year) or Ref
// (an external variable name, or a "Component|CashFlow" reference) is set.
type Driver struct {
	Values []float64
	Ref    string
}

// IsLiteral reports whether the driver needs no resolution.
func (d Driver) IsLiteral() bool { return d.Ref == "" && d.Values != nil }

// IsEmpty reports whether neither form is present.
func (d Driver) IsEmpty() bool { return d.Ref == "" && d.Values == nil }

// DepreciationSpec describes how a Capex cash flow is amortized.
// For the "MACRS" scheme, Plan holds a single entry: the recovery period in
// years. For the "custom" scheme, Plan holds the yearly percentages.
type DepreciationSpec struct {
	Scheme string
	Plan   []float64
}

// CashFlow holds the economics of a single parametric cash flow,
//
//	C(y) = mult * alpha[y] * (driver[y] / reference)^X
//
// where alpha is the price coefficient, driver the quantity, reference the
// driver value at which alpha is accurate, and X the economy-of-scale
// exponent. Recurring flows skip the scaling ratio and use alpha*driver
// per operating year.
type CashFlow struct {
	Name       string
	Kind       Kind
	Role       AmortRole
	Taxable    bool
	Inflation  InflationMode
	Multiplier Multiplier
	MultTarget bool
	Driver     Driver
	Alpha      []float64
	Reference  float64
	ScaleX     float64

	// Depreciation, when set on a Capex flow, triggers synthesis of the
	// amortization legs before evaluation.
	Depreciation *DepreciationSpec
}

// ExtendAlpha shapes the price coefficient to a lifetime+1 array without
// mutating the definition. A scalar alpha on a Capex (or Amortizor) flow is
// placed at the construction year only; on a Recurring flow it is broadcast
// over the operating years, leaving year 0 at zero.
func (cf *CashFlow) ExtendAlpha(lifetime int) ([]float64, error) {
	n := lifetime + 1
	switch len(cf.Alpha) {
	case n:
		out := make([]float64, n)
		copy(out, cf.Alpha)
		return out, nil
	case 1:
		out := make([]float64, n)
		if cf.Kind == Recurring {
			for y := 1; y < n; y++ {
				out[y] = cf.Alpha[0]
			}
		} else {
			out[0] = cf.Alpha[0]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cash flow %q alpha has %d entries, want 1 or %d",
			ErrCashflowLength, cf.Name, len(cf.Alpha), n)
	}
}

// RequiredParams lists the parameters this variant cannot evaluate without.
func (cf *CashFlow) RequiredParams() []string {
	switch cf.Kind {
	case Recurring:
		return []string{"alpha", "driver"}
	default:
		return []string{"alpha", "driver", "reference", "X"}
	}
}

// Component owns an ordered collection of cash flows sharing one build
// lifetime and project placement.
type Component struct {
	Name        string
	Lifetime    int
	StartTime   int
	Repetitions int

	// Tax and Inflation, when non-nil, override the global rates.
	Tax       *float64
	Inflation *float64

	CashFlows []*CashFlow
}

// CashFlow returns the owned cash flow with the given name, or nil.
func (c *Component) CashFlow(name string) *CashFlow {
	for _, cf := range c.CashFlows {
		if cf.Name == name {
			return cf
		}
	}
	return nil
}

// TaxRate returns the effective tax rate for this component.
func (c *Component) TaxRate(global float64) float64 {
	if c.Tax != nil {
		return *c.Tax
	}
	return global
}

// InflationRate returns the effective inflation rate for this component.
func (c *Component) InflationRate(global float64) float64 {
	if c.Inflation != nil {
		return *c.Inflation
	}
	return global
}

// CountMultTargets returns how many owned cash flows carry the NPV-search
// multiplier.
func (c *Component) CountMultTargets() int {
	n := 0
	for _, cf := range c.CashFlows {
		if cf.MultTarget {
			n++
		}
	}
	return n
}

// GlobalSettings carries the run-wide economic parameters.
type GlobalSettings struct {
	DiscountRate float64
	Tax          float64
	Inflation    float64

	Indicators []Indicator

	// NPVTarget is the NPV value an NPV_search run solves for.
	NPVTarget float64

	// ProjectTime is the explicit project horizon in years. Zero means the
	// horizon is derived from the least common multiple of component
	// lifetimes plus a baseline year.
	ProjectTime int

	// ActivePairs lists the "Component|CashFlow" pairs aggregated into the
	// requested indicators.
	ActivePairs []string
}

// WantsIndicator reports whether the given indicator was requested.
func (s *GlobalSettings) WantsIndicator(ind Indicator) bool {
	for _, i := range s.Indicators {
		if i == ind {
			return true
		}
	}
	return false
}

// ActiveComponents groups the active pairs by component name.
func (s *GlobalSettings) ActiveComponents() map[string][]string {
	out := make(map[string][]string)
	for _, pair := range s.ActivePairs {
		comp, cf, ok := SplitPair(pair)
		if !ok {
			continue
		}
		out[comp] = append(out[comp], cf)
	}
	return out
}

// PairID builds the canonical "Component|CashFlow" identifier.
func PairID(component, cashflow string) string {
	return component + "|" + cashflow
}

// SplitPair splits a "Component|CashFlow" identifier.
func SplitPair(pair string) (component, cashflow string, ok bool) {
	for i := 0; i < len(pair); i++ {
		if pair[i] == '|' {
			return pair[:i], pair[i+1:], true
		}
	}
	return "", "", false
}
