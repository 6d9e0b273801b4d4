package cashflows

import "fmt"

// Validate checks the definitions and run settings eagerly, before any
// computation. All failures here are configuration errors: the run would
// either crash later or produce a misleading answer.
func Validate(settings *GlobalSettings, components []*Component) error {
	if settings == nil {
		return fmt.Errorf("%w: global settings are required", ErrConfiguration)
	}
	if len(components) == 0 {
		return fmt.Errorf("%w: at least one component is required", ErrConfiguration)
	}

	byName := make(map[string]*Component, len(components))
	seenCashflows := make(map[string]string)
	multTargets := 0
	for _, comp := range components {
		if comp.Lifetime <= 0 {
			return fmt.Errorf("%w: component %q lifetime must be a positive number of years, got %d",
				ErrConfiguration, comp.Name, comp.Lifetime)
		}
		if _, dup := byName[comp.Name]; dup {
			return fmt.Errorf("%w: component name %q is not unique", ErrConfiguration, comp.Name)
		}
		byName[comp.Name] = comp

		for _, cf := range comp.CashFlows {
			if owner, dup := seenCashflows[cf.Name]; dup {
				return fmt.Errorf("%w: cash flow name %q used by both %q and %q; names must be unique across the project",
					ErrConfiguration, cf.Name, owner, comp.Name)
			}
			seenCashflows[cf.Name] = comp.Name
			if cf.MultTarget {
				multTargets++
			}
			if err := validateCashFlow(comp, cf); err != nil {
				return err
			}
		}
	}

	// StartTime/Repetitions without an explicit horizon would silently give a
	// misleading answer, so reject the combination.
	if settings.ProjectTime == 0 {
		for _, comp := range components {
			if comp.StartTime != 0 {
				return fmt.Errorf("%w: component %q has StartTime but no ProjectTime is set",
					ErrConfiguration, comp.Name)
			}
			if comp.Repetitions != 0 {
				return fmt.Errorf("%w: component %q has Repetitions but no ProjectTime is set",
					ErrConfiguration, comp.Name)
			}
		}
	}

	for _, pair := range settings.ActivePairs {
		compName, cfName, ok := SplitPair(pair)
		if !ok {
			return fmt.Errorf("%w: active pair %q is not of the form Component|CashFlow", ErrConfiguration, pair)
		}
		comp, found := byName[compName]
		if !found {
			return fmt.Errorf("%w: %q (options: %v)", ErrActiveComponentMissing, compName, componentNames(components))
		}
		if comp.CashFlow(cfName) == nil {
			return fmt.Errorf("%w: component %q has no cash flow %q", ErrActiveComponentMissing, compName, cfName)
		}
	}

	if settings.WantsIndicator(IndicatorNPVSearch) && multTargets == 0 {
		return ErrNoMultTarget
	}
	return nil
}

func validateCashFlow(comp *Component, cf *CashFlow) error {
	switch cf.Inflation {
	case InflationNone, InflationReal, InflationNominal, "":
	default:
		return fmt.Errorf("%w: cash flow %q inflation must be none, real or nominal, got %q",
			ErrConfiguration, cf.Name, cf.Inflation)
	}

	if len(cf.Alpha) == 0 {
		return fmt.Errorf("%w: cash flow %q has no alpha", ErrMissingParameter, cf.Name)
	}
	if len(cf.Alpha) != 1 && len(cf.Alpha) != comp.Lifetime+1 {
		return fmt.Errorf("%w: cash flow %q alpha has %d entries, want 1 or lifetime+1 (%d)",
			ErrCashflowLength, cf.Name, len(cf.Alpha), comp.Lifetime+1)
	}
	if cf.Driver.IsEmpty() {
		return fmt.Errorf("%w: cash flow %q has no driver", ErrMissingParameter, cf.Name)
	}
	if cf.Driver.IsLiteral() {
		if n := len(cf.Driver.Values); n != 1 && n != comp.Lifetime+1 {
			return fmt.Errorf("%w: cash flow %q literal driver has %d entries, want 1 or lifetime+1 (%d)",
				ErrCashflowLength, cf.Name, n, comp.Lifetime+1)
		}
	}

	if cf.Kind != Recurring {
		// The Capex formula divides by the reference and exponentiates, so
		// both must be present. A zero value is indistinguishable from unset
		// and would be meaningless either way.
		if cf.Reference == 0 {
			return fmt.Errorf("%w: cash flow %q has no reference driver", ErrMissingParameter, cf.Name)
		}
		if cf.ScaleX == 0 {
			return fmt.Errorf("%w: cash flow %q has no scale exponent X", ErrMissingParameter, cf.Name)
		}
	}
	if cf.Depreciation != nil && cf.Kind != Capex {
		return fmt.Errorf("%w: cash flow %q: only Capex flows can carry a depreciation descriptor",
			ErrConfiguration, cf.Name)
	}
	return nil
}

func componentNames(components []*Component) []string {
	names := make([]string, len(components))
	for i, c := range components {
		names[i] = c.Name
	}
	return names
}
