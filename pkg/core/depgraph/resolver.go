// Package depgraph orders cash flows so every flow is evaluated strictly
// after the flows that drive it.
package depgraph

import (
	"fmt"
	"sort"
	"strings"

	"tea_engine/pkg/core/cashflows"
)

// Resolve builds the driver dependency graph over all cash flows and returns
// a safe evaluation order of "Component|CashFlow" identifiers. Flows whose
// driver is a literal or an external variable carry no inbound edge; a flow
// driven by another cash flow is ordered after its driver. The order is
// deterministic: ties are broken by definition order.
func Resolve(components []*cashflows.Component, variables cashflows.Variables) ([]string, error) {
	byName := make(map[string]*cashflows.Component, len(components))
	for _, comp := range components {
		byName[comp.Name] = comp
	}

	var order []string        // definition order of all ids, for determinism
	indegree := map[string]int{}
	edges := map[string][]string{} // driver id -> dependent ids

	for _, comp := range components {
		// Named multipliers must exist in the snapshot before any evaluation.
		for _, cf := range comp.CashFlows {
			if cf.Multiplier.Name != "" {
				if _, ok := variables[cf.Multiplier.Name]; !ok {
					return nil, fmt.Errorf("%w: %q required by component %q cash flow %q",
						cashflows.ErrMissingMultiplier, cf.Multiplier.Name, comp.Name, cf.Name)
				}
			}
		}

		for _, cf := range comp.CashFlows {
			id := cashflows.PairID(comp.Name, cf.Name)
			order = append(order, id)
			if _, ok := indegree[id]; !ok {
				indegree[id] = 0
			}

			if cf.Driver.IsLiteral() {
				continue
			}
			ref := cf.Driver.Ref
			if vals, ok := variables[ref]; ok {
				// External variable: broadcastable scalar or one point per
				// lifetime year.
				if n := len(vals); n > 1 && n != comp.Lifetime+1 {
					return nil, fmt.Errorf("%w: component %q cash flow %q driver %q has %d entries but the lifetime is %d",
						cashflows.ErrDriverLengthMismatch, comp.Name, cf.Name, ref, n, comp.Lifetime)
				}
				continue
			}

			driverComp, driverCf, ok := cashflows.SplitPair(ref)
			if !ok {
				return nil, fmt.Errorf("%w: component %q cash flow %q driver %q found neither among variables nor as Component|CashFlow",
					cashflows.ErrUnresolvedDriver, comp.Name, cf.Name, ref)
			}
			target, found := byName[driverComp]
			if !found || target.CashFlow(driverCf) == nil {
				return nil, fmt.Errorf("%w: component %q cash flow %q driver %q does not name an existing cash flow",
					cashflows.ErrUnresolvedDriver, comp.Name, cf.Name, ref)
			}
			if target.Lifetime != comp.Lifetime {
				return nil, fmt.Errorf("%w: %q (lifetime %d) cannot drive %q (lifetime %d)",
					cashflows.ErrLifetimeMismatch, driverComp, target.Lifetime, comp.Name, comp.Lifetime)
			}
			if ref == id {
				return nil, fmt.Errorf("%w: cash flow %q drives itself", cashflows.ErrCyclicDependency, id)
			}
			edges[ref] = append(edges[ref], id)
			indegree[id]++
		}
	}

	return kahn(order, indegree, edges)
}

// kahn runs Kahn's algorithm over the prepared graph, reporting any residual
// cycle explicitly.
func kahn(order []string, indegree map[string]int, edges map[string][]string) ([]string, error) {
	var queue []string
	for _, id := range order {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	result := make([]string, 0, len(order))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, id)
		for _, dep := range edges[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(result) != len(order) {
		var stuck []string
		for id, deg := range indegree {
			if deg > 0 {
				stuck = append(stuck, id)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w: unresolvable flows: %s", cashflows.ErrCyclicDependency, strings.Join(stuck, ", "))
	}
	return result, nil
}
