package config

import (
	"fmt"
	"os"

	"github.com/hjson/hjson-go/v4"

	"tea_engine/pkg/core/cashflows"
)

// LoadVariables reads a variable snapshot file into the name -> values map
// the engine consumes. HJSON is used so snapshot files can carry comments and
// stay hand-editable:
//
//	{
//	  // produced units per year, lifetime+1 entries
//	  demand: [0, 100, 100, 100, 100]
//	  unit_price: 3.5
//	}
func LoadVariables(path string) (cashflows.Variables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading variables file: %w", err)
	}

	var raw map[string]interface{}
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing variables file: %w", err)
	}

	vars := make(cashflows.Variables, len(raw))
	for name, value := range raw {
		vals, err := toFloats(value)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		vars[name] = vals
	}
	return vars, nil
}
