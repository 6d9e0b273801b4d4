package main

import (
	"context"
	"flag"
	"fmt"
	"sort"

	"github.com/joho/godotenv"

	"tea_engine/pkg/config"
	"tea_engine/pkg/core/pipeline"
	"tea_engine/pkg/core/store"
	"tea_engine/pkg/logging"
)

func main() {
	scenarioPath := flag.String("scenario", "", "YAML scenario file")
	varsPath := flag.String("vars", "", "HJSON variable snapshot file (optional)")
	save := flag.Bool("save", false, "persist the result to the economic_runs table")
	flag.Parse()

	_ = godotenv.Load() // a .env file is a convenience, not a requirement
	log := logging.Setup()

	if *scenarioPath == "" {
		logging.Fatal("missing -scenario flag")
	}

	name, settings, components, err := config.LoadScenario(*scenarioPath)
	if err != nil {
		logging.Fatal("failed to load scenario", "err", err)
	}
	vars := make(map[string][]float64)
	if *varsPath != "" {
		vars, err = config.LoadVariables(*varsPath)
		if err != nil {
			logging.Fatal("failed to load variables", "err", err)
		}
	}

	orch := pipeline.New(nil, log)
	result, err := orch.Run(settings, components, vars)
	if err != nil {
		logging.Fatal("run failed", "scenario", name, "err", err)
	}

	keys := make([]string, 0, len(result.Indicators))
	for k := range result.Indicators {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Printf("scenario: %s (run %s, horizon %d years)\n", name, result.RunID, result.Horizon)
	for _, k := range keys {
		fmt.Printf("%-10s %.9e\n", k, result.Indicators[k])
	}

	if *save {
		ctx := context.Background()
		pool, err := store.Connect(ctx)
		if err != nil {
			logging.Fatal("failed to connect to database", "err", err)
		}
		defer pool.Close()
		if err := store.NewRunRepo(pool).Save(ctx, name, result); err != nil {
			logging.Fatal("failed to persist run", "err", err)
		}
		log.Info("run persisted", "scenario", name, "run_id", result.RunID)
	}
}
