package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tea_engine/pkg/core/pipeline"
)

// RunRepo persists pipeline results so scenario runs can be compared over
// time without rerunning the engine.
type RunRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepo creates a repository over an open pool.
func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// Save upserts the latest result for a scenario. One row per scenario name;
// the full indicator map and projected tables go into a JSONB column.
//
// Schema assumption:
//
//	CREATE TABLE IF NOT EXISTS economic_runs (
//	  scenario   TEXT PRIMARY KEY,
//	  run_id     TEXT,
//	  result_json JSONB,
//	  updated_at TIMESTAMPTZ
//	);
func (r *RunRepo) Save(ctx context.Context, scenario string, result *pipeline.RunResult) error {
	jsonData, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal run result: %w", err)
	}

	query := `
		INSERT INTO economic_runs (scenario, run_id, result_json, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (scenario)
		DO UPDATE SET
			run_id = EXCLUDED.run_id,
			result_json = EXCLUDED.result_json,
			updated_at = EXCLUDED.updated_at;
	`

	if _, err := r.pool.Exec(ctx, query, scenario, result.RunID, jsonData, time.Now()); err != nil {
		return fmt.Errorf("failed to save run result: %w", err)
	}
	return nil
}

// Load retrieves the latest persisted result for a scenario.
func (r *RunRepo) Load(ctx context.Context, scenario string) (*pipeline.RunResult, error) {
	query := `SELECT result_json FROM economic_runs WHERE scenario = $1`

	var jsonData []byte
	if err := r.pool.QueryRow(ctx, query, scenario).Scan(&jsonData); err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no run found for scenario %s", scenario)
		}
		return nil, fmt.Errorf("failed to load run result: %w", err)
	}

	var result pipeline.RunResult
	if err := json.Unmarshal(jsonData, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run result: %w", err)
	}
	return &result, nil
}
