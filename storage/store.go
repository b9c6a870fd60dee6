// Package storage keeps the stage history of simulation runs.
package storage

import (
	"context"
	"time"

	"github.com/pthm-cable/pixelbreed/telemetry"
)

// RunRecord summarizes one simulation run.
type RunRecord struct {
	ID              string
	Seed            int64
	StartedAt       time.Time
	Stages          int
	FinalPopulation int
	Halted          bool // stopped early because the population fell below the minimum
}

// Store defines persistence operations for run history.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	SaveStage(ctx context.Context, runID string, stats telemetry.StageStats) error
	GetStages(ctx context.Context, runID string) ([]telemetry.StageStats, bool, error)
}
