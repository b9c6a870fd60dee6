package sim

import (
	"context"
	"log/slog"

	"github.com/pthm-cable/pixelbreed/storage"
	"github.com/pthm-cable/pixelbreed/telemetry"
)

// flushTelemetry fans a finished stage out to the report, logs, history
// store and CSV output. Failures are logged and never stop the run.
func (s *Simulation) flushTelemetry(ctx context.Context, stats telemetry.StageStats) {
	perfStats := s.perf.Stats()

	if s.onStage != nil {
		s.onStage(stats)
	}

	if s.logStats {
		slog.Info("stage_complete", "stats", stats, "perf", perfStats)
	}

	s.writeReport(s.stage)

	if s.store != nil {
		if err := s.store.SaveStage(ctx, s.runID, stats); err != nil {
			slog.Error("failed to store stage", "stage", s.stage, "error", err)
		}
	}

	if s.output != nil {
		if err := s.output.WriteStage(stats); err != nil {
			slog.Error("failed to write stage stats", "error", err)
		}
		if err := s.output.WritePixels(s.stage, s.pop.Entities()); err != nil {
			slog.Error("failed to write pixels", "error", err)
		}
		if err := s.output.WritePerf(perfStats, s.stage); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

func (s *Simulation) writeReport(stage int) {
	if s.report == nil {
		return
	}
	if err := telemetry.WriteReport(s.report, stage, s.pop.Entities()); err != nil {
		slog.Error("failed to write progress report", "stage", stage, "error", err)
	}
}

func (s *Simulation) saveRun(ctx context.Context) {
	if s.store == nil {
		return
	}
	run := storage.RunRecord{
		ID:              s.runID,
		Seed:            s.seed,
		StartedAt:       s.startedAt,
		Stages:          s.stage,
		FinalPopulation: s.pop.Size(),
		Halted:          s.halted,
	}
	if err := s.store.SaveRun(ctx, run); err != nil {
		slog.Error("failed to store run", "run_id", s.runID, "error", err)
	}
}
