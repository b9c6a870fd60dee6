// Package sim drives a pixel population through timed reproduction stages.
package sim

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/pixelbreed/config"
	"github.com/pthm-cable/pixelbreed/population"
	"github.com/pthm-cable/pixelbreed/storage"
	"github.com/pthm-cable/pixelbreed/systems"
	"github.com/pthm-cable/pixelbreed/telemetry"
)

// Options configures a Simulation.
type Options struct {
	Seed     int64                      // RNG seed (0 = time-based)
	Report   io.Writer                  // Progress report destination (nil = no report)
	Store    storage.Store              // Stage history; must already be initialized (nil = disabled)
	Output   *telemetry.OutputManager   // CSV and chart output (nil = disabled)
	LogStats bool                       // Emit stage_complete events via slog
	Clock    Clock                      // Defaults to RealClock
	OnStage  func(telemetry.StageStats) // Called after every stage's telemetry
}

// StageReport describes one completed stage.
type StageReport struct {
	Stage   int
	Stats   telemetry.StageStats
	Born    []uint32
	Removed []population.Entity
	// Halted is set when the population fell below the reproducible minimum.
	Halted bool
}

// Summary describes a finished run.
type Summary struct {
	RunID           string
	Seed            int64
	Stages          int
	FinalPopulation int
	Births          int
	Deaths          int
	Halted          bool
	Elapsed         time.Duration
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Int64("seed", s.Seed),
		slog.Int("stages", s.Stages),
		slog.Int("final_population", s.FinalPopulation),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Bool("halted", s.Halted),
		slog.Duration("elapsed", s.Elapsed),
	)
}

// Simulation owns a population and advances it one stage at a time.
// Not safe for concurrent use.
type Simulation struct {
	cfg    *config.Config
	pop    *population.Population
	engine *systems.MatchEngine
	rng    *rand.Rand
	clock  Clock

	report   io.Writer
	store    storage.Store
	output   *telemetry.OutputManager
	logStats bool
	onStage  func(telemetry.StageStats)

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector

	runID     string
	seed      int64
	stage     int
	startedAt time.Time
	births    int
	deaths    int
	halted    bool
}

// New creates a simulation over pop using the reproduction rules in cfg.
// cfg must have been finalized.
func New(cfg *config.Config, pop *population.Population, opts Options) *Simulation {
	clock := opts.Clock
	if clock == nil {
		clock = RealClock{}
	}
	seed := opts.Seed
	if seed == 0 {
		seed = clock.Now().UnixNano()
	}

	perf := telemetry.NewPerfCollector(10)
	r := cfg.Reproduction
	engine := systems.NewMatchEngine(
		systems.MatchParams{
			Threshold:     r.Threshold,
			MinGeneration: r.MinGeneration,
			MaxGeneration: r.MaxGeneration,
		},
		systems.NewDominance(cfg.Derived.DominantKinds...),
		systems.WithWorkers(cfg.Simulation.Workers),
		systems.WithPhaseHook(perf.StartPhase),
	)

	return &Simulation{
		cfg:       cfg,
		pop:       pop,
		engine:    engine,
		rng:       rand.New(rand.NewSource(seed)),
		clock:     clock,
		report:    opts.Report,
		store:     opts.Store,
		output:    opts.Output,
		logStats:  opts.LogStats,
		onStage:   opts.OnStage,
		collector: telemetry.NewCollector(),
		perf:      perf,
		runID:     uuid.NewString(),
		seed:      seed,
	}
}

// Population returns the simulated population.
func (s *Simulation) Population() *population.Population {
	return s.pop
}

// Stage returns the number of completed stages.
func (s *Simulation) Stage() int {
	return s.stage
}

// RunID returns the identifier under which stage history is stored.
func (s *Simulation) RunID() string {
	return s.runID
}

// Run executes stages until the configured count is reached, the population
// drops below the reproducible minimum, or ctx is done. Stage n+1 starts at
// start + n*interval; a stage that overruns its slot delays only the next
// one. The returned error is ctx.Err() on cancellation.
func (s *Simulation) Run(ctx context.Context) (Summary, error) {
	s.startedAt = s.clock.Now()
	interval := s.cfg.Simulation.Interval
	stages := s.cfg.Simulation.Stages

	slog.Info("simulation_started",
		"run_id", s.runID,
		"seed", s.seed,
		"stages", stages,
		"interval", interval,
		"population", s.pop.Size(),
	)
	s.writeReport(0)
	s.saveRun(ctx)

	var err error
	for s.stage < stages {
		if err = ctx.Err(); err != nil {
			break
		}
		rep := s.step(ctx)
		if rep.Halted || s.stage >= stages {
			break
		}
		if interval > 0 {
			next := s.startedAt.Add(time.Duration(s.stage) * interval)
			if err = s.clock.Sleep(ctx, next.Sub(s.clock.Now())); err != nil {
				break
			}
		}
	}

	return s.finish(ctx, err), err
}

// Step runs exactly one stage without pacing.
func (s *Simulation) Step() StageReport {
	return s.step(context.Background())
}

func (s *Simulation) step(ctx context.Context) StageReport {
	s.perf.StartStage()
	s.stage++

	res := s.engine.Step(s.pop, s.rng)

	s.perf.StartPhase(telemetry.PhaseLifecycle)
	s.pop.AgeAll()
	born := s.pop.Absorb(res.Offspring)
	removed := s.pop.PruneByLifespan(s.cfg.Reproduction.Lifespan)

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.collector.RecordEligible(res.Eligible)
	for _, p := range res.Pairs {
		s.collector.RecordPair(p.Distance, p.Remembered)
	}
	s.collector.RecordBirths(len(born))
	s.collector.RecordDeaths(len(removed))
	stats := s.collector.Flush(s.stage, s.pop)
	s.births += len(born)
	s.deaths += len(removed)
	s.perf.EndStage()

	s.flushTelemetry(ctx, stats)

	rep := StageReport{
		Stage:   s.stage,
		Stats:   stats,
		Born:    born,
		Removed: removed,
	}
	if size, minimum := s.pop.Size(), s.cfg.Reproduction.MinPopulation; size < minimum {
		s.halt(size, minimum)
		rep.Halted = true
	}
	return rep
}

func (s *Simulation) halt(size, minimum int) {
	s.halted = true
	notice := telemetry.TerminationNotice(size, minimum, s.stage)
	slog.Warn("population_extinct",
		"stage", s.stage,
		"population", size,
		"min_population", minimum,
		"notice", notice,
	)
	if s.report != nil {
		if _, err := io.WriteString(s.report, notice+"\n"); err != nil {
			slog.Error("failed to write termination notice", "error", err)
		}
	}
}

func (s *Simulation) finish(ctx context.Context, runErr error) Summary {
	sum := Summary{
		RunID:           s.runID,
		Seed:            s.seed,
		Stages:          s.stage,
		FinalPopulation: s.pop.Size(),
		Births:          s.births,
		Deaths:          s.deaths,
		Halted:          s.halted,
		Elapsed:         s.clock.Now().Sub(s.startedAt),
	}

	// The run record is still written after cancellation.
	s.saveRun(context.WithoutCancel(ctx))
	if s.cfg.Telemetry.Plot {
		if err := s.output.WriteChart(); err != nil {
			slog.Error("failed to write population chart", "error", err)
		}
	}

	if runErr != nil {
		slog.Warn("simulation_interrupted", "error", runErr, "summary", sum)
	} else {
		slog.Info("simulation_finished", "summary", sum)
	}
	return sum
}
