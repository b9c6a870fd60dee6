package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/pixelbreed/colormodel"
	"github.com/pthm-cable/pixelbreed/config"
	"github.com/pthm-cable/pixelbreed/population"
	"github.com/pthm-cable/pixelbreed/records"
	"github.com/pthm-cable/pixelbreed/sim"
	"github.com/pthm-cable/pixelbreed/storage"
	"github.com/pthm-cable/pixelbreed/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	populationPath := flag.String("population", "", "CSV file of initial pixels (kind,v1,v2,v3,v4); overrides the config population")
	stages := flag.Int("stages", -1, "Number of stages to run (-1 = use config)")
	interval := flag.Duration("interval", -1, "Wall-clock period between stages (-1 = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config seed, then time-based)")
	workers := flag.Int("workers", -1, "Offspring worker pool size (-1 = use config, 0 = GOMAXPROCS)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, chart and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output per-stage stats via slog")
	storeKind := flag.String("store", "", "Stage history backend: memory or sqlite (empty = use config)")
	storePath := flag.String("store-path", "", "SQLite database file for -store sqlite")

	flag.Parse()

	// Structured logs share stdout with the progress report only when
	// stats logging is requested; the report then moves to stderr.
	var report io.Writer = os.Stdout
	logOut := io.Writer(os.Stderr)
	if *logStats {
		report, logOut = os.Stderr, os.Stdout
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	applyFlags(cfg, *stages, *interval, *seed, *workers, *outputDir, *logStats, *storeKind, *storePath)
	if err := cfg.Finalize(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	colors, err := loadPopulation(cfg, *populationPath)
	if err != nil {
		slog.Error("failed to load population", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		slog.Error("failed to create store", "error", err)
		os.Exit(1)
	}
	if err := store.Init(ctx); err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := storage.CloseIfSupported(store); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	output, err := telemetry.NewOutputManager(cfg.Telemetry.OutputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	pop := population.New(cfg.Reproduction.InitialGeneration)
	pop.Seed(colors)

	s := sim.New(cfg, pop, sim.Options{
		Seed:     cfg.Simulation.Seed,
		Report:   report,
		Store:    store,
		Output:   output,
		LogStats: cfg.Telemetry.LogStats,
	})

	if _, err := s.Run(ctx); err != nil {
		slog.Info("stopped by signal", "stage", s.Stage())
	}
}

// applyFlags overrides config fields with the flags that were set.
func applyFlags(cfg *config.Config, stages int, interval time.Duration, seed int64, workers int,
	outputDir string, logStats bool, storeKind, storePath string) {
	if stages >= 0 {
		cfg.Simulation.Stages = stages
	}
	if interval >= 0 {
		cfg.Simulation.Interval = interval
	}
	if seed != 0 {
		cfg.Simulation.Seed = seed
	}
	if workers >= 0 {
		cfg.Simulation.Workers = workers
	}
	if outputDir != "" {
		cfg.Telemetry.OutputDir = outputDir
	}
	if logStats {
		cfg.Telemetry.LogStats = true
	}
	if storeKind != "" {
		cfg.Storage.Backend = storeKind
	}
	if storePath != "" {
		cfg.Storage.Path = storePath
	}
}

// loadPopulation reads the initial pixels from path, or from the config
// when path is empty.
func loadPopulation(cfg *config.Config, path string) ([]colormodel.Color, error) {
	if path != "" {
		return records.LoadFile(path)
	}
	return records.FromConfig(cfg.Population)
}
