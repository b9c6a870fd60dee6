// Package main provides CMA-ES optimization for finding reproduction
// parameters that keep a pixel population alive and diverse.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/pixelbreed/config"
	"github.com/pthm-cable/pixelbreed/population"
	"github.com/pthm-cable/pixelbreed/records"
	"github.com/pthm-cable/pixelbreed/sim"
	"github.com/pthm-cable/pixelbreed/telemetry"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	populationPath := flag.String("population", "", "CSV file of initial pixels (empty = config population)")
	maxStages := flag.Int("max-stages", 60, "Maximum stages per run (cap)")
	maxPopulation := flag.Int("max-population", 5000, "Stop a run once the population exceeds this")
	target := flag.Float64("target", 50, "Preferred population size")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	popSizeFlag := flag.Int("cma-population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}

	// Runs halting early are expected here; keep only errors.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	colors, err := records.FromConfig(baseCfg.Population)
	if *populationPath != "" {
		colors, err = records.LoadFile(*populationPath)
	}
	if err != nil {
		log.Fatalf("failed to load population: %v", err)
	}

	params := NewParamVector()

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, *maxStages, *maxPopulation, *target, evalSeeds, baseCfg, colors)

	dim := params.Dim()
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0,
	}

	popSize := *popSizeFlag
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "fitness", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	logWriter.Write(header)

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		fitness := originalFunc(x)
		evalCount++

		clamped := params.Clamp(params.Denormalize(x))
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = clamped
		}

		quality := evaluator.LastQuality()
		row := []string{strconv.Itoa(evalCount), fmt.Sprintf("%.6f", fitness), fmt.Sprintf("%.6f", quality)}
		for _, v := range clamped {
			row = append(row, fmt.Sprintf("%.6f", v))
		}
		logWriter.Write(row)
		logWriter.Flush()

		elapsed := time.Since(startTime)
		avgPerEval := elapsed / time.Duration(evalCount)
		remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

		survived := -fitness / (1.0 + 0.2*quality)
		fmt.Printf("Eval %d/%d: survived=%.1f stages quality=%.2f (best=%.2f) | elapsed: %s, ETA: %s\n",
			evalCount, *maxEvals, survived, quality, bestFitness,
			formatDuration(elapsed), formatDuration(remaining))

		return fitness
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, stages per run: %d\n", *seeds, *maxStages)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	if bestParams == nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	totalTime := time.Since(startTime)
	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(totalTime))
	fmt.Printf("Best fitness: %.2f\n", bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s (%s): %g\n", spec.Name, spec.Path, bestParams[i])
	}

	bestCfg, err := evaluator.Config(bestParams)
	if err != nil {
		log.Fatalf("best parameters produce an invalid config: %v", err)
	}
	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}

	if err := replayBest(bestCfg, evalSeeds[0], filepath.Join(*outputDir, "best_run"), evaluator); err != nil {
		log.Printf("failed to replay best config: %v", err)
	}
}

// replayBest reruns the best config once with CSV and chart output.
func replayBest(cfg *config.Config, seed int64, dir string, fe *FitnessEvaluator) error {
	output, err := telemetry.NewOutputManager(dir)
	if err != nil {
		return err
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		return err
	}

	pop := population.New(cfg.Reproduction.InitialGeneration)
	pop.Seed(fe.colors)
	s := sim.New(cfg, pop, sim.Options{Seed: seed, Output: output})
	for s.Stage() < fe.maxStages {
		if rep := s.Step(); rep.Halted || pop.Size() > fe.maxPopulation {
			break
		}
	}
	if err := output.WriteChart(); err != nil {
		return err
	}
	fmt.Printf("Best run written to: %s\n", dir)
	return nil
}
