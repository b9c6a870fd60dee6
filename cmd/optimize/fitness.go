package main

import (
	"math"
	"slices"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/pixelbreed/colormodel"
	"github.com/pthm-cable/pixelbreed/config"
	"github.com/pthm-cable/pixelbreed/population"
	"github.com/pthm-cable/pixelbreed/sim"
	"github.com/pthm-cable/pixelbreed/telemetry"
)

// FitnessEvaluator runs unpaced simulations and computes fitness.
type FitnessEvaluator struct {
	params        *ParamVector
	maxStages     int
	maxPopulation int
	targetSize    float64
	seeds         []int64
	baseConfig    *config.Config
	colors        []colormodel.Color

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. Every run starts from colors.
func NewFitnessEvaluator(params *ParamVector, maxStages, maxPopulation int, targetSize float64,
	seeds []int64, baseCfg *config.Config, colors []colormodel.Color) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:        params,
		maxStages:     maxStages,
		maxPopulation: maxPopulation,
		targetSize:    targetSize,
		seeds:         seeds,
		baseConfig:    baseCfg,
		colors:        colors,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalStages int                    // stages before halt or overflow (or maxStages if survived)
	overflow       bool                   // stopped because the population exceeded maxPopulation
	stages         []telemetry.StageStats // collected via OnStage each stage
}

type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival stages scaled by up to 20% for quality.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg, err := fe.Config(x)
	if err != nil {
		return 0
	}

	results := make([]seedResult, len(fe.seeds))
	p := pool.New().WithMaxGoroutines(len(fe.seeds))
	for i, seed := range fe.seeds {
		p.Go(func() {
			r := fe.runSimulation(cfg, seed)
			quality := fe.computeQuality(r.stages)
			results[i] = seedResult{
				fitness: -(float64(r.survivalStages) * (1.0 + 0.2*quality)),
				quality: quality,
			}
		})
	}
	p.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// Config returns a finalized copy of the base config with x applied.
func (fe *FitnessEvaluator) Config(x []float64) (*config.Config, error) {
	cfg := *fe.baseConfig
	cfg.Dominance = slices.Clone(fe.baseConfig.Dominance)
	cfg.Population = slices.Clone(fe.baseConfig.Population)
	cfg.Derived.DominantKinds = nil
	cfg.Simulation.Interval = 0
	cfg.Simulation.Stages = fe.maxStages

	fe.params.ApplyToConfig(&cfg, x)
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// runSimulation executes a single run until the population halts,
// overflows maxPopulation, or maxStages pass.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) *runResult {
	result := &runResult{}

	pop := population.New(cfg.Reproduction.InitialGeneration)
	pop.Seed(fe.colors)
	s := sim.New(cfg, pop, sim.Options{
		Seed: seed,
		OnStage: func(stats telemetry.StageStats) {
			result.stages = append(result.stages, stats)
		},
	})

	for s.Stage() < fe.maxStages {
		rep := s.Step()
		if rep.Halted {
			result.survivalStages = rep.Stage
			return result
		}
		if pop.Size() > fe.maxPopulation {
			result.survivalStages = rep.Stage
			result.overflow = true
			return result
		}
	}

	result.survivalStages = fe.maxStages
	return result
}

// Quality component weights.
const (
	qualityWeightDiversity = 0.40
	qualityWeightStability = 0.30
	qualityWeightSize      = 0.30

	qualityWarmupStages = 3 // skip first N stages while seeds mature
)

// computeQuality computes population quality in [0, 1] from stage stats.
func (fe *FitnessEvaluator) computeQuality(stages []telemetry.StageStats) float64 {
	if len(stages) <= qualityWarmupStages {
		return 0
	}
	valid := stages[qualityWarmupStages:]

	var diversitySum, sizeSum float64
	sizes := make([]float64, 0, len(valid))
	for _, st := range valid {
		if st.Population == 0 {
			continue
		}
		sizes = append(sizes, float64(st.Population))
		diversitySum += kindEvenness(st)

		logErr := math.Log(float64(st.Population) / fe.targetSize)
		sizeSum += math.Exp(-logErr * logErr)
	}
	if len(sizes) == 0 {
		return 0
	}
	n := float64(len(sizes))

	stabilityScore := 0.0
	if len(sizes) >= 2 {
		c := cv(sizes)
		stabilityScore = math.Exp(-c * c)
	}

	quality := qualityWeightDiversity*diversitySum/n +
		qualityWeightStability*stabilityScore +
		qualityWeightSize*sizeSum/n

	return clamp01(quality)
}

// kindEvenness is the Shannon entropy of the color model mix normalized
// to [0, 1]; 1 means all four models are equally represented.
func kindEvenness(st telemetry.StageStats) float64 {
	total := float64(st.Population)
	p := []float64{
		float64(st.RGBCount) / total,
		float64(st.HSLCount) / total,
		float64(st.HSVCount) / total,
		float64(st.CMYKCount) / total,
	}
	return stat.Entropy(p) / math.Log(colormodel.NumKinds)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return math.Min(math.Max(x, 0), 1)
}
