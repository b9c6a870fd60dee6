package telemetry

import (
	"github.com/pthm-cable/pixelbreed/colormodel"
	"github.com/pthm-cable/pixelbreed/population"
)

// Collector accumulates events within a stage and produces StageStats.
type Collector struct {
	eligible        int
	pairs           int
	rememberedPairs int
	births          int
	deaths          int
	distances       []float64
}

// NewCollector creates a new stats collector.
func NewCollector() *Collector {
	return &Collector{}
}

// RecordEligible records the size of the stage's reproductive window.
func (c *Collector) RecordEligible(n int) {
	c.eligible = n
}

// RecordPair records a couple formed this stage and the RGB distance
// between its partners.
func (c *Collector) RecordPair(distance float64, remembered bool) {
	c.pairs++
	if remembered {
		c.rememberedPairs++
	}
	c.distances = append(c.distances, distance)
}

// RecordBirths records offspring absorbed into the population.
func (c *Collector) RecordBirths(n int) {
	c.births += n
}

// RecordDeaths records pixels removed by the lifespan rule.
func (c *Collector) RecordDeaths(n int) {
	c.deaths += n
}

// Flush produces a StageStats from the stage counters and the surviving
// population, then resets the counters for the next stage.
func (c *Collector) Flush(stage int, pop *population.Population) StageStats {
	entities := pop.Entities()
	generations := make([]float64, len(entities))
	genMax := 0
	for i, e := range entities {
		generations[i] = float64(e.Generation)
		if e.Generation > genMax {
			genMax = e.Generation
		}
	}
	genMean, genStd := ComputeMeanStd(generations)
	distMean, distP10, distP50, distP90 := ComputeDistribution(c.distances)
	counts := pop.KindCounts()

	stats := StageStats{
		Stage:      stage,
		Population: len(entities),
		RGBCount:   counts[colormodel.KindRGB],
		HSLCount:   counts[colormodel.KindHSL],
		HSVCount:   counts[colormodel.KindHSV],
		CMYKCount:  counts[colormodel.KindCMYK],

		Eligible:        c.eligible,
		Pairs:           c.pairs,
		RememberedPairs: c.rememberedPairs,
		Births:          c.births,
		Deaths:          c.deaths,

		GenerationMean: genMean,
		GenerationStd:  genStd,
		GenerationMax:  genMax,

		DistanceMean: distMean,
		DistanceP10:  distP10,
		DistanceP50:  distP50,
		DistanceP90:  distP90,
	}

	c.eligible = 0
	c.pairs = 0
	c.rememberedPairs = 0
	c.births = 0
	c.deaths = 0
	c.distances = c.distances[:0]

	return stats
}
