// Package systems implements the per-stage reproduction logic.
package systems

import (
	"math/rand"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/pthm-cable/pixelbreed/colormodel"
	"github.com/pthm-cable/pixelbreed/population"
)

// defaultParallelThreshold is the minimum pair count for the worker pool.
// Below this, a plain loop is faster than spawning goroutines.
const defaultParallelThreshold = 32

// Phase names reported to a PhaseHook during Step.
const (
	PhasePairing  = "pairing"
	PhaseBreeding = "breeding"
)

// MatchParams holds the pairing parameters.
type MatchParams struct {
	Threshold     float64 // Candidate distance must strictly exceed this
	MinGeneration int     // Inclusive lower bound of the reproduction window
	MaxGeneration int     // Inclusive upper bound of the reproduction window
}

// Eligible reports whether a pixel of the given generation may reproduce.
func (p MatchParams) Eligible(generation int) bool {
	return generation >= p.MinGeneration && generation <= p.MaxGeneration
}

// Pair is a couple approved for reproduction in one stage.
type Pair struct {
	A, B       population.Entity
	Distance   float64
	Remembered bool // Formed from a remembered mate rather than a scan
}

// StageResult is the outcome of one MatchEngine step.
type StageResult struct {
	Eligible  int
	Pairs     []Pair
	Offspring []colormodel.Color
}

// MatchEngine selects parents, forms couples and builds offspring.
type MatchEngine struct {
	params            MatchParams
	dominance         Dominance
	workers           int
	parallelThreshold int
	onPhase           func(phase string)
}

// Option configures a MatchEngine.
type Option func(*MatchEngine)

// WithWorkers bounds the offspring worker pool. Values below 1 use GOMAXPROCS;
// 1 forces sequential construction.
func WithWorkers(n int) Option {
	return func(m *MatchEngine) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		m.workers = n
	}
}

// WithParallelThreshold sets the minimum pair count that uses the worker pool.
func WithParallelThreshold(n int) Option {
	return func(m *MatchEngine) {
		m.parallelThreshold = max(n, 1)
	}
}

// WithPhaseHook calls fn as Step enters each of its phases.
func WithPhaseHook(fn func(phase string)) Option {
	return func(m *MatchEngine) {
		m.onPhase = fn
	}
}

// NewMatchEngine creates a match engine.
func NewMatchEngine(params MatchParams, dominance Dominance, opts ...Option) *MatchEngine {
	m := &MatchEngine{
		params:            params,
		dominance:         dominance,
		workers:           runtime.GOMAXPROCS(0),
		parallelThreshold: defaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Params returns the pairing parameters.
func (m *MatchEngine) Params() MatchParams {
	return m.params
}

// Dominance returns the dominance set.
func (m *MatchEngine) Dominance() Dominance {
	return m.dominance
}

// Step runs eligibility, pairing and offspring construction for one stage.
// Offspring are returned, not inserted.
func (m *MatchEngine) Step(pop *population.Population, rng *rand.Rand) StageResult {
	m.phase(PhasePairing)
	eligible := m.eligible(pop)
	pairs := m.formPairs(pop, eligible)

	m.phase(PhaseBreeding)
	return StageResult{
		Eligible:  len(eligible),
		Pairs:     pairs,
		Offspring: m.Breed(pairs, rng),
	}
}

func (m *MatchEngine) phase(name string) {
	if m.onPhase != nil {
		m.onPhase(name)
	}
}

// Eligible returns the identifiers of pixels inside the reproduction window,
// in population order.
func (m *MatchEngine) Eligible(pop *population.Population) []uint32 {
	eligible := m.eligible(pop)
	ids := make([]uint32, len(eligible))
	for i, e := range eligible {
		ids[i] = e.ID
	}
	return ids
}

func (m *MatchEngine) eligible(pop *population.Population) []population.Entity {
	var out []population.Entity
	for _, e := range pop.Entities() {
		if m.params.Eligible(e.Generation) {
			out = append(out, e)
		}
	}
	return out
}

// FormPairs forms this stage's couples. It must run sequentially: each match
// consumes both pixels for the rest of the pass.
//
// A pixel whose remembered mate is eligible and unconsumed pairs with it
// unconditionally. Otherwise it scans the other eligible, unconsumed pixels
// whose kind it accepts and takes the farthest one strictly above the
// threshold, keeping the first seen on ties. A dead mate is forgotten first.
// Pixels whose own mate is in the window are not offered to scanners, so
// remembered couples stay mutually exclusive. Scan matches become remembered
// mates and release any earlier partner.
func (m *MatchEngine) FormPairs(pop *population.Population) []Pair {
	return m.formPairs(pop, m.eligible(pop))
}

func (m *MatchEngine) formPairs(pop *population.Population, eligible []population.Entity) []Pair {
	inWindow := make(map[uint32]bool, len(eligible))
	for _, e := range eligible {
		inWindow[e.ID] = true
	}
	consumed := make(map[uint32]bool, len(eligible))

	var pairs []Pair
	for _, e := range eligible {
		if consumed[e.ID] {
			continue
		}

		if e.HasMate() {
			mate, ok := pop.Get(e.MateID)
			if !ok {
				pop.ClearMate(e.ID)
			} else if inWindow[mate.ID] && !consumed[mate.ID] {
				pairs = append(pairs, Pair{A: e, B: mate, Distance: e.DistanceTo(mate), Remembered: true})
				consumed[e.ID] = true
				consumed[mate.ID] = true
				continue
			}
		}

		best := -1
		var bestDist float64
		kind := e.Kind()
		for j, c := range eligible {
			if c.ID == e.ID || consumed[c.ID] || !colormodel.CanMate(kind, c.Kind()) {
				continue
			}
			if c.HasMate() && inWindow[c.MateID] {
				continue
			}
			d := e.DistanceTo(c)
			if d > m.params.Threshold && (best < 0 || d > bestDist) {
				best = j
				bestDist = d
			}
		}
		if best < 0 {
			continue
		}

		c := eligible[best]
		pairs = append(pairs, Pair{A: e, B: c, Distance: bestDist})
		consumed[e.ID] = true
		consumed[c.ID] = true
		pop.SetMates(e.ID, c.ID)
	}
	return pairs
}

// Breed builds one offspring per pair. Pairs are independent, so large
// batches are fanned out over a bounded worker pool. Each pair draws from its
// own generator seeded from rng before dispatch, so sequential and parallel
// runs give identical results for the same rng state.
func (m *MatchEngine) Breed(pairs []Pair, rng *rand.Rand) []colormodel.Color {
	out := make([]colormodel.Color, len(pairs))
	if len(pairs) == 0 {
		return out
	}

	seeds := make([]int64, len(pairs))
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	if m.workers <= 1 || len(pairs) < m.parallelThreshold {
		for i := range pairs {
			out[i] = m.Offspring(pairs[i], rand.New(rand.NewSource(seeds[i])))
		}
		return out
	}

	p := pool.New().WithMaxGoroutines(m.workers)
	for i := range pairs {
		p.Go(func() {
			out[i] = m.Offspring(pairs[i], rand.New(rand.NewSource(seeds[i])))
		})
	}
	p.Wait()
	return out
}

// Offspring builds the child of a single pair: the kind comes from the
// dominance rule and the value from the floor midpoint of both projections.
func (m *MatchEngine) Offspring(pair Pair, rng *rand.Rand) colormodel.Color {
	kind := m.dominance.Resolve(pair.A.Kind(), pair.B.Kind(), rng)
	return colormodel.FromRGB(kind, pair.A.AverageWith(pair.B))
}
