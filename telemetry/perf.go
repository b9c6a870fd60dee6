package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/pixelbreed/systems"
)

// Phase names for one simulation stage. Pairing and breeding are reported
// by the match engine itself.
const (
	PhasePairing   = systems.PhasePairing
	PhaseBreeding  = systems.PhaseBreeding
	PhaseLifecycle = "lifecycle"
	PhaseTelemetry = "telemetry"
)

var phases = []string{PhasePairing, PhaseBreeding, PhaseLifecycle, PhaseTelemetry}

// PerfSample holds timing data for a single stage.
type PerfSample struct {
	StageDuration time.Duration
	Phases        map[string]time.Duration
}

// PerfCollector tracks stage timings over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	stageStart    time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a new performance collector averaging over
// the last windowSize stages.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 10
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartStage begins timing a new stage.
func (p *PerfCollector) StartStage() {
	p.stageStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase ends the running phase, if any, and begins timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndStage finishes timing the current stage and records the sample.
func (p *PerfCollector) EndStage() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
		p.lastPhase = ""
	}

	p.samples[p.writeIndex] = PerfSample{
		StageDuration: now.Sub(p.stageStart),
		Phases:        p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgStageDuration time.Duration
	MinStageDuration time.Duration
	MaxStageDuration time.Duration

	// Average phase durations and their share of stage time in percent
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		PhaseAvg: make(map[string]time.Duration),
		PhasePct: make(map[string]float64),
	}
	if p.sampleCount == 0 {
		return stats
	}

	var total time.Duration
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.StageDuration
		if i == 0 || s.StageDuration < stats.MinStageDuration {
			stats.MinStageDuration = s.StageDuration
		}
		if s.StageDuration > stats.MaxStageDuration {
			stats.MaxStageDuration = s.StageDuration
		}
		for phase, d := range s.Phases {
			phaseSum[phase] += d
		}
	}

	stats.AvgStageDuration = total / time.Duration(p.sampleCount)
	for phase, sum := range phaseSum {
		avg := sum / time.Duration(p.sampleCount)
		stats.PhaseAvg[phase] = avg
		if stats.AvgStageDuration > 0 {
			stats.PhasePct[phase] = float64(avg) / float64(stats.AvgStageDuration) * 100
		}
	}
	return stats
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_stage_us", s.AvgStageDuration.Microseconds()),
		slog.Int64("min_stage_us", s.MinStageDuration.Microseconds()),
		slog.Int64("max_stage_us", s.MaxStageDuration.Microseconds()),
	}
	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Stage        int     `csv:"stage"`
	AvgStageUS   int64   `csv:"avg_stage_us"`
	MinStageUS   int64   `csv:"min_stage_us"`
	MaxStageUS   int64   `csv:"max_stage_us"`
	PairingPct   float64 `csv:"pairing_pct"`
	BreedingPct  float64 `csv:"breeding_pct"`
	LifecyclePct float64 `csv:"lifecycle_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(stage int) PerfStatsCSV {
	return PerfStatsCSV{
		Stage:        stage,
		AvgStageUS:   s.AvgStageDuration.Microseconds(),
		MinStageUS:   s.MinStageDuration.Microseconds(),
		MaxStageUS:   s.MaxStageDuration.Microseconds(),
		PairingPct:   s.PhasePct[PhasePairing],
		BreedingPct:  s.PhasePct[PhaseBreeding],
		LifecyclePct: s.PhasePct[PhaseLifecycle],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
