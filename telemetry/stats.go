package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// StageStats holds aggregated statistics for one completed stage.
type StageStats struct {
	Stage int `csv:"stage"`

	// Population at stage end
	Population int `csv:"population"`
	RGBCount   int `csv:"rgb"`
	HSLCount   int `csv:"hsl"`
	HSVCount   int `csv:"hsv"`
	CMYKCount  int `csv:"cmyk"`

	// Events during the stage
	Eligible        int `csv:"eligible"`
	Pairs           int `csv:"pairs"`
	RememberedPairs int `csv:"remembered_pairs"`
	Births          int `csv:"births"`
	Deaths          int `csv:"deaths"`

	// Generation distribution (sampled at stage end)
	GenerationMean float64 `csv:"generation_mean"`
	GenerationStd  float64 `csv:"generation_std"`
	GenerationMax  int     `csv:"generation_max"`

	// RGB distance between partners of the stage's pairs
	DistanceMean float64 `csv:"distance_mean"`
	DistanceP10  float64 `csv:"distance_p10"`
	DistanceP50  float64 `csv:"distance_p50"`
	DistanceP90  float64 `csv:"distance_p90"`
}

// Percentile returns the p-th percentile of a sorted slice using the
// empirical CDF. p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	switch {
	case p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[len(sorted)-1]
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeDistribution calculates mean and percentiles from values.
func ComputeDistribution(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return mean, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// ComputeMeanStd returns the mean and population standard deviation.
func ComputeMeanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(values, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s StageStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("stage", s.Stage),
		slog.Int("population", s.Population),
		slog.Int("rgb", s.RGBCount),
		slog.Int("hsl", s.HSLCount),
		slog.Int("hsv", s.HSVCount),
		slog.Int("cmyk", s.CMYKCount),
		slog.Int("eligible", s.Eligible),
		slog.Int("pairs", s.Pairs),
		slog.Int("remembered_pairs", s.RememberedPairs),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Float64("generation_mean", s.GenerationMean),
		slog.Float64("generation_std", s.GenerationStd),
		slog.Int("generation_max", s.GenerationMax),
		slog.Float64("distance_mean", s.DistanceMean),
		slog.Float64("distance_p10", s.DistanceP10),
		slog.Float64("distance_p50", s.DistanceP50),
		slog.Float64("distance_p90", s.DistanceP90),
	)
}
