package main

import (
	"math"

	"github.com/pthm-cable/pixelbreed/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Integer bool    // Rounded before use
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// The reproduction window is searched as a start and a width so that
// every candidate is a valid window.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "threshold", Path: "reproduction.threshold", Min: 0, Max: 200, Default: 4},
			{Name: "min_generation", Path: "reproduction.min_generation", Min: 1, Max: 8, Default: 3, Integer: true},
			{Name: "window_width", Path: "reproduction.max_generation", Min: 0, Max: 6, Default: 3, Integer: true},
			{Name: "lifespan", Path: "reproduction.lifespan", Min: 2, Max: 16, Default: 8, Integer: true},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds and rounds integer parameters.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := math.Min(math.Max(v[i], spec.Min), spec.Max)
		if spec.Integer {
			val = math.Round(val)
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	r := &cfg.Reproduction
	r.Threshold = clamped[0]
	r.MinGeneration = int(clamped[1])
	r.MaxGeneration = r.MinGeneration + int(clamped[2])
	r.Lifespan = max(int(clamped[3]), r.InitialGeneration)
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	r := cfg.Reproduction
	return []float64{
		r.Threshold,
		float64(r.MinGeneration),
		float64(r.MaxGeneration - r.MinGeneration),
		float64(r.Lifespan),
	}
}
