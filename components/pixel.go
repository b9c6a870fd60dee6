// Package components defines ECS components for the simulation.
package components

import "github.com/pthm-cable/pixelbreed/colormodel"

// Pixel holds the color a pixel carries for its whole life.
type Pixel struct {
	Color colormodel.Color
}

// Lineage holds identity and age bookkeeping.
type Lineage struct {
	ID         uint32 // Population identifier, never reused
	Generation int    // Stages survived, starting at the configured initial value
	MateID     uint32 // Remembered partner (0 = none)
}

// HasMate reports whether a partner is remembered.
func (l *Lineage) HasMate() bool {
	return l.MateID != 0
}

// IncrementGeneration ages the pixel by one stage.
func (l *Lineage) IncrementGeneration() {
	l.Generation++
}
