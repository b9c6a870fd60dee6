package colormodel

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// MaxChannel is the upper bound of an RGB channel.
const MaxChannel = 255

// Triple is an RGB projection with integer channels in [0, 255].
// It is a comparison coordinate, not a displayable pixel.
type Triple [3]int

// Distance returns the Euclidean distance between two projections.
func (t Triple) Distance(o Triple) float64 {
	return floats.Distance(t.vec(), o.vec(), 2)
}

// Midpoint returns the channel-wise floor average of two projections.
func (t Triple) Midpoint(o Triple) Triple {
	return Triple{
		(t[0] + o[0]) / 2,
		(t[1] + o[1]) / 2,
		(t[2] + o[2]) / 2,
	}
}

// Fractions returns the channels normalized to [0, 1].
func (t Triple) Fractions() (r, g, b float64) {
	return float64(t[0]) / MaxChannel, float64(t[1]) / MaxChannel, float64(t[2]) / MaxChannel
}

func (t Triple) String() string {
	return fmt.Sprintf("(%d,%d,%d)", t[0], t[1], t[2])
}

func (t Triple) vec() []float64 {
	return []float64{float64(t[0]), float64(t[1]), float64(t[2])}
}

func clampChannel(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxChannel {
		return MaxChannel
	}
	return v
}
