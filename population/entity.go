package population

import (
	"fmt"

	"github.com/pthm-cable/pixelbreed/colormodel"
)

// Entity is a read-only copy of one live pixel.
type Entity struct {
	ID         uint32
	Generation int
	MateID     uint32 // 0 = none; may name a pixel that has since died
	Color      colormodel.Color
}

// Kind returns the pixel's color model.
func (e Entity) Kind() colormodel.Kind {
	return colormodel.KindOf(e.Color)
}

// RGB returns the pixel's projection into the comparison space.
func (e Entity) RGB() colormodel.Triple {
	return colormodel.ToRGB(e.Color)
}

// DistanceTo returns the Euclidean distance between the RGB projections.
func (e Entity) DistanceTo(other Entity) float64 {
	return e.RGB().Distance(other.RGB())
}

// AverageWith returns the floor midpoint of the RGB projections.
func (e Entity) AverageWith(other Entity) colormodel.Triple {
	return e.RGB().Midpoint(other.RGB())
}

// HasMate reports whether a partner is remembered.
func (e Entity) HasMate() bool {
	return e.MateID != 0
}

func (e Entity) String() string {
	s := fmt.Sprintf("#%d gen=%d %s", e.ID, e.Generation, colormodel.Describe(e.Color))
	if e.HasMate() {
		s += fmt.Sprintf(" mate=#%d", e.MateID)
	}
	return s
}
