package systems

import (
	"math/rand"
	"strings"

	"github.com/pthm-cable/pixelbreed/colormodel"
)

// Dominance is the set of genetically dominant color models.
// It is a value type and is never mutated after construction.
type Dominance struct {
	dominant [colormodel.NumKinds]bool
}

// NewDominance creates a dominance set from the given kinds.
func NewDominance(kinds ...colormodel.Kind) Dominance {
	var d Dominance
	for _, k := range kinds {
		if k.Valid() {
			d.dominant[k] = true
		}
	}
	return d
}

// IsDominant reports whether k is dominant.
func (d Dominance) IsDominant(k colormodel.Kind) bool {
	return k.Valid() && d.dominant[k]
}

// Kinds returns the dominant kinds in declaration order.
func (d Dominance) Kinds() []colormodel.Kind {
	var out []colormodel.Kind
	for _, k := range colormodel.AllKinds {
		if d.dominant[k] {
			out = append(out, k)
		}
	}
	return out
}

func (d Dominance) String() string {
	names := make([]string, 0, colormodel.NumKinds)
	for _, k := range d.Kinds() {
		names = append(names, k.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Resolve picks the offspring's color model. When exactly one parent kind is
// dominant it wins; otherwise (both or neither) the result is a fair coin
// flip between the two parent kinds.
func (d Dominance) Resolve(a, b colormodel.Kind, rng *rand.Rand) colormodel.Kind {
	da, db := d.IsDominant(a), d.IsDominant(b)
	switch {
	case da && !db:
		return a
	case db && !da:
		return b
	}
	if rng.Intn(2) == 0 {
		return a
	}
	return b
}
