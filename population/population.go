// Package population stores the live pixels of one simulation run.
package population

import (
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pixelbreed/colormodel"
	"github.com/pthm-cable/pixelbreed/components"
)

// Population is the set of live pixels keyed by a monotonically increasing
// identifier. Iteration order is ascending identifier, which is also
// insertion order. Not safe for concurrent use.
type Population struct {
	world  *ecs.World
	mapper *ecs.Map2[components.Pixel, components.Lineage]
	filter *ecs.Filter2[components.Pixel, components.Lineage]

	index map[uint32]ecs.Entity
	order []uint32

	nextID            uint32
	initialGeneration int
}

// New creates an empty population whose members start at initialGeneration.
func New(initialGeneration int) *Population {
	world := ecs.NewWorld()
	return &Population{
		world:             world,
		mapper:            ecs.NewMap2[components.Pixel, components.Lineage](world),
		filter:            ecs.NewFilter2[components.Pixel, components.Lineage](world),
		index:             make(map[uint32]ecs.Entity),
		nextID:            1,
		initialGeneration: initialGeneration,
	}
}

// Seed inserts the initial population and returns the assigned identifiers.
func (p *Population) Seed(colors []colormodel.Color) []uint32 {
	return p.Absorb(colors)
}

// Absorb inserts offspring at the initial generation, each under a fresh
// identifier, and returns the identifiers in input order.
func (p *Population) Absorb(offspring []colormodel.Color) []uint32 {
	ids := make([]uint32, 0, len(offspring))
	for _, c := range offspring {
		ids = append(ids, p.insert(c, p.initialGeneration))
	}
	return ids
}

func (p *Population) insert(c colormodel.Color, generation int) uint32 {
	id := p.nextID
	p.nextID++

	pixel := components.Pixel{Color: c}
	lin := components.Lineage{ID: id, Generation: generation}
	p.index[id] = p.mapper.NewEntity(&pixel, &lin)
	p.order = append(p.order, id)
	return id
}

// AgeAll increments the generation of every live pixel by exactly one.
func (p *Population) AgeAll() {
	query := p.filter.Query()
	for query.Next() {
		_, lin := query.Get()
		lin.IncrementGeneration()
	}
}

// PruneByLifespan removes every pixel whose generation exceeds lifespan and
// returns the removed pixels. Survivors keep their identifiers; survivors
// whose remembered mate died forget it.
func (p *Population) PruneByLifespan(lifespan int) []Entity {
	var dead []Entity
	for _, id := range p.order {
		e := p.view(id)
		if e.Generation > lifespan {
			dead = append(dead, e)
		}
	}
	if len(dead) == 0 {
		return nil
	}

	// Removal happens after the scan; ark locks the world during queries.
	for _, d := range dead {
		p.world.RemoveEntity(p.index[d.ID])
		delete(p.index, d.ID)
	}
	p.order = slices.DeleteFunc(p.order, func(id uint32) bool {
		_, ok := p.index[id]
		return !ok
	})

	for _, id := range p.order {
		_, lin := p.mapper.Get(p.index[id])
		if lin.HasMate() && !p.Alive(lin.MateID) {
			lin.MateID = 0
		}
	}
	return dead
}

// Size returns the number of live pixels.
func (p *Population) Size() int {
	return len(p.order)
}

// NextID returns the identifier the next inserted pixel will receive.
func (p *Population) NextID() uint32 {
	return p.nextID
}

// InitialGeneration returns the generation new pixels start at.
func (p *Population) InitialGeneration() int {
	return p.initialGeneration
}

// Alive reports whether id refers to a live pixel.
func (p *Population) Alive(id uint32) bool {
	_, ok := p.index[id]
	return ok
}

// IDs returns the live identifiers in iteration order.
func (p *Population) IDs() []uint32 {
	return slices.Clone(p.order)
}

// Get returns a copy of the pixel with the given identifier.
func (p *Population) Get(id uint32) (Entity, bool) {
	if !p.Alive(id) {
		return Entity{}, false
	}
	return p.view(id), true
}

// Entities returns copies of all live pixels in iteration order.
func (p *Population) Entities() []Entity {
	out := make([]Entity, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.view(id))
	}
	return out
}

// SetMates records a and b as each other's remembered partner. A previous
// partner of either side that still points back is released.
// Unknown identifiers are ignored.
func (p *Population) SetMates(a, b uint32) {
	if !p.Alive(a) || !p.Alive(b) {
		return
	}
	_, la := p.mapper.Get(p.index[a])
	_, lb := p.mapper.Get(p.index[b])
	p.release(a, la.MateID)
	p.release(b, lb.MateID)
	la.MateID = b
	lb.MateID = a
}

// release clears former's mate when it still names id.
func (p *Population) release(id, former uint32) {
	if former == 0 || !p.Alive(former) {
		return
	}
	if _, lin := p.mapper.Get(p.index[former]); lin.MateID == id {
		lin.MateID = 0
	}
}

// ClearMate forgets the remembered partner of id.
func (p *Population) ClearMate(id uint32) {
	if !p.Alive(id) {
		return
	}
	_, lin := p.mapper.Get(p.index[id])
	lin.MateID = 0
}

// KindCounts returns the number of live pixels per color model.
func (p *Population) KindCounts() [colormodel.NumKinds]int {
	var counts [colormodel.NumKinds]int
	query := p.filter.Query()
	for query.Next() {
		pix, _ := query.Get()
		counts[colormodel.KindOf(pix.Color)]++
	}
	return counts
}

func (p *Population) view(id uint32) Entity {
	pix, lin := p.mapper.Get(p.index[id])
	return Entity{
		ID:         lin.ID,
		Generation: lin.Generation,
		MateID:     lin.MateID,
		Color:      pix.Color,
	}
}
