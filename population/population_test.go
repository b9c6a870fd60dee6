package population

import (
	"math"
	"testing"

	"github.com/pthm-cable/pixelbreed/colormodel"
)

func seedColors() []colormodel.Color {
	return []colormodel.Color{
		colormodel.RGB{R: 14, G: 240, B: 100},
		colormodel.HSL{H: 0.2, S: 0.1, L: 0.9},
		colormodel.HSV{H: 0.4, S: 0.2, V: 0.7},
		colormodel.CMYK{C: 120, M: 56, Y: 200, K: 12},
	}
}

func TestSeedAssignsIncreasingIDs(t *testing.T) {
	pop := New(1)
	ids := pop.Seed(seedColors())

	if len(ids) != 4 || pop.Size() != 4 {
		t.Fatalf("expected 4 pixels, got ids=%v size=%d", ids, pop.Size())
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Errorf("ids should be strictly increasing: %v", ids)
		}
	}
	for _, e := range pop.Entities() {
		if e.Generation != 1 {
			t.Errorf("pixel #%d generation = %d, want 1", e.ID, e.Generation)
		}
		if e.HasMate() {
			t.Errorf("pixel #%d should start without a mate", e.ID)
		}
	}
}

func TestAgeAllIncrementsOnce(t *testing.T) {
	pop := New(0)
	pop.Seed(seedColors())

	pop.AgeAll()
	pop.AgeAll()

	for _, e := range pop.Entities() {
		if e.Generation != 2 {
			t.Errorf("pixel #%d generation = %d, want 2", e.ID, e.Generation)
		}
	}
}

func TestPruneByLifespan(t *testing.T) {
	const lifespan = 3
	pop := New(1)
	old := pop.Seed(seedColors()[:2])
	for i := 0; i < lifespan; i++ {
		pop.AgeAll()
	}
	// old pixels are now at generation 4; newcomers at 1
	young := pop.Absorb(seedColors()[2:])

	dead := pop.PruneByLifespan(lifespan)

	if len(dead) != 2 {
		t.Fatalf("expected 2 removed pixels, got %d", len(dead))
	}
	for _, id := range old {
		if pop.Alive(id) {
			t.Errorf("pixel #%d should have been removed", id)
		}
	}
	for _, id := range young {
		if !pop.Alive(id) {
			t.Errorf("pixel #%d should survive", id)
		}
	}
	for _, e := range pop.Entities() {
		if e.Generation > lifespan {
			t.Errorf("survivor #%d has generation %d > lifespan %d", e.ID, e.Generation, lifespan)
		}
	}
}

func TestPruneKeepsBoundaryGeneration(t *testing.T) {
	pop := New(8)
	pop.Seed(seedColors()[:1])

	if dead := pop.PruneByLifespan(8); len(dead) != 0 {
		t.Errorf("generation equal to lifespan must survive, removed %d", len(dead))
	}
	pop.AgeAll()
	if dead := pop.PruneByLifespan(8); len(dead) != 1 {
		t.Errorf("generation above lifespan must be removed, removed %d", len(dead))
	}
	if pop.Size() != 0 {
		t.Errorf("size = %d, want 0", pop.Size())
	}
}

func TestIDsNeverReused(t *testing.T) {
	pop := New(5)
	first := pop.Seed(seedColors())
	pop.AgeAll()
	pop.PruneByLifespan(5)
	if pop.Size() != 0 {
		t.Fatalf("size = %d, want 0", pop.Size())
	}

	second := pop.Absorb(seedColors()[:1])
	for _, id := range first {
		if id == second[0] {
			t.Fatalf("identifier %d reused", id)
		}
	}
	if second[0] <= first[len(first)-1] {
		t.Errorf("new id %d should exceed previous ids %v", second[0], first)
	}
}

func TestIterationOrderStableAfterRemoval(t *testing.T) {
	pop := New(1)
	ids := pop.Seed(seedColors())
	pop.AgeAll()
	pop.Absorb(seedColors()[:2])

	// Only the original four are above lifespan 1.
	pop.PruneByLifespan(1)
	got := pop.IDs()
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Errorf("iteration order not ascending: %v", got)
		}
	}
	if len(got) != 2 || got[0] != ids[len(ids)-1]+1 {
		t.Errorf("unexpected survivors %v", got)
	}
}

func TestPruneForgetsDeadMate(t *testing.T) {
	pop := New(1)
	old := pop.Seed(seedColors()[:1])
	pop.AgeAll()
	pop.AgeAll()
	young := pop.Absorb(seedColors()[1:2])
	pop.SetMates(old[0], young[0])

	pop.PruneByLifespan(2)

	e, ok := pop.Get(young[0])
	if !ok {
		t.Fatal("young pixel should survive")
	}
	if e.HasMate() {
		t.Errorf("mate #%d died but is still remembered", e.MateID)
	}
}

func TestSetMatesReleasesFormerPartners(t *testing.T) {
	pop := New(1)
	ids := pop.Seed(seedColors())
	pop.SetMates(ids[0], ids[1])
	pop.SetMates(ids[2], ids[3])

	pop.SetMates(ids[0], ids[2])

	want := map[uint32]uint32{ids[0]: ids[2], ids[1]: 0, ids[2]: ids[0], ids[3]: 0}
	for id, mate := range want {
		e, _ := pop.Get(id)
		if e.MateID != mate {
			t.Errorf("#%d mate = %d, want %d", id, e.MateID, mate)
		}
	}
}

func TestEntityDistanceAndAverage(t *testing.T) {
	a := Entity{ID: 1, Color: colormodel.RGB{R: 10, G: 20, B: 30}}
	b := Entity{ID: 2, Color: colormodel.RGB{R: 20, G: 30, B: 40}}

	if got := a.AverageWith(b); got != (colormodel.Triple{15, 25, 35}) {
		t.Errorf("AverageWith = %v, want (15,25,35)", got)
	}
	if d := a.DistanceTo(b); math.Abs(d-math.Sqrt(300)) > 1e-9 {
		t.Errorf("DistanceTo = %v, want %v", d, math.Sqrt(300))
	}
	for _, x := range seedColors() {
		for _, y := range seedColors() {
			ex, ey := Entity{Color: x}, Entity{Color: y}
			if ex.DistanceTo(ey) != ey.DistanceTo(ex) {
				t.Errorf("distance not symmetric for %v and %v", x, y)
			}
		}
	}
}

func TestKindCounts(t *testing.T) {
	pop := New(1)
	pop.Seed(seedColors())
	pop.Absorb([]colormodel.Color{colormodel.RGB{}})

	counts := pop.KindCounts()
	if counts[colormodel.KindRGB] != 2 || counts[colormodel.KindHSL] != 1 ||
		counts[colormodel.KindHSV] != 1 || counts[colormodel.KindCMYK] != 1 {
		t.Errorf("KindCounts = %v", counts)
	}
}
