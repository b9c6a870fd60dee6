package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pthm-cable/pixelbreed/colormodel"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	r := cfg.Reproduction
	if r.Threshold != 4 || r.Lifespan != 8 || r.MinGeneration != 3 || r.MaxGeneration != 6 {
		t.Errorf("unexpected reproduction defaults: %+v", r)
	}
	if cfg.Simulation.Interval != time.Second || cfg.Simulation.Stages != 10 {
		t.Errorf("unexpected simulation defaults: %+v", cfg.Simulation)
	}
	if len(cfg.Population) != 4 {
		t.Errorf("expected 4 default pixels, got %d", len(cfg.Population))
	}
	want := []colormodel.Kind{colormodel.KindRGB, colormodel.KindHSV}
	if len(cfg.Derived.DominantKinds) != 2 || cfg.Derived.DominantKinds[0] != want[0] || cfg.Derived.DominantKinds[1] != want[1] {
		t.Errorf("DominantKinds = %v, want %v", cfg.Derived.DominantKinds, want)
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	path := writeFile(t, `
reproduction:
  threshold: 12.5
simulation:
  interval: 250ms
dominance: [cmyk]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Reproduction.Threshold != 12.5 {
		t.Errorf("threshold = %v, want 12.5", cfg.Reproduction.Threshold)
	}
	if cfg.Reproduction.Lifespan != 8 {
		t.Errorf("lifespan should keep default 8, got %d", cfg.Reproduction.Lifespan)
	}
	if cfg.Simulation.Interval != 250*time.Millisecond {
		t.Errorf("interval = %s, want 250ms", cfg.Simulation.Interval)
	}
	if len(cfg.Derived.DominantKinds) != 1 || cfg.Derived.DominantKinds[0] != colormodel.KindCMYK {
		t.Errorf("DominantKinds = %v, want [CMYK]", cfg.Derived.DominantKinds)
	}
}

func TestLoadRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown dominance", "dominance: [RGB, YUV]\n"},
		{"unknown pixel kind", "population:\n  - {kind: LAB, values: [1, 2, 3]}\n"},
		{"cmyk missing value", "population:\n  - {kind: CMYK, values: [1, 2, 3]}\n"},
		{"inverted window", "reproduction: {min_generation: 6, max_generation: 3}\n"},
		{"tiny min population", "reproduction: {min_population: 1}\n"},
		{"sqlite without path", "storage: {backend: sqlite}\n"},
		{"unknown backend", "storage: {backend: redis}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Load error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.Reproduction.Threshold = 9
	path := filepath.Join(t.TempDir(), "out.yaml")

	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Reproduction.Threshold != 9 || back.Simulation.Interval != cfg.Simulation.Interval {
		t.Errorf("round trip mismatch: %+v vs %+v", back.Reproduction, cfg.Reproduction)
	}
}

func TestCfgBeforeInitPanics(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("Cfg() before Init() should panic")
		}
	}()
	Cfg()
}
