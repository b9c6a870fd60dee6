package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pthm-cable/pixelbreed/telemetry"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	sqlite := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
	for name, s := range stores {
		if err := s.Init(ctx); err != nil {
			t.Fatalf("init %s: %v", name, err)
		}
	}
	t.Cleanup(func() {
		_ = sqlite.Close()
	})
	return stores
}

func TestStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			run := RunRecord{ID: "run-1", Seed: 42, StartedAt: started, Stages: 5, FinalPopulation: 9}
			if err := store.SaveRun(ctx, run); err != nil {
				t.Fatalf("save run: %v", err)
			}
			run.Halted = true
			run.Stages = 3
			if err := store.SaveRun(ctx, run); err != nil {
				t.Fatalf("overwrite run: %v", err)
			}

			got, ok, err := store.GetRun(ctx, "run-1")
			if err != nil || !ok {
				t.Fatalf("get run: ok=%v err=%v", ok, err)
			}
			if got.Seed != 42 || got.Stages != 3 || !got.Halted || !got.StartedAt.Equal(started) {
				t.Errorf("unexpected run %+v", got)
			}

			if _, ok, err := store.GetRun(ctx, "missing"); ok || err != nil {
				t.Errorf("missing run: ok=%v err=%v", ok, err)
			}
		})
	}
}

func TestStoreStagesOrderedAndReplaced(t *testing.T) {
	ctx := context.Background()

	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, stage := range []int{2, 1, 3} {
				st := telemetry.StageStats{Stage: stage, Population: stage * 10, DistanceMean: 1.5}
				if err := store.SaveStage(ctx, "run-1", st); err != nil {
					t.Fatalf("save stage %d: %v", stage, err)
				}
			}
			if err := store.SaveStage(ctx, "run-1", telemetry.StageStats{Stage: 2, Population: 99}); err != nil {
				t.Fatalf("replace stage: %v", err)
			}
			if err := store.SaveStage(ctx, "run-2", telemetry.StageStats{Stage: 1}); err != nil {
				t.Fatalf("save other run: %v", err)
			}

			history, ok, err := store.GetStages(ctx, "run-1")
			if err != nil || !ok {
				t.Fatalf("get stages: ok=%v err=%v", ok, err)
			}
			if len(history) != 3 {
				t.Fatalf("got %d stages, want 3", len(history))
			}
			for i, st := range history {
				if st.Stage != i+1 {
					t.Errorf("history[%d].Stage = %d, want %d", i, st.Stage, i+1)
				}
			}
			if history[1].Population != 99 {
				t.Errorf("stage 2 population = %d, want replaced value 99", history[1].Population)
			}
			if history[0].DistanceMean != 1.5 {
				t.Errorf("stage 1 distance mean = %v, want 1.5", history[0].DistanceMean)
			}

			if _, ok, err := store.GetStages(ctx, "missing"); ok || err != nil {
				t.Errorf("missing run: ok=%v err=%v", ok, err)
			}
		})
	}
}

func TestStoreRequiresInit(t *testing.T) {
	ctx := context.Background()
	for name, store := range map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLiteStore(filepath.Join(t.TempDir(), "x.db")),
	} {
		if err := store.SaveStage(ctx, "r", telemetry.StageStats{}); err == nil {
			t.Errorf("%s: expected error before Init", name)
		}
	}
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		kind    string
		path    string
		wantErr bool
	}{
		{"", "", false},
		{"memory", "", false},
		{"SQLite", "history.db", false},
		{"sqlite", "", true},
		{"redis", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			store, err := NewStore(tt.kind, tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewStore(%q, %q) error = %v, wantErr %v", tt.kind, tt.path, err, tt.wantErr)
			}
			if err == nil {
				if cerr := CloseIfSupported(store); cerr != nil {
					t.Errorf("close: %v", cerr)
				}
			}
		})
	}
}
