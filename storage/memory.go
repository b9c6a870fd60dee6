package storage

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/pthm-cable/pixelbreed/telemetry"
)

var errNotInitialized = errors.New("store is not initialized")

// MemoryStore keeps run history in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]RunRecord
	stages      map[string][]telemetry.StageStats
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]RunRecord)
	s.stages = make(map[string][]telemetry.StageStats)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

// SaveStage records stats for a stage, replacing an earlier record of the
// same stage number.
func (s *MemoryStore) SaveStage(_ context.Context, runID string, stats telemetry.StageStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	history := s.stages[runID]
	i, found := slices.BinarySearchFunc(history, stats.Stage, func(st telemetry.StageStats, stage int) int {
		return st.Stage - stage
	})
	if found {
		history[i] = stats
	} else {
		history = slices.Insert(history, i, stats)
	}
	s.stages[runID] = history
	return nil
}

func (s *MemoryStore) GetStages(_ context.Context, runID string) ([]telemetry.StageStats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.stages[runID]
	return slices.Clone(history), ok, nil
}
