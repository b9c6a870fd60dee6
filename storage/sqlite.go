package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pthm-cable/pixelbreed/telemetry"
)

// SQLiteStore keeps run history in a SQLite database file.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run RunRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, seed, started_at, stages, final_population, halted)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			seed = excluded.seed,
			started_at = excluded.started_at,
			stages = excluded.stages,
			final_population = excluded.final_population,
			halted = excluded.halted
	`, run.ID, run.Seed, run.StartedAt.UTC().Format(time.RFC3339Nano), run.Stages, run.FinalPopulation, run.Halted)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (RunRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return RunRecord{}, false, err
	}

	run := RunRecord{ID: id}
	var startedAt string
	err = db.QueryRowContext(ctx, `
		SELECT seed, started_at, stages, final_population, halted FROM runs WHERE id = ?
	`, id).Scan(&run.Seed, &startedAt, &run.Stages, &run.FinalPopulation, &run.Halted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, false, nil
		}
		return RunRecord{}, false, err
	}

	run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return RunRecord{}, false, fmt.Errorf("decode run %s start time: %w", id, err)
	}
	return run, true, nil
}

func (s *SQLiteStore) SaveStage(ctx context.Context, runID string, st telemetry.StageStats) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT OR REPLACE INTO stages (
			run_id, stage, population, rgb, hsl, hsv, cmyk,
			eligible, pairs, remembered_pairs, births, deaths,
			generation_mean, generation_std, generation_max,
			distance_mean, distance_p10, distance_p50, distance_p90
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, st.Stage, st.Population, st.RGBCount, st.HSLCount, st.HSVCount, st.CMYKCount,
		st.Eligible, st.Pairs, st.RememberedPairs, st.Births, st.Deaths,
		st.GenerationMean, st.GenerationStd, st.GenerationMax,
		st.DistanceMean, st.DistanceP10, st.DistanceP50, st.DistanceP90)
	return err
}

func (s *SQLiteStore) GetStages(ctx context.Context, runID string) ([]telemetry.StageStats, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT stage, population, rgb, hsl, hsv, cmyk,
			eligible, pairs, remembered_pairs, births, deaths,
			generation_mean, generation_std, generation_max,
			distance_mean, distance_p10, distance_p50, distance_p90
		FROM stages WHERE run_id = ? ORDER BY stage
	`, runID)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var history []telemetry.StageStats
	for rows.Next() {
		var st telemetry.StageStats
		if err := rows.Scan(&st.Stage, &st.Population, &st.RGBCount, &st.HSLCount, &st.HSVCount, &st.CMYKCount,
			&st.Eligible, &st.Pairs, &st.RememberedPairs, &st.Births, &st.Deaths,
			&st.GenerationMean, &st.GenerationStd, &st.GenerationMax,
			&st.DistanceMean, &st.DistanceP10, &st.DistanceP50, &st.DistanceP90); err != nil {
			return nil, false, fmt.Errorf("decode stage of run %s: %w", runID, err)
		}
		history = append(history, st)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return history, len(history) > 0, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			stages INTEGER NOT NULL,
			final_population INTEGER NOT NULL,
			halted BOOLEAN NOT NULL
		);
		CREATE TABLE IF NOT EXISTS stages (
			run_id TEXT NOT NULL,
			stage INTEGER NOT NULL,
			population INTEGER NOT NULL,
			rgb INTEGER NOT NULL,
			hsl INTEGER NOT NULL,
			hsv INTEGER NOT NULL,
			cmyk INTEGER NOT NULL,
			eligible INTEGER NOT NULL,
			pairs INTEGER NOT NULL,
			remembered_pairs INTEGER NOT NULL,
			births INTEGER NOT NULL,
			deaths INTEGER NOT NULL,
			generation_mean REAL NOT NULL,
			generation_std REAL NOT NULL,
			generation_max INTEGER NOT NULL,
			distance_mean REAL NOT NULL,
			distance_p10 REAL NOT NULL,
			distance_p50 REAL NOT NULL,
			distance_p90 REAL NOT NULL,
			PRIMARY KEY (run_id, stage)
		);
	`)
	return err
}
