package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/pixelbreed/colormodel"
	"github.com/pthm-cable/pixelbreed/config"
	"github.com/pthm-cable/pixelbreed/population"
)

// PixelRecord is one row of pixels.csv: a pixel as it stood at the end of a stage.
type PixelRecord struct {
	Stage      int    `csv:"stage"`
	ID         uint32 `csv:"id"`
	Generation int    `csv:"generation"`
	Kind       string `csv:"kind"`
	Red        int    `csv:"r"`
	Green      int    `csv:"g"`
	Blue       int    `csv:"b"`
	MateID     uint32 `csv:"mate"`
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir        string
	stagesFile *os.File
	pixelsFile *os.File
	perfFile   *os.File

	// Track if headers have been written
	stagesHeaderWritten bool
	pixelsHeaderWritten bool
	perfHeaderWritten   bool

	history []StageStats
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		dst  **os.File
	}{
		{"stages.csv", &om.stagesFile},
		{"pixels.csv", &om.pixelsFile},
		{"perf.csv", &om.perfFile},
	}
	for _, f := range files {
		fh, err := os.Create(filepath.Join(dir, f.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", f.name, err)
		}
		*f.dst = fh
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// writeRows appends rows to f, including the header on the first call.
func writeRows(f *os.File, headerWritten *bool, rows any) error {
	if !*headerWritten {
		if err := gocsv.Marshal(rows, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(rows, f)
}

// WriteStage writes a stage stats record to stages.csv and keeps it for the chart.
func (om *OutputManager) WriteStage(stats StageStats) error {
	if om == nil {
		return nil
	}
	om.history = append(om.history, stats)
	if err := writeRows(om.stagesFile, &om.stagesHeaderWritten, []StageStats{stats}); err != nil {
		return fmt.Errorf("writing stage stats: %w", err)
	}
	return nil
}

// WritePixels writes every live pixel at the end of stage to pixels.csv.
func (om *OutputManager) WritePixels(stage int, entities []population.Entity) error {
	if om == nil || len(entities) == 0 {
		return nil
	}
	rows := make([]PixelRecord, len(entities))
	for i, e := range entities {
		rgb := colormodel.ToRGB(e.Color)
		rows[i] = PixelRecord{
			Stage:      stage,
			ID:         e.ID,
			Generation: e.Generation,
			Kind:       e.Kind().String(),
			Red:        rgb[0],
			Green:      rgb[1],
			Blue:       rgb[2],
			MateID:     e.MateID,
		}
	}
	if err := writeRows(om.pixelsFile, &om.pixelsHeaderWritten, rows); err != nil {
		return fmt.Errorf("writing pixels: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, stage int) error {
	if om == nil {
		return nil
	}
	if err := writeRows(om.perfFile, &om.perfHeaderWritten, []PerfStatsCSV{stats.ToCSV(stage)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteChart renders the population history written so far to population.png.
func (om *OutputManager) WriteChart() error {
	if om == nil || len(om.history) == 0 {
		return nil
	}
	return PlotPopulation(om.history, filepath.Join(om.dir, "population.png"))
}

// History returns the stage stats written so far.
func (om *OutputManager) History() []StageStats {
	if om == nil {
		return nil
	}
	return om.history
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var errs []error
	for _, f := range []*os.File{om.stagesFile, om.pixelsFile, om.perfFile} {
		if f != nil {
			errs = append(errs, f.Close())
		}
	}
	return errors.Join(errs...)
}
