// Package records turns population descriptions into colors.
package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/pixelbreed/colormodel"
	"github.com/pthm-cable/pixelbreed/config"
)

// ErrBadValue is returned when a pixel record field is not a number.
var ErrBadValue = errors.New("bad value in pixel record")

// PixelRow is one row of a population CSV file. V4 is only used by CMYK.
type PixelRow struct {
	Kind string `csv:"kind"`
	V1   string `csv:"v1"`
	V2   string `csv:"v2"`
	V3   string `csv:"v3"`
	V4   string `csv:"v4,omitempty"`
}

// Fields returns the non-empty value columns.
func (r PixelRow) Fields() []string {
	fields := []string{r.V1, r.V2, r.V3}
	if strings.TrimSpace(r.V4) != "" {
		fields = append(fields, r.V4)
	}
	return fields
}

// Parse builds a color from a kind name and its textual values.
// index is the 1-based record number used in error messages.
func Parse(index int, kind string, fields []string) (colormodel.Color, error) {
	k, err := colormodel.ParseKind(kind)
	if err != nil {
		return nil, fmt.Errorf("pixel record %d: %w", index, err)
	}
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("%w %d: field %d is %q", ErrBadValue, index, i+1, f)
		}
		values[i] = v
	}
	c, err := colormodel.New(k, values)
	if err != nil {
		return nil, fmt.Errorf("pixel record %d: %w", index, err)
	}
	return c, nil
}

// Read parses a population CSV with a kind,v1,v2,v3,v4 header. Rows may
// omit the v4 column; the value count is checked per kind.
func Read(r io.Reader) ([]colormodel.Color, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []*PixelRow
	if err := gocsv.UnmarshalCSV(cr, &rows); err != nil {
		return nil, fmt.Errorf("reading population csv: %w", err)
	}
	colors := make([]colormodel.Color, 0, len(rows))
	for i, row := range rows {
		c, err := Parse(i+1, row.Kind, row.Fields())
		if err != nil {
			return nil, err
		}
		colors = append(colors, c)
	}
	return colors, nil
}

// LoadFile parses the population CSV at path.
func LoadFile(path string) ([]colormodel.Color, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening population file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Write serializes colors as a population CSV that Read accepts.
func Write(w io.Writer, colors []colormodel.Color) error {
	rows := make([]*PixelRow, len(colors))
	for i, c := range colors {
		vals := colormodel.Values(c)
		text := make([]string, 4)
		for j, v := range vals {
			text[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		rows[i] = &PixelRow{
			Kind: colormodel.KindOf(c).String(),
			V1:   text[0],
			V2:   text[1],
			V3:   text[2],
			V4:   text[3],
		}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing population csv: %w", err)
	}
	return nil
}

// FromConfig converts the records embedded in a config.
func FromConfig(recs []config.PixelRecord) ([]colormodel.Color, error) {
	colors := make([]colormodel.Color, 0, len(recs))
	for i, rec := range recs {
		k, err := colormodel.ParseKind(rec.Kind)
		if err != nil {
			return nil, fmt.Errorf("pixel record %d: %w", i+1, err)
		}
		c, err := colormodel.New(k, rec.Values)
		if err != nil {
			return nil, fmt.Errorf("pixel record %d: %w", i+1, err)
		}
		colors = append(colors, c)
	}
	return colors, nil
}
