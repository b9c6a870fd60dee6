package records

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/pthm-cable/pixelbreed/colormodel"
	"github.com/pthm-cable/pixelbreed/config"
)

const seedCSV = `kind,v1,v2,v3,v4
RGB,14,240,100,
HSL,0.2,0.1,0.9,
HSV,0.4,0.2,0.7,
CMYK,120,56,200,12
`

func seedColors() []colormodel.Color {
	return []colormodel.Color{
		colormodel.RGB{R: 14, G: 240, B: 100},
		colormodel.HSL{H: 0.2, S: 0.1, L: 0.9},
		colormodel.HSV{H: 0.4, S: 0.2, V: 0.7},
		colormodel.CMYK{C: 120, M: 56, Y: 200, K: 12},
	}
}

func TestRead(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"trailing empty column", seedCSV},
		{"short rows", "kind,v1,v2,v3,v4\nRGB,14,240,100\nHSL,0.2,0.1,0.9\nHSV,0.4,0.2,0.7\nCMYK,120,56,200,12\n"},
		{"spaces after commas", "kind, v1, v2, v3, v4\nRGB, 14, 240, 100\nHSL, 0.2, 0.1, 0.9\nHSV, 0.4, 0.2, 0.7\nCMYK, 120, 56, 200, 12\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if !reflect.DeepEqual(got, seedColors()) {
				t.Errorf("Read = %v, want %v", got, seedColors())
			}
		})
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"non numeric", "kind,v1,v2,v3,v4\nRGB,14,abc,100,\n", ErrBadValue},
		{"unknown kind", "kind,v1,v2,v3,v4\nLAB,1,2,3,\n", colormodel.ErrUnknownKind},
		{"cmyk missing black", "kind,v1,v2,v3,v4\nCMYK,1,2,3,\n", colormodel.ErrArity},
		{"cmyk short row", "kind,v1,v2,v3,v4\nRGB,1,2,3\nCMYK,1,2,3\n", colormodel.ErrArity},
		{"rgb out of range", "kind,v1,v2,v3,v4\nRGB,1,2,300,\n", colormodel.ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.body))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Read error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseReportsRecordIndex(t *testing.T) {
	_, err := Parse(3, "HSV", []string{"0.1", "x", "0.3"})
	if !errors.Is(err, ErrBadValue) {
		t.Fatalf("Parse error = %v, want ErrBadValue", err)
	}
	if !strings.Contains(err.Error(), "bad value in pixel record 3") {
		t.Errorf("error %q should name the record", err)
	}
}

func TestWriteThenRead(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, seedColors()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(got, seedColors()) {
		t.Errorf("got %v, want %v", got, seedColors())
	}
}

func TestFromConfig(t *testing.T) {
	got, err := FromConfig(config.Defaults().Population)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if !reflect.DeepEqual(got, seedColors()) {
		t.Errorf("FromConfig = %v, want %v", got, seedColors())
	}

	_, err = FromConfig([]config.PixelRecord{{Kind: "RGB", Values: []float64{1, 2}}})
	if !errors.Is(err, colormodel.ErrArity) {
		t.Errorf("FromConfig error = %v, want ErrArity", err)
	}
}
