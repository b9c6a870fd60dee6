package colormodel

import (
	"errors"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"RGB", KindRGB, true},
		{"hsl", KindHSL, true},
		{" HsV ", KindHSV, true},
		{"CMYK", KindCMYK, true},
		{"YUV", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if !tt.ok {
			if !errors.Is(err, ErrUnknownKind) {
				t.Errorf("ParseKind(%q) error = %v, want ErrUnknownKind", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestCanMateTable(t *testing.T) {
	allowed := map[Kind]map[Kind]bool{
		KindRGB:  {KindRGB: true, KindHSV: true, KindCMYK: true},
		KindHSL:  {KindHSV: true, KindHSL: true},
		KindHSV:  {KindRGB: true, KindHSV: true, KindHSL: true, KindCMYK: true},
		KindCMYK: {KindRGB: true, KindHSV: true, KindCMYK: true},
	}

	for _, a := range AllKinds {
		for _, b := range AllKinds {
			if got := CanMate(a, b); got != allowed[a][b] {
				t.Errorf("CanMate(%s, %s) = %v, want %v", a, b, got, allowed[a][b])
			}
		}
	}
}

func TestKindTextRoundTrip(t *testing.T) {
	for _, k := range AllKinds {
		text, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%s): %v", k, err)
		}
		var back Kind
		if err := back.UnmarshalText(text); err != nil || back != k {
			t.Errorf("UnmarshalText(%q) = %v, %v", text, back, err)
		}
	}
	if _, err := Kind(7).MarshalText(); err == nil {
		t.Error("MarshalText of invalid kind should fail")
	}
}
