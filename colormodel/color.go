package colormodel

import (
	"errors"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	// ErrArity is returned when a color is built from the wrong number of values.
	ErrArity = errors.New("wrong number of color values")
	// ErrOutOfRange is returned when a color value lies outside its model's range.
	ErrOutOfRange = errors.New("color value out of range")
)

// Color is one of RGB, HSL, HSV or CMYK.
// The set is closed; ToRGB and FromRGB switch over every variant.
type Color interface {
	isColor()
}

// RGB holds integer channels in [0, 255].
type RGB struct {
	R, G, B int
}

// HSL holds hue, saturation and lightness as fractions in [0, 1].
// Hue is a fraction of a full turn.
type HSL struct {
	H, S, L float64
}

// HSV holds hue, saturation and value as fractions in [0, 1].
type HSV struct {
	H, S, V float64
}

// CMYK holds ink coverages in [0, 255], the same scale as RGB channels.
type CMYK struct {
	C, M, Y, K int
}

func (RGB) isColor()  {}
func (HSL) isColor()  {}
func (HSV) isColor()  {}
func (CMYK) isColor() {}

// KindOf returns the model of c.
func KindOf(c Color) Kind {
	switch c.(type) {
	case RGB:
		return KindRGB
	case HSL:
		return KindHSL
	case HSV:
		return KindHSV
	case CMYK:
		return KindCMYK
	}
	panic(fmt.Sprintf("colormodel: unknown color %T", c))
}

// ToRGB projects c into the RGB comparison space.
func ToRGB(c Color) Triple {
	switch v := c.(type) {
	case RGB:
		return Triple{v.R, v.G, v.B}
	case HSL:
		return fromColorful(colorful.Hsl(degrees(v.H), v.S, v.L))
	case HSV:
		return fromColorful(colorful.Hsv(degrees(v.H), v.S, v.V))
	case CMYK:
		// Floor division in this order matches the reference projection.
		r := MaxChannel * (MaxChannel - v.C) / MaxChannel * (MaxChannel - v.K) / MaxChannel
		g := MaxChannel * (MaxChannel - v.M) / MaxChannel * (MaxChannel - v.K) / MaxChannel
		b := MaxChannel * (MaxChannel - v.Y) / MaxChannel * (MaxChannel - v.K) / MaxChannel
		return Triple{r, g, b}
	}
	panic(fmt.Sprintf("colormodel: unknown color %T", c))
}

// FromRGB builds a color of the given kind from an RGB projection.
func FromRGB(kind Kind, t Triple) Color {
	t = Triple{clampChannel(t[0]), clampChannel(t[1]), clampChannel(t[2])}
	switch kind {
	case KindRGB:
		return RGB{R: t[0], G: t[1], B: t[2]}
	case KindHSL:
		h, s, l := toColorful(t).Hsl()
		return HSL{H: h / 360, S: s, L: l}
	case KindHSV:
		h, s, v := toColorful(t).Hsv()
		return HSV{H: h / 360, S: s, V: v}
	case KindCMYK:
		return cmykFromRGB(t)
	}
	panic(fmt.Sprintf("colormodel: unknown kind %d", uint8(kind)))
}

// cmykFromRGB computes k = 1 - max(r', g', b') and c = (1 - r' - k) / (1 - k)
// on the 0..255 scale. Since 255*k is the integer 255 - max, the division is
// done in integers with floor semantics, which makes the projection back
// through ToRGB exact.
func cmykFromRGB(t Triple) CMYK {
	maxCh := max(t[0], t[1], t[2])
	k := MaxChannel - maxCh
	if k == MaxChannel {
		// Pure black: 1 - k is zero, so c = m = y = 1 - channel' - k.
		return CMYK{
			C: MaxChannel - t[0] - k,
			M: MaxChannel - t[1] - k,
			Y: MaxChannel - t[2] - k,
			K: k,
		}
	}
	return CMYK{
		C: MaxChannel * (maxCh - t[0]) / maxCh,
		M: MaxChannel * (maxCh - t[1]) / maxCh,
		Y: MaxChannel * (maxCh - t[2]) / maxCh,
		K: k,
	}
}

// New builds a color of the given kind from raw values: three for RGB, HSL
// and HSV, four for CMYK. Integer models round to the nearest unit.
func New(kind Kind, values []float64) (Color, error) {
	want := 3
	if kind == KindCMYK {
		want = 4
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(kind))
	}
	if len(values) != want {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrArity, kind, want, len(values))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s value %d is %v", ErrOutOfRange, kind, i+1, v)
		}
	}

	switch kind {
	case KindRGB, KindCMYK:
		ch := make([]int, len(values))
		for i, v := range values {
			n := int(math.Round(v))
			if n < 0 || n > MaxChannel {
				return nil, fmt.Errorf("%w: %s value %d is %v, want 0..%d", ErrOutOfRange, kind, i+1, v, MaxChannel)
			}
			ch[i] = n
		}
		if kind == KindRGB {
			return RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
		}
		return CMYK{C: ch[0], M: ch[1], Y: ch[2], K: ch[3]}, nil
	default:
		for i, v := range values {
			if v < 0 || v > 1 {
				return nil, fmt.Errorf("%w: %s value %d is %v, want 0..1", ErrOutOfRange, kind, i+1, v)
			}
		}
		if kind == KindHSL {
			return HSL{H: values[0], S: values[1], L: values[2]}, nil
		}
		return HSV{H: values[0], S: values[1], V: values[2]}, nil
	}
}

// Values returns the stored fields in declaration order.
func Values(c Color) []float64 {
	switch v := c.(type) {
	case RGB:
		return []float64{float64(v.R), float64(v.G), float64(v.B)}
	case HSL:
		return []float64{v.H, v.S, v.L}
	case HSV:
		return []float64{v.H, v.S, v.V}
	case CMYK:
		return []float64{float64(v.C), float64(v.M), float64(v.Y), float64(v.K)}
	}
	return nil
}

// Describe returns a human readable rendering of c.
func Describe(c Color) string {
	switch v := c.(type) {
	case RGB:
		return fmt.Sprintf("RGB(Red= %d, Green= %d, Blue= %d)", v.R, v.G, v.B)
	case HSL:
		return fmt.Sprintf("HSL(Hue= %.0f°, Saturation= %.2f, Lightness= %.2f)", degrees(v.H), v.S, v.L)
	case HSV:
		return fmt.Sprintf("HSV(Hue= %.0f°, Saturation= %.2f, Value= %.2f)", degrees(v.H), v.S, v.V)
	case CMYK:
		return fmt.Sprintf("CMYK(Cyan= %d, Magenta= %d, Yellow= %d, Black= %d)", v.C, v.M, v.Y, v.K)
	}
	return fmt.Sprintf("%v", c)
}

// degrees maps a hue fraction onto [0, 360). A full turn wraps to 0.
func degrees(h float64) float64 {
	h = math.Mod(h, 1)
	if h < 0 {
		h++
	}
	return h * 360
}

func toColorful(t Triple) colorful.Color {
	r, g, b := t.Fractions()
	return colorful.Color{R: r, G: g, B: b}
}

func fromColorful(c colorful.Color) Triple {
	r, g, b := c.Clamped().RGB255()
	return Triple{int(r), int(g), int(b)}
}
