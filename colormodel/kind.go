// Package colormodel defines the color representations a pixel can carry and
// their projection into the shared RGB comparison space.
package colormodel

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a color model.
type Kind uint8

const (
	KindRGB Kind = iota
	KindHSL
	KindHSV
	KindCMYK
)

// NumKinds is the number of color models.
const NumKinds = 4

// ErrUnknownKind is returned when a color model name is not recognized.
var ErrUnknownKind = errors.New("unknown color model")

var kindNames = [NumKinds]string{"RGB", "HSL", "HSV", "CMYK"}

// AllKinds lists every color model in declaration order.
var AllKinds = []Kind{KindRGB, KindHSL, KindHSV, KindCMYK}

// String returns the canonical upper-case name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is one of the known color models.
func (k Kind) Valid() bool {
	return k < NumKinds
}

// ParseKind parses a color model name, ignoring case and surrounding space.
func ParseKind(name string) (Kind, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	for i, kn := range kindNames {
		if kn == n {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// partners lists the kinds each kind may mate with.
var partners = [NumKinds][]Kind{
	KindRGB:  {KindRGB, KindHSV, KindCMYK},
	KindHSL:  {KindHSV, KindHSL},
	KindHSV:  {KindRGB, KindHSV, KindHSL, KindCMYK},
	KindCMYK: {KindRGB, KindHSV, KindCMYK},
}

// Partners returns the kinds a pixel of kind k accepts as mates.
// The returned slice must not be modified.
func Partners(k Kind) []Kind {
	if !k.Valid() {
		return nil
	}
	return partners[k]
}

// CanMate reports whether a pixel of kind a accepts a candidate of kind b.
// The table is not symmetric: HSV accepts HSL, but HSL accepts only HSV and HSL,
// and RGB does not accept HSL at all.
func CanMate(a, b Kind) bool {
	for _, p := range Partners(a) {
		if p == b {
			return true
		}
	}
	return false
}
