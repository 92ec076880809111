package component

import (
	"errors"
	"fmt"
)

// FourCC is a four-character code packed big-endian into a uint32,
// e.g. 'peq0' = 0x70657130.
type FourCC uint32

var errFourCCLength = errors.New("four-character code must be 4 bytes")

// ParseFourCC packs a 4-byte ASCII string.
func ParseFourCC(s string) (FourCC, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("%w: %q", errFourCCLength, s)
	}

	return FourCC(uint32(s[0])<<24 | uint32(s[1])<<16 | uint32(s[2])<<8 | uint32(s[3])), nil
}

// MustFourCC is like ParseFourCC but panics on error.
func MustFourCC(s string) FourCC {
	c, err := ParseFourCC(s)
	if err != nil {
		panic("component: " + err.Error())
	}

	return c
}

// String returns the code as text when printable, otherwise as hex.
func (c FourCC) String() string {
	b := []byte{byte(c >> 24), byte(c >> 16), byte(c >> 8), byte(c)}
	for _, ch := range b {
		if ch < 0x20 || ch > 0x7e {
			return fmt.Sprintf("0x%08x", uint32(c))
		}
	}

	return string(b)
}

// Well-known codes.
var (
	TypeEffect           = MustFourCC("aufx")
	ManufacturerAudioKit = MustFourCC("AuKt")
)
