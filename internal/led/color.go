package led

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/smazurov/tf96ctl/internal/protocol"
)

// RGB is an 8-bit-per-component color.
type RGB struct {
	R, G, B uint8
}

// ParseHex parses "#rrggbb" or "rrggbb".
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return RGB{}, invalidValue("color", s, nil)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, invalidValue("color", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Hex renders the color as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Triple is a red, green, blue intensity triple in [0,15].
type Triple [3]uint8

// RGBToDevice scales each component with round(15*v/255).
// 15*v/255 reduces to v/17, which never lands on .5, so rounding has no ties.
func RGBToDevice(c RGB) Triple {
	return Triple{scaleDown(c.R), scaleDown(c.G), scaleDown(c.B)}
}

// DeviceToRGB is the inverse scale, round(v*255/15). Levels above 15 saturate.
func DeviceToRGB(t Triple) RGB {
	return RGB{R: scaleUp(t[0]), G: scaleUp(t[1]), B: scaleUp(t[2])}
}

func scaleDown(v uint8) uint8 {
	return uint8((30*uint32(v) + 255) / 510)
}

func scaleUp(v uint8) uint8 {
	return min(v, MaxIntensity) * 17
}

func invalidValue(what, text string, cause error) error {
	return &protocol.Error{
		Code:    protocol.ErrCodeRange,
		Message: fmt.Sprintf("invalid %s %q", what, text),
		Cause:   cause,
	}
}
