package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Transparent is the colour value that disables a fill.
const Transparent = "transparent"

// ParseColor parses "#RRGGBB", "RRGGBB", "#RGB" or "transparent". Anything
// else yields def.
func ParseColor(s string, def color.RGBA) color.RGBA {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if strings.EqualFold(s, Transparent) {
		return color.RGBA{}
	}

	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return def
	}

	r, err1 := strconv.ParseUint(s[0:2], 16, 8)
	g, err2 := strconv.ParseUint(s[2:4], 16, 8)
	b, err3 := strconv.ParseUint(s[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return def
	}

	return color.RGBA{uint8(r), uint8(g), uint8(b), 255}
}

// HexColor formats c as "#RRGGBB", or "transparent" when fully transparent.
func HexColor(c color.RGBA) string {
	if c.A == 0 {
		return Transparent
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// normalizeColor round-trips s through ParseColor so only well-formed colours
// reach the SVG output.
func normalizeColor(s string, def color.RGBA) string {
	return HexColor(ParseColor(s, def))
}

var (
	black = color.RGBA{0, 0, 0, 255}
	white = color.RGBA{255, 255, 255, 255}
)
