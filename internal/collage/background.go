package collage

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultBackground is the fill for grid cells that receive no artwork.
var DefaultBackground = color.RGBA{R: 0, G: 0, B: 0, A: 255}

// Background selects the fill for empty grid cells.
type Background struct {
	dominant bool
	color    color.RGBA
}

// ParseBackground parses a background setting. Accepts "" or "black",
// "white", "#rrggbb", or "dominant" (the dominant color of the
// first album's artwork).
func ParseBackground(s string) (Background, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "black":
		return Background{color: DefaultBackground}, nil
	case "white":
		return Background{color: color.RGBA{R: 255, G: 255, B: 255, A: 255}}, nil
	case "dominant":
		return Background{dominant: true, color: DefaultBackground}, nil
	}

	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return Background{}, fmt.Errorf("invalid background %q: expected black, white, dominant or #rrggbb", s)
	}
	r, g, b := c.RGB255()
	return Background{color: color.RGBA{R: r, G: g, B: b, A: 255}}, nil
}

// Resolve returns the fill color for a collage made of images.
func (b Background) Resolve(images []image.Image) color.RGBA {
	if !b.dominant || len(images) == 0 {
		return b.color
	}
	c := dominantcolor.Find(images[0])
	c.A = 255
	return c
}

// String returns the setting that parses back into b.
func (b Background) String() string {
	if b.dominant {
		return "dominant"
	}
	return dominantcolor.Hex(b.color)
}
