package viewer

import (
	"hash/fnv"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/colornames"
)

// colorFor returns the colour a group is drawn with. Labels that name an SVG
// colour ("red", "DarkOrange") use it; anything else gets a stable hue.
func colorFor(label string) color.RGBA {
	if c, ok := colornames.Map[strings.ToLower(label)]; ok {
		return c
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(label))
	hue := float64(h.Sum32()%360)
	r, g, b := hsvToRGB(hue, 1, 1)
	return color.RGBA{uint8(r * 255), uint8(g * 255), uint8(b * 255), 255}
}

// hsvToRGB helper
func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	h = math.Mod(h, 360)
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}
