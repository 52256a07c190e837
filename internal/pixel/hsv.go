package pixel

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

func hsv(c color.NRGBA) (h, s float64) {
	h, s, _ = colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hsv()
	return h, s
}

// Hue returns the hue at (x, y) in whole degrees, [0, 360). Achromatic
// pixels have hue 0.
func (p *Pixel) Hue(x, y int) int {
	h, _ := hsv(p.at(x, y))
	return int(math.Round(h)) % 360
}

// Sat returns the saturation at (x, y) in [0, 1]. Achromatic pixels have
// saturation 0.
func (p *Pixel) Sat(x, y int) float64 {
	_, s := hsv(p.at(x, y))
	return s
}

// Val returns the value (max of r, g, b) at (x, y).
func (p *Pixel) Val(x, y int) uint8 {
	c := p.at(x, y)
	return max(c.R, c.G, c.B)
}
