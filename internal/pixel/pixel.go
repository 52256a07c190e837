// Package pixel gives uniform channel access to decoded images regardless of
// how the image stores its samples.
//
// Fast paths read the backing buffers of the common layouts directly:
//   - NRGBA, RGBA (premultiplied), NRGBA64, RGBA64
//   - Gray, Gray16, YCbCr, Paletted
//   - Raw (descriptor-based buffers, see Layout)
//
// Any other image goes through image.At and color.NRGBAModel. Both paths
// return identical values for every pixel; premultiplied sources are
// un-premultiplied before channels are extracted.
//
// Coordinates are 0-based and relative to the image's Bounds().Min. Bulk
// matrices are indexed [x][y]. Accessing a coordinate outside the image
// panics.
//
// Read accessors may be called concurrently. Mutators need exclusive access.
package pixel

import (
	"fmt"
	"image"
	"image/color"
)

// layout selects the decode routine used by at.
type layout uint8

const (
	layoutGeneric layout = iota
	layoutNRGBA
	layoutRGBA
	layoutNRGBA64
	layoutRGBA64
	layoutGray
	layoutGray16
	layoutYCbCr
	layoutPaletted
	layoutRaw
)

var layoutNames = [...]string{
	layoutGeneric:  "generic",
	layoutNRGBA:    "nrgba",
	layoutRGBA:     "rgba-premultiplied",
	layoutNRGBA64:  "nrgba64",
	layoutRGBA64:   "rgba64-premultiplied",
	layoutGray:     "gray",
	layoutGray16:   "gray16",
	layoutYCbCr:    "ycbcr",
	layoutPaletted: "paletted",
	layoutRaw:      "raw",
}

// Pixel wraps a decoded image.
type Pixel struct {
	img    image.Image
	bounds image.Rectangle
	width  int
	height int
	layout layout
	alpha  bool

	nrgba    *image.NRGBA
	rgba     *image.RGBA
	nrgba64  *image.NRGBA64
	rgba64   *image.RGBA64
	gray     *image.Gray
	gray16   *image.Gray16
	ycbcr    *image.YCbCr
	paletted *image.Paletted
	palette  []color.NRGBA
	raw      *Raw
}

// New wraps img, selecting a fast path from its concrete type.
func New(img image.Image) *Pixel {
	b := img.Bounds()
	p := &Pixel{img: img, bounds: b, width: b.Dx(), height: b.Dy()}

	switch src := img.(type) {
	case *image.NRGBA:
		p.layout, p.nrgba, p.alpha = layoutNRGBA, src, true
	case *image.RGBA:
		p.layout, p.rgba, p.alpha = layoutRGBA, src, true
	case *image.NRGBA64:
		p.layout, p.nrgba64, p.alpha = layoutNRGBA64, src, true
	case *image.RGBA64:
		p.layout, p.rgba64, p.alpha = layoutRGBA64, src, true
	case *image.Gray:
		p.layout, p.gray = layoutGray, src
	case *image.Gray16:
		p.layout, p.gray16 = layoutGray16, src
	case *image.YCbCr:
		p.layout, p.ycbcr = layoutYCbCr, src
	case *image.Paletted:
		p.layout, p.paletted = layoutPaletted, src
		p.palette = make([]color.NRGBA, len(src.Palette))
		for i, c := range src.Palette {
			p.palette[i] = toNRGBA(c)
			if _, _, _, a := c.RGBA(); a != 0xffff {
				p.alpha = true
			}
		}
	case *Raw:
		p.layout, p.raw, p.alpha = layoutRaw, src, src.Layout.HasAlpha()
	default:
		p.alpha = modelHasAlpha(img.ColorModel())
	}
	return p
}

// modelHasAlpha reports whether images of model m can carry alpha. Unknown
// models are assumed to.
func modelHasAlpha(m color.Model) bool {
	switch m {
	case color.GrayModel, color.Gray16Model, color.YCbCrModel, color.CMYKModel:
		return false
	}
	if pal, ok := m.(color.Palette); ok {
		for _, c := range pal {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
		return false
	}
	return true
}

// Image returns the wrapped image.
func (p *Pixel) Image() image.Image { return p.img }

// Width returns the image width in pixels.
func (p *Pixel) Width() int { return p.width }

// Height returns the image height in pixels.
func (p *Pixel) Height() int { return p.height }

// Layout names the access path chosen for the image, e.g. "gray" or "generic".
func (p *Pixel) Layout() string { return layoutNames[p.layout] }

// HasAlpha reports whether the source format carries an alpha channel. It
// does not inspect pixel values: an NRGBA image is reported as having alpha
// even when every pixel is opaque.
func (p *Pixel) HasAlpha() bool { return p.alpha }

func (p *Pixel) check(x, y int) {
	if uint(x) >= uint(p.width) || uint(y) >= uint(p.height) {
		panic(fmt.Sprintf("pixel: coordinate (%d,%d) out of range %dx%d", x, y, p.width, p.height))
	}
}

// at returns the non-premultiplied 8-bit color at (x, y).
func (p *Pixel) at(x, y int) color.NRGBA {
	p.check(x, y)
	x += p.bounds.Min.X
	y += p.bounds.Min.Y

	switch p.layout {
	case layoutNRGBA:
		i := p.nrgba.PixOffset(x, y)
		s := p.nrgba.Pix[i : i+4 : i+4]
		return color.NRGBA{R: s[0], G: s[1], B: s[2], A: s[3]}
	case layoutRGBA:
		i := p.rgba.PixOffset(x, y)
		s := p.rgba.Pix[i : i+4 : i+4]
		return unpremultiply(uint32(s[0])*0x101, uint32(s[1])*0x101, uint32(s[2])*0x101, uint32(s[3])*0x101)
	case layoutNRGBA64:
		return unpremultiply(p.nrgba64.NRGBA64At(x, y).RGBA())
	case layoutRGBA64:
		return unpremultiply(p.rgba64.RGBA64At(x, y).RGBA())
	case layoutGray:
		v := p.gray.Pix[p.gray.PixOffset(x, y)]
		return color.NRGBA{R: v, G: v, B: v, A: 0xff}
	case layoutGray16:
		// High byte of the big-endian sample.
		v := p.gray16.Pix[p.gray16.PixOffset(x, y)]
		return color.NRGBA{R: v, G: v, B: v, A: 0xff}
	case layoutYCbCr:
		r, g, b, _ := p.ycbcr.YCbCrAt(x, y).RGBA()
		return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}
	case layoutPaletted:
		return p.palette[p.paletted.Pix[p.paletted.PixOffset(x, y)]]
	case layoutRaw:
		return p.raw.nrgbaAt(x, y)
	}
	return toNRGBA(p.img.At(x, y))
}

func toNRGBA(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

// unpremultiply converts 16-bit alpha-premultiplied components to 8-bit
// non-premultiplied ones with the same arithmetic as color.NRGBAModel.
func unpremultiply(r, g, b, a uint32) color.NRGBA {
	switch a {
	case 0xffff:
		return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}
	case 0:
		return color.NRGBA{}
	}
	r = (r * 0xffff) / a
	g = (g * 0xffff) / a
	b = (b * 0xffff) / a
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

// RGB returns the pixel as 0xAARRGGBB.
func (p *Pixel) RGB(x, y int) uint32 {
	return argb(p.at(x, y))
}

func argb(c color.NRGBA) uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Red returns the red component at (x, y).
func (p *Pixel) Red(x, y int) uint8 { return p.at(x, y).R }

// Green returns the green component at (x, y).
func (p *Pixel) Green(x, y int) uint8 { return p.at(x, y).G }

// Blue returns the blue component at (x, y).
func (p *Pixel) Blue(x, y int) uint8 { return p.at(x, y).B }

// Alpha returns the alpha component at (x, y); 255 for opaque formats.
func (p *Pixel) Alpha(x, y int) uint8 { return p.at(x, y).A }

// Luma returns the brightness at (x, y).
func (p *Pixel) Luma(x, y int) uint8 { return luma(p.at(x, y)) }

// Average returns (r+g+b)/3 at (x, y).
func (p *Pixel) Average(x, y int) uint8 { return average(p.at(x, y)) }

// luma uses the JFIF Y weights in 16.16 fixed point. Equal components map
// to themselves, so the result always lies in [0, 255].
func luma(c color.NRGBA) uint8 {
	return uint8((19595*uint32(c.R) + 38470*uint32(c.G) + 7471*uint32(c.B) + 1<<15) >> 16)
}

func average(c color.NRGBA) uint8 {
	return uint8((uint32(c.R) + uint32(c.G) + uint32(c.B)) / 3)
}

// RGBMatrix returns RGB for every pixel, indexed [x][y].
func (p *Pixel) RGBMatrix() [][]uint32 {
	buf := make([]uint32, p.width*p.height)
	m := make([][]uint32, p.width)
	for x := range m {
		col := buf[x*p.height : (x+1)*p.height : (x+1)*p.height]
		for y := range col {
			col[y] = argb(p.at(x, y))
		}
		m[x] = col
	}
	return m
}

func (p *Pixel) matrix(f func(color.NRGBA) uint8) [][]uint8 {
	buf := make([]uint8, p.width*p.height)
	m := make([][]uint8, p.width)
	for x := range m {
		col := buf[x*p.height : (x+1)*p.height : (x+1)*p.height]
		for y := range col {
			col[y] = f(p.at(x, y))
		}
		m[x] = col
	}
	return m
}

// RedMatrix returns the red channel, indexed [x][y].
func (p *Pixel) RedMatrix() [][]uint8 {
	return p.matrix(func(c color.NRGBA) uint8 { return c.R })
}

// GreenMatrix returns the green channel, indexed [x][y].
func (p *Pixel) GreenMatrix() [][]uint8 {
	return p.matrix(func(c color.NRGBA) uint8 { return c.G })
}

// BlueMatrix returns the blue channel, indexed [x][y].
func (p *Pixel) BlueMatrix() [][]uint8 {
	return p.matrix(func(c color.NRGBA) uint8 { return c.B })
}

// AlphaMatrix returns the alpha channel, indexed [x][y].
func (p *Pixel) AlphaMatrix() [][]uint8 {
	return p.matrix(func(c color.NRGBA) uint8 { return c.A })
}

// LumaMatrix returns the luma of every pixel, indexed [x][y].
func (p *Pixel) LumaMatrix() [][]uint8 { return p.matrix(luma) }

// AverageMatrix returns (r+g+b)/3 of every pixel, indexed [x][y].
func (p *Pixel) AverageMatrix() [][]uint8 { return p.matrix(average) }
