package pixel

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrUnsupportedLayout is returned for layouts Raw cannot represent.
var ErrUnsupportedLayout = errors.New("pixel: unsupported layout")

// ChannelOrder is the order of samples within one pixel of a Raw buffer.
type ChannelOrder uint8

const (
	OrderGray ChannelOrder = iota
	OrderRGB
	OrderBGR
	OrderARGB
	OrderABGR
	OrderRGBA
	OrderBGRA
)

// sample index of r, g, b, a within a pixel; -1 when the channel is absent.
var orderIndex = [...][4]int{
	OrderGray: {0, 0, 0, -1},
	OrderRGB:  {0, 1, 2, -1},
	OrderBGR:  {2, 1, 0, -1},
	OrderARGB: {1, 2, 3, 0},
	OrderABGR: {3, 2, 1, 0},
	OrderRGBA: {0, 1, 2, 3},
	OrderBGRA: {2, 1, 0, 3},
}

var orderNames = [...]string{
	OrderGray: "gray",
	OrderRGB:  "rgb",
	OrderBGR:  "bgr",
	OrderARGB: "argb",
	OrderABGR: "abgr",
	OrderRGBA: "rgba",
	OrderBGRA: "bgra",
}

func (o ChannelOrder) String() string {
	if int(o) < len(orderNames) {
		return orderNames[o]
	}
	return fmt.Sprintf("ChannelOrder(%d)", o)
}

// Channels returns the number of samples per pixel.
func (o ChannelOrder) Channels() int {
	switch o {
	case OrderGray:
		return 1
	case OrderRGB, OrderBGR:
		return 3
	}
	return 4
}

// Layout describes how a Raw buffer stores its pixels.
type Layout struct {
	Order ChannelOrder
	// Premultiplied marks color samples as scaled by alpha. Ignored for
	// orders without alpha.
	Premultiplied bool
	// BitDepth is 8 or 16. 16-bit samples are big-endian.
	BitDepth int
}

// Common layouts, named after the storage types decoders usually produce.
var (
	LayoutIntARGB      = Layout{Order: OrderARGB, BitDepth: 8}
	LayoutIntARGBPre   = Layout{Order: OrderARGB, Premultiplied: true, BitDepth: 8}
	LayoutIntRGB       = Layout{Order: OrderRGB, BitDepth: 8}
	Layout3ByteBGR     = Layout{Order: OrderBGR, BitDepth: 8}
	Layout4ByteABGR    = Layout{Order: OrderABGR, BitDepth: 8}
	Layout4ByteABGRPre = Layout{Order: OrderABGR, Premultiplied: true, BitDepth: 8}
	LayoutByteGray     = Layout{Order: OrderGray, BitDepth: 8}
	LayoutUShortGray   = Layout{Order: OrderGray, BitDepth: 16}
)

// HasAlpha reports whether the layout carries an alpha channel.
func (l Layout) HasAlpha() bool {
	return int(l.Order) < len(orderIndex) && orderIndex[l.Order][3] >= 0
}

// BytesPerPixel returns the size of one pixel in bytes.
func (l Layout) BytesPerPixel() int {
	return l.Order.Channels() * l.BitDepth / 8
}

func (l Layout) premultiplied() bool { return l.Premultiplied && l.HasAlpha() }

func (l Layout) validate() error {
	if int(l.Order) >= len(orderIndex) {
		return fmt.Errorf("%w: channel order %d", ErrUnsupportedLayout, l.Order)
	}
	if l.BitDepth != 8 && l.BitDepth != 16 {
		return fmt.Errorf("%w: bit depth %d", ErrUnsupportedLayout, l.BitDepth)
	}
	return nil
}

func (l Layout) String() string {
	s := fmt.Sprintf("%s%d", l.Order, l.BitDepth)
	if l.premultiplied() {
		s += "-pre"
	}
	return s
}

// Raw is a decoded image held as a plain sample buffer described by a
// Layout. It implements draw.Image.
type Raw struct {
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
	Layout Layout
}

// NewRaw returns a zeroed Raw image with the given bounds and layout.
func NewRaw(r image.Rectangle, l Layout) (*Raw, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}
	stride := r.Dx() * l.BytesPerPixel()
	return &Raw{
		Pix:    make([]uint8, stride*r.Dy()),
		Stride: stride,
		Rect:   r,
		Layout: l,
	}, nil
}

// ColorModel returns the model matching the layout's depth and alpha
// convention.
func (r *Raw) ColorModel() color.Model {
	switch {
	case r.Layout.Order == OrderGray && r.Layout.BitDepth == 16:
		return color.Gray16Model
	case r.Layout.Order == OrderGray:
		return color.GrayModel
	case r.Layout.BitDepth == 16 && r.Layout.premultiplied():
		return color.RGBA64Model
	case r.Layout.BitDepth == 16:
		return color.NRGBA64Model
	case r.Layout.premultiplied():
		return color.RGBAModel
	}
	return color.NRGBAModel
}

func (r *Raw) Bounds() image.Rectangle { return r.Rect }

// PixOffset returns the index of the first sample of (x, y) in Pix.
func (r *Raw) PixOffset(x, y int) int {
	return (y-r.Rect.Min.Y)*r.Stride + (x-r.Rect.Min.X)*r.Layout.BytesPerPixel()
}

func (r *Raw) sample16(i, k int) uint16 {
	j := i + 2*k
	return uint16(r.Pix[j])<<8 | uint16(r.Pix[j+1])
}

func (r *Raw) setSample16(i, k int, v uint16) {
	j := i + 2*k
	r.Pix[j] = uint8(v >> 8)
	r.Pix[j+1] = uint8(v)
}

func (r *Raw) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(r.Rect)) {
		return r.ColorModel().Convert(color.Transparent)
	}
	i := r.PixOffset(x, y)
	idx := &orderIndex[r.Layout.Order]

	if r.Layout.BitDepth == 16 {
		if r.Layout.Order == OrderGray {
			return color.Gray16{Y: r.sample16(i, 0)}
		}
		R, G, B := r.sample16(i, idx[0]), r.sample16(i, idx[1]), r.sample16(i, idx[2])
		A := uint16(0xffff)
		if idx[3] >= 0 {
			A = r.sample16(i, idx[3])
		}
		if r.Layout.premultiplied() {
			return color.RGBA64{R: R, G: G, B: B, A: A}
		}
		return color.NRGBA64{R: R, G: G, B: B, A: A}
	}

	if r.Layout.Order == OrderGray {
		return color.Gray{Y: r.Pix[i]}
	}
	R, G, B := r.Pix[i+idx[0]], r.Pix[i+idx[1]], r.Pix[i+idx[2]]
	A := uint8(0xff)
	if idx[3] >= 0 {
		A = r.Pix[i+idx[3]]
	}
	if r.Layout.premultiplied() {
		return color.RGBA{R: R, G: G, B: B, A: A}
	}
	return color.NRGBA{R: R, G: G, B: B, A: A}
}

func (r *Raw) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(r.Rect)) {
		return
	}
	i := r.PixOffset(x, y)
	idx := &orderIndex[r.Layout.Order]

	switch v := r.ColorModel().Convert(c).(type) {
	case color.Gray:
		r.Pix[i] = v.Y
	case color.Gray16:
		r.setSample16(i, 0, v.Y)
	case color.NRGBA:
		r.put8(i, idx, v.R, v.G, v.B, v.A)
	case color.RGBA:
		r.put8(i, idx, v.R, v.G, v.B, v.A)
	case color.NRGBA64:
		r.put16(i, idx, v.R, v.G, v.B, v.A)
	case color.RGBA64:
		r.put16(i, idx, v.R, v.G, v.B, v.A)
	}
}

func (r *Raw) put8(i int, idx *[4]int, R, G, B, A uint8) {
	r.Pix[i+idx[0]] = R
	r.Pix[i+idx[1]] = G
	r.Pix[i+idx[2]] = B
	if idx[3] >= 0 {
		r.Pix[i+idx[3]] = A
	}
}

func (r *Raw) put16(i int, idx *[4]int, R, G, B, A uint16) {
	r.setSample16(i, idx[0], R)
	r.setSample16(i, idx[1], G)
	r.setSample16(i, idx[2], B)
	if idx[3] >= 0 {
		r.setSample16(i, idx[3], A)
	}
}

// nrgbaAt is the fast path used by Pixel. It must agree with
// color.NRGBAModel.Convert(r.At(x, y)).
func (r *Raw) nrgbaAt(x, y int) color.NRGBA {
	i := r.PixOffset(x, y)
	idx := &orderIndex[r.Layout.Order]

	if r.Layout.BitDepth == 8 {
		if r.Layout.Order == OrderGray {
			v := r.Pix[i]
			return color.NRGBA{R: v, G: v, B: v, A: 0xff}
		}
		c := color.NRGBA{R: r.Pix[i+idx[0]], G: r.Pix[i+idx[1]], B: r.Pix[i+idx[2]], A: 0xff}
		if idx[3] < 0 {
			return c
		}
		c.A = r.Pix[i+idx[3]]
		if r.Layout.Premultiplied {
			return unpremultiply(uint32(c.R)*0x101, uint32(c.G)*0x101, uint32(c.B)*0x101, uint32(c.A)*0x101)
		}
		return c
	}

	if r.Layout.Order == OrderGray {
		v := r.Pix[i] // high byte
		return color.NRGBA{R: v, G: v, B: v, A: 0xff}
	}
	R, G, B := r.sample16(i, idx[0]), r.sample16(i, idx[1]), r.sample16(i, idx[2])
	if idx[3] < 0 {
		return color.NRGBA{R: uint8(R >> 8), G: uint8(G >> 8), B: uint8(B >> 8), A: 0xff}
	}
	A := r.sample16(i, idx[3])
	if r.Layout.Premultiplied {
		return unpremultiply(uint32(R), uint32(G), uint32(B), uint32(A))
	}
	return unpremultiply(color.NRGBA64{R: R, G: G, B: B, A: A}.RGBA())
}
