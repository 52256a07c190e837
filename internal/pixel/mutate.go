package pixel

import (
	"errors"
	"fmt"
)

var (
	// ErrReadOnly is returned by mutators on sources that cannot be written
	// one channel at a time.
	ErrReadOnly = errors.New("pixel: source is read-only")

	// ErrDimensions is returned when a bulk matrix does not match the image.
	ErrDimensions = errors.New("pixel: matrix dimensions do not match image")
)

// channel indexes r, g, b, a as laid out in color.NRGBA and image.NRGBA.
type channel int

const (
	chanRed channel = iota
	chanGreen
	chanBlue
	chanAlpha
)

// Mutable reports whether the Set* methods can write to the source. That is
// the case for *image.NRGBA and for 8-bit, non-premultiplied color Raw
// buffers.
func (p *Pixel) Mutable() bool {
	switch p.layout {
	case layoutNRGBA:
		return true
	case layoutRaw:
		l := p.raw.Layout
		return l.BitDepth == 8 && !l.premultiplied() && l.Order != OrderGray
	}
	return false
}

func (p *Pixel) writable(ch channel) error {
	if !p.Mutable() {
		return fmt.Errorf("%w: %s layout", ErrReadOnly, p.Layout())
	}
	if ch == chanAlpha && !p.alpha {
		return fmt.Errorf("%w: no alpha channel", ErrReadOnly)
	}
	return nil
}

// offset returns the Pix index of channel ch at (x, y). Callers have
// checked writable.
func (p *Pixel) offset(x, y int, ch channel) ([]uint8, int) {
	x += p.bounds.Min.X
	y += p.bounds.Min.Y
	if p.layout == layoutNRGBA {
		return p.nrgba.Pix, p.nrgba.PixOffset(x, y) + int(ch)
	}
	return p.raw.Pix, p.raw.PixOffset(x, y) + orderIndex[p.raw.Layout.Order][ch]
}

func (p *Pixel) set(x, y int, ch channel, v uint8) error {
	if err := p.writable(ch); err != nil {
		return err
	}
	p.check(x, y)
	pix, i := p.offset(x, y, ch)
	pix[i] = v
	return nil
}

func (p *Pixel) setMatrix(m [][]uint8, ch channel) error {
	if err := p.writable(ch); err != nil {
		return err
	}
	if len(m) != p.width {
		return fmt.Errorf("%w: %d columns, want %d", ErrDimensions, len(m), p.width)
	}
	for x, col := range m {
		if len(col) != p.height {
			return fmt.Errorf("%w: column %d has %d rows, want %d", ErrDimensions, x, len(col), p.height)
		}
	}
	for x, col := range m {
		for y, v := range col {
			pix, i := p.offset(x, y, ch)
			pix[i] = v
		}
	}
	return nil
}

// SetRed replaces the red component at (x, y).
func (p *Pixel) SetRed(x, y int, v uint8) error { return p.set(x, y, chanRed, v) }

// SetGreen replaces the green component at (x, y).
func (p *Pixel) SetGreen(x, y int, v uint8) error { return p.set(x, y, chanGreen, v) }

// SetBlue replaces the blue component at (x, y).
func (p *Pixel) SetBlue(x, y int, v uint8) error { return p.set(x, y, chanBlue, v) }

// SetAlpha replaces the alpha component at (x, y).
func (p *Pixel) SetAlpha(x, y int, v uint8) error { return p.set(x, y, chanAlpha, v) }

// SetRedMatrix replaces the whole red channel. m is indexed [x][y].
func (p *Pixel) SetRedMatrix(m [][]uint8) error { return p.setMatrix(m, chanRed) }

// SetGreenMatrix replaces the whole green channel. m is indexed [x][y].
func (p *Pixel) SetGreenMatrix(m [][]uint8) error { return p.setMatrix(m, chanGreen) }

// SetBlueMatrix replaces the whole blue channel. m is indexed [x][y].
func (p *Pixel) SetBlueMatrix(m [][]uint8) error { return p.setMatrix(m, chanBlue) }

// SetAlphaMatrix replaces the whole alpha channel. m is indexed [x][y].
func (p *Pixel) SetAlphaMatrix(m [][]uint8) error { return p.setMatrix(m, chanAlpha) }
