package phash

import (
	"fmt"
	"image"

	"github.com/AnyUserName/imghash/internal/pixel"
)

// signal extracts the per-pixel value a variant hashes, indexed [x][y].
type signal func(*pixel.Pixel) [][]uint8

func luma(p *pixel.Pixel) [][]uint8    { return p.LumaMatrix() }
func average(p *pixel.Pixel) [][]uint8 { return p.AverageMatrix() }

// sample reads sig from img and rescales it to the hash grid, indexed
// [row][col].
func (b *base) sample(img image.Image, sig signal) ([][]int, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidArgument)
	}
	if r := img.Bounds(); r.Empty() {
		return nil, fmt.Errorf("%w: empty image %v", ErrInvalidArgument, r)
	}
	p := pixel.New(img)
	return rescale(sig(p), p.Width(), p.Height(), b.width, b.height), nil
}

// rescale area-averages src (srcW x srcH, indexed [x][y]) onto a dstW x dstH
// grid indexed [row][col]. Each cell is the rounded integer mean of the
// source span mapped onto it; when upscaling, spans hold a single sample.
func rescale(src [][]uint8, srcW, srcH, dstW, dstH int) [][]int {
	buf := make([]int, dstW*dstH)
	out := make([][]int, dstH)
	for dy := 0; dy < dstH; dy++ {
		out[dy] = buf[dy*dstW : (dy+1)*dstW : (dy+1)*dstW]
		sy0, sy1 := srcSpan(dy, dstH, srcH)
		for dx := 0; dx < dstW; dx++ {
			sx0, sx1 := srcSpan(dx, dstW, srcW)
			sum := 0
			for sx := sx0; sx < sx1; sx++ {
				col := src[sx]
				for sy := sy0; sy < sy1; sy++ {
					sum += int(col[sy])
				}
			}
			cnt := (sx1 - sx0) * (sy1 - sy0)
			out[dy][dx] = (sum + cnt/2) / cnt
		}
	}
	return out
}

// srcSpan maps destination index d to the half-open source range it covers.
func srcSpan(d, dstSize, srcSize int) (int, int) {
	s0 := d * srcSize / dstSize
	s1 := (d + 1) * srcSize / dstSize
	if s1 <= s0 {
		s1 = s0 + 1
	}
	if s1 > srcSize {
		s1 = srcSize
	}
	return s0, s1
}
