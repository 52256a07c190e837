//go:build ignore

// gen_fixtures writes one scene in several encodings and sizes, plus a few
// unrelated images, for the E2E smoke test. Every copy of the scene should
// land in one near-duplicate group of `imghash dupes`.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	os.MkdirAll(filepath.Join(dir, "scene"), 0o755)
	os.MkdirAll(filepath.Join(dir, "other"), 0o755)

	s := scene(480, 320)
	write(filepath.Join(dir, "scene", "scene.png"), func(w io.Writer) error { return png.Encode(w, s) })
	write(filepath.Join(dir, "scene", "scene-q60.jpg"), func(w io.Writer) error {
		return jpeg.Encode(w, s, &jpeg.Options{Quality: 60})
	})
	write(filepath.Join(dir, "scene", "scene.gif"), func(w io.Writer) error { return gif.Encode(w, s, nil) })
	write(filepath.Join(dir, "scene", "scene.bmp"), func(w io.Writer) error { return bmp.Encode(w, s) })
	write(filepath.Join(dir, "scene", "scene.tiff"), func(w io.Writer) error { return tiff.Encode(w, s, nil) })

	small := imaging.Resize(s, 120, 80, imaging.Lanczos)
	write(filepath.Join(dir, "scene", "scene-small.png"), func(w io.Writer) error { return png.Encode(w, small) })
	gray := imaging.Grayscale(s)
	write(filepath.Join(dir, "scene", "scene-gray.png"), func(w io.Writer) error { return png.Encode(w, gray) })

	write(filepath.Join(dir, "other", "gradient.png"), func(w io.Writer) error { return png.Encode(w, gradient(400, 225)) })
	write(filepath.Join(dir, "other", "logo.png"), func(w io.Writer) error { return png.Encode(w, alphaGradient(100, 100)) })

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 9 fixtures in %s\n", dir)
}

// scene draws a sky, a sun and a dark hill: coarse structure an average
// hash keeps across re-encoding and scaling.
func scene(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	sunX, sunY, sunR := w*3/4, h/4, h/8
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 90, G: uint8(140 + y*80/h), B: 230, A: 255}
			dx, dy := x-sunX, y-sunY
			if dx*dx+dy*dy < sunR*sunR {
				c = color.NRGBA{R: 255, G: 220, B: 60, A: 255}
			}
			hill := h*2/3 - (x-w/3)*(x-w/3)/(w*2/3)
			if y > hill {
				c = color.NRGBA{R: 40, G: 90, B: 30, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func alphaGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: 220, G: 60, B: 30,
				A: uint8(x * 255 / w),
			})
		}
	}
	return img
}

func write(path string, encode func(io.Writer) error) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := encode(f); err != nil {
		panic(err)
	}
}
