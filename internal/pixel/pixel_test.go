package pixel

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand/v2"
	"testing"
)

// ─── fixtures ────────────────────────────────────────────────

// genericImage hides the concrete type of an image so New falls back to
// the image.At path.
type genericImage struct {
	image.Image
}

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0x9e3779b97f4a7c15))
}

func noiseNRGBA(w, h int, seed uint64, opaque bool) *image.NRGBA {
	rng := newRNG(seed)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(rng.UintN(256))
		img.Pix[i+1] = uint8(rng.UintN(256))
		img.Pix[i+2] = uint8(rng.UintN(256))
		img.Pix[i+3] = 255
		if !opaque {
			img.Pix[i+3] = uint8(rng.UintN(256))
		}
	}
	return img
}

func noiseGray(w, h int, seed uint64) *image.Gray {
	rng := newRNG(seed)
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.UintN(256))
	}
	return img
}

func noiseYCbCr(w, h int, seed uint64, ratio image.YCbCrSubsampleRatio) *image.YCbCr {
	rng := newRNG(seed)
	img := image.NewYCbCr(image.Rect(0, 0, w, h), ratio)
	for i := range img.Y {
		img.Y[i] = uint8(rng.UintN(256))
	}
	for i := range img.Cb {
		img.Cb[i] = uint8(rng.UintN(256))
		img.Cr[i] = uint8(rng.UintN(256))
	}
	return img
}

func noisePaletted(w, h int, seed uint64) *image.Paletted {
	rng := newRNG(seed)
	pal := color.Palette{
		color.NRGBA{0, 0, 0, 255},
		color.NRGBA{255, 255, 255, 255},
		color.NRGBA{200, 40, 10, 128},
		color.RGBA{50, 60, 70, 100},
		color.Gray{99},
	}
	img := image.NewPaletted(image.Rect(0, 0, w, h), pal)
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.UintN(uint(len(pal))))
	}
	return img
}

func mustRaw(t *testing.T, r image.Rectangle, l Layout) *Raw {
	t.Helper()
	raw, err := NewRaw(r, l)
	if err != nil {
		t.Fatalf("NewRaw(%s): %v", l, err)
	}
	return raw
}

func convert(dst draw.Image, src image.Image) draw.Image {
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

// layouts returns src re-stored under every supported layout.
func layouts(t *testing.T, src image.Image) map[string]image.Image {
	t.Helper()
	r := src.Bounds()
	out := map[string]image.Image{
		"nrgba":   convert(image.NewNRGBA(r), src),
		"rgba":    convert(image.NewRGBA(r), src),
		"nrgba64": convert(image.NewNRGBA64(r), src),
		"rgba64":  convert(image.NewRGBA64(r), src),
	}
	for _, l := range []Layout{
		LayoutIntARGB, LayoutIntARGBPre, LayoutIntRGB, Layout3ByteBGR,
		Layout4ByteABGR, Layout4ByteABGRPre,
		{Order: OrderBGRA, BitDepth: 8},
		{Order: OrderRGBA, BitDepth: 16},
		{Order: OrderARGB, Premultiplied: true, BitDepth: 16},
		{Order: OrderRGB, BitDepth: 16},
	} {
		out["raw-"+l.String()] = convert(mustRaw(t, r, l), src)
	}
	return out
}

func grayLayouts(t *testing.T, src *image.Gray) map[string]image.Image {
	t.Helper()
	out := layouts(t, src)
	r := src.Bounds()
	out["gray"] = src
	out["gray16"] = convert(image.NewGray16(r), src)
	out["raw-"+LayoutByteGray.String()] = convert(mustRaw(t, r, LayoutByteGray), src)
	out["raw-"+LayoutUShortGray.String()] = convert(mustRaw(t, r, LayoutUShortGray), src)
	return out
}

func comparePixels(t *testing.T, name string, want, got *Pixel) {
	t.Helper()
	for x := 0; x < want.Width(); x++ {
		for y := 0; y < want.Height(); y++ {
			if w, g := want.RGB(x, y), got.RGB(x, y); w != g {
				t.Fatalf("%s: RGB(%d,%d) = %08x, want %08x", name, x, y, g, w)
			}
			if w, g := want.Luma(x, y), got.Luma(x, y); w != g {
				t.Fatalf("%s: Luma(%d,%d) = %d, want %d", name, x, y, g, w)
			}
			if w, g := want.Average(x, y), got.Average(x, y); w != g {
				t.Fatalf("%s: Average(%d,%d) = %d, want %d", name, x, y, g, w)
			}
			if w, g := want.Hue(x, y), got.Hue(x, y); w != g {
				t.Fatalf("%s: Hue(%d,%d) = %d, want %d", name, x, y, g, w)
			}
		}
	}
}

// ─── layout selection ────────────────────────────────────────

func TestNew_Layout(t *testing.T) {
	r := image.Rect(0, 0, 4, 4)
	raw := mustRaw(t, r, LayoutIntARGB)
	cases := []struct {
		img  image.Image
		want string
	}{
		{image.NewNRGBA(r), "nrgba"},
		{image.NewRGBA(r), "rgba-premultiplied"},
		{image.NewNRGBA64(r), "nrgba64"},
		{image.NewRGBA64(r), "rgba64-premultiplied"},
		{image.NewGray(r), "gray"},
		{image.NewGray16(r), "gray16"},
		{image.NewYCbCr(r, image.YCbCrSubsampleRatio420), "ycbcr"},
		{image.NewPaletted(r, color.Palette{color.Black}), "paletted"},
		{raw, "raw"},
		{image.NewCMYK(r), "generic"},
		{genericImage{image.NewNRGBA(r)}, "generic"},
	}
	for _, c := range cases {
		if got := New(c.img).Layout(); got != c.want {
			t.Errorf("%T: layout %q, want %q", c.img, got, c.want)
		}
	}
}

// ─── format independence ─────────────────────────────────────

func TestFormatIndependence_Color(t *testing.T) {
	src := noiseNRGBA(23, 17, 1, true)
	want := New(src)
	for name, img := range layouts(t, src) {
		comparePixels(t, name, want, New(img))
	}
}

func TestFormatIndependence_Gray(t *testing.T) {
	src := noiseGray(19, 21, 2)
	want := New(src)
	for name, img := range grayLayouts(t, src) {
		comparePixels(t, name, want, New(img))
	}
}

func TestFastPathMatchesGeneric(t *testing.T) {
	translucent := noiseNRGBA(16, 12, 3, false)
	images := layouts(t, translucent)
	for name, img := range grayLayouts(t, noiseGray(9, 7, 4)) {
		images["gray/"+name] = img
	}
	images["ycbcr420"] = noiseYCbCr(15, 11, 5, image.YCbCrSubsampleRatio420)
	images["ycbcr422"] = noiseYCbCr(15, 11, 6, image.YCbCrSubsampleRatio422)
	images["ycbcr444"] = noiseYCbCr(15, 11, 7, image.YCbCrSubsampleRatio444)
	images["paletted"] = noisePaletted(13, 9, 8)

	for name, img := range images {
		fast := New(img)
		slow := New(genericImage{img})
		if slow.Layout() != "generic" {
			t.Fatalf("%s: wrapper not generic", name)
		}
		for x := 0; x < fast.Width(); x++ {
			for y := 0; y < fast.Height(); y++ {
				if f, s := fast.RGB(x, y), slow.RGB(x, y); f != s {
					t.Fatalf("%s: RGB(%d,%d) fast %08x, generic %08x", name, x, y, f, s)
				}
			}
		}
	}
}

func TestSubImageCoordinates(t *testing.T) {
	src := noiseNRGBA(20, 20, 9, true)
	sub := src.SubImage(image.Rect(5, 7, 15, 12)).(*image.NRGBA)
	p := New(sub)
	if p.Width() != 10 || p.Height() != 5 {
		t.Fatalf("dims %dx%d, want 10x5", p.Width(), p.Height())
	}
	c := src.NRGBAAt(5, 7)
	if got := p.Red(0, 0); got != c.R {
		t.Errorf("Red(0,0) = %d, want %d", got, c.R)
	}
}

// ─── bulk / scalar consistency ───────────────────────────────

func TestMatricesMatchScalars(t *testing.T) {
	images := map[string]image.Image{
		"nrgba":   noiseNRGBA(11, 8, 10, false),
		"gray":    noiseGray(8, 11, 11),
		"ycbcr":   noiseYCbCr(9, 9, 12, image.YCbCrSubsampleRatio420),
		"generic": genericImage{noiseNRGBA(7, 5, 13, false)},
	}
	for name, img := range images {
		p := New(img)
		rgb := p.RGBMatrix()
		red, green, blue := p.RedMatrix(), p.GreenMatrix(), p.BlueMatrix()
		alpha, lum, avg := p.AlphaMatrix(), p.LumaMatrix(), p.AverageMatrix()

		if len(rgb) != p.Width() || len(rgb[0]) != p.Height() {
			t.Fatalf("%s: matrix %dx%d, want %dx%d", name, len(rgb), len(rgb[0]), p.Width(), p.Height())
		}
		for x := 0; x < p.Width(); x++ {
			for y := 0; y < p.Height(); y++ {
				if rgb[x][y] != p.RGB(x, y) {
					t.Fatalf("%s: RGBMatrix[%d][%d] differs", name, x, y)
				}
				if red[x][y] != p.Red(x, y) || green[x][y] != p.Green(x, y) || blue[x][y] != p.Blue(x, y) {
					t.Fatalf("%s: color matrix [%d][%d] differs", name, x, y)
				}
				if alpha[x][y] != p.Alpha(x, y) {
					t.Fatalf("%s: AlphaMatrix[%d][%d] differs", name, x, y)
				}
				if lum[x][y] != p.Luma(x, y) {
					t.Fatalf("%s: LumaMatrix[%d][%d] differs", name, x, y)
				}
				if avg[x][y] != p.Average(x, y) {
					t.Fatalf("%s: AverageMatrix[%d][%d] differs", name, x, y)
				}
			}
		}
	}
}

func TestRGBMatchesStdlib(t *testing.T) {
	src := noiseNRGBA(12, 12, 14, false)
	p := New(src)
	for x := 0; x < 12; x++ {
		for y := 0; y < 12; y++ {
			c := src.NRGBAAt(x, y)
			want := uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
			if got := p.RGB(x, y); got != want {
				t.Fatalf("RGB(%d,%d) = %08x, want %08x", x, y, got, want)
			}
		}
	}
}

// ─── alpha ───────────────────────────────────────────────────

func TestHasAlpha(t *testing.T) {
	r := image.Rect(0, 0, 2, 2)
	cases := []struct {
		name string
		img  image.Image
		want bool
	}{
		{"opaque nrgba", noiseNRGBA(2, 2, 15, true), true},
		{"gray", image.NewGray(r), false},
		{"gray16", image.NewGray16(r), false},
		{"ycbcr", image.NewYCbCr(r, image.YCbCrSubsampleRatio444), false},
		{"raw gray", mustRaw(t, r, LayoutByteGray), false},
		{"raw bgr", mustRaw(t, r, Layout3ByteBGR), false},
		{"raw abgr pre", mustRaw(t, r, Layout4ByteABGRPre), true},
		{"opaque palette", image.NewPaletted(r, color.Palette{color.Black, color.White}), false},
		{"translucent palette", image.NewPaletted(r, color.Palette{color.Black, color.Transparent}), true},
		{"generic gray", genericImage{image.NewGray(r)}, false},
		{"generic nrgba", genericImage{image.NewNRGBA(r)}, true},
	}
	for _, c := range cases {
		if got := New(c.img).HasAlpha(); got != c.want {
			t.Errorf("%s: HasAlpha = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestOpaqueSourcesReportFullAlpha(t *testing.T) {
	for name, img := range grayLayouts(t, noiseGray(5, 5, 16)) {
		p := New(img)
		for x := 0; x < 5; x++ {
			for y := 0; y < 5; y++ {
				if a := p.Alpha(x, y); a != 255 {
					t.Fatalf("%s: Alpha(%d,%d) = %d", name, x, y, a)
				}
			}
		}
	}
}

// ─── luma / hsv ──────────────────────────────────────────────

func blackWhite(t *testing.T) *Raw {
	// Two black rows above two white rows, stored as 16-bit gray.
	raw := mustRaw(t, image.Rect(0, 0, 4, 4), LayoutUShortGray)
	for y := 2; y < 4; y++ {
		for x := 0; x < 4; x++ {
			raw.Set(x, y, color.White)
		}
	}
	return raw
}

func solidRaw(t *testing.T, c color.Color, l Layout) *Raw {
	raw := mustRaw(t, image.Rect(0, 0, 3, 3), l)
	draw.Draw(raw, raw.Rect, image.NewUniform(c), image.Point{}, draw.Src)
	return raw
}

func TestLuma_BlackWhite(t *testing.T) {
	p := New(blackWhite(t))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			want := uint8(255)
			if y < 2 {
				want = 0
			}
			if got := p.Luma(x, y); got != want {
				t.Errorf("Luma(%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestLuma_GrayIsIdentity(t *testing.T) {
	for v := 0; v < 256; v++ {
		c := color.NRGBA{uint8(v), uint8(v), uint8(v), 255}
		if got := luma(c); got != uint8(v) {
			t.Fatalf("luma(%d) = %d", v, got)
		}
	}
}

func TestLuma_Extremes(t *testing.T) {
	if got := luma(color.NRGBA{255, 255, 255, 255}); got != 255 {
		t.Errorf("white luma %d", got)
	}
	if got := luma(color.NRGBA{0, 255, 0, 255}); got != 150 {
		t.Errorf("green luma %d, want 150", got)
	}
}

func TestHSV(t *testing.T) {
	cases := []struct {
		name string
		c    color.NRGBA
		hue  int
		sat  float64
		val  uint8
	}{
		{"red", color.NRGBA{255, 0, 0, 255}, 0, 1, 255},
		{"green", color.NRGBA{0, 255, 0, 255}, 120, 1, 255},
		{"blue", color.NRGBA{0, 0, 255, 255}, 240, 1, 255},
		{"brown", color.NRGBA{92, 46, 23, 255}, 20, 0.75, 92},
		{"magenta-ish", color.NRGBA{200, 0, 100, 255}, 330, 1, 200},
		{"gray", color.NRGBA{128, 128, 128, 255}, 0, 0, 128},
		{"black", color.NRGBA{0, 0, 0, 255}, 0, 0, 0},
		{"white", color.NRGBA{255, 255, 255, 255}, 0, 0, 255},
	}
	for _, c := range cases {
		p := New(solidRaw(t, c.c, Layout4ByteABGRPre))
		for x := 0; x < 3; x++ {
			for y := 0; y < 3; y++ {
				if got := p.Hue(x, y); got != c.hue {
					t.Errorf("%s: Hue = %d, want %d", c.name, got, c.hue)
				}
				if got := p.Sat(x, y); math.Abs(got-c.sat) > 1e-9 {
					t.Errorf("%s: Sat = %v, want %v", c.name, got, c.sat)
				}
				if got := p.Val(x, y); got != c.val {
					t.Errorf("%s: Val = %d, want %d", c.name, got, c.val)
				}
			}
		}
	}
}

func TestHueRange(t *testing.T) {
	p := New(noiseNRGBA(32, 32, 17, true))
	for x := 0; x < 32; x++ {
		for y := 0; y < 32; y++ {
			if h := p.Hue(x, y); h < 0 || h >= 360 {
				t.Fatalf("Hue(%d,%d) = %d out of range", x, y, h)
			}
			if s := p.Sat(x, y); s < 0 || s > 1 {
				t.Fatalf("Sat(%d,%d) = %v out of range", x, y, s)
			}
		}
	}
}

// ─── mutators ────────────────────────────────────────────────

func TestSetChannelLeavesOthers(t *testing.T) {
	setters := []struct {
		name string
		set  func(p *Pixel) error
		want [3]uint8
	}{
		{"red", func(p *Pixel) error { return p.SetRed(0, 0, 255) }, [3]uint8{255, 0, 0}},
		{"green", func(p *Pixel) error { return p.SetGreen(0, 0, 255) }, [3]uint8{0, 255, 0}},
		{"blue", func(p *Pixel) error { return p.SetBlue(0, 0, 255) }, [3]uint8{0, 0, 255}},
	}
	sources := map[string]func() image.Image{
		"nrgba":    func() image.Image { return image.NewNRGBA(image.Rect(0, 0, 10, 10)) },
		"raw argb": func() image.Image { return mustRaw(t, image.Rect(0, 0, 10, 10), LayoutIntARGB) },
		"raw bgr":  func() image.Image { return mustRaw(t, image.Rect(0, 0, 10, 10), Layout3ByteBGR) },
	}
	for srcName, mk := range sources {
		for _, s := range setters {
			p := New(mk())
			if err := s.set(p); err != nil {
				t.Fatalf("%s/%s: %v", srcName, s.name, err)
			}
			got := [3]uint8{p.Red(0, 0), p.Green(0, 0), p.Blue(0, 0)}
			if got != s.want {
				t.Errorf("%s/%s: got %v, want %v", srcName, s.name, got, s.want)
			}
		}
	}
}

func gradientMatrix(w, h int) [][]uint8 {
	m := make([][]uint8, w)
	step := 255 / float64(w)
	sub := step / float64(h)
	for x := range m {
		m[x] = make([]uint8, h)
		for y := range m[x] {
			m[x][y] = uint8(step*float64(x) + float64(y)*sub)
		}
	}
	return m
}

func equalMatrix(a, b [][]uint8) bool {
	if len(a) != len(b) {
		return false
	}
	for x := range a {
		if len(a[x]) != len(b[x]) {
			return false
		}
		for y := range a[x] {
			if a[x][y] != b[x][y] {
				return false
			}
		}
	}
	return true
}

func TestBulkSetRGBA(t *testing.T) {
	for _, img := range []image.Image{
		image.NewNRGBA(image.Rect(0, 0, 100, 80)),
		mustRaw(t, image.Rect(0, 0, 100, 80), Layout4ByteABGR),
	} {
		p := New(img)
		values := gradientMatrix(100, 80)
		for _, set := range []func([][]uint8) error{p.SetRedMatrix, p.SetGreenMatrix, p.SetBlueMatrix, p.SetAlphaMatrix} {
			if err := set(values); err != nil {
				t.Fatalf("%T: %v", img, err)
			}
		}
		if !equalMatrix(values, p.RedMatrix()) {
			t.Errorf("%T: red matrix differs", img)
		}
		if !equalMatrix(values, p.GreenMatrix()) {
			t.Errorf("%T: green matrix differs", img)
		}
		if !equalMatrix(values, p.BlueMatrix()) {
			t.Errorf("%T: blue matrix differs", img)
		}
		if !equalMatrix(values, p.AlphaMatrix()) {
			t.Errorf("%T: alpha matrix differs", img)
		}
	}
}

func TestSet_ReadOnly(t *testing.T) {
	r := image.Rect(0, 0, 2, 2)
	for _, img := range []image.Image{
		image.NewGray(r),
		image.NewRGBA(r),
		mustRaw(t, r, Layout4ByteABGRPre),
		mustRaw(t, r, LayoutByteGray),
		genericImage{image.NewNRGBA(r)},
	} {
		if err := New(img).SetRed(0, 0, 1); !errors.Is(err, ErrReadOnly) {
			t.Errorf("%T: err = %v, want ErrReadOnly", img, err)
		}
	}
	if err := New(mustRaw(t, r, LayoutIntRGB)).SetAlpha(0, 0, 1); !errors.Is(err, ErrReadOnly) {
		t.Errorf("SetAlpha without alpha channel: err = %v", err)
	}
}

func TestSetMatrix_Dimensions(t *testing.T) {
	p := New(image.NewNRGBA(image.Rect(0, 0, 3, 2)))
	if err := p.SetRedMatrix(gradientMatrix(2, 3)); !errors.Is(err, ErrDimensions) {
		t.Errorf("err = %v, want ErrDimensions", err)
	}
	ragged := [][]uint8{{1, 2}, {3}, {4, 5}}
	if err := p.SetRedMatrix(ragged); !errors.Is(err, ErrDimensions) {
		t.Errorf("ragged: err = %v, want ErrDimensions", err)
	}
	if p.Red(0, 0) != 0 {
		t.Error("failed bulk set wrote data")
	}
}

func TestOutOfRangePanics(t *testing.T) {
	p := New(image.NewGray(image.Rect(0, 0, 3, 3)))
	for _, pt := range []image.Point{{-1, 0}, {0, -1}, {3, 0}, {0, 3}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Luma(%d,%d) did not panic", pt.X, pt.Y)
				}
			}()
			p.Luma(pt.X, pt.Y)
		}()
	}
}

func BenchmarkLumaMatrix(b *testing.B) {
	images := map[string]image.Image{
		"nrgba":   noiseNRGBA(512, 512, 18, true),
		"ycbcr":   noiseYCbCr(512, 512, 19, image.YCbCrSubsampleRatio420),
		"generic": genericImage{noiseNRGBA(512, 512, 20, true)},
	}
	for name, img := range images {
		b.Run(name, func(b *testing.B) {
			p := New(img)
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = p.LumaMatrix()
			}
		})
	}
}
