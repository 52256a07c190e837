// Package phash computes perceptual hashes of decoded images.
//
// Every algorithm follows the same pipeline: wrap the image with
// pixel.New, rescale one signal (luma or channel average) to a square grid
// by area averaging, optionally filter the grid with kernels, then set one
// bit per cell whose value is strictly greater than the threshold (mean or
// median). Hashes carry the algorithm identity so only hashes from equally
// configured algorithms compare.
//
// Algorithms are immutable after construction and safe for concurrent use.
package phash

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/cespare/xxhash/v2"

	"github.com/AnyUserName/imghash/internal/kernel"
)

// Algorithm turns images into comparable hashes.
type Algorithm interface {
	// Hash computes the hash of img. It fails with ErrInvalidArgument for
	// empty images and never returns a partial hash.
	Hash(img image.Image) (Hash, error)
	// ID is the algorithm identity stamped on every hash it produces.
	ID() uint64
	// KeyResolution returns the number of bits per hash.
	KeyResolution() int
	// Dimensions returns the hash grid size.
	Dimensions() (width, height int)
	String() string
}

// variant tags the members of the family. The tag string is part of the
// algorithm identity and must never change.
type variant string

const (
	variantAverage       variant = "average"
	variantAverageColor  variant = "average-color"
	variantAverageKernel variant = "average-kernel"
	variantMedian        variant = "median"
)

// Variant names accepted by ByName.
var Variants = []string{
	string(variantAverage),
	string(variantAverageColor),
	string(variantAverageKernel),
	string(variantMedian),
}

// ByName builds the named variant at the given bit resolution. The kernel
// variant uses DefaultKernel.
func ByName(name string, bits int) (Algorithm, error) {
	switch variant(name) {
	case variantAverage:
		return NewAverageHash(bits)
	case variantAverageColor:
		return NewAverageColorHash(bits)
	case variantAverageKernel:
		return NewAverageKernelHash(bits, DefaultKernel())
	case variantMedian:
		return NewMedianHash(bits)
	}
	return nil, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidArgument, name)
}

// identityFactor separates these identities from the ones produced by
// earlier releases, which used the plain digest.
const identityFactor = 31

// base carries what every variant shares: the grid and the identity.
type base struct {
	variant variant
	width   int
	height  int
	id      uint64
	label   string
}

func newBase(v variant, bits int, kernels []kernel.Kernel) (base, error) {
	n, err := gridSide(bits)
	if err != nil {
		return base{}, err
	}
	b := base{variant: v, width: n, height: n}
	b.id = identity(v, n, n, kernels)
	b.label = fmt.Sprintf("%s(%dx%d)", v, n, n)
	return b, nil
}

// gridSide returns the smallest n with n*n >= bits.
func gridSide(bits int) (int, error) {
	if bits <= 0 {
		return 0, fmt.Errorf("%w: bit resolution %d", ErrInvalidArgument, bits)
	}
	n := int(math.Ceil(math.Sqrt(float64(bits))))
	for n*n < bits {
		n++
	}
	for n > 1 && (n-1)*(n-1) >= bits {
		n--
	}
	return n, nil
}

// identity digests the variant tag, grid height, grid width and the kernel
// chain in order.
func identity(v variant, height, width int, kernels []kernel.Kernel) uint64 {
	d := xxhash.New()
	d.WriteString(string(v))
	var buf [8]byte
	binary.BigEndian.PutUint32(buf[:4], uint32(height))
	binary.BigEndian.PutUint32(buf[4:], uint32(width))
	d.Write(buf[:])
	for _, k := range kernels {
		binary.BigEndian.PutUint64(buf[:], k.Fingerprint())
		d.Write(buf[:])
	}
	return d.Sum64() * identityFactor
}

func (b *base) ID() uint64                      { return b.id }
func (b *base) KeyResolution() int              { return b.width * b.height }
func (b *base) Dimensions() (width, height int) { return b.width, b.height }
func (b *base) String() string                  { return b.label }

// encode sets bit i for row-major cell i of grid (indexed [row][col]) when
// above reports true for its value.
func (b *base) encode(grid [][]int, above func(v int64) bool) Hash {
	bits := bitset.New(uint(b.width * b.height))
	i := uint(0)
	for _, row := range grid {
		for _, v := range row {
			if above(int64(v)) {
				bits.Set(i)
			}
			i++
		}
	}
	return Hash{bits: bits, length: i, algorithm: b.id}
}

// meanHash sets a bit for every cell strictly above the arithmetic mean.
// v > sum/n is tested as v*n > sum so ties stay exact.
func (b *base) meanHash(grid [][]int) Hash {
	var sum, n int64
	for _, row := range grid {
		for _, v := range row {
			sum += int64(v)
			n++
		}
	}
	return b.encode(grid, func(v int64) bool { return v*n > sum })
}

// medianHash sets a bit for every cell strictly above the median. For an
// even cell count the median is the mean of the two middle values.
func (b *base) medianHash(grid [][]int) Hash {
	vals := make([]int, 0, b.width*b.height)
	for _, row := range grid {
		vals = append(vals, row...)
	}
	sort.Ints(vals)
	m := len(vals)
	t2 := int64(vals[(m-1)/2]) + int64(vals[m/2])
	return b.encode(grid, func(v int64) bool { return 2*v > t2 })
}
