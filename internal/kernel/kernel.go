// Package kernel convolves integer matrices with small weight matrices.
//
// A Kernel is immutable: its weights are copied on construction and never
// exposed for writing, so a kernel shared between hashing algorithms cannot
// change underneath them.
package kernel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var (
	// ErrInvalidArgument is returned for malformed weight matrices.
	ErrInvalidArgument = errors.New("kernel: invalid argument")

	// ErrInvalidDimensions is returned when the input matrix is smaller
	// than the kernel or not rectangular.
	ErrInvalidDimensions = errors.New("kernel: invalid dimensions")
)

// Kernel is a rows x cols weight matrix plus a factor applied to every
// weighted sum.
type Kernel struct {
	rows    int
	cols    int
	weights []float64 // row-major
	factor  float64
	name    string
}

// New builds a kernel from weights (indexed [row][col]) and a normalization
// factor. The matrix must be non-empty and rectangular, and every value
// finite.
func New(weights [][]float64, factor float64) (Kernel, error) {
	if len(weights) == 0 || len(weights[0]) == 0 {
		return Kernel{}, fmt.Errorf("%w: empty weight matrix", ErrInvalidArgument)
	}
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return Kernel{}, fmt.Errorf("%w: factor %v", ErrInvalidArgument, factor)
	}
	rows, cols := len(weights), len(weights[0])
	flat := make([]float64, 0, rows*cols)
	for r, row := range weights {
		if len(row) != cols {
			return Kernel{}, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidArgument, r, len(row), cols)
		}
		for _, w := range row {
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return Kernel{}, fmt.Errorf("%w: weight %v", ErrInvalidArgument, w)
			}
			flat = append(flat, w)
		}
	}
	return Kernel{rows: rows, cols: cols, weights: flat, factor: factor}, nil
}

func filled(name string, rows, cols int, factor float64, weight func(r, c int) float64) Kernel {
	w := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			w[r*cols+c] = weight(r, c)
		}
	}
	return Kernel{rows: rows, cols: cols, weights: w, factor: factor, name: name}
}

func checkSize(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidArgument, rows, cols)
	}
	return nil
}

// Identity returns the 1x1 kernel that leaves its input unchanged.
func Identity() Kernel {
	return filled("identity", 1, 1, 1, func(int, int) float64 { return 1 })
}

// BoxFilter returns a rows x cols kernel of ones without normalization.
func BoxFilter(rows, cols int) (Kernel, error) {
	if err := checkSize(rows, cols); err != nil {
		return Kernel{}, err
	}
	return filled(fmt.Sprintf("box%dx%d", rows, cols), rows, cols, 1,
		func(int, int) float64 { return 1 }), nil
}

// BoxFilterNormalized returns a rows x cols mean filter: equal weights whose
// effective sum is 1.
func BoxFilterNormalized(rows, cols int) (Kernel, error) {
	if err := checkSize(rows, cols); err != nil {
		return Kernel{}, err
	}
	return filled(fmt.Sprintf("boxnorm%dx%d", rows, cols), rows, cols, 1/float64(rows*cols),
		func(int, int) float64 { return 1 }), nil
}

// Gaussian returns a normalized rows x cols Gaussian blur with the given
// standard deviation.
func Gaussian(rows, cols int, sigma float64) (Kernel, error) {
	if err := checkSize(rows, cols); err != nil {
		return Kernel{}, err
	}
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return Kernel{}, fmt.Errorf("%w: sigma %v", ErrInvalidArgument, sigma)
	}
	cr, cc := float64(rows-1)/2, float64(cols-1)/2
	k := filled(fmt.Sprintf("gauss%dx%d(%g)", rows, cols, sigma), rows, cols, 1, func(r, c int) float64 {
		dr, dc := float64(r)-cr, float64(c)-cc
		return math.Exp(-(dr*dr + dc*dc) / (2 * sigma * sigma))
	})
	var sum float64
	for _, w := range k.weights {
		sum += w
	}
	k.factor = 1 / sum
	return k, nil
}

// Rows returns the kernel height.
func (k Kernel) Rows() int { return k.rows }

// Cols returns the kernel width.
func (k Kernel) Cols() int { return k.cols }

// Factor returns the normalization factor.
func (k Kernel) Factor() float64 { return k.factor }

// Weights returns a copy of the weights, indexed [row][col].
func (k Kernel) Weights() [][]float64 {
	out := make([][]float64, k.rows)
	for r := range out {
		out[r] = append([]float64(nil), k.weights[r*k.cols:(r+1)*k.cols]...)
	}
	return out
}

// Fingerprint identifies the kernel's dimensions, factor and weights.
// Kernels with equal configuration have equal fingerprints.
func (k Kernel) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [8]byte
	binary.BigEndian.PutUint32(buf[:4], uint32(k.rows))
	binary.BigEndian.PutUint32(buf[4:], uint32(k.cols))
	d.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(k.factor))
	d.Write(buf[:])
	for _, w := range k.weights {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(w))
		d.Write(buf[:])
	}
	return d.Sum64()
}

func (k Kernel) String() string {
	if k.name != "" {
		return k.name
	}
	var b strings.Builder
	fmt.Fprintf(&b, "kernel%dx%d[", k.rows, k.cols)
	for i, w := range k.weights {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%g", w)
	}
	fmt.Fprintf(&b, "]*%g", k.factor)
	return b.String()
}

// Apply convolves m (indexed [row][col]) with the kernel and returns a new
// matrix of the same size. The kernel is anchored at (Rows()/2, Cols()/2);
// samples beyond the border repeat the nearest edge value. Each output is
// the weighted sum times Factor(), rounded to the nearest integer.
func (k Kernel) Apply(m [][]int) ([][]int, error) {
	if k.rows == 0 {
		return nil, fmt.Errorf("%w: zero kernel", ErrInvalidArgument)
	}
	rows := len(m)
	if rows < k.rows || len(m[0]) < k.cols {
		cols := 0
		if rows > 0 {
			cols = len(m[0])
		}
		return nil, fmt.Errorf("%w: input %dx%d smaller than kernel %dx%d",
			ErrInvalidDimensions, rows, cols, k.rows, k.cols)
	}
	cols := len(m[0])
	for r, row := range m {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidDimensions, r, len(row), cols)
		}
	}

	ar, ac := k.rows/2, k.cols/2
	buf := make([]int, rows*cols)
	out := make([][]int, rows)
	for r := 0; r < rows; r++ {
		out[r] = buf[r*cols : (r+1)*cols : (r+1)*cols]
		for c := 0; c < cols; c++ {
			var sum float64
			for kr := 0; kr < k.rows; kr++ {
				src := m[clamp(r+kr-ar, rows)]
				wrow := k.weights[kr*k.cols : (kr+1)*k.cols]
				for kc, w := range wrow {
					sum += w * float64(src[clamp(c+kc-ac, cols)])
				}
			}
			out[r][c] = int(math.Round(sum * k.factor))
		}
	}
	return out, nil
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
