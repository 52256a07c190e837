package phash

import (
	"fmt"
	"image"
	"strings"

	"github.com/AnyUserName/imghash/internal/kernel"
)

// DefaultKernel is the 3x3 normalized box filter.
func DefaultKernel() kernel.Kernel {
	k, _ := kernel.BoxFilterNormalized(3, 3)
	return k
}

// AverageKernelHash filters the rescaled luma grid with a chain of kernels
// before thresholding it at its mean.
type AverageKernelHash struct {
	base
	kernels []kernel.Kernel
}

// NewAverageKernelHash returns a kernel-filtered average hash. kernels are
// applied in order and must be non-empty; a zero Kernel or one larger than
// the hash grid is rejected here rather than at hash time.
func NewAverageKernelHash(bits int, kernels ...kernel.Kernel) (*AverageKernelHash, error) {
	if len(kernels) == 0 {
		return nil, fmt.Errorf("%w: no kernels", ErrInvalidArgument)
	}
	b, err := newBase(variantAverageKernel, bits, kernels)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(kernels))
	for i, k := range kernels {
		if k.Rows() == 0 {
			return nil, fmt.Errorf("%w: kernel %d is zero", ErrInvalidArgument, i)
		}
		if k.Rows() > b.height || k.Cols() > b.width {
			return nil, fmt.Errorf("%w: kernel %d is %dx%d, grid is %dx%d",
				ErrInvalidArgument, i, k.Rows(), k.Cols(), b.height, b.width)
		}
		names[i] = k.String()
	}
	b.label = fmt.Sprintf("%s(%dx%d,[%s])", b.variant, b.width, b.height, strings.Join(names, " "))
	return &AverageKernelHash{
		base:    b,
		kernels: append([]kernel.Kernel(nil), kernels...),
	}, nil
}

// Kernels returns the kernel chain in application order.
func (a *AverageKernelHash) Kernels() []kernel.Kernel {
	return append([]kernel.Kernel(nil), a.kernels...)
}

func (a *AverageKernelHash) Hash(img image.Image) (Hash, error) {
	grid, err := a.sample(img, luma)
	if err != nil {
		return Hash{}, err
	}
	for i, k := range a.kernels {
		if grid, err = k.Apply(grid); err != nil {
			return Hash{}, fmt.Errorf("kernel %d (%s): %w", i, k, err)
		}
	}
	return a.meanHash(grid), nil
}
