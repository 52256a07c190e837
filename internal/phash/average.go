package phash

import "image"

// AverageHash thresholds the rescaled luma grid at its mean.
type AverageHash struct{ base }

// NewAverageHash returns an average hash of at least bits bits, on the
// smallest square grid that holds them: 64 gives 8x8, 128 gives 12x12.
func NewAverageHash(bits int) (*AverageHash, error) {
	b, err := newBase(variantAverage, bits, nil)
	if err != nil {
		return nil, err
	}
	return &AverageHash{b}, nil
}

func (a *AverageHash) Hash(img image.Image) (Hash, error) {
	grid, err := a.sample(img, luma)
	if err != nil {
		return Hash{}, err
	}
	return a.meanHash(grid), nil
}

// AverageColorHash thresholds the rescaled (r+g+b)/3 grid at its mean.
// Unlike luma it weighs the channels equally.
type AverageColorHash struct{ base }

func NewAverageColorHash(bits int) (*AverageColorHash, error) {
	b, err := newBase(variantAverageColor, bits, nil)
	if err != nil {
		return nil, err
	}
	return &AverageColorHash{b}, nil
}

func (a *AverageColorHash) Hash(img image.Image) (Hash, error) {
	grid, err := a.sample(img, average)
	if err != nil {
		return Hash{}, err
	}
	return a.meanHash(grid), nil
}

// MedianHash thresholds the rescaled luma grid at its median, which keeps
// the bit balance close to even on images dominated by a few outliers.
type MedianHash struct{ base }

func NewMedianHash(bits int) (*MedianHash, error) {
	b, err := newBase(variantMedian, bits, nil)
	if err != nil {
		return nil, err
	}
	return &MedianHash{b}, nil
}

func (m *MedianHash) Hash(img image.Image) (Hash, error) {
	grid, err := m.sample(img, luma)
	if err != nil {
		return Hash{}, err
	}
	return m.medianHash(grid), nil
}
