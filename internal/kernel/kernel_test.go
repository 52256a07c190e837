package kernel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matrix(rows, cols int, f func(r, c int) int) [][]int {
	m := make([][]int, rows)
	for r := range m {
		m[r] = make([]int, cols)
		for c := range m[r] {
			m[r][c] = f(r, c)
		}
	}
	return m
}

func TestIdentity_NoOp(t *testing.T) {
	in := matrix(5, 7, func(r, c int) int { return r*31 + c*17 })
	out, err := Identity().Apply(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestApply_KeepsDimensions(t *testing.T) {
	k, err := BoxFilterNormalized(3, 3)
	require.NoError(t, err)
	out, err := k.Apply(matrix(4, 9, func(r, c int) int { return r + c }))
	require.NoError(t, err)
	require.Len(t, out, 4)
	for _, row := range out {
		assert.Len(t, row, 9)
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	in := matrix(3, 3, func(r, c int) int { return r * c })
	snapshot := matrix(3, 3, func(r, c int) int { return r * c })
	k, _ := BoxFilter(3, 3)
	_, err := k.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, snapshot, in)
}

func TestBoxFilterNormalized_Uniform(t *testing.T) {
	k, err := BoxFilterNormalized(3, 3)
	require.NoError(t, err)
	for _, v := range []int{0, 1, 17, 128, 255} {
		out, err := k.Apply(matrix(6, 6, func(int, int) int { return v }))
		require.NoError(t, err)
		for _, row := range out {
			for _, got := range row {
				require.Equal(t, v, got)
			}
		}
	}
}

func TestBoxFilterNormalized_WeightsSumToOne(t *testing.T) {
	k, err := BoxFilterNormalized(5, 3)
	require.NoError(t, err)
	var sum float64
	for _, row := range k.Weights() {
		for _, w := range row {
			sum += w
		}
	}
	assert.InDelta(t, 1.0, sum*k.Factor(), 1e-12)
}

func TestBoxFilterNormalized_ClampedBorder(t *testing.T) {
	// Single bright center; corner sees it once through the clamped window.
	in := [][]int{
		{0, 0, 0},
		{0, 90, 0},
		{0, 0, 0},
	}
	k, _ := BoxFilterNormalized(3, 3)
	out, err := k.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, [][]int{
		{10, 10, 10},
		{10, 10, 10},
		{10, 10, 10},
	}, out)

	// Edge repetition: a corner value is counted four times at the corner.
	in = [][]int{
		{90, 0, 0},
		{0, 0, 0},
		{0, 0, 0},
	}
	out, err = k.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, 40, out[0][0])
	assert.Equal(t, 20, out[0][1])
	assert.Equal(t, 10, out[1][1])
	assert.Equal(t, 0, out[2][2])
}

func TestBoxFilter_Unnormalized(t *testing.T) {
	k, err := BoxFilter(1, 3)
	require.NoError(t, err)
	out, err := k.Apply([][]int{{1, 2, 3, 4}})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{4, 6, 9, 11}}, out)
}

func TestGaussian(t *testing.T) {
	k, err := Gaussian(5, 5, 1.0)
	require.NoError(t, err)
	w := k.Weights()
	assert.Greater(t, w[2][2], w[0][0])
	assert.InDelta(t, w[0][0], w[4][4], 1e-15)

	out, err := k.Apply(matrix(7, 7, func(int, int) int { return 200 }))
	require.NoError(t, err)
	assert.Equal(t, 200, out[3][3])

	_, err = Gaussian(3, 3, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = Gaussian(3, 3, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestApply_InvalidDimensions(t *testing.T) {
	k, _ := BoxFilterNormalized(3, 3)

	_, err := k.Apply(matrix(2, 5, func(int, int) int { return 1 }))
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = k.Apply(matrix(5, 2, func(int, int) int { return 1 }))
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = k.Apply(nil)
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = k.Apply([][]int{{1, 2, 3}, {1, 2}, {1, 2, 3}})
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New([][]float64{{}}, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New([][]float64{{1, 2}, {3}}, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New([][]float64{{math.Inf(1)}}, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New([][]float64{{1}}, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = BoxFilter(0, 3)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	var zero Kernel
	_, err = zero.Apply([][]int{{1}})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNew_CopiesWeights(t *testing.T) {
	w := [][]float64{{1, 2}, {3, 4}}
	k, err := New(w, 1)
	require.NoError(t, err)
	before := k.Fingerprint()

	w[0][0] = 100
	assert.Equal(t, before, k.Fingerprint())

	got := k.Weights()
	got[1][1] = -1
	assert.Equal(t, 4.0, k.Weights()[1][1])
}

func TestFingerprint(t *testing.T) {
	a, _ := BoxFilterNormalized(3, 3)
	b, _ := BoxFilterNormalized(3, 3)
	c, _ := BoxFilterNormalized(5, 5)
	d, _ := BoxFilter(3, 3)
	e, _ := New([][]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}, 1.0/9)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, a.Fingerprint(), e.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), d.Fingerprint())
	assert.NotEqual(t, Identity().Fingerprint(), a.Fingerprint())
}

func TestString(t *testing.T) {
	k, _ := BoxFilterNormalized(3, 3)
	assert.Equal(t, "boxnorm3x3", k.String())

	k, _ = New([][]float64{{1, -1}}, 0.5)
	assert.Equal(t, "kernel1x2[1 -1]*0.5", k.String())
}
