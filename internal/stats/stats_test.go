package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantileLinearInterpolation(t *testing.T) {
	xs := []float64{4, 1, 3, 2}

	assert.InDelta(t, 1.75, Quantile(xs, 0.25), 1e-12)
	assert.InDelta(t, 2.5, Quantile(xs, 0.5), 1e-12)
	assert.InDelta(t, 3.25, Quantile(xs, 0.75), 1e-12)
	assert.Equal(t, 1.0, Quantile(xs, 0))
	assert.Equal(t, 4.0, Quantile(xs, 1))
}

func TestQuantileIgnoresNaN(t *testing.T) {
	xs := []float64{math.NaN(), 10, math.NaN(), 20}
	assert.InDelta(t, 12.5, Quantile(xs, 0.25), 1e-12)
	assert.True(t, math.IsNaN(Quantile([]float64{math.NaN()}, 0.5)))
}

func TestIQRFence(t *testing.T) {
	f, ok := IQRFence([]float64{1, 2, 3, 4, 100})
	require.True(t, ok)

	assert.Equal(t, 2.0, f.Q1)
	assert.Equal(t, 4.0, f.Q3)
	assert.Equal(t, 2.0, f.IQR())
	assert.Equal(t, -1.0, f.Lower)
	assert.Equal(t, 7.0, f.Upper)

	assert.Equal(t, 7.0, f.Clamp(100))
	assert.Equal(t, -1.0, f.Clamp(-50))
	assert.Equal(t, 3.0, f.Clamp(3))
	assert.True(t, math.IsNaN(f.Clamp(math.NaN())))
	assert.True(t, f.Contains(7))
	assert.False(t, f.Contains(7.0001))
}

func TestIQRFenceEmpty(t *testing.T) {
	_, ok := IQRFence(nil)
	assert.False(t, ok)
	_, ok = IQRFence([]float64{math.NaN()})
	assert.False(t, ok)
}

func TestLeastSquares(t *testing.T) {
	line, ok := LeastSquares([]float64{1, 2, 3, 4}, []float64{3, 5, 7, 9})
	require.True(t, ok)
	assert.InDelta(t, 1.0, line.Intercept, 1e-9)
	assert.InDelta(t, 2.0, line.Slope, 1e-9)
	assert.InDelta(t, 21.0, line.At(10), 1e-9)

	_, ok = LeastSquares([]float64{5, 5, 5}, []float64{1, 2, 3})
	assert.False(t, ok, "vertical data has no OLS fit")

	_, ok = LeastSquares([]float64{1}, []float64{1})
	assert.False(t, ok)
}

func TestHistogram(t *testing.T) {
	values := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	bins := Histogram(values, 5)
	require.Len(t, bins, 5)

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, len(values), total)
	assert.Equal(t, 0.0, bins[0].Start)
	assert.Equal(t, 10.0, bins[4].End)
	assert.Equal(t, 3, bins[4].Count, "maximum lands in the closed last bin")
}

func TestHistogramConstantSample(t *testing.T) {
	bins := Histogram([]float64{7, 7, 7}, 30)
	require.Len(t, bins, 30)
	assert.Equal(t, 3, bins[0].Count)
	assert.Nil(t, Histogram(nil, 30))
}
