// Package stats holds the small numeric toolkit the loader and the views
// share: quantiles, IQR fences, clamping, means, least squares and
// equal-width histograms.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FenceMultiplier scales the interquartile range into the outlier fence.
const FenceMultiplier = 1.5

// Fence is the acceptable range derived from a column's quartiles.
type Fence struct {
	Q1    float64 `json:"q1"`
	Q3    float64 `json:"q3"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// IQR returns Q3 − Q1.
func (f Fence) IQR() float64 { return f.Q3 - f.Q1 }

// Contains reports whether v lies inside the closed range [Lower, Upper].
func (f Fence) Contains(v float64) bool { return v >= f.Lower && v <= f.Upper }

// Clamp moves v onto the nearest bound when it lies outside the fence.
// NaN passes through untouched.
func (f Fence) Clamp(v float64) float64 {
	switch {
	case v < f.Lower:
		return f.Lower
	case v > f.Upper:
		return f.Upper
	default:
		return v
	}
}

// NonNull returns the values that are not NaN, in their original order.
func NonNull(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Quantile returns the p-quantile of the non-NaN values using linear
// interpolation between closest ranks at position (n−1)·p. It returns NaN
// when there are no values.
//
// gonum's stat.Quantile offers LinInterp, but that is the (n·p) estimator and
// disagrees with the closest-ranks convention on small samples.
func Quantile(values []float64, p float64) float64 {
	xs := NonNull(values)
	if len(xs) == 0 {
		return math.NaN()
	}
	sort.Float64s(xs)
	return sortedQuantile(xs, p)
}

func sortedQuantile(xs []float64, p float64) float64 {
	pos := float64(len(xs)-1) * p
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return xs[lo]
	}
	frac := pos - float64(lo)
	return xs[lo] + (xs[hi]-xs[lo])*frac
}

// IQRFence computes the quartiles of the non-NaN values and the fence
// [Q1 − 1.5·IQR, Q3 + 1.5·IQR]. ok is false when there are no values.
func IQRFence(values []float64) (f Fence, ok bool) {
	xs := NonNull(values)
	if len(xs) == 0 {
		return Fence{}, false
	}
	sort.Float64s(xs)
	f.Q1 = sortedQuantile(xs, 0.25)
	f.Q3 = sortedQuantile(xs, 0.75)
	iqr := f.Q3 - f.Q1
	f.Lower = f.Q1 - FenceMultiplier*iqr
	f.Upper = f.Q3 + FenceMultiplier*iqr
	return f, true
}

// Line is y = Intercept + Slope·x.
type Line struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

// At evaluates the line at x.
func (l Line) At(x float64) float64 { return l.Intercept + l.Slope*x }

// LeastSquares fits an ordinary least squares line through (xs[i], ys[i]).
// ok is false when fewer than two distinct x values make the fit undefined.
func LeastSquares(xs, ys []float64) (Line, bool) {
	if len(xs) != len(ys) || len(xs) < 2 {
		return Line{}, false
	}
	if floats.Min(xs) == floats.Max(xs) {
		return Line{}, false
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return Line{Intercept: alpha, Slope: beta}, true
}

// Bin is one histogram bucket covering [Start, End); the last bucket also
// includes End.
type Bin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// Histogram splits the non-NaN values into n equal-width bins spanning their
// range. A constant sample gets a unit-wide range so every value lands in
// the first bin.
func Histogram(values []float64, n int) []Bin {
	xs := NonNull(values)
	if len(xs) == 0 || n <= 0 {
		return nil
	}
	sort.Float64s(xs)
	lo, hi := xs[0], xs[len(xs)-1]
	if lo == hi {
		hi = lo + 1
	}

	dividers := floats.Span(make([]float64, n+1), lo, hi)
	// stat.Histogram treats the last divider as exclusive.
	dividers[n] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, xs, nil)

	bins := make([]Bin, n)
	for i := range bins {
		end := dividers[i+1]
		if i == n-1 {
			end = hi
		}
		bins[i] = Bin{Start: dividers[i], End: end, Count: int(counts[i])}
	}
	return bins
}
