package awr

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// Resample interpolates a spectrum onto a regular wavelength grid
// [min, max] with the given step. The target grid must lie inside the
// source grid; spectra are never extrapolated.
func Resample(wavelengths, values []float64, min, max, step float64) ([]float64, []float64, error) {
	if len(wavelengths) < 2 {
		return nil, nil, fmt.Errorf("resample needs at least 2 source points, have %d", len(wavelengths))
	}
	if step <= 0 {
		return nil, nil, fmt.Errorf("resample step must be positive, got %g", step)
	}
	if min >= max {
		return nil, nil, fmt.Errorf("invalid resample range [%g, %g]", min, max)
	}
	if min < wavelengths[0] || max > wavelengths[len(wavelengths)-1] {
		return nil, nil, fmt.Errorf("target grid [%g, %g] outside source range [%g, %g]",
			min, max, wavelengths[0], wavelengths[len(wavelengths)-1])
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(wavelengths, values); err != nil {
		return nil, nil, fmt.Errorf("fitting interpolant: %w", err)
	}

	n := int(math.Floor((max-min)/step+1e-9)) + 1
	grid := make([]float64, n)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		w := min + float64(i)*step
		if w > max {
			w = max
		}
		grid[i] = w
		out[i] = pl.Predict(w)
	}

	return grid, out, nil
}
