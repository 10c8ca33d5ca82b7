package awr

import (
	"math"
	"testing"
)

func TestResampleLinearData(t *testing.T) {
	// Linear spectra survive linear interpolation exactly
	wavelengths := []float64{400, 500, 600, 700}
	values := []float64{1.0, 2.0, 3.0, 4.0}

	grid, out, err := Resample(wavelengths, values, 400, 700, 25)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}

	if len(grid) != 13 {
		t.Fatalf("got %d grid points, want 13", len(grid))
	}
	for i, w := range grid {
		want := 1.0 + (w-400)/100
		if math.Abs(out[i]-want) > 1e-12 {
			t.Errorf("out[%d] at %g nm = %g, want %g", i, w, out[i], want)
		}
	}
}

func TestResampleErrors(t *testing.T) {
	tests := []struct {
		name          string
		wavelengths   []float64
		values        []float64
		min, max, dhz float64
	}{
		{"too few points", []float64{500}, []float64{1}, 400, 700, 10},
		{"zero step", []float64{400, 700}, []float64{1, 2}, 400, 700, 0},
		{"inverted range", []float64{400, 700}, []float64{1, 2}, 700, 400, 10},
		{"extrapolation below", []float64{450, 700}, []float64{1, 2}, 400, 700, 10},
		{"extrapolation above", []float64{400, 700}, []float64{1, 2}, 400, 800, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Resample(tt.wavelengths, tt.values, tt.min, tt.max, tt.dhz); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
