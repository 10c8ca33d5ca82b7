package awr

import (
	"math"
	"testing"
	"time"

	"github.com/homas01123/trios/internal/types"
)

func testScan() *types.RadiometryScan {
	return &types.RadiometryScan{
		ID:             "scan-1",
		InstrumentName: "ramses-bow",
		Timestamp:      time.Date(2025, 6, 15, 11, 30, 0, 0, time.UTC),
		Wavelengths:    []float64{400, 500, 600, 700, 760, 800},
		Lt:             []float64{0.020, 0.031, 0.024, 0.015, 0.011, 0.010},
		Lsky:           []float64{0.100, 0.090, 0.070, 0.050, 0.040, 0.038},
		Ed:             []float64{1.00, 1.20, 1.10, 0.90, 0.80, 0.75},
		ViewZenith:     40,
		RelAzimuth:     135,
		WindSpeed:      5.0,
		WaterType:      1,
	}
}

func TestComputeFlat(t *testing.T) {
	scan := testScan()
	sample, err := Compute(scan, MethodFlat, 30, Options{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if len(sample.Rrs) != len(scan.Wavelengths) {
		t.Fatalf("got %d Rrs values for %d wavelengths", len(sample.Rrs), len(scan.Wavelengths))
	}

	for i := range scan.Wavelengths {
		want := (scan.Lt[i] - flatRho*scan.Lsky[i]) / scan.Ed[i]
		if math.Abs(sample.Rrs[i]-want) > 1e-12 {
			t.Errorf("Rrs[%d] = %g, want %g", i, sample.Rrs[i], want)
		}
	}

	if sample.Method != MethodFlat {
		t.Errorf("sample method = %q, want %q", sample.Method, MethodFlat)
	}
	if sample.SunZenith != 30 {
		t.Errorf("sun zenith = %g, want 30", sample.SunZenith)
	}
}

func TestRhoM99(t *testing.T) {
	tests := []struct {
		name      string
		wind      float64
		sunZenith float64
	}{
		{"calm low sun", 0, 20},
		{"breeze low sun", 5, 20},
		{"strong wind low sun", 12, 20},
		{"calm high sun zenith", 0, 70},
	}

	prev := 0.0
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rho := rhoM99(tt.wind, tt.sunZenith)
			if rho < 0.02 || rho > 0.1 {
				t.Errorf("rho = %g outside plausible range", rho)
			}
			// rho grows with wind at fixed geometry
			if i > 0 && i < 3 && rho <= prev {
				t.Errorf("rho = %g did not increase with wind (prev %g)", rho, prev)
			}
			prev = rho
		})
	}

	if rhoM99(0, 70) <= rhoM99(0, 20) {
		t.Error("rho should rise at high sun zenith")
	}
}

func TestComputeAllProducesPerMethodSamples(t *testing.T) {
	scan := testScan()
	samples, err := ComputeAll(scan, 30, DefaultOptions())
	if err != nil {
		t.Fatalf("ComputeAll: %v", err)
	}

	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	for _, method := range []string{MethodM99, MethodFlat} {
		sample, ok := samples[method]
		if !ok {
			t.Fatalf("missing sample for method %s", method)
		}
		if sample.Method != method {
			t.Errorf("sample labeled %q under key %q", sample.Method, method)
		}
	}

	// The two rho models must actually disagree
	m99 := samples[MethodM99].Rrs[0]
	flat := samples[MethodFlat].Rrs[0]
	if m99 == flat {
		t.Error("M99 and FLAT produced identical Rrs")
	}
}

func TestComputeRejectsUnknownMethod(t *testing.T) {
	if _, err := Compute(testScan(), "3C", 30, Options{}); err == nil {
		t.Fatal("expected error for unknown method")
	}
}

func TestComputeRejectsNonPositiveEd(t *testing.T) {
	scan := testScan()
	scan.Ed[2] = 0
	if _, err := Compute(scan, MethodFlat, 30, Options{}); err == nil {
		t.Fatal("expected error for non-positive Ed")
	}
}

func TestNIRCorrection(t *testing.T) {
	scan := testScan()
	sample, err := Compute(scan, MethodFlat, 30, Options{NIRCorrection: true})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	uncorrected, err := Compute(scan, MethodFlat, 30, Options{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// The NIR floor beyond 750 nm is subtracted everywhere
	floor := math.Min(uncorrected.Rrs[4], uncorrected.Rrs[5])
	for i := range sample.Rrs {
		want := uncorrected.Rrs[i] - floor
		if math.Abs(sample.Rrs[i]-want) > 1e-12 {
			t.Errorf("Rrs[%d] = %g, want %g after NIR correction", i, sample.Rrs[i], want)
		}
	}
}

func TestComputeWithResampling(t *testing.T) {
	scan := testScan()
	opts := Options{GridMin: 450, GridMax: 750, GridStep: 50}
	sample, err := Compute(scan, MethodFlat, 30, opts)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	wantGrid := []float64{450, 500, 550, 600, 650, 700, 750}
	if len(sample.Wavelengths) != len(wantGrid) {
		t.Fatalf("got %d grid points, want %d", len(sample.Wavelengths), len(wantGrid))
	}
	for i, w := range wantGrid {
		if sample.Wavelengths[i] != w {
			t.Errorf("grid[%d] = %g, want %g", i, sample.Wavelengths[i], w)
		}
	}
	if len(sample.Rrs) != len(wantGrid) {
		t.Fatalf("got %d Rrs values for %d grid points", len(sample.Rrs), len(wantGrid))
	}
}
