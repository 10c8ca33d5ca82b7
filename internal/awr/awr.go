// Package awr derives remote-sensing reflectance (Rrs) from above-water
// radiometry scans. Each supported method differs only in how it estimates
// the sea-surface reflectance factor rho used to remove sky glint:
//
//	Rrs(lambda) = (Lt(lambda) - rho * Lsky(lambda)) / Ed(lambda)
package awr

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/homas01123/trios/internal/types"
)

// Supported AWR method labels
const (
	MethodM99  = "M99"  // Mobley (1999) wind-dependent rho
	MethodFlat = "FLAT" // fixed rho, calm-water assumption
)

// rho for the FLAT method; the textbook calm-water value
const flatRho = 0.028

// Options controls which methods run and how the output grid is built
type Options struct {
	Methods       []string
	GridMin       float64 // nm; zero disables resampling
	GridMax       float64
	GridStep      float64
	NIRCorrection bool // subtract residual glint using the NIR floor
}

// DefaultOptions computes both methods on the native instrument grid
func DefaultOptions() Options {
	return Options{Methods: []string{MethodM99, MethodFlat}}
}

// rhoM99 approximates the Mobley (1999) sea-surface reflectance factor from
// wind speed, with an inflation term at high sun zenith where the tabulated
// values rise sharply.
func rhoM99(windSpeed, sunZenith float64) float64 {
	rho := 0.0256 + 0.00039*windSpeed + 0.000034*windSpeed*windSpeed
	if sunZenith > 45 {
		rho *= 1 + 0.05*(sunZenith-45)/45
	}
	return rho
}

func rhoForMethod(method string, scan *types.RadiometryScan, sunZenith float64) (float64, error) {
	switch method {
	case MethodM99:
		return rhoM99(scan.WindSpeed, sunZenith), nil
	case MethodFlat:
		return flatRho, nil
	default:
		return 0, fmt.Errorf("unknown AWR method %q", method)
	}
}

// Compute derives the Rrs spectrum from a scan with the given method.
// sunZenith is in degrees at acquisition time.
func Compute(scan *types.RadiometryScan, method string, sunZenith float64, opts Options) (types.SpectralSample, error) {
	if err := scan.Validate(); err != nil {
		return types.SpectralSample{}, err
	}

	rho, err := rhoForMethod(method, scan, sunZenith)
	if err != nil {
		return types.SpectralSample{}, err
	}

	rrs := make([]float64, len(scan.Wavelengths))
	for i := range scan.Wavelengths {
		if scan.Ed[i] <= 0 {
			return types.SpectralSample{}, fmt.Errorf("scan %s: non-positive Ed at %.1f nm",
				scan.ID, scan.Wavelengths[i])
		}
		rrs[i] = (scan.Lt[i] - rho*scan.Lsky[i]) / scan.Ed[i]
	}

	wavelengths := scan.Wavelengths
	if opts.GridStep > 0 {
		wavelengths, rrs, err = Resample(scan.Wavelengths, rrs, opts.GridMin, opts.GridMax, opts.GridStep)
		if err != nil {
			return types.SpectralSample{}, fmt.Errorf("scan %s: %w", scan.ID, err)
		}
	} else {
		wavelengths = append([]float64(nil), wavelengths...)
	}

	if opts.NIRCorrection {
		applyNIRCorrection(wavelengths, rrs)
	}

	return types.SpectralSample{
		ID:             uuid.New().String(),
		InstrumentName: scan.InstrumentName,
		Method:         method,
		Timestamp:      scan.Timestamp,
		Wavelengths:    wavelengths,
		Rrs:            rrs,
		SunZenith:      sunZenith,
		ViewZenith:     scan.ViewZenith,
		RelAzimuth:     scan.RelAzimuth,
		WindSpeed:      scan.WindSpeed,
		WaterType:      scan.WaterType,
	}, nil
}

// ComputeAll runs every configured method against the scan and returns the
// per-method samples keyed by method label.
func ComputeAll(scan *types.RadiometryScan, sunZenith float64, opts Options) (map[string]types.SpectralSample, error) {
	methods := opts.Methods
	if len(methods) == 0 {
		methods = []string{MethodM99, MethodFlat}
	}

	samples := make(map[string]types.SpectralSample, len(methods))
	for _, method := range methods {
		sample, err := Compute(scan, method, sunZenith, opts)
		if err != nil {
			return nil, err
		}
		samples[method] = sample
	}
	return samples, nil
}

// applyNIRCorrection subtracts the minimum Rrs beyond 750 nm from the whole
// spectrum. Clear-water Rrs is near zero in the NIR, so any floor there is
// residual glint the rho model missed.
func applyNIRCorrection(wavelengths, rrs []float64) {
	floor := math.Inf(1)
	for i, w := range wavelengths {
		if w >= 750 && rrs[i] < floor {
			floor = rrs[i]
		}
	}
	if math.IsInf(floor, 1) || floor <= 0 {
		return
	}
	for i := range rrs {
		rrs[i] -= floor
	}
}
