package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/homas01123/trios/internal/saber"
)

func sampleResult() *saber.Result {
	return &saber.Result{
		ID:        "run-42",
		Method:    "M99",
		Mode:      saber.ModeGradient,
		Timestamp: time.Date(2025, 6, 15, 11, 30, 0, 0, time.UTC),
		Estimates: map[string]saber.Estimate{
			saber.ParamChl:    {Value: 3.42, Uncertainty: 0.31},
			saber.ParamAG440:  {Value: 0.48, Uncertainty: 0.05},
			saber.ParamBBP550: {Value: 0.015, Uncertainty: 0.002},
		},
		Fixed: map[string]float64{"theta_sun": 20, "water_type": 2},
		Diagnostics: saber.Diagnostics{
			Converged:  true,
			Iterations: 57,
			DataPoints: 9,
			Residual:   0.00012,
		},
	}
}

func TestSummary(t *testing.T) {
	text := Summary(sampleResult(), "M99")

	require.Contains(t, text, "method M99")
	require.Contains(t, text, "Chlorophyll-a")
	require.Contains(t, text, "CDOM absorption a_g(440)")
	require.Contains(t, text, "Particulate backscatter bb_p(550)")
	require.Contains(t, text, "mg/m³")
	require.Contains(t, text, "±")
	require.Contains(t, text, "Converged after 57 iterations")
	require.Contains(t, text, "9 data points")
	require.Contains(t, text, "theta_sun")
}

func TestSummaryNonConvergence(t *testing.T) {
	res := sampleResult()
	res.Diagnostics.Converged = false

	text := Summary(res, "M99")
	require.Contains(t, text, "DID NOT CONVERGE")
}

func TestSummaryIsDeterministic(t *testing.T) {
	// Map iteration order must not leak into the rendered report
	a := Summary(sampleResult(), "M99")
	for i := 0; i < 10; i++ {
		require.Equal(t, a, Summary(sampleResult(), "M99"))
	}
}

func TestPlot(t *testing.T) {
	spec := Plot(sampleResult(), "FLAT")

	require.Contains(t, spec.Title, "FLAT")
	require.Len(t, spec.Series, 3)

	// Series come out sorted by parameter name
	names := make([]string, len(spec.Series))
	for i, s := range spec.Series {
		names[i] = s.Name
	}
	require.Equal(t, []string{saber.ParamAG440, saber.ParamBBP550, saber.ParamChl}, names)

	for _, s := range spec.Series {
		require.GreaterOrEqual(t, s.ErrorBar, 0.0)
		require.NotEmpty(t, s.Unit)
	}
}

func TestSummaryUnknownParameterFallsBackToName(t *testing.T) {
	res := sampleResult()
	res.Estimates["a_nap_440"] = saber.Estimate{Value: 0.1, Uncertainty: 0.01}

	text := Summary(res, "M99")
	require.Contains(t, text, "a_nap_440")
}
