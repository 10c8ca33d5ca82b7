package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/homas01123/trios/internal/awr"
	"github.com/homas01123/trios/internal/saber"
	"github.com/homas01123/trios/internal/types"
	"github.com/homas01123/trios/pkg/config"
)

// fakeBackend records requests and answers from a per-method script
type fakeBackend struct {
	mu       sync.Mutex
	requests []*saber.Request
	fail     map[string]error // keyed by sample method; nil entry means succeed
}

func (f *fakeBackend) Invert(_ context.Context, req *saber.Request) (*saber.Result, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if err := f.fail[req.Sample.Method]; err != nil {
		return nil, err
	}
	return &saber.Result{
		ID:        "fake-" + req.Sample.Method,
		Method:    req.Sample.Method,
		Mode:      req.Mode,
		Timestamp: req.Sample.Timestamp,
		Estimates: map[string]saber.Estimate{
			saber.ParamChl:    {Value: 2.5, Uncertainty: 0.2},
			saber.ParamAG440:  {Value: 0.4, Uncertainty: 0.04},
			saber.ParamBBP550: {Value: 0.02, Uncertainty: 0.003},
		},
		Fixed: req.Params.Fixed,
		Diagnostics: saber.Diagnostics{
			Converged:  true,
			Iterations: 40,
			DataPoints: len(req.Sample.Wavelengths),
			Residual:   0.001,
		},
	}, nil
}

func testScan() *types.RadiometryScan {
	n := 9
	scan := &types.RadiometryScan{
		ID:             "scan-1",
		InstrumentName: "pier-ramses",
		Timestamp:      time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		Wavelengths:    make([]float64, n),
		Lt:             make([]float64, n),
		Lsky:           make([]float64, n),
		Ed:             make([]float64, n),
		Latitude:       54.3,
		Longitude:      10.1,
		ViewZenith:     40,
		RelAzimuth:     135,
		WindSpeed:      3,
		WaterType:      2,
	}
	for i := 0; i < n; i++ {
		scan.Wavelengths[i] = 400 + 50*float64(i)
		scan.Lt[i] = 0.02
		scan.Lsky[i] = 0.05
		scan.Ed[i] = 1.2
	}
	return scan
}

func testConfig() config.ProcessingData {
	return config.ProcessingData{
		Methods:       []string{awr.MethodM99, awr.MethodFlat},
		InversionMode: "gradient",
	}
}

func newTestProcessor(cfg config.ProcessingData, backend saber.Backend, dist chan<- types.Retrieval) *Processor {
	return New(cfg, backend, dist, zap.NewNop().Sugar())
}

func TestProcessScanResultPerMethod(t *testing.T) {
	backend := &fakeBackend{}
	p := newTestProcessor(testConfig(), backend, nil)

	set, err := p.ProcessScan(context.Background(), testScan())
	require.NoError(t, err)
	require.Len(t, set, 2)

	for _, method := range []string{awr.MethodM99, awr.MethodFlat} {
		res, err := set.Get(method)
		require.NoError(t, err)
		require.Equal(t, method, res.Method)
	}

	require.Len(t, backend.requests, 2)
	for _, req := range backend.requests {
		require.Equal(t, saber.ModeGradient, req.Mode)
		require.Len(t, req.Sample.Wavelengths, 9)
		require.Equal(t, 2.0, req.Params.Fixed["water_type"])
		require.Equal(t, 40.0, req.Params.Fixed["theta_view"])
		require.Greater(t, req.Params.Fixed["theta_sun"], 0.0)
		require.Less(t, req.Params.Fixed["theta_sun"], 90.0)
	}
}

func TestProcessScanSkipsFailedMethod(t *testing.T) {
	backend := &fakeBackend{
		fail: map[string]error{
			awr.MethodFlat: errors.New("saber inversion failed: singular Hessian"),
		},
	}
	p := newTestProcessor(testConfig(), backend, nil)

	set, err := p.ProcessScan(context.Background(), testScan())
	require.NoError(t, err)
	require.Len(t, set, 1)

	_, err = set.Get(awr.MethodM99)
	require.NoError(t, err)

	_, err = set.Get(awr.MethodFlat)
	require.ErrorIs(t, err, saber.ErrMethodNotFound)
}

func TestProcessScanEnvironmentErrorAborts(t *testing.T) {
	envErr := saber.ErrEnvironment
	backend := &fakeBackend{
		fail: map[string]error{
			awr.MethodM99:  envErr,
			awr.MethodFlat: envErr,
		},
	}
	p := newTestProcessor(testConfig(), backend, nil)

	set, err := p.ProcessScan(context.Background(), testScan())
	require.ErrorIs(t, err, saber.ErrEnvironment)
	require.Nil(t, set)

	// First failure aborts the whole scan; no further methods attempted
	require.Len(t, backend.requests, 1)
}

func TestProcessScanInvalidScan(t *testing.T) {
	backend := &fakeBackend{}
	p := newTestProcessor(testConfig(), backend, nil)

	scan := testScan()
	scan.Ed = scan.Ed[:3]

	_, err := p.ProcessScan(context.Background(), scan)
	require.Error(t, err)
	require.Empty(t, backend.requests)
}

func TestProcessScanMCMCMode(t *testing.T) {
	cfg := testConfig()
	cfg.InversionMode = string(saber.ModeMCMC)
	cfg.MCMC = config.MCMCData{Iterations: 5000, Burn: 1000, Chains: 3}
	backend := &fakeBackend{}
	p := newTestProcessor(cfg, backend, nil)

	_, err := p.ProcessScan(context.Background(), testScan())
	require.NoError(t, err)

	for _, req := range backend.requests {
		require.Equal(t, saber.ModeMCMC, req.Mode)
		require.Equal(t, 5000, req.MCMC.Iterations)
		require.Equal(t, 1000, req.MCMC.Burn)
		require.Equal(t, 3, req.MCMC.Chains)
	}
}

func TestStartEmitsRetrievals(t *testing.T) {
	backend := &fakeBackend{}
	dist := make(chan types.Retrieval, 4)
	p := newTestProcessor(testConfig(), backend, dist)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	scans := make(chan types.RadiometryScan, 1)
	p.Start(ctx, &wg, scans)

	scan := testScan()
	scans <- *scan

	methods := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case r := <-dist:
			methods[r.Method] = true
			require.Equal(t, scan.ID, r.ScanID)
			require.Equal(t, scan.InstrumentName, r.InstrumentName)
			require.Equal(t, 2.5, r.Chl)
			require.Equal(t, 0.2, r.ChlUncertainty)
			require.Equal(t, 0.4, r.AG440)
			require.Equal(t, 0.02, r.BBP550)
			require.True(t, r.Converged)
			require.Equal(t, 9, r.DataPoints)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for retrievals")
		}
	}
	require.True(t, methods[awr.MethodM99])
	require.True(t, methods[awr.MethodFlat])

	cancel()
	wg.Wait()
}
