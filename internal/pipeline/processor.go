// Package pipeline turns radiometry scans into stored retrievals: Rrs
// derivation per AWR method, then bio-optical inversion through the saber
// backend. One synchronous call chain per scan.
package pipeline

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/homas01123/trios/internal/awr"
	"github.com/homas01123/trios/internal/saber"
	"github.com/homas01123/trios/internal/types"
	"github.com/homas01123/trios/pkg/config"
	"github.com/homas01123/trios/pkg/sungeom"
)

// Processor consumes scans and emits retrievals
type Processor struct {
	cfg     config.ProcessingData
	backend saber.Backend
	dist    chan<- types.Retrieval
	logger  *zap.SugaredLogger
}

// New creates a Processor writing retrievals to the storage distributor
func New(cfg config.ProcessingData, backend saber.Backend, dist chan<- types.Retrieval, logger *zap.SugaredLogger) *Processor {
	return &Processor{
		cfg:     cfg,
		backend: backend,
		dist:    dist,
		logger:  logger,
	}
}

func (p *Processor) mode() saber.Mode {
	if p.cfg.InversionMode == string(saber.ModeMCMC) {
		return saber.ModeMCMC
	}
	return saber.ModeGradient
}

func (p *Processor) awrOptions() awr.Options {
	opts := awr.DefaultOptions()
	if len(p.cfg.Methods) > 0 {
		opts.Methods = p.cfg.Methods
	}
	opts.GridMin = p.cfg.GridMin
	opts.GridMax = p.cfg.GridMax
	opts.GridStep = p.cfg.GridStep
	opts.NIRCorrection = p.cfg.NIRCorrection
	return opts
}

// Start launches the scan-processing goroutine
func (p *Processor) Start(ctx context.Context, wg *sync.WaitGroup, scans <-chan types.RadiometryScan) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.logger.Info("starting retrieval processor...")
		for {
			select {
			case scan := <-scans:
				p.processScan(ctx, &scan)
			case <-ctx.Done():
				p.logger.Info("cancellation request received. Cancelling retrieval processor.")
				return
			}
		}
	}()
}

// ProcessScan runs one scan through the full chain and returns the
// per-method result set.
func (p *Processor) ProcessScan(ctx context.Context, scan *types.RadiometryScan) (saber.ResultSet, error) {
	sunZenith := sungeom.SunZenith(scan.Timestamp, scan.Latitude, scan.Longitude)

	samples, err := awr.ComputeAll(scan, sunZenith, p.awrOptions())
	if err != nil {
		return nil, err
	}

	spec := saber.DefaultSpec()
	spec.Fixed = map[string]float64{
		"water_type": float64(scan.WaterType),
		"theta_sun":  sunZenith,
		"theta_view": scan.ViewZenith,
	}

	set := saber.ResultSet{}
	for method, sample := range samples {
		req := &saber.Request{
			Sample: sample,
			Mode:   p.mode(),
			Params: spec,
			MCMC: saber.MCMCOptions{
				Iterations: p.cfg.MCMC.Iterations,
				Burn:       p.cfg.MCMC.Burn,
				Chains:     p.cfg.MCMC.Chains,
			},
		}

		res, err := p.backend.Invert(ctx, req)
		if err != nil {
			// Environment problems will hit every method; bail out so the
			// error surfaces once. Per-method computation failures are
			// logged and the method skipped.
			if errors.Is(err, saber.ErrEnvironment) {
				return nil, err
			}
			p.logger.Errorf("inversion failed for scan %s method %s: %v", scan.ID, method, err)
			continue
		}
		set[method] = res
	}

	return set, nil
}

func (p *Processor) processScan(ctx context.Context, scan *types.RadiometryScan) {
	set, err := p.ProcessScan(ctx, scan)
	if err != nil {
		p.logger.Errorf("could not process scan %s: %v", scan.ID, err)
		return
	}

	for method, res := range set {
		retrieval := buildRetrieval(scan, method, res)
		select {
		case p.dist <- retrieval:
		case <-ctx.Done():
			return
		}
	}
}

// buildRetrieval flattens an inversion result into a storage row
func buildRetrieval(scan *types.RadiometryScan, method string, res *saber.Result) types.Retrieval {
	r := types.Retrieval{
		Timestamp:      scan.Timestamp,
		ScanID:         scan.ID,
		InstrumentName: scan.InstrumentName,
		Method:         method,
		Mode:           string(res.Mode),
		Converged:      res.Diagnostics.Converged,
		Iterations:     res.Diagnostics.Iterations,
		DataPoints:     res.Diagnostics.DataPoints,
		Residual:       res.Diagnostics.Residual,
	}

	if est, ok := res.Estimates[saber.ParamChl]; ok {
		r.Chl = est.Value
		r.ChlUncertainty = est.Uncertainty
	}
	if est, ok := res.Estimates[saber.ParamAG440]; ok {
		r.AG440 = est.Value
		r.AG440Uncertainty = est.Uncertainty
	}
	if est, ok := res.Estimates[saber.ParamBBP550]; ok {
		r.BBP550 = est.Value
		r.BBPUncertainty = est.Uncertainty
	}

	return r
}
