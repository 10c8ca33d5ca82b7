package saber

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/homas01123/trios/pkg/config"
)

//go:embed bridge.R
var bridgeScript []byte

// RScriptBackend implements Backend by invoking the SABER_fast R package
// through an Rscript subprocess. Requests cross the boundary as JSON on
// stdin; results come back as JSON on stdout.
type RScriptBackend struct {
	cfg    config.SaberData
	env    *Environment
	runner commandRunner
	logger *zap.SugaredLogger

	scriptOnce sync.Once
	scriptPath string
	scriptErr  error
}

// NewRScriptBackend creates a backend bound to the configured R environment
func NewRScriptBackend(cfg config.SaberData, logger *zap.SugaredLogger) *RScriptBackend {
	return &RScriptBackend{
		cfg:    cfg,
		env:    NewEnvironment(cfg, logger),
		runner: execRunner{},
		logger: logger,
	}
}

// Environment exposes the backend's environment for provisioning tools
func (b *RScriptBackend) Environment() *Environment {
	return b.env
}

// bridgeRequest is the JSON argument shape the R bridge script expects.
// Wavelengths and Rrs cross in acquisition order, one value per wavelength.
type bridgeRequest struct {
	Package     string             `json:"package"`
	Mode        string             `json:"mode"`
	Method      string             `json:"method,omitempty"`
	Wavelengths []float64          `json:"wavelengths"`
	Rrs         []float64          `json:"rrs"`
	SunZenith   float64            `json:"theta_sun"`
	ViewZenith  float64            `json:"theta_view"`
	RelAzimuth  float64            `json:"delta_phi"`
	WaterType   int                `json:"water_type"`
	Free        []Parameter        `json:"free"`
	Fixed       map[string]float64 `json:"fixed"`
	MCMC        *MCMCOptions       `json:"mcmc,omitempty"`
}

type bridgeEstimate struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	StdError float64 `json:"se"`
}

type bridgeResponse struct {
	OK          bool                 `json:"ok"`
	Error       string               `json:"error,omitempty"`
	Estimates   []bridgeEstimate     `json:"estimates"`
	Samples     map[string][]float64 `json:"samples,omitempty"`
	Diagnostics struct {
		Converged  bool    `json:"converged"`
		Iterations int     `json:"iterations"`
		DataPoints int     `json:"n_obs"`
		Residual   float64 `json:"residual"`
	} `json:"diagnostics"`
}

// Invert runs one inversion through the R bridge and blocks until the
// external computation returns.
func (b *RScriptBackend) Invert(ctx context.Context, req *Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := b.env.Ensure(ctx); err != nil {
		return nil, err
	}

	scriptPath, err := b.ensureScript()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnvironment, err)
	}

	if b.cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(b.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	fixed := req.Params.Fixed
	if fixed == nil {
		fixed = map[string]float64{}
	}
	breq := bridgeRequest{
		Package:     b.env.packageName(),
		Mode:        string(req.Mode),
		Method:      req.Sample.Method,
		Wavelengths: req.Sample.Wavelengths,
		Rrs:         req.Sample.Rrs,
		SunZenith:   req.Sample.SunZenith,
		ViewZenith:  req.Sample.ViewZenith,
		RelAzimuth:  req.Sample.RelAzimuth,
		WaterType:   req.Sample.WaterType,
		Free:        req.Params.Free,
		Fixed:       fixed,
	}
	if req.Mode == ModeMCMC {
		opts := req.MCMC
		breq.MCMC = &opts
	}

	payload, err := json.Marshal(&breq)
	if err != nil {
		return nil, fmt.Errorf("marshaling bridge request: %w", err)
	}

	b.logger.Debugw("invoking saber bridge",
		"method", req.Sample.Method, "mode", req.Mode, "wavelengths", len(breq.Wavelengths))

	out, err := b.runner.Run(ctx, payload, b.env.RscriptPath(), "--vanilla", scriptPath)
	if err != nil {
		return nil, fmt.Errorf("saber bridge invocation failed: %w", err)
	}

	var resp bridgeResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling bridge response: %w", err)
	}

	// External computation failures are surfaced with the underlying
	// message; this layer has no insight into the R package's failure modes.
	if !resp.OK {
		return nil, fmt.Errorf("saber inversion failed: %s", resp.Error)
	}

	return b.buildResult(req, &resp)
}

// buildResult converts the bridge reply into a Result, checking that the
// external call honored the parameter specification: one estimate per free
// parameter, none for fixed parameters.
func (b *RScriptBackend) buildResult(req *Request, resp *bridgeResponse) (*Result, error) {
	free := make(map[string]bool, len(req.Params.Free))
	for _, p := range req.Params.Free {
		free[p.Name] = true
	}

	estimates := make(map[string]Estimate, len(free))
	for _, est := range resp.Estimates {
		if !free[est.Name] {
			return nil, fmt.Errorf("bridge returned estimate for non-free parameter %q", est.Name)
		}
		estimates[est.Name] = Estimate{Value: est.Value, Uncertainty: est.StdError}
	}

	// MCMC mode reports posterior sample chains; summarize them here so the
	// spread reflects the full chain rather than whatever the bridge chose.
	if req.Mode == ModeMCMC {
		for name, samples := range resp.Samples {
			if !free[name] {
				return nil, fmt.Errorf("bridge returned samples for non-free parameter %q", name)
			}
			if len(samples) == 0 {
				continue
			}
			mean := stat.Mean(samples, nil)
			sd := stat.StdDev(samples, nil)
			estimates[name] = Estimate{Value: mean, Uncertainty: sd}
		}
	}

	if len(estimates) != len(req.Params.Free) {
		return nil, fmt.Errorf("bridge returned %d estimates for %d free parameters",
			len(estimates), len(req.Params.Free))
	}

	return &Result{
		ID:        uuid.New().String(),
		Method:    req.Sample.Method,
		Mode:      req.Mode,
		Timestamp: time.Now().UTC(),
		Estimates: estimates,
		Fixed:     req.Params.Fixed,
		Diagnostics: Diagnostics{
			Converged:  resp.Diagnostics.Converged,
			Iterations: resp.Diagnostics.Iterations,
			DataPoints: resp.Diagnostics.DataPoints,
			Residual:   resp.Diagnostics.Residual,
		},
	}, nil
}

// ensureScript writes the embedded bridge script to the work directory once
func (b *RScriptBackend) ensureScript() (string, error) {
	b.scriptOnce.Do(func() {
		dir := b.cfg.WorkDir
		if dir == "" {
			dir, b.scriptErr = os.MkdirTemp("", "saber-bridge")
			if b.scriptErr != nil {
				return
			}
		} else if b.scriptErr = os.MkdirAll(dir, 0o755); b.scriptErr != nil {
			return
		}

		path := filepath.Join(dir, "bridge.R")
		if b.scriptErr = os.WriteFile(path, bridgeScript, 0o644); b.scriptErr != nil {
			return
		}
		b.scriptPath = path
	})
	return b.scriptPath, b.scriptErr
}
