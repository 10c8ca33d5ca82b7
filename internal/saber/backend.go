package saber

import (
	"context"
	"fmt"

	"github.com/homas01123/trios/internal/types"
)

// Mode selects between a point-estimate and a distributional inversion
type Mode string

const (
	// ModeGradient runs the R package's gradient optimizer and returns a
	// single best-fit parameter set with standard errors.
	ModeGradient Mode = "gradient"
	// ModeMCMC runs the R package's MCMC sampler and returns posterior
	// means with posterior spreads.
	ModeMCMC Mode = "mcmc"
)

// MCMCOptions are sampler settings passed through to the external package
type MCMCOptions struct {
	Iterations int `json:"iterations,omitempty"`
	Burn       int `json:"burn,omitempty"`
	Chains     int `json:"chains,omitempty"`
}

// Request is one inversion call: a spectral sample, the mode to run, and the
// parameter specification.
type Request struct {
	Sample types.SpectralSample
	Mode   Mode
	Params ParameterSpec
	MCMC   MCMCOptions
}

// Validate checks the request before it crosses the language boundary
func (r *Request) Validate() error {
	if err := r.Sample.Validate(); err != nil {
		return err
	}
	switch r.Mode {
	case ModeGradient, ModeMCMC:
	default:
		return fmt.Errorf("unknown inversion mode %q", r.Mode)
	}
	return r.Params.Validate()
}

// Backend is the capability interface over the external inversion package.
// Implementations block until the external computation returns; the binding
// can be swapped or mocked in tests without touching caller code.
type Backend interface {
	Invert(ctx context.Context, req *Request) (*Result, error)
}
