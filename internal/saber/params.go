// Package saber integrates the pipeline with the external SABER_fast R
// package for bio-optical parameter inversion. The inversion mathematics
// lives entirely in the R package; this package translates spectral samples
// into its call convention over an Rscript subprocess bridge and translates
// the returned structures back into native records.
package saber

import "fmt"

// Canonical inversion parameter names understood by the bridge
const (
	ParamChl    = "chl"      // chlorophyll concentration, mg/m3
	ParamAG440  = "a_g_440"  // CDOM absorption at 440 nm, m-1
	ParamBBP550 = "bb_p_550" // particulate backscatter at 550 nm, m-1
)

// Parameter is one free parameter to invert, with its initial guess and bounds
type Parameter struct {
	Name string  `json:"name"`
	Init float64 `json:"init"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// ParameterSpec names the free parameters to invert and the values to hold
// constant. Parameters not listed as free are fixed at the supplied values.
type ParameterSpec struct {
	Free  []Parameter        `json:"free"`
	Fixed map[string]float64 `json:"fixed,omitempty"`
}

// DefaultSpec returns the standard three-parameter retrieval: chlorophyll,
// CDOM absorption at 440 nm, and particulate backscatter at 550 nm.
func DefaultSpec() ParameterSpec {
	return ParameterSpec{
		Free: []Parameter{
			{Name: ParamChl, Init: 2.0, Min: 0.1, Max: 50.0},
			{Name: ParamAG440, Init: 0.5, Min: 0.01, Max: 5.0},
			{Name: ParamBBP550, Init: 0.02, Min: 0.001, Max: 0.1},
		},
	}
}

// Validate checks bounds ordering and that no parameter is both free and fixed
func (p *ParameterSpec) Validate() error {
	if len(p.Free) == 0 {
		return fmt.Errorf("parameter spec has no free parameters")
	}
	seen := make(map[string]bool, len(p.Free))
	for _, param := range p.Free {
		if param.Name == "" {
			return fmt.Errorf("free parameter with empty name")
		}
		if seen[param.Name] {
			return fmt.Errorf("free parameter %q listed twice", param.Name)
		}
		seen[param.Name] = true
		if param.Min > param.Max {
			return fmt.Errorf("parameter %q: lower bound %g exceeds upper bound %g",
				param.Name, param.Min, param.Max)
		}
		if param.Init < param.Min || param.Init > param.Max {
			return fmt.Errorf("parameter %q: initial value %g outside bounds [%g, %g]",
				param.Name, param.Init, param.Min, param.Max)
		}
	}
	for name := range p.Fixed {
		if seen[name] {
			return fmt.Errorf("parameter %q is both free and fixed", name)
		}
	}
	return nil
}
