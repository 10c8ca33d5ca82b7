package saber

import (
	"errors"
	"fmt"
	"time"
)

// ErrMethodNotFound is returned when a result set does not contain the
// requested AWR method. Callers may recover by picking another method.
var ErrMethodNotFound = errors.New("method not found in result set")

// Estimate is the retrieved value of one free parameter
type Estimate struct {
	Value       float64 `json:"value"`
	Uncertainty float64 `json:"uncertainty"` // standard error or posterior spread
}

// Diagnostics carries the convergence metadata returned by the external optimizer
type Diagnostics struct {
	Converged  bool    `json:"converged"`
	Iterations int     `json:"iterations"`
	DataPoints int     `json:"data_points"`
	Residual   float64 `json:"residual,omitempty"`
	Message    string  `json:"message,omitempty"`
}

// Result is the outcome of a single inversion call
type Result struct {
	ID          string              `json:"id"`
	Method      string              `json:"method"`
	Mode        Mode                `json:"mode"`
	Timestamp   time.Time           `json:"timestamp"`
	Estimates   map[string]Estimate `json:"estimates"` // keyed by free parameter name
	Fixed       map[string]float64  `json:"fixed,omitempty"`
	Diagnostics Diagnostics         `json:"diagnostics"`
}

// Estimate returns the named estimate, or an error when the parameter was
// fixed or unknown to this retrieval.
func (r *Result) Estimate(name string) (Estimate, error) {
	est, ok := r.Estimates[name]
	if !ok {
		return Estimate{}, fmt.Errorf("no estimate for parameter %q in result %s", name, r.ID)
	}
	return est, nil
}

// ResultSet holds one inversion result per AWR method label
type ResultSet map[string]*Result

// Get returns the result for a method label. A missing method yields
// ErrMethodNotFound so the caller can fall back to another method.
func (rs ResultSet) Get(method string) (*Result, error) {
	res, ok := rs[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMethodNotFound, method)
	}
	return res, nil
}

// Methods returns the method labels present in the set
func (rs ResultSet) Methods() []string {
	methods := make([]string, 0, len(rs))
	for m := range rs {
		methods = append(methods, m)
	}
	return methods
}
