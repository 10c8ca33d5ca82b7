package saber

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResultSetGet(t *testing.T) {
	m99 := &Result{ID: "r1", Method: "M99"}
	set := ResultSet{"M99": m99}

	got, err := set.Get("M99")
	require.NoError(t, err)
	require.Same(t, m99, got)

	// A missing method is recoverable: the caller can try another label
	_, err = set.Get("3C")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMethodNotFound))
	require.Contains(t, err.Error(), "3C")

	_, err = set.Get("M99")
	require.NoError(t, err, "set unchanged after a missing lookup")
}

func TestResultSetMethods(t *testing.T) {
	set := ResultSet{
		"M99":  {ID: "r1"},
		"FLAT": {ID: "r2"},
	}
	require.ElementsMatch(t, []string{"M99", "FLAT"}, set.Methods())
}

func TestResultEstimateLookup(t *testing.T) {
	res := &Result{
		ID:        "r1",
		Estimates: map[string]Estimate{ParamChl: {Value: 3.1, Uncertainty: 0.2}},
		Fixed:     map[string]float64{"theta_sun": 20},
	}

	est, err := res.Estimate(ParamChl)
	require.NoError(t, err)
	require.Equal(t, 3.1, est.Value)

	_, err = res.Estimate("theta_sun")
	require.Error(t, err, "fixed parameters have no estimates")
}
