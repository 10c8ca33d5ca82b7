package saber

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/homas01123/trios/pkg/config"
)

// scriptedRunner replays one canned output per invocation, in order
type scriptedRunner struct {
	outputs []string
	exprs   []string
}

func (s *scriptedRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	s.exprs = append(s.exprs, args[len(args)-1])
	if len(s.outputs) == 0 {
		return nil, fmt.Errorf("unexpected invocation %d", len(s.exprs))
	}
	out := s.outputs[0]
	s.outputs = s.outputs[1:]
	return []byte(out), nil
}

func newTestEnvironment(runner commandRunner) *Environment {
	env := NewEnvironment(config.SaberData{}, zap.NewNop().Sugar())
	env.runner = runner
	env.lookPath = func(string) (string, error) { return "/usr/bin/Rscript", nil }
	return env
}

func TestEnsureInstallsMissingPackages(t *testing.T) {
	runner := &scriptedRunner{outputs: []string{
		"BayesianTools\nSABER.fast\n", // initial probe: two missing
		"",                            // install.packages
		"",                            // install_github
		"",                            // post-install probe: all present
	}}
	env := newTestEnvironment(runner)

	require.NoError(t, env.Ensure(context.Background()))
	require.Len(t, runner.exprs, 4)
	require.Contains(t, runner.exprs[1], "install.packages")
	require.Contains(t, runner.exprs[1], "BayesianTools")
	require.Contains(t, runner.exprs[2], "install_github")
}

func TestEnsurePrefersLocalSource(t *testing.T) {
	runner := &scriptedRunner{outputs: []string{
		"SABER.fast\n", // initial probe
		"",             // install_local
		"",             // post-install probe
	}}
	env := NewEnvironment(config.SaberData{LibraryPath: "/src/SABER_fast"}, zap.NewNop().Sugar())
	env.runner = runner
	env.lookPath = func(string) (string, error) { return "/usr/bin/Rscript", nil }

	require.NoError(t, env.Ensure(context.Background()))
	require.Contains(t, runner.exprs[1], "install_local")
	require.Contains(t, runner.exprs[1], "/src/SABER_fast")
}

func TestEnsureIsIdempotent(t *testing.T) {
	runner := &scriptedRunner{outputs: []string{
		"", // probe: nothing missing
	}}
	env := newTestEnvironment(runner)

	require.NoError(t, env.Ensure(context.Background()))
	callsAfterFirst := len(runner.exprs)
	require.Equal(t, 1, callsAfterFirst, "a ready environment needs only the probe")

	// Second call must be a no-op: same ready state, no further R invocations
	require.NoError(t, env.Ensure(context.Background()))
	require.Equal(t, callsAfterFirst, len(runner.exprs))
}

func TestEnsureReportsMissingRuntime(t *testing.T) {
	env := newTestEnvironment(&scriptedRunner{})
	env.lookPath = func(string) (string, error) { return "", errors.New("not found") }

	err := env.Ensure(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrEnvironment)
	require.Contains(t, err.Error(), "install R")
}

func TestEnsureFailsWhenInstallDoesNotStick(t *testing.T) {
	runner := &scriptedRunner{outputs: []string{
		"BayesianTools\n", // initial probe
		"",                // install.packages
		"BayesianTools\n", // post-install probe: still missing
	}}
	env := newTestEnvironment(runner)

	err := env.Ensure(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrEnvironment)
	require.Contains(t, err.Error(), "still missing")
}

func TestProbeListsRequiredPackages(t *testing.T) {
	runner := &scriptedRunner{outputs: []string{"jsonlite\n"}}
	env := newTestEnvironment(runner)

	missing, err := env.Probe(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"jsonlite"}, missing)

	// The probe expression must cover every required package and the
	// inversion package itself
	for _, pkg := range requiredPackages {
		require.Contains(t, runner.exprs[0], pkg)
	}
	require.Contains(t, runner.exprs[0], env.packageName())
	require.True(t, strings.Contains(runner.exprs[0], "requireNamespace"))
}
