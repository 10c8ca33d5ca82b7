package saber

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/homas01123/trios/pkg/config"
)

// ErrEnvironment marks failures to locate or provision the R runtime and its
// packages. These are setup problems, not computation failures.
var ErrEnvironment = errors.New("saber environment not available")

// CRAN packages the bridge needs besides the inversion package itself
var requiredPackages = []string{"jsonlite", "BayesianTools", "remotes"}

const (
	defaultPackageName = "SABER.fast"
	defaultPackageRef  = "homas01123/SABER_fast"
	defaultCRANMirror  = "https://cloud.r-project.org"
)

// Environment locates the R runtime and ensures the dependency packages and
// the inversion package are installed. Ensure is idempotent: once the
// environment is ready, later calls return immediately without touching R.
type Environment struct {
	cfg    config.SaberData
	runner commandRunner
	logger *zap.SugaredLogger

	lookPath func(string) (string, error)

	mu          sync.Mutex
	ready       bool
	rscriptPath string
}

// NewEnvironment creates an Environment from the saber configuration section
func NewEnvironment(cfg config.SaberData, logger *zap.SugaredLogger) *Environment {
	return &Environment{
		cfg:      cfg,
		runner:   execRunner{},
		logger:   logger,
		lookPath: exec.LookPath,
	}
}

// RscriptPath returns the resolved Rscript binary path after Ensure has run
func (e *Environment) RscriptPath() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rscriptPath
}

func (e *Environment) packageName() string {
	if e.cfg.PackageName != "" {
		return e.cfg.PackageName
	}
	return defaultPackageName
}

func (e *Environment) cranMirror() string {
	if e.cfg.CRANMirror != "" {
		return e.cfg.CRANMirror
	}
	return defaultCRANMirror
}

// Ensure verifies the R runtime and installs anything missing. Safe to call
// repeatedly and from multiple goroutines; only the first successful call
// does any work.
func (e *Environment) Ensure(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ready {
		return nil
	}

	if err := e.resolveRscript(); err != nil {
		return err
	}

	missing, err := e.probe(ctx)
	if err != nil {
		return fmt.Errorf("%w: package probe failed: %v", ErrEnvironment, err)
	}

	if len(missing) > 0 {
		e.logger.Infow("installing missing R packages", "packages", missing)
		if err := e.install(ctx, missing); err != nil {
			return fmt.Errorf("%w: package installation failed: %v", ErrEnvironment, err)
		}

		// Re-probe so a failed install surfaces here rather than mid-inversion
		missing, err = e.probe(ctx)
		if err != nil {
			return fmt.Errorf("%w: post-install probe failed: %v", ErrEnvironment, err)
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: packages still missing after install: %s",
				ErrEnvironment, strings.Join(missing, ", "))
		}
	}

	e.ready = true
	e.logger.Info("saber R environment ready")
	return nil
}

// resolveRscript finds the Rscript binary. Callers must hold e.mu.
func (e *Environment) resolveRscript() error {
	rscript := e.cfg.RscriptPath
	if rscript == "" {
		rscript = "Rscript"
	}
	path, err := e.lookPath(rscript)
	if err != nil {
		return fmt.Errorf("%w: %q not found in PATH; install R (r-base) and retry", ErrEnvironment, rscript)
	}
	e.rscriptPath = path
	return nil
}

// Probe resolves the R runtime and reports which required packages are
// missing, without installing anything.
func (e *Environment) Probe(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.resolveRscript(); err != nil {
		return nil, err
	}
	missing, err := e.probe(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: package probe failed: %v", ErrEnvironment, err)
	}
	return missing, nil
}

// probe asks R which of the required packages cannot be loaded. Returns the
// missing package names, one per output line.
func (e *Environment) probe(ctx context.Context) ([]string, error) {
	pkgs := append(append([]string{}, requiredPackages...), e.packageName())

	var quoted []string
	for _, p := range pkgs {
		quoted = append(quoted, fmt.Sprintf("%q", p))
	}
	expr := fmt.Sprintf(
		`for (p in c(%s)) if (!requireNamespace(p, quietly=TRUE)) cat(p, "\n")`,
		strings.Join(quoted, ", "))

	out, err := e.runner.Run(ctx, nil, e.rscriptPath, "--vanilla", "-e", expr)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			missing = append(missing, line)
		}
	}
	return missing, nil
}

// install fetches missing CRAN packages, then the inversion package itself
// from its GitHub ref or a local source directory.
func (e *Environment) install(ctx context.Context, missing []string) error {
	var cran []string
	needSaber := false
	for _, p := range missing {
		if p == e.packageName() {
			needSaber = true
			continue
		}
		cran = append(cran, fmt.Sprintf("%q", p))
	}

	if len(cran) > 0 {
		expr := fmt.Sprintf(`install.packages(c(%s), repos=%q)`,
			strings.Join(cran, ", "), e.cranMirror())
		if _, err := e.runner.Run(ctx, nil, e.rscriptPath, "--vanilla", "-e", expr); err != nil {
			return err
		}
	}

	if needSaber {
		var expr string
		if e.cfg.LibraryPath != "" {
			expr = fmt.Sprintf(`remotes::install_local(%q, upgrade="never")`, e.cfg.LibraryPath)
		} else {
			ref := e.cfg.PackageRef
			if ref == "" {
				ref = defaultPackageRef
			}
			expr = fmt.Sprintf(`remotes::install_github(%q, upgrade="never")`, ref)
		}
		if _, err := e.runner.Run(ctx, nil, e.rscriptPath, "--vanilla", "-e", expr); err != nil {
			return err
		}
	}

	return nil
}
