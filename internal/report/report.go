// Package report renders inversion results into display-ready text and
// declarative plot descriptions. Everything here is a pure function of its
// inputs.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/homas01123/trios/internal/saber"
)

// Units for the canonical retrieval parameters; anything else prints unitless
var paramUnits = map[string]string{
	saber.ParamChl:    "mg/m³",
	saber.ParamAG440:  "m⁻¹",
	saber.ParamBBP550: "m⁻¹",
}

// Descriptive labels for the canonical retrieval parameters
var paramLabels = map[string]string{
	saber.ParamChl:    "Chlorophyll-a",
	saber.ParamAG440:  "CDOM absorption a_g(440)",
	saber.ParamBBP550: "Particulate backscatter bb_p(550)",
}

// Summary renders a human-readable report for one inversion result
func Summary(res *saber.Result, methodLabel string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "SABER inversion — method %s, mode %s\n", methodLabel, res.Mode)
	fmt.Fprintf(&b, "Run %s at %s\n", res.ID, res.Timestamp.Format("2006-01-02 15:04:05 MST"))
	b.WriteString("\n")

	for _, name := range sortedNames(res.Estimates) {
		est := res.Estimates[name]
		label := paramLabels[name]
		if label == "" {
			label = name
		}
		unit := paramUnits[name]
		if unit != "" {
			fmt.Fprintf(&b, "  %-34s %10.4f ± %.4f %s\n", label, est.Value, est.Uncertainty, unit)
		} else {
			fmt.Fprintf(&b, "  %-34s %10.4f ± %.4f\n", label, est.Value, est.Uncertainty)
		}
	}

	if len(res.Fixed) > 0 {
		b.WriteString("\nFixed:\n")
		names := make([]string, 0, len(res.Fixed))
		for name := range res.Fixed {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "  %-34s %10.4f\n", name, res.Fixed[name])
		}
	}

	d := res.Diagnostics
	b.WriteString("\n")
	if d.Converged {
		fmt.Fprintf(&b, "Converged after %d iterations (%d data points", d.Iterations, d.DataPoints)
	} else {
		fmt.Fprintf(&b, "DID NOT CONVERGE after %d iterations (%d data points", d.Iterations, d.DataPoints)
	}
	if d.Residual != 0 {
		fmt.Fprintf(&b, ", residual %.3g", d.Residual)
	}
	b.WriteString(")\n")

	return b.String()
}

// PlotSpec describes a summary chart for a result. It is a declarative
// description only; rendering is left to whatever frontend consumes it.
type PlotSpec struct {
	Title  string       `json:"title"`
	XLabel string       `json:"x_label"`
	YLabel string       `json:"y_label"`
	Series []PlotSeries `json:"series"`
}

// PlotSeries is one bar in the retrieval summary chart
type PlotSeries struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	ErrorBar float64 `json:"error_bar"`
	Unit     string  `json:"unit,omitempty"`
}

// Plot builds a bar-chart description of the retrieved parameters with
// uncertainty error bars.
func Plot(res *saber.Result, methodLabel string) PlotSpec {
	spec := PlotSpec{
		Title:  fmt.Sprintf("SABER retrieval (%s, %s)", methodLabel, res.Mode),
		XLabel: "parameter",
		YLabel: "retrieved value",
	}

	for _, name := range sortedNames(res.Estimates) {
		est := res.Estimates[name]
		spec.Series = append(spec.Series, PlotSeries{
			Name:     name,
			Value:    est.Value,
			ErrorBar: est.Uncertainty,
			Unit:     paramUnits[name],
		})
	}

	return spec
}

func sortedNames(estimates map[string]saber.Estimate) []string {
	names := make([]string, 0, len(estimates))
	for name := range estimates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
