// saber-invert runs a single bio-optical inversion for a spectral sample
// stored as JSON and prints the formatted retrieval report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/homas01123/trios/internal/log"
	"github.com/homas01123/trios/internal/report"
	"github.com/homas01123/trios/internal/saber"
	"github.com/homas01123/trios/internal/types"
	"github.com/homas01123/trios/pkg/config"
)

func main() {
	sampleFile := flag.String("sample", "", "Path to a spectral sample JSON file (required)")
	paramsFile := flag.String("params", "", "Path to a parameter spec JSON file (default: standard chl/a_g_440/bb_p_550 retrieval)")
	mode := flag.String("mode", "gradient", "Inversion mode: 'gradient' or 'mcmc'")
	method := flag.String("method", "", "AWR method label to attach to the sample")
	rscript := flag.String("rscript", "", "Path to the Rscript binary (default: found in PATH)")
	iterations := flag.Int("iterations", 10000, "MCMC iterations (mcmc mode only)")
	plotJSON := flag.Bool("plot", false, "Also print the summary plot description as JSON")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if *sampleFile == "" {
		fmt.Fprintln(os.Stderr, "no sample file given; run with -h for help")
		os.Exit(1)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	sample, err := readSample(*sampleFile)
	if err != nil {
		log.Fatalf("could not read sample: %v", err)
	}
	if *method != "" {
		sample.Method = *method
	}

	params := saber.DefaultSpec()
	if *paramsFile != "" {
		data, err := os.ReadFile(*paramsFile)
		if err != nil {
			log.Fatalf("could not read parameter spec: %v", err)
		}
		if err := json.Unmarshal(data, &params); err != nil {
			log.Fatalf("could not parse parameter spec: %v", err)
		}
	}

	backend := saber.NewRScriptBackend(config.SaberData{RscriptPath: *rscript}, log.GetSugaredLogger())

	req := &saber.Request{
		Sample: *sample,
		Mode:   saber.Mode(*mode),
		Params: params,
		MCMC:   saber.MCMCOptions{Iterations: *iterations},
	}

	result, err := backend.Invert(context.Background(), req)
	if err != nil {
		log.Fatalf("inversion failed: %v", err)
	}

	label := sample.Method
	if label == "" {
		label = "unspecified"
	}
	fmt.Print(report.Summary(result, label))

	if *plotJSON {
		out, err := json.MarshalIndent(report.Plot(result, label), "", "  ")
		if err != nil {
			log.Fatalf("could not encode plot spec: %v", err)
		}
		fmt.Println(string(out))
	}
}

func readSample(path string) (*types.SpectralSample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sample types.SpectralSample
	if err := json.Unmarshal(data, &sample); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := sample.Validate(); err != nil {
		return nil, err
	}
	return &sample, nil
}
