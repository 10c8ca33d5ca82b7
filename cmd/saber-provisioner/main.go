// saber-provisioner sets up the R environment the inversion bridge needs:
// the R runtime, its CRAN dependency packages, and the SABER_fast package
// itself. Provisioning is idempotent; running init twice changes nothing
// the second time.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/homas01123/trios/internal/log"
	"github.com/homas01123/trios/internal/saber"
	"github.com/homas01123/trios/pkg/config"
)

func main() {
	initCmd := flag.NewFlagSet("init", flag.ExitOnError)
	statusCmd := flag.NewFlagSet("status", flag.ExitOnError)

	// Init command flags
	initRscript := initCmd.String("rscript", "", "Path to the Rscript binary (default: found in PATH)")
	initPackageRef := initCmd.String("package-ref", "", "GitHub ref to install SABER_fast from (owner/repo)")
	initLibraryPath := initCmd.String("library-path", "", "Local SABER_fast source directory to install from instead of GitHub")
	initMirror := initCmd.String("cran-mirror", "", "CRAN mirror URL")
	initDebug := initCmd.Bool("debug", false, "Turn on debugging output")

	// Status command flags
	statusRscript := statusCmd.String("rscript", "", "Path to the Rscript binary (default: found in PATH)")
	statusDebug := statusCmd.Bool("debug", false, "Turn on debugging output")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		initCmd.Parse(os.Args[2:])
		mustInitLog(*initDebug)
		cfg := config.SaberData{
			RscriptPath: *initRscript,
			PackageRef:  *initPackageRef,
			LibraryPath: *initLibraryPath,
			CRANMirror:  *initMirror,
		}
		runInit(cfg)
	case "status":
		statusCmd.Parse(os.Args[2:])
		mustInitLog(*statusDebug)
		runStatus(config.SaberData{RscriptPath: *statusRscript})
	default:
		printUsage()
		os.Exit(1)
	}
}

func mustInitLog(debug bool) {
	if err := log.Init(debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
}

func runInit(cfg config.SaberData) {
	fmt.Println("🔍 Provisioning SABER R environment")

	env := saber.NewEnvironment(cfg, log.GetSugaredLogger())
	if err := env.Ensure(context.Background()); err != nil {
		fmt.Printf("❌ Provisioning failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ R runtime found: %s\n", env.RscriptPath())
	fmt.Println("✅ Dependency packages installed")
	fmt.Println("✅ SABER_fast installed")
	fmt.Println()
	fmt.Println("Environment ready. Run again any time; provisioning is idempotent.")
}

func runStatus(cfg config.SaberData) {
	env := saber.NewEnvironment(cfg, log.GetSugaredLogger())

	missing, err := env.Probe(context.Background())
	if err != nil {
		fmt.Printf("❌ Environment check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ R runtime found: %s\n", env.RscriptPath())
	if len(missing) == 0 {
		fmt.Println("✅ All required R packages installed")
		return
	}
	fmt.Println("❌ Missing R packages:")
	for _, pkg := range missing {
		fmt.Printf("   • %s\n", pkg)
	}
	fmt.Println()
	fmt.Println("Run 'saber-provisioner init' to install them.")
	os.Exit(1)
}

func printUsage() {
	fmt.Println("Usage: saber-provisioner <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init     Install the R packages the inversion bridge needs")
	fmt.Println("  status   Report which required R packages are installed")
	fmt.Println()
	fmt.Println("Run 'saber-provisioner <command> -h' for command flags.")
}
