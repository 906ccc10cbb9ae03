// Package cmd implements the familiar-registry CLI: thin wrappers over
// internal/ingest and internal/graph. Per spec.md §1 the CLI's own
// transport/UX logic is out of core scope — these commands exist only to
// exercise the engine end-to-end, following the teacher's cmd/build.go /
// cmd/mount.go cobra idiom (package-level flag vars, RunE closures,
// rootCmd.AddCommand in init).
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/agentic-research/familiar-registry/api"
	"github.com/agentic-research/familiar-registry/internal/ingest"
	"github.com/agentic-research/familiar-registry/internal/source"
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// cmdOut is where subcommands write result output (as opposed to
// diagnostics, which always go to stderr). Swappable in tests.
var cmdOut io.Writer = os.Stdout

var (
	lockPath     string
	depth        int
	strict       bool
	manifestRoot string
)

var rootCmd = &cobra.Command{
	Use:     "familiar-registry",
	Short:   "Schema Dependency Graph Engine for x-familiar-* JSON Schema bundles",
	Version: fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date),
}

func init() {
	rootCmd.PersistentFlags().StringVar(&lockPath, "lock", "", "path to the bundle's lock.toml, relative to the bundle dir")
	rootCmd.PersistentFlags().IntVar(&depth, "depth", 0, "max properties-traversal depth for reference extraction (0 = unlimited)")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "fail the build on any Error-severity diagnostic")
	rootCmd.PersistentFlags().StringVar(&manifestRoot, "manifest-root", "", "bundle-relative root to scan for *.artifacts.json manifests")
}

// Execute runs the root command, printing any error to stderr and setting
// a non-zero exit code (spec.md §7 "exit code per severity").
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildEngine loads and constructs the full pipeline for bundleDir,
// printing every diagnostic grouped by severity before returning (spec.md
// §7 "User-visible behavior").
func buildEngine(bundleDir string) (*ingest.Engine, error) {
	bundle, diags, err := source.FromDirectory(bundleDir)
	if err != nil {
		return nil, fmt.Errorf("load bundle %s: %w", bundleDir, err)
	}
	printDiagnostics(diags)

	engine, buildDiags, err := ingest.Build(rootCmd.Context(), bundle, lockPath, ingest.BuildOptions{
		Depth: depth, Strict: strict, ManifestRoot: manifestRoot,
	})
	printDiagnostics(buildDiags)
	if err != nil {
		return nil, err
	}
	return engine, nil
}

// printDiagnostics prints warnings then errors, matching the teacher's
// plain fmt.Printf progress-reporting style in cmd/build.go.
func printDiagnostics(diags api.Diagnostics) {
	for _, d := range diags {
		if d.Severity == api.SeverityWarning {
			fmt.Fprintln(os.Stderr, d.String())
		}
	}
	for _, d := range diags {
		if d.Severity == api.SeverityError {
			fmt.Fprintln(os.Stderr, d.String())
		}
	}
}
