// Package main implements the bundlefix CLI.
//
// bundlefix is a one-shot post-build repair step: it rewrites generated
// page-data chunks whose embedded git.contributors lists accumulated
// duplicate entries across incremental site builds.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"bundlefix/internal/config"
	"bundlefix/internal/pipeline"
	"bundlefix/internal/scanner"
)

const version = "1.1.0"

var (
	// Global flags
	configPath string
	verbose    bool

	// fix flags
	assetsDir string
	keepGoing bool

	// Effective configuration, resolved before any command runs.
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command. Running it with no arguments performs
// the repair, matching how the tool is invoked from build scripts.
var rootCmd = &cobra.Command{
	Use:   "bundlefix",
	Short: "Deduplicate contributor lists embedded in generated page-data chunks",
	Long: `bundlefix repairs a data-quality defect in generated static-site bundles:
contributor records embedded in per-page JS chunks get duplicated across
incremental builds. It finds the affected chunk files, decodes the embedded
JSON payload, removes duplicate contributors, and rewrites each file in
place.

Run it after the site build, from the project directory:

  pnpm docs:build
  bundlefix`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		zcfg := zap.NewProductionConfig()
		if verbose || cfg.Logging.Verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// fixCmd is the explicit form of the default action.
var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Repair duplicated contributor lists in place",
	Long: `Scans the asset tree for chunk files embedding contributor data, removes
duplicate contributor records, and rewrites each affected file in place.
Files whose contributor list has one or zero entries are left byte-identical.

By default the run stops at the first malformed or unreadable file; nothing
is written to a file that fails to decode. Use --keep-going to isolate
per-file failures and finish the batch.`,
	RunE: runFix,
}

// scanCmd lists the classified chunk files without touching them.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List affected chunk files without rewriting anything",
	RunE:  runScan,
}

// versionCmd prints the tool version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the bundlefix version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bundlefix %s\n", version)
	},
}

func init() {
	rootCmd.RunE = runFix
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.DefaultFile+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&assetsDir, "dir", "", "asset directory to process (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&keepGoing, "keep-going", false, "continue past per-file failures and report a summary")

	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(versionCmd)
}

// applyFlagOverrides layers the flags on top of the configuration loaded in
// PersistentPreRunE: file, then environment, then flags.
func applyFlagOverrides() {
	if assetsDir != "" {
		cfg.AssetsDir = assetsDir
	}
	if rootCmd.PersistentFlags().Changed("keep-going") {
		cfg.KeepGoing = keepGoing
	}
}

// runFix executes the full repair pipeline.
func runFix(cmd *cobra.Command, args []string) error {
	applyFlagOverrides()

	stats, err := pipeline.Run(pipeline.Options{
		Root:      cfg.AssetsDir,
		KeepGoing: cfg.KeepGoing,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Processed %d chunk file(s): %d rewritten, %d already clean.\n",
		stats.Processed, stats.Rewritten, stats.Skipped)
	if stats.Failed > 0 {
		return fmt.Errorf("%d file(s) failed and were left unmodified", stats.Failed)
	}
	return nil
}

// runScan performs the classification pass only.
func runScan(cmd *cobra.Command, args []string) error {
	applyFlagOverrides()

	res, err := scanner.Scan(cfg.AssetsDir)
	if err != nil {
		return err
	}

	fmt.Printf("Primary-binding chunks (%d):\n", len(res.Primary))
	for _, p := range res.Primary {
		fmt.Printf("  %s\n", p)
	}
	fmt.Printf("Secondary-binding chunks (%d):\n", len(res.Secondary))
	for _, p := range res.Secondary {
		fmt.Printf("  %s\n", p)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
