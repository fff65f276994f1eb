package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/datatidy-cli/internal/config"
	"github.com/KaramelBytes/datatidy-cli/internal/logger"
	"github.com/KaramelBytes/datatidy-cli/internal/pipeline"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	verbose bool

	// Loaded configuration
	cfg *cfgpkg.Global
	// Diagnostic logger built from config and flags
	appLog logger.Logger = logger.NewNopLogger()
)

var rootCmd = &cobra.Command{
	Use:   "datatidy",
	Short: "DataTidy CLI: clean CSV and XLSX datasets from flags or plain-English instructions",
	Long: `DataTidy cleans tabular data files. Describe what you want ("fix column names and fill
missing with median") or use explicit flags; the cleaned table is written as csv, tsv, xlsx,
sqlite or json together with a log of every transformation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorLine(err))
		os.Exit(1)
	}
}

// errorLine renders a command error, naming the failed step for load and export failures.
func errorLine(err error) string {
	switch pipeline.KindOf(err) {
	case pipeline.KindLoad:
		return "✗ Load error: " + err.Error()
	case pipeline.KindExport:
		return "✗ Export error: " + err.Error()
	default:
		return "✗ Error: " + err.Error()
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.datatidy/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log each cleaning step")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so commands still run
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c

	level := logger.ParseLevel(cfg.LogLevel)
	if verbose {
		level = logger.InfoLevel
	}
	if debug {
		level = logger.DebugLevel
	}
	lc := logger.DefaultConfig()
	lc.Level = level
	lc.JSON = cfg.LogJSON
	lc.Output = rootCmd.ErrOrStderr()
	lc.AddSource = debug
	appLog = logger.NewLogger(lc)
}

// currentConfig returns the loaded configuration, or defaults when loading was skipped.
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Default()
	}
	return cfg
}
