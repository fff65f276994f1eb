package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datatidy-cli/internal/clean"
	"github.com/KaramelBytes/datatidy-cli/internal/dataio"
	"github.com/KaramelBytes/datatidy-cli/internal/report"
)

var (
	prOutputPath string
	prSampleRows int
	prTopValues  int
	prZScore     float64
	prDelimiter  string
	prSheetName  string
	prSheetIndex int
)

var profileCmd = &cobra.Command{
	Use:   "profile <file>",
	Short: "Profile a CSV/TSV/XLSX file without changing it",
	Long: `Print a Markdown report of what a cleaning run would find: schema, column name problems,
missing data, outlier candidates by z-score and IQR, and suggested type conversions.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c := currentConfig()
		opt := dataio.ReadOptions{Delimiter: c.DelimiterRune(), SheetName: prSheetName, SheetIndex: prSheetIndex}
		if cmd.Flags().Changed("delimiter") {
			d, err := parseDelimiter(prDelimiter)
			if err != nil {
				return err
			}
			opt.Delimiter = d
		}
		threshold := c.ZScoreThreshold
		if cmd.Flags().Changed("zscore-threshold") && prZScore > 0 {
			threshold = prZScore
		}

		t, err := dataio.Source{Fs: osFs, Path: path, Options: opt}.Load(cmd.Context())
		if err != nil {
			return err
		}
		cleaner := clean.New(appLog.With("file", path), clean.WithZScoreThreshold(threshold))
		rep := report.Build(filepath.Base(path), t, cleaner, report.Options{SampleRows: prSampleRows, TopValues: prTopValues})
		md := rep.Markdown()

		if prOutputPath != "" {
			if err := dataio.SafeWriteFile(osFs, prOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote profile to %s\n", prOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVarP(&prOutputPath, "output", "o", "", "optional path to write the profile (Markdown)")
	profileCmd.Flags().IntVar(&prSampleRows, "sample-rows", 5, "number of head rows to include")
	profileCmd.Flags().IntVar(&prTopValues, "top-values", 5, "frequent values listed per text column")
	profileCmd.Flags().Float64Var(&prZScore, "zscore-threshold", clean.DefaultZScoreThreshold, "z-score threshold for outlier candidates (overrides config)")
	profileCmd.Flags().StringVar(&prDelimiter, "delimiter", "", "input delimiter: ',' | ';' | '|' | 'tab' (default by extension)")
	profileCmd.Flags().StringVar(&prSheetName, "sheet-name", "", "XLSX: sheet name to profile")
	profileCmd.Flags().IntVar(&prSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}
