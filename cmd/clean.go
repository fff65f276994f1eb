package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datatidy-cli/internal/clean"
	"github.com/KaramelBytes/datatidy-cli/internal/dataio"
	"github.com/KaramelBytes/datatidy-cli/internal/pipeline"
)

var (
	clFixNames         bool
	clFixMissing       string
	clDropOutliers     string
	clStandardizeTypes bool
	clRemoveDuplicates bool
	clTrimWhitespace   bool
	clChangeCase       string
	clFind             string
	clReplace          string
	clDropColumns      []string
	clOutput           string
	clFormat           string
	clExcel            bool
	clLogPath          string
	clPreview          bool
	clNoPreview        bool
	clPreviewRows      int
	clZScore           float64
	clDelimiter        string
	clSheetName        string
	clSheetIndex       int
)

// osFs is the filesystem commands read from and write to.
var osFs afero.Fs = afero.NewOsFs()

var cleanCmd = &cobra.Command{
	Use:   "clean <file> [instruction...]",
	Short: "Clean a CSV/TSV/XLSX file using flags and/or a plain-English instruction",
	Long: `Clean a dataset. Everything after the file name is read as an instruction, e.g.

  datatidy clean data.csv fix column names and fill missing with median
  datatidy clean data.csv --fix-missing mean --drop-outliers iqr --excel

Explicit flags win over the instruction. Stages always run in this order: drop columns,
fix names, remove duplicates, trim whitespace, change case, find/replace, missing data,
outliers, type standardization.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := cleanJobFromFlags(cmd, args[0], clOutput, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		res := job.execute(cmd.Context())
		if !res.Success {
			return res.Error
		}
		job.printResult(out, res)
		if clPreview && !clNoPreview && job.previewRows > 0 && res.Table.NumRows() > 0 {
			n := job.previewRows
			if n > res.Table.NumRows() {
				n = res.Table.NumRows()
			}
			fmt.Fprintf(out, "\nPreview (first %d rows):\n", n)
			fmt.Fprint(out, renderPreview(out, res.Table.Head(n)))
		}
		return nil
	},
}

// cleanJob is one fully resolved clean invocation.
type cleanJob struct {
	input       string
	output      string
	format      dataio.Format
	text        string
	directives  pipeline.Directives
	read        dataio.ReadOptions
	zscore      float64
	logPath     string
	previewRows int
}

func cleanJobFromFlags(cmd *cobra.Command, input, output, text string) (*cleanJob, error) {
	c := currentConfig()
	f := cmd.Flags()
	job := &cleanJob{input: input, text: text, logPath: clLogPath, zscore: c.ZScoreThreshold, previewRows: c.PreviewRows}

	if f.Changed("zscore-threshold") {
		if clZScore <= 0 {
			return nil, fmt.Errorf("--zscore-threshold must be positive, got %v", clZScore)
		}
		job.zscore = clZScore
	}
	if f.Changed("preview-rows") {
		if clPreviewRows < 0 {
			return nil, fmt.Errorf("--preview-rows must be >= 0")
		}
		job.previewRows = clPreviewRows
	}

	format, output, err := resolveOutput(input, output, c.OutputFormat, c.OutputDir, f.Changed("format"))
	if err != nil {
		return nil, err
	}
	job.format, job.output = format, output

	job.read.Delimiter = c.DelimiterRune()
	if f.Changed("delimiter") {
		d, err := parseDelimiter(clDelimiter)
		if err != nil {
			return nil, err
		}
		job.read.Delimiter = d
	}
	job.read.SheetName = clSheetName
	job.read.SheetIndex = clSheetIndex

	if f.Changed("replace") && clFind == "" {
		return nil, errors.New("--replace requires --find")
	}
	job.directives = pipeline.Directives{
		DropColumns:      trimAll(clDropColumns),
		FixNames:         clFixNames,
		RemoveDuplicates: clRemoveDuplicates,
		TrimWhitespace:   clTrimWhitespace,
		ChangeCase:       clChangeCase,
		FixMissing:       clFixMissing,
		DropOutliers:     clDropOutliers,
		StandardizeTypes: clStandardizeTypes,
	}
	if clFind != "" {
		job.directives.FindReplace = &pipeline.FindReplace{Find: clFind, Replace: clReplace}
	}
	return job, nil
}

// resolveOutput picks the export format and path. Precedence for the format: --format, --excel,
// the extension of the explicit output path, then the configured default.
func resolveOutput(input, output, defFormat, defDir string, formatSet bool) (dataio.Format, string, error) {
	var format dataio.Format
	switch {
	case formatSet:
		f, err := dataio.ParseFormat(clFormat)
		if err != nil {
			return "", "", err
		}
		format = f
	case clExcel:
		format = dataio.FormatXLSX
	case output != "":
		format = dataio.FormatFromPath(output)
	default:
		f, err := dataio.ParseFormat(defFormat)
		if err != nil {
			return "", "", err
		}
		format = f
	}
	switch {
	case output == "":
		output = dataio.OutputPath(input, format, defDir)
	case clExcel && dataio.FormatFromPath(output) != dataio.FormatXLSX:
		output = dataio.WithExt(output, dataio.FormatXLSX)
	}
	return format, output, nil
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// execute loads, cleans and exports the dataset. The run record is written even when the run
// fails; failing to write it adds a warning.
func (j *cleanJob) execute(ctx context.Context) pipeline.Result {
	log := appLog.With("file", j.input)
	runner := &pipeline.Runner{Log: log, ZScoreThreshold: j.zscore}
	d := runner.Directives(j.directives, j.text)

	src := dataio.Source{Fs: osFs, Path: j.input, Options: j.read}
	sink := dataio.Sink{Fs: osFs, Path: j.output, Format: j.format}
	res := runner.Process(ctx, src, sink, d, "")

	if j.logPath != "" {
		rec := runRecord{Input: j.input, Output: j.output, Format: string(j.format), Text: j.text, Result: res}
		if err := writeRunLog(osFs, j.logPath, rec); err != nil {
			res.Warnings = append(res.Warnings, err.Error())
		}
	}
	return res
}

// printResult reports a successful run.
func (j *cleanJob) printResult(out io.Writer, res pipeline.Result) {
	if res.Directives.Empty() {
		fmt.Fprintln(out, "⚠ Warning: no cleaning directives recognized; data was exported unchanged")
	}
	fmt.Fprintf(out, "✓ Cleaned %s\n", j.input)
	n := len(res.Summary.Lines())
	for i, line := range res.Lines() {
		if i < n {
			fmt.Fprintf(out, "  %s\n", line)
			continue
		}
		if i == n {
			fmt.Fprintln(out, "Transformations:")
		}
		fmt.Fprintf(out, "  • %s\n", line)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "⚠ Warning: %s\n", w)
	}
	sink := dataio.Sink{Fs: osFs, Path: j.output, Format: j.format}
	if size, err := sink.Size(); err == nil {
		fmt.Fprintf(out, "✓ Wrote %s (%s)\n", j.output, dataio.HumanSize(size))
	} else {
		fmt.Fprintf(out, "✓ Wrote %s\n", j.output)
	}
	if j.logPath != "" {
		fmt.Fprintf(out, "✓ Run log: %s\n", j.logPath)
	}
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	addCleanFlags(cleanCmd)
	cleanCmd.Flags().StringVarP(&clOutput, "output", "o", "", "output path (default: <input>_cleaned.<ext>)")
	cleanCmd.Flags().StringVar(&clLogPath, "log", "", "write the run record (directives, transformations, summary) to this .yaml or .json file")
	cleanCmd.Flags().BoolVar(&clPreview, "preview", true, "show a preview of the cleaned data")
	cleanCmd.Flags().BoolVar(&clNoPreview, "no-preview", false, "do not show a preview")
	cleanCmd.Flags().IntVar(&clPreviewRows, "preview-rows", 10, "rows shown in the preview (overrides config)")
}

// addCleanFlags registers the directive and I/O flags shared by clean and clean-batch.
func addCleanFlags(c *cobra.Command) {
	fs := c.Flags()
	fs.BoolVar(&clFixNames, "fix-names", false, "normalize column names to snake_case")
	fs.Var(newEnum(&clFixMissing, "", clean.MissingStrategies...), "fix-missing", "missing data strategy")
	fs.Var(newEnum(&clDropOutliers, "", clean.OutlierMethods...), "drop-outliers", "outlier removal method")
	fs.BoolVar(&clStandardizeTypes, "standardize-types", false, "detect and convert column types")
	fs.BoolVar(&clRemoveDuplicates, "remove-duplicates", false, "drop exact duplicate rows, keeping the first")
	fs.BoolVar(&clTrimWhitespace, "trim-whitespace", false, "trim leading and trailing whitespace from text")
	fs.Var(newEnum(&clChangeCase, "", clean.CaseModes...), "change-case", "change text case")
	fs.StringVar(&clFind, "find", "", "value to find (whole cell match)")
	fs.StringVar(&clReplace, "replace", "", "replacement for --find")
	fs.StringSliceVar(&clDropColumns, "drop-columns", nil, "comma-separated columns to drop")
	fs.Var(newEnum(&clFormat, "", formatNames()...), "format", "output format (default from config)")
	fs.BoolVar(&clExcel, "excel", false, "export to Excel (.xlsx)")
	fs.Float64Var(&clZScore, "zscore-threshold", clean.DefaultZScoreThreshold, "z-score threshold for outlier removal (overrides config)")
	fs.StringVar(&clDelimiter, "delimiter", "", "input delimiter: ',' | ';' | '|' | 'tab' (default by extension)")
	fs.StringVar(&clSheetName, "sheet-name", "", "XLSX: sheet name to read")
	fs.IntVar(&clSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func formatNames() []string {
	out := make([]string, len(dataio.Formats))
	for i, f := range dataio.Formats {
		out[i] = string(f)
	}
	return out
}
