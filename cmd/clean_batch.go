package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/datatidy-cli/internal/pipeline"
)

var (
	cbOutputDir   string
	cbLogDir      string
	cbWorkers     int
	cbInstruction string
	cbFailFast    bool
	cbQuiet       bool
)

var cleanBatchCmd = &cobra.Command{
	Use:   "clean-batch <files...>",
	Short: "Clean multiple CSV/TSV/XLSX files concurrently with the same directives",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		c := currentConfig()
		workers := c.Workers
		if cmd.Flags().Changed("workers") {
			if cbWorkers < 1 {
				return fmt.Errorf("--workers must be >= 1")
			}
			workers = cbWorkers
		}
		outDir := c.OutputDir
		if cbOutputDir != "" {
			outDir = cbOutputDir
		}

		jobs := make([]*cleanJob, len(files))
		for i, path := range files {
			job, err := cleanJobFromFlags(cmd, path, "", cbInstruction)
			if err != nil {
				return err
			}
			if outDir != "" {
				job.output = filepath.Join(outDir, filepath.Base(job.output))
			}
			job.logPath = ""
			if cbLogDir != "" {
				base := filepath.Base(path)
				job.logPath = filepath.Join(cbLogDir, strings.TrimSuffix(base, filepath.Ext(base))+".run.yaml")
			}
			jobs[i] = job
		}
		if err := checkDistinctOutputs(jobs); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		results := make([]pipeline.Result, len(jobs))
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(workers)
		for i, job := range jobs {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				// a started file runs to completion even if another one fails meanwhile
				results[i] = job.execute(context.WithoutCancel(ctx))
				if !results[i].Success && cbFailFast {
					return fmt.Errorf("%s: %w", job.input, results[i].Error)
				}
				return nil
			})
		}
		waitErr := g.Wait()

		failed := 0
		total := len(jobs)
		for i, job := range jobs {
			res := results[i]
			if !cbQuiet {
				fmt.Fprintf(out, "[%d/%d] %s\n", i+1, total, filepath.Base(job.input))
			}
			switch {
			case res.RunID == "":
				// not started: an earlier file failed under --fail-fast
				if !cbQuiet {
					fmt.Fprintln(out, "  skipped")
				}
			case !res.Success:
				failed++
				fmt.Fprintln(out, errorLine(res.Error))
			case !cbQuiet:
				job.printResult(out, res)
			}
		}
		if waitErr != nil {
			return waitErr
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, total)
		}
		fmt.Fprintf(out, "✓ Cleaned %d files\n", total)
		return nil
	},
}

// expandInputs resolves glob patterns and literal paths into a sorted, de-duplicated list.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

// checkDistinctOutputs rejects batches where two inputs would be written to the same file.
func checkDistinctOutputs(jobs []*cleanJob) error {
	owner := map[string]string{}
	for _, j := range jobs {
		key := filepath.Clean(j.output)
		if prev, ok := owner[key]; ok {
			return fmt.Errorf("%s and %s would both be written to %s; use --output-dir per run or rename inputs", prev, j.input, j.output)
		}
		owner[key] = j.input
		if j.logPath != "" {
			lk := "log:" + filepath.Clean(j.logPath)
			if prev, ok := owner[lk]; ok {
				return fmt.Errorf("%s and %s would share run log %s", prev, j.input, j.logPath)
			}
			owner[lk] = j.input
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(cleanBatchCmd)
	addCleanFlags(cleanBatchCmd)
	cleanBatchCmd.Flags().StringVar(&cbOutputDir, "output-dir", "", "directory for cleaned files (default: next to each input, or config output_dir)")
	cleanBatchCmd.Flags().StringVar(&cbLogDir, "log-dir", "", "write one <name>.run.yaml run record per file into this directory")
	cleanBatchCmd.Flags().IntVarP(&cbWorkers, "workers", "w", 4, "files processed concurrently (overrides config)")
	cleanBatchCmd.Flags().StringVarP(&cbInstruction, "instruction", "i", "", "plain-English instruction applied to every file")
	cleanBatchCmd.Flags().BoolVar(&cbFailFast, "fail-fast", false, "stop starting new files after the first failure")
	cleanBatchCmd.Flags().BoolVarP(&cbQuiet, "quiet", "q", false, "only print errors and the final line")
}
