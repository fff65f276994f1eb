// Package pipeline coordinates a cleaning run: directive merging, stage ordering, the
// transformation log and the load/export boundary.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/KaramelBytes/datatidy-cli/internal/clean"
	"github.com/KaramelBytes/datatidy-cli/internal/intent"
	"github.com/KaramelBytes/datatidy-cli/internal/logger"
	"github.com/KaramelBytes/datatidy-cli/internal/table"
)

// Loader produces the input table.
type Loader interface {
	Load(ctx context.Context) (table.Table, error)
}

// Exporter persists the cleaned table.
type Exporter interface {
	Export(ctx context.Context, t table.Table, s Summary) error
}

// Runner executes cleaning runs. A Runner is safe for concurrent use as long as Log is.
type Runner struct {
	Log             logger.Logger
	ZScoreThreshold float64
	// Rules overrides the intent rule table; nil uses intent.DefaultRules.
	Rules []intent.Rule
}

func (r *Runner) logger() logger.Logger { return logger.OrNop(r.Log) }

// Directives merges explicit directives with the ones recognized in text.
func (r *Runner) Directives(explicit Directives, text string) Directives {
	if strings.TrimSpace(text) == "" {
		return Merge(explicit, intent.Resolution{})
	}
	log := r.logger()
	res := intent.NewResolver(r.Rules, log).Resolve(text)
	log.Info("parsed instruction", "text", text, "matched", strings.Join(res.Matched, ","))
	return Merge(explicit, res)
}

// Run applies the merged directives to t in a fixed stage order and returns the cleaned
// table together with a successful Result. t itself is never modified.
func (r *Runner) Run(t table.Table, explicit Directives, text string) (table.Table, Result) {
	log := r.logger()
	c := clean.New(log, clean.WithZScoreThreshold(r.ZScoreThreshold))
	d := r.Directives(explicit, text)
	res := Result{
		Success:    true,
		RunID:      uuid.NewString(),
		Directives: d,
		Summary:    Summary{OriginalRows: t.NumRows(), OriginalColumns: t.NumCols()},
	}
	log = log.With("run_id", res.RunID)
	log.Debug("running pipeline", "rows", t.NumRows(), "columns", t.NumCols())

	cur := t.Clone()
	logf := func(format string, args ...any) {
		res.Log = append(res.Log, fmt.Sprintf(format, args...))
	}
	warn := func(msg string) {
		res.Warnings = append(res.Warnings, msg)
	}

	if len(d.DropColumns) > 0 {
		var dropped []string
		cur, dropped = cur.DropColumns(d.DropColumns)
		res.Stages.DroppedColumns = dropped
		if len(dropped) > 0 {
			logf("Dropped %d columns: %s", len(dropped), strings.Join(dropped, ", "))
			log.Info("dropped columns", "columns", strings.Join(dropped, ", "))
		}
		if missing := absent(d.DropColumns, dropped); len(missing) > 0 {
			warn("columns not found for dropping: " + strings.Join(missing, ", "))
			log.Warn("columns not found for dropping", "columns", strings.Join(missing, ", "))
		}
	}

	if d.FixNames {
		var changes []clean.NameChange
		cur, changes = c.FixColumnNames(cur)
		res.Stages.NameChanges = changes
		if len(changes) > 0 {
			logf("Fixed %d column names", len(changes))
		}
	}

	if d.RemoveDuplicates {
		var st clean.DedupeStats
		cur, st = c.RemoveDuplicates(cur)
		res.Stages.Duplicates = &st
		if st.RowsRemoved > 0 {
			logf("Removed %d duplicate rows", st.RowsRemoved)
		}
	}

	if d.TrimWhitespace {
		var st clean.TrimStats
		cur, st = c.TrimWhitespace(cur)
		res.Stages.Trim = &st
		if len(st.Columns) > 0 {
			logf("Trimmed whitespace from %d columns", len(st.Columns))
		}
	}

	if d.ChangeCase != "" {
		var st clean.CaseStats
		cur, st = c.ChangeCase(cur, d.ChangeCase)
		res.Stages.Case = &st
		if st.Mode == "" {
			warn(fmt.Sprintf("invalid case option %q, skipped", d.ChangeCase))
		} else if len(st.Columns) > 0 {
			logf("Changed string case to %s", st.Mode)
		}
	}

	if d.FindReplace != nil && d.FindReplace.Find != "" {
		var st clean.ReplaceStats
		cur, st = c.FindReplace(cur, d.FindReplace.Find, d.FindReplace.Replace)
		res.Stages.Replace = &st
		if st.Replacements > 0 {
			logf("Replaced all instances of '%s' with '%s'", d.FindReplace.Find, d.FindReplace.Replace)
		}
	}

	if d.FixMissing != "" {
		var st clean.MissingStats
		cur, st = c.HandleMissing(cur, d.FixMissing)
		res.Stages.Missing = &st
		if st.ChangesMade {
			logf("Handled missing data using %s strategy", st.Strategy)
		}
		if st.Strategy == "" && cur.NumRows() > 0 {
			warn(fmt.Sprintf("invalid missing data strategy %q, skipped", d.FixMissing))
		}
	}

	if d.DropOutliers != "" {
		var st clean.OutlierStats
		cur, st = c.RemoveOutliers(cur, d.DropOutliers, 0)
		res.Stages.Outliers = &st
		if st.TotalRemoved > 0 {
			logf("Removed %d outlier rows", st.TotalRemoved)
		}
		if st.Warning != "" {
			warn(st.Warning)
		}
		if st.Method == "" && cur.NumRows() > 0 {
			warn(fmt.Sprintf("invalid outlier method %q, skipped", d.DropOutliers))
		}
	}

	if d.StandardizeTypes {
		var st clean.TypeStats
		cur, st = c.StandardizeTypes(cur)
		res.Stages.Types = &st
		if len(st.Changes) > 0 {
			logf("Standardized %d column types", len(st.Changes))
		}
		for _, ce := range st.Errors {
			warn(ce.Error())
		}
	}

	res.Summary.FinalRows = cur.NumRows()
	res.Summary.FinalColumns = cur.NumCols()
	res.Summary.MissingValues = cur.MissingCount()
	res.Table = cur
	log.Info("pipeline finished", "rows", res.Summary.FinalRows, "columns", res.Summary.FinalColumns, "steps", len(res.Log))
	return cur, res
}

// Process loads, cleans and exports one dataset. Load and export failures, as well as any
// unexpected panic, produce a failed Result instead of an error return.
func (r *Runner) Process(ctx context.Context, loader Loader, exporter Exporter, explicit Directives, text string) (res Result) {
	log := r.logger()
	defer func() {
		if p := recover(); p != nil {
			if res.RunID == "" {
				res.RunID = uuid.NewString()
			}
			res.fail(fmt.Errorf("processing failed: %v", p))
			log.Error("unexpected failure during processing", "panic", p)
		}
	}()

	t, err := loader.Load(ctx)
	if err != nil {
		var le *LoadError
		if !errors.As(err, &le) {
			err = &LoadError{Err: err}
		}
		res = Result{RunID: uuid.NewString()}
		res.fail(err)
		log.Error("load failed", "error", err)
		return res
	}
	log.Info("loaded table", "rows", t.NumRows(), "columns", t.NumCols())

	if err := ctx.Err(); err != nil {
		res = Result{RunID: uuid.NewString()}
		res.fail(fmt.Errorf("run cancelled: %w", err))
		return res
	}

	cleaned, res := r.Run(t, explicit, text)

	if exporter != nil {
		if err := exporter.Export(ctx, cleaned, res.Summary); err != nil {
			var ee *ExportError
			if !errors.As(err, &ee) {
				err = &ExportError{Err: err}
			}
			res.fail(err)
			log.Error("export failed", "error", err)
			return res
		}
	}
	return res
}

// absent returns the requested names that were not dropped.
func absent(requested, dropped []string) []string {
	got := make(map[string]struct{}, len(dropped))
	for _, d := range dropped {
		got[d] = struct{}{}
	}
	var out []string
	for _, n := range requested {
		if _, ok := got[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}
