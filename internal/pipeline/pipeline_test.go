package pipeline

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/datatidy-cli/internal/intent"
	"github.com/KaramelBytes/datatidy-cli/internal/logger"
	"github.com/KaramelBytes/datatidy-cli/internal/table"
)

type loaderFunc func(ctx context.Context) (table.Table, error)

func (f loaderFunc) Load(ctx context.Context) (table.Table, error) { return f(ctx) }

type recordingExporter struct {
	got     table.Table
	summary Summary
	err     error
	calls   int
}

func (e *recordingExporter) Export(_ context.Context, t table.Table, s Summary) error {
	e.calls++
	e.got, e.summary = t, s
	return e.err
}

func staticLoader(t table.Table) Loader {
	return loaderFunc(func(context.Context) (table.Table, error) { return t, nil })
}

func load(t *testing.T, header []string, rows ...[]string) table.Table {
	t.Helper()
	tb, err := table.FromRecords(header, rows)
	require.NoError(t, err)
	return tb
}

func newRunner() *Runner {
	return &Runner{Log: logger.NewNopLogger(), ZScoreThreshold: 3}
}

func peopleTable(t *testing.T) table.Table {
	rows := [][]string{{"John ", "1000"}}
	for i := 0; i < 19; i++ {
		rows = append(rows, []string{"Jane", strconv.Itoa(20 + i)})
	}
	return load(t, []string{"First Name ", "Age (years)"}, rows...)
}

func TestRunner_Run(t *testing.T) {
	t.Run("Should fix names and drop z-score outliers", func(t *testing.T) {
		r := newRunner()
		out, res := r.Run(peopleTable(t), Directives{FixNames: true, DropOutliers: "zscore"}, "")
		assert.True(t, res.Success)
		assert.Equal(t, []string{"first_name", "age_years"}, out.Names())
		assert.Equal(t, 19, out.NumRows())
		assert.NotContains(t, out.Records()[1], "1000")
		assert.Equal(t, []string{"Fixed 2 column names", "Removed 1 outlier rows"}, res.Log)
		assert.Equal(t, Summary{OriginalRows: 20, OriginalColumns: 2, FinalRows: 19, FinalColumns: 2}, res.Summary)
		assert.NotEmpty(t, res.RunID)
	})

	t.Run("Should treat text and flags the same way", func(t *testing.T) {
		r := newRunner()
		fromText, textRes := r.Run(peopleTable(t), Directives{}, "fix column names and remove outliers")
		fromFlags, flagRes := r.Run(peopleTable(t), Directives{FixNames: true, DropOutliers: "zscore"}, "")
		assert.Equal(t, flagRes.Directives, textRes.Directives)
		assert.Equal(t, fromFlags.Records(), fromText.Records())
		assert.Equal(t, flagRes.Log, textRes.Log)
	})

	t.Run("Should fill missing values with the mean", func(t *testing.T) {
		tb := load(t, []string{"v"}, []string{"1"}, []string{"2"}, []string{""}, []string{"4"})
		out, res := newRunner().Run(tb, Directives{FixMissing: "mean"}, "")
		f, ok := out.Columns[0].Cells[2].Float64()
		require.True(t, ok)
		assert.InDelta(t, 2.3333333, f, 1e-6)
		assert.Equal(t, []string{"Handled missing data using mean strategy"}, res.Log)
		assert.Zero(t, res.Summary.MissingValues)
	})

	t.Run("Should drop rows with missing values", func(t *testing.T) {
		tb := load(t, []string{"v"}, []string{"1"}, []string{"2"}, []string{""}, []string{"4"})
		out, _ := newRunner().Run(tb, Directives{FixMissing: "drop"}, "")
		assert.Equal(t, 3, out.NumRows())
	})

	t.Run("Should remove duplicate rows", func(t *testing.T) {
		tb := load(t, []string{"k", "v"}, []string{"a", "1"}, []string{"a", "1"}, []string{"b", "2"})
		out, res := newRunner().Run(tb, Directives{RemoveDuplicates: true}, "")
		assert.Equal(t, [][]string{{"k", "v"}, {"a", "1"}, {"b", "2"}}, out.Records())
		require.NotNil(t, res.Stages.Duplicates)
		assert.Equal(t, 1, res.Stages.Duplicates.RowsRemoved)
		assert.Equal(t, []string{"Removed 1 duplicate rows"}, res.Log)
	})

	t.Run("Should apply stages in order and log each effect", func(t *testing.T) {
		tb := load(t, []string{"Name ", "city", "junk"},
			[]string{" ann ", "paris", "x"},
			[]string{" ann ", "paris", "x"},
			[]string{"bob", "N/A", "y"},
		)
		d := Directives{
			DropColumns:      []string{"junk", "nope"},
			FixNames:         true,
			RemoveDuplicates: true,
			TrimWhitespace:   true,
			ChangeCase:       "title",
			FindReplace:      &FindReplace{Find: "Paris", Replace: "Lyon"},
			FixMissing:       "mode",
			StandardizeTypes: true,
		}
		out, res := newRunner().Run(tb, d, "")
		assert.Equal(t, []string{
			"Dropped 1 columns: junk",
			"Fixed 1 column names",
			"Removed 1 duplicate rows",
			"Trimmed whitespace from 1 columns",
			"Changed string case to title",
			"Replaced all instances of 'Paris' with 'Lyon'",
			"Handled missing data using mode strategy",
		}, res.Log)
		assert.Equal(t, [][]string{{"name", "city"}, {"Ann", "Lyon"}, {"Bob", "Lyon"}}, out.Records())
		assert.Contains(t, res.Warnings, "columns not found for dropping: nope")
		assert.Equal(t, 3, tb.NumCols(), "input must not be mutated")
	})

	t.Run("Should warn on invalid directive values without failing", func(t *testing.T) {
		tb := load(t, []string{"v"}, []string{"1"}, []string{""})
		out, res := newRunner().Run(tb, Directives{FixMissing: "guess", DropOutliers: "magic", ChangeCase: "shout"}, "")
		assert.True(t, res.Success)
		assert.Empty(t, res.Log)
		assert.Len(t, res.Warnings, 3)
		assert.Equal(t, 2, out.NumRows())
	})

	t.Run("Should render summary lines first", func(t *testing.T) {
		_, res := newRunner().Run(load(t, []string{"a"}, []string{"1"}), Directives{FixNames: true}, "")
		assert.Equal(t, []string{"Original: 1 rows × 1 columns", "Final: 1 rows × 1 columns"}, res.Lines())
	})
}

func TestMerge(t *testing.T) {
	t.Run("Should let explicit values win", func(t *testing.T) {
		d := Merge(Directives{FixMissing: "drop"}, intent.Resolution{FixMissing: "mean", DropOutliers: "iqr", FixNames: true})
		assert.Equal(t, "drop", d.FixMissing)
		assert.Equal(t, "iqr", d.DropOutliers)
		assert.True(t, d.FixNames)
	})
	t.Run("Should keep explicit-only directives", func(t *testing.T) {
		fr := &FindReplace{Find: "a", Replace: "b"}
		d := Merge(Directives{TrimWhitespace: true, FindReplace: fr, DropColumns: []string{"x"}}, intent.Resolution{})
		assert.True(t, d.TrimWhitespace)
		assert.Equal(t, *fr, *d.FindReplace)
		assert.NotSame(t, fr, d.FindReplace)
		assert.Equal(t, []string{"x"}, d.DropColumns)
	})
	t.Run("Should report empty directive sets", func(t *testing.T) {
		assert.True(t, Directives{}.Empty())
		assert.True(t, Directives{FindReplace: &FindReplace{}}.Empty())
		assert.False(t, Directives{StandardizeTypes: true}.Empty())
	})
}

func TestRunner_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("Should load, clean and export", func(t *testing.T) {
		exp := &recordingExporter{}
		tb := load(t, []string{"A B"}, []string{"1"})
		res := newRunner().Process(ctx, staticLoader(tb), exp, Directives{FixNames: true}, "")
		require.True(t, res.Success, res.ErrorText)
		assert.Equal(t, 1, exp.calls)
		assert.Equal(t, []string{"a_b"}, exp.got.Names())
		assert.Equal(t, res.Summary, exp.summary)
	})

	t.Run("Should report load failures", func(t *testing.T) {
		exp := &recordingExporter{}
		boom := errors.New("no such file")
		res := newRunner().Process(ctx, loaderFunc(func(context.Context) (table.Table, error) {
			return table.Table{}, &LoadError{Path: "in.csv", Err: boom}
		}), exp, Directives{}, "")
		assert.False(t, res.Success)
		assert.Equal(t, KindLoad, KindOf(res.Error))
		assert.ErrorIs(t, res.Error, boom)
		assert.Contains(t, res.ErrorText, "in.csv")
		assert.Zero(t, exp.calls)
	})

	t.Run("Should wrap plain loader errors", func(t *testing.T) {
		res := newRunner().Process(ctx, loaderFunc(func(context.Context) (table.Table, error) {
			return table.Table{}, errors.New("bad")
		}), nil, Directives{}, "")
		var le *LoadError
		assert.ErrorAs(t, res.Error, &le)
	})

	t.Run("Should report export failures", func(t *testing.T) {
		exp := &recordingExporter{err: errors.New("disk full")}
		res := newRunner().Process(ctx, staticLoader(load(t, []string{"a"}, []string{"1"})), exp, Directives{}, "")
		assert.False(t, res.Success)
		assert.Equal(t, KindExport, KindOf(res.Error))
		assert.Equal(t, "export", KindOf(res.Error).String())
	})

	t.Run("Should turn panics into failed results", func(t *testing.T) {
		res := newRunner().Process(ctx, loaderFunc(func(context.Context) (table.Table, error) {
			panic("kaboom")
		}), nil, Directives{}, "")
		assert.False(t, res.Success)
		assert.Equal(t, KindInternal, KindOf(res.Error))
		assert.Contains(t, res.ErrorText, "kaboom")
		assert.NotEmpty(t, res.RunID)
	})

	t.Run("Should stop on a cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		exp := &recordingExporter{}
		res := newRunner().Process(cctx, staticLoader(load(t, []string{"a"}, []string{"1"})), exp, Directives{}, "")
		assert.False(t, res.Success)
		assert.ErrorIs(t, res.Error, context.Canceled)
		assert.Zero(t, exp.calls)
	})
}
