package pipeline

import (
	"fmt"

	"github.com/KaramelBytes/datatidy-cli/internal/clean"
	"github.com/KaramelBytes/datatidy-cli/internal/table"
)

// Summary compares the table shape before and after a run.
type Summary struct {
	OriginalRows    int `json:"original_rows" yaml:"original_rows"`
	OriginalColumns int `json:"original_columns" yaml:"original_columns"`
	FinalRows       int `json:"final_rows" yaml:"final_rows"`
	FinalColumns    int `json:"final_columns" yaml:"final_columns"`
	MissingValues   int `json:"missing_values" yaml:"missing_values"`
}

// Lines renders the shape comparison.
func (s Summary) Lines() []string {
	return []string{
		fmt.Sprintf("Original: %d rows × %d columns", s.OriginalRows, s.OriginalColumns),
		fmt.Sprintf("Final: %d rows × %d columns", s.FinalRows, s.FinalColumns),
	}
}

// StageStats keeps the detailed statistics of every stage that ran.
type StageStats struct {
	DroppedColumns []string            `json:"dropped_columns,omitempty" yaml:"dropped_columns,omitempty"`
	NameChanges    []clean.NameChange  `json:"name_changes,omitempty" yaml:"name_changes,omitempty"`
	Duplicates     *clean.DedupeStats  `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	Trim           *clean.TrimStats    `json:"trim,omitempty" yaml:"trim,omitempty"`
	Case           *clean.CaseStats    `json:"case,omitempty" yaml:"case,omitempty"`
	Replace        *clean.ReplaceStats `json:"replace,omitempty" yaml:"replace,omitempty"`
	Missing        *clean.MissingStats `json:"missing,omitempty" yaml:"missing,omitempty"`
	Outliers       *clean.OutlierStats `json:"outliers,omitempty" yaml:"outliers,omitempty"`
	Types          *clean.TypeStats    `json:"types,omitempty" yaml:"types,omitempty"`
}

// Result is the outcome of a run. On failure only RunID, Success, Error and Log are meaningful.
type Result struct {
	Success    bool        `json:"success" yaml:"success"`
	RunID      string      `json:"run_id" yaml:"run_id"`
	Log        []string    `json:"transformations" yaml:"transformations"`
	Summary    Summary     `json:"summary" yaml:"summary"`
	Directives Directives  `json:"directives" yaml:"directives"`
	Stages     StageStats  `json:"stages" yaml:"stages"`
	Warnings   []string    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Table      table.Table `json:"-" yaml:"-"`
	Error      error       `json:"-" yaml:"-"`
	ErrorText  string      `json:"error,omitempty" yaml:"error,omitempty"`
}

// Lines returns the summary lines followed by the transformation log.
func (r Result) Lines() []string {
	out := r.Summary.Lines()
	return append(out, r.Log...)
}

func (r *Result) fail(err error) {
	r.Success = false
	r.Error = err
	r.ErrorText = err.Error()
}
