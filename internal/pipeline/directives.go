package pipeline

import (
	"github.com/KaramelBytes/datatidy-cli/internal/intent"
)

// FindReplace is a literal value substitution.
type FindReplace struct {
	Find    string `json:"find" yaml:"find"`
	Replace string `json:"replace" yaml:"replace"`
}

// Directives is the full set of cleaning instructions for one run. Zero values mean "skip".
type Directives struct {
	DropColumns      []string     `json:"drop_columns,omitempty" yaml:"drop_columns,omitempty"`
	FixNames         bool         `json:"fix_names" yaml:"fix_names"`
	RemoveDuplicates bool         `json:"remove_duplicates" yaml:"remove_duplicates"`
	TrimWhitespace   bool         `json:"trim_whitespace" yaml:"trim_whitespace"`
	ChangeCase       string       `json:"change_case,omitempty" yaml:"change_case,omitempty"`
	FindReplace      *FindReplace `json:"find_replace,omitempty" yaml:"find_replace,omitempty"`
	FixMissing       string       `json:"fix_missing,omitempty" yaml:"fix_missing,omitempty"`
	DropOutliers     string       `json:"drop_outliers,omitempty" yaml:"drop_outliers,omitempty"`
	StandardizeTypes bool         `json:"standardize_types" yaml:"standardize_types"`
}

// Merge combines explicit directives with those recognized from free text. Explicit non-zero
// values win; the resolver can only fill fields it knows about.
func Merge(explicit Directives, resolved intent.Resolution) Directives {
	out := explicit
	out.FixNames = explicit.FixNames || resolved.FixNames
	out.StandardizeTypes = explicit.StandardizeTypes || resolved.StandardizeTypes
	if out.FixMissing == "" {
		out.FixMissing = resolved.FixMissing
	}
	if out.DropOutliers == "" {
		out.DropOutliers = resolved.DropOutliers
	}
	if len(explicit.DropColumns) > 0 {
		out.DropColumns = append([]string(nil), explicit.DropColumns...)
	}
	if explicit.FindReplace != nil {
		fr := *explicit.FindReplace
		out.FindReplace = &fr
	}
	return out
}

// Empty reports whether the directives request no work at all.
func (d Directives) Empty() bool {
	return len(d.DropColumns) == 0 && !d.FixNames && !d.RemoveDuplicates && !d.TrimWhitespace &&
		d.ChangeCase == "" && (d.FindReplace == nil || d.FindReplace.Find == "") &&
		d.FixMissing == "" && d.DropOutliers == "" && !d.StandardizeTypes
}
