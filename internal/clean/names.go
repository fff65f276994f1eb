package clean

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/KaramelBytes/datatidy-cli/internal/table"
)

// NameChange records a renamed column.
type NameChange struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// NameIssues lists header problems found by ValidateColumnNames.
type NameIssues struct {
	Duplicates   []string `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	SpecialChars []string `json:"special_chars,omitempty" yaml:"special_chars,omitempty"`
	Whitespace   []string `json:"whitespace,omitempty" yaml:"whitespace,omitempty"`
	Empty        []string `json:"empty,omitempty" yaml:"empty,omitempty"`
	NumericStart []string `json:"numeric_start,omitempty" yaml:"numeric_start,omitempty"`
}

// Any reports whether at least one issue was found.
func (n NameIssues) Any() bool {
	return len(n.Duplicates)+len(n.SpecialChars)+len(n.Whitespace)+len(n.Empty)+len(n.NumericStart) > 0
}

// foldAccents strips combining marks so "Café" folds to "Cafe" before the ASCII filter.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// CleanName applies the per-name normalization rules without the uniqueness pass.
func CleanName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = foldAccents(s)

	var b strings.Builder
	sep := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r) || r == '-' || r == '.':
			sep = true
			continue
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
		default:
			continue
		}
		if sep {
			b.WriteByte('_')
			sep = false
		}
		b.WriteRune(r)
	}
	if sep {
		b.WriteByte('_')
	}

	out := collapseUnderscores(b.String())
	out = strings.Trim(out, "_")
	if out == "" {
		out = "unnamed_column"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "col_" + out
	}
	return out
}

func collapseUnderscores(s string) string {
	var b strings.Builder
	prev := false
	for _, r := range s {
		if r == '_' {
			if prev {
				continue
			}
			prev = true
		} else {
			prev = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// UniqueNames suffixes repeated names with _1, _2, ... in order of appearance. A suffix that
// collides with another name keeps counting until it is free.
func UniqueNames(names []string) []string {
	out := make([]string, len(names))
	taken := make(map[string]struct{}, len(names))
	for _, n := range names {
		taken[n] = struct{}{}
	}
	assigned := make(map[string]struct{}, len(names))
	counts := make(map[string]int, len(names))
	for i, n := range names {
		if _, dup := assigned[n]; !dup {
			out[i] = n
			assigned[n] = struct{}{}
			continue
		}
		k := counts[n]
		for {
			k++
			cand := fmt.Sprintf("%s_%d", n, k)
			_, a := assigned[cand]
			_, tk := taken[cand]
			if !a && !tk {
				out[i] = cand
				assigned[cand] = struct{}{}
				break
			}
		}
		counts[n] = k
	}
	return out
}

// FixColumnNames normalizes every header and enforces uniqueness.
func (c *Cleaner) FixColumnNames(t table.Table) (table.Table, []NameChange) {
	out := t.Clone()
	if out.NumCols() == 0 {
		c.log.Warn("table has no columns, skipping column name fixing")
		return out, nil
	}
	cleaned := make([]string, out.NumCols())
	for i, col := range out.Columns {
		cleaned[i] = CleanName(col.Name)
	}
	final := UniqueNames(cleaned)

	var changes []NameChange
	for i := range out.Columns {
		from := out.Columns[i].Name
		if from != final[i] {
			changes = append(changes, NameChange{From: from, To: final[i]})
			c.log.Debug("column renamed", "from", from, "to", final[i])
		}
		out.Columns[i].Name = final[i]
	}
	if len(changes) > 0 {
		c.log.Info("renamed columns", "count", len(changes))
	} else {
		c.log.Info("no column names needed fixing")
	}
	return out, changes
}

// ValidateColumnNames reports header problems without changing anything.
func ValidateColumnNames(names []string) NameIssues {
	var iss NameIssues
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			iss.Duplicates = append(iss.Duplicates, n)
		}
		seen[n] = struct{}{}
	}
	for _, n := range names {
		trimmed := strings.TrimSpace(n)
		for _, r := range n {
			if !(r == '_' || unicode.IsSpace(r) || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)))) {
				iss.SpecialChars = append(iss.SpecialChars, n)
				break
			}
		}
		if n != trimmed {
			iss.Whitespace = append(iss.Whitespace, n)
		}
		if trimmed == "" {
			iss.Empty = append(iss.Empty, n)
		} else if trimmed[0] >= '0' && trimmed[0] <= '9' {
			iss.NumericStart = append(iss.NumericStart, n)
		}
	}
	return iss
}
