package cmd

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/KaramelBytes/datatidy-cli/internal/report"
	"github.com/KaramelBytes/datatidy-cli/internal/table"
)

// previewCellWidth caps preview cell width in runes.
const previewCellWidth = 40

var (
	previewHeader = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	previewCell   = lipgloss.NewStyle().Padding(0, 1)
	previewNull   = lipgloss.NewStyle().Padding(0, 1).Faint(true)
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// renderPreview draws t as a bordered table on terminals and as a pipe table elsewhere.
func renderPreview(w io.Writer, t table.Table) string {
	if !isTerminal(w) {
		return report.PipeTable(t, previewCellWidth)
	}
	rows := make([][]string, t.NumRows())
	for r := range rows {
		row := make([]string, t.NumCols())
		for j, col := range t.Columns {
			if col.Cells[r].IsNull() {
				row[j] = "null"
				continue
			}
			row[j] = clip(col.Cells[r].String(), previewCellWidth)
		}
		rows[r] = row
	}
	tb := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		Headers(t.Names()...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return previewHeader
			}
			if row >= 0 && row < t.NumRows() && t.Columns[col].Cells[row].IsNull() {
				return previewNull
			}
			return previewCell
		})
	return tb.String() + "\n"
}

func clip(s string, width int) string {
	rs := []rune(s)
	if len(rs) <= width {
		return s
	}
	return string(rs[:width-3]) + "..."
}
