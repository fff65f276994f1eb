package report

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/datatidy-cli/internal/clean"
	"github.com/KaramelBytes/datatidy-cli/internal/table"
)

func sales(t *testing.T) table.Table {
	t.Helper()
	rows := [][]string{}
	for i := 0; i < 19; i++ {
		rows = append(rows, []string{strconv.Itoa(i + 1), "north", strconv.Itoa(100 + i), "2024-01-0" + strconv.Itoa(i%9+1)})
	}
	rows = append(rows, []string{"20", "", "99999", "2024-01-01"})
	tb, err := table.FromRecords([]string{"id", "Region (name)", "amount", "when"}, rows)
	require.NoError(t, err)
	return tb
}

func TestBuild(t *testing.T) {
	rep := Build("sales.csv", sales(t), clean.New(nil), DefaultOptions())

	assert.Equal(t, 20, rep.Rows)
	require.Len(t, rep.Cols, 4)
	assert.Equal(t, table.TypeInt, rep.Cols[2].Type)
	assert.Equal(t, 100.0, rep.Cols[2].Min)
	assert.Equal(t, 99999.0, rep.Cols[2].Max)
	assert.Equal(t, 1, rep.Cols[1].Missing)
	assert.Equal(t, []CategoryCount{{Value: "north", Count: 19}}, rep.Cols[1].TopValues)
	assert.Equal(t, []string{"Region (name)"}, rep.Names.SpecialChars)
	assert.Empty(t, rep.Names.Whitespace)
	assert.Equal(t, 1, rep.Missing.TotalMissing)
	assert.Equal(t, 5, rep.Samples.NumRows())

	require.Len(t, rep.Outliers, 2)
	assert.Equal(t, clean.OutlierZScore, rep.Outliers[0].Method)
	assert.Equal(t, clean.OutlierIQR, rep.Outliers[1].Method)
	assert.Equal(t, map[string][]int{"amount": {19}}, rep.Outliers[0].Rows)

	var when *clean.TypeChange
	for i := range rep.Types {
		if rep.Types[i].Column == "when" {
			when = &rep.Types[i]
		}
	}
	require.NotNil(t, when)
	assert.Equal(t, "datetime", when.To)
}

func TestReport_Markdown(t *testing.T) {
	md := Build("sales.csv", sales(t), nil, Options{SampleRows: 2}).Markdown()

	for _, section := range []string{
		"[DATASET SUMMARY]", "[SCHEMA]", "[COLUMN NAME ISSUES]", "[MISSING DATA]",
		"[OUTLIERS]", "[TYPE SUGGESTIONS]", "[HEAD AND SAMPLE ROWS]",
	} {
		assert.Contains(t, md, section)
	}
	assert.Contains(t, md, "File: sales.csv\nRows: 20\nColumns: 4\n")
	assert.Contains(t, md, "- Region (name): 1 (5.00%)")
	assert.Contains(t, md, "- when: text -> datetime")
	assert.Contains(t, md, `- special characters: "Region (name)"`)
	assert.Contains(t, md, "- zscore amount: 1 above |z|>3.0")
	assert.Contains(t, md, "; rows 20\n")
	assert.Contains(t, md, "| id | Region (name) | amount | when |\n| --- | --- | --- | --- |\n| 1 | north | 100 | 2024-01-01 |\n")
	assert.Contains(t, md, "[NOTES]\n- column Region (name) has a single distinct value\n")
}

func TestRowList(t *testing.T) {
	assert.Equal(t, "1, 3", rowList([]int{0, 2}))
	rows := make([]int, 12)
	for i := range rows {
		rows[i] = i
	}
	assert.Equal(t, "1, 2, 3, 4, 5, 6, 7, 8, 9, 10, ... (2 more)", rowList(rows))
}

func TestReport_EmptyTable(t *testing.T) {
	tb, err := table.FromRecords([]string{"a", "b"}, nil)
	require.NoError(t, err)
	md := Build("", tb, nil, Options{}).Markdown()

	assert.Contains(t, md, "Rows: 0\n")
	assert.Contains(t, md, "No missing values")
	assert.Contains(t, md, "No numeric columns")
	assert.NotContains(t, md, "[HEAD AND SAMPLE ROWS]")
	assert.Contains(t, md, "[NOTES]\n- table has no rows\n")
}

func TestPipeTable(t *testing.T) {
	tb, err := table.FromRecords([]string{"", "note"}, [][]string{{"1", "a|b\nc"}, {"", strings.Repeat("x", 20)}})
	require.NoError(t, err)
	got := PipeTable(tb, 10)
	assert.Equal(t, "| Unnamed: 0 | note |\n| --- | --- |\n| 1.0 | a/b c |\n|  | xxxxxxx... |\n", got)
}
