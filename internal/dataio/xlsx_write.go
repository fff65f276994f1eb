package dataio

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/KaramelBytes/datatidy-cli/internal/pipeline"
	"github.com/KaramelBytes/datatidy-cli/internal/table"
)

// maxColumnWidth caps auto-sized spreadsheet columns.
const maxColumnWidth = 50

// Sheet names of the xlsx export.
const (
	SheetData    = "Cleaned Data"
	SheetSummary = "Summary"
	SheetColumns = "Column Info"
)

type xcell struct {
	kind byte // 'n' number, 'b' bool, 's' string
	v    string
}

func numCell(s string) xcell { return xcell{kind: 'n', v: s} }
func strCell(s string) xcell { return xcell{kind: 's', v: s} }

type xsheet struct {
	name string
	rows [][]xcell
}

func toXCell(c table.Cell) xcell {
	switch c.Kind() {
	case table.KindNull:
		return xcell{}
	case table.KindInt:
		i, _ := c.Int()
		return numCell(strconv.FormatInt(i, 10))
	case table.KindFloat:
		f, _ := c.Float64()
		return numCell(strconv.FormatFloat(f, 'g', -1, 64))
	case table.KindBool:
		b, _ := c.Bool()
		if b {
			return xcell{kind: 'b', v: "1"}
		}
		return xcell{kind: 'b', v: "0"}
	default:
		return strCell(c.String())
	}
}

func dataSheet(t table.Table) xsheet {
	rows := make([][]xcell, 0, t.NumRows()+1)
	head := make([]xcell, t.NumCols())
	for j, n := range t.Names() {
		head[j] = strCell(n)
	}
	rows = append(rows, head)
	for r := 0; r < t.NumRows(); r++ {
		row := make([]xcell, t.NumCols())
		for j, col := range t.Columns {
			row[j] = toXCell(col.Cells[r])
		}
		rows = append(rows, row)
	}
	return xsheet{name: SheetData, rows: rows}
}

func summarySheet(s pipeline.Summary) xsheet {
	itoa := func(n int) xcell { return numCell(strconv.Itoa(n)) }
	return xsheet{name: SheetSummary, rows: [][]xcell{
		{strCell("Metric"), strCell("Value")},
		{strCell("Original Rows"), itoa(s.OriginalRows)},
		{strCell("Original Columns"), itoa(s.OriginalColumns)},
		{strCell("Final Rows"), itoa(s.FinalRows)},
		{strCell("Final Columns"), itoa(s.FinalColumns)},
		{strCell("Rows Removed"), itoa(s.OriginalRows - s.FinalRows)},
		{strCell("Columns Removed"), itoa(s.OriginalColumns - s.FinalColumns)},
		{strCell("Missing Values"), itoa(s.MissingValues)},
	}}
}

func columnInfoSheet(t table.Table) xsheet {
	rows := [][]xcell{{strCell("Column"), strCell("Type"), strCell("Non-Null Count"), strCell("Missing Count"), strCell("Unique Values")}}
	for _, col := range t.Columns {
		nulls := col.NullCount()
		uniq := map[string]struct{}{}
		for _, c := range col.Cells {
			if !c.IsNull() {
				uniq[string(c.AppendKey(nil))] = struct{}{}
			}
		}
		rows = append(rows, []xcell{
			strCell(col.Name),
			strCell(col.Type.String()),
			numCell(strconv.Itoa(len(col.Cells) - nulls)),
			numCell(strconv.Itoa(nulls)),
			numCell(strconv.Itoa(len(uniq))),
		})
	}
	return xsheet{name: SheetColumns, rows: rows}
}

// encodeXLSX writes a minimal SpreadsheetML package holding the given sheets.
func encodeXLSX(w io.Writer, sheets []xsheet) error {
	zw := zip.NewWriter(w)
	add := func(name, body string) error {
		f, err := zw.Create(name)
		if err != nil {
			return err
		}
		_, err = io.WriteString(f, body)
		return err
	}

	var ct, wb, rels bytes.Buffer
	ct.WriteString(xml.Header + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>`)
	wb.WriteString(xml.Header + `<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><sheets>`)
	rels.WriteString(xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)

	for i, s := range sheets {
		n := i + 1
		fmt.Fprintf(&ct, `<Override PartName="/xl/worksheets/sheet%d.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>`, n)
		fmt.Fprintf(&wb, `<sheet name="%s" sheetId="%d" r:id="rId%d"/>`, escape(s.name), n, n)
		fmt.Fprintf(&rels, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet%d.xml"/>`, n, n)
	}
	ct.WriteString(`</Types>`)
	wb.WriteString(`</sheets></workbook>`)
	rels.WriteString(`</Relationships>`)

	root := xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>` +
		`</Relationships>`
	for _, part := range []struct{ name, body string }{
		{"[Content_Types].xml", ct.String()},
		{"_rels/.rels", root},
		{"xl/workbook.xml", wb.String()},
		{"xl/_rels/workbook.xml.rels", rels.String()},
	} {
		if err := add(part.name, part.body); err != nil {
			return fmt.Errorf("write %s: %w", part.name, err)
		}
	}
	// content sniffers expect [Content_Types].xml as the first entry
	for i, s := range sheets {
		if err := add(fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1), sheetXML(s)); err != nil {
			return fmt.Errorf("write sheet %q: %w", s.name, err)
		}
	}
	return zw.Close()
}

func sheetXML(s xsheet) string {
	var b bytes.Buffer
	b.WriteString(xml.Header + `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">`)
	if widths := columnWidths(s.rows); len(widths) > 0 {
		b.WriteString(`<cols>`)
		for i, w := range widths {
			fmt.Fprintf(&b, `<col min="%d" max="%d" width="%d" customWidth="1"/>`, i+1, i+1, w)
		}
		b.WriteString(`</cols>`)
	}
	b.WriteString(`<sheetData>`)
	for r, row := range s.rows {
		fmt.Fprintf(&b, `<row r="%d">`, r+1)
		for c, cell := range row {
			ref := colName(c) + strconv.Itoa(r+1)
			switch cell.kind {
			case 'n':
				fmt.Fprintf(&b, `<c r="%s"><v>%s</v></c>`, ref, cell.v)
			case 'b':
				fmt.Fprintf(&b, `<c r="%s" t="b"><v>%s</v></c>`, ref, cell.v)
			case 's':
				fmt.Fprintf(&b, `<c r="%s" t="inlineStr"><is><t xml:space="preserve">%s</t></is></c>`, ref, escape(cell.v))
			}
		}
		b.WriteString(`</row>`)
	}
	b.WriteString(`</sheetData></worksheet>`)
	return b.String()
}

// columnWidths sizes each column to its longest value plus padding, capped at maxColumnWidth.
func columnWidths(rows [][]xcell) []int {
	var widths []int
	for _, row := range rows {
		for c, cell := range row {
			for len(widths) <= c {
				widths = append(widths, 0)
			}
			if n := utf8.RuneCountInString(cell.v) + 2; n > widths[c] {
				widths[c] = n
			}
		}
	}
	for i, w := range widths {
		if w > maxColumnWidth {
			widths[i] = maxColumnWidth
		}
	}
	return widths
}

// colName converts a 0-based column index to spreadsheet letters (0 -> A, 26 -> AA).
func colName(i int) string {
	var out []byte
	for i++; i > 0; i = (i - 1) / 26 {
		out = append([]byte{byte('A' + (i-1)%26)}, out...)
	}
	return string(out)
}

func escape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
