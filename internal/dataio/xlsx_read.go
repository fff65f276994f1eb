package dataio

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
)

type xlsxReader struct{}

var errSheetNotFound = errors.New("not found")

func (xlsxReader) CanRead(p string) bool { return ext(p) == ".xlsx" }

func (xlsxReader) Text() bool { return false }

func (xlsxReader) Read(p string, data []byte, opt ReadOptions) ([]string, [][]string, error) {
	wb, err := openWorkbook(data)
	if err != nil {
		return nil, nil, err
	}
	var sheet []byte
	target, err := wb.sheetPath(opt.SheetName, opt.SheetIndex)
	if err == nil {
		if sheet = wb.file(target); sheet == nil {
			err = fmt.Errorf("sheet index %d %w", max(opt.SheetIndex, 1), errSheetNotFound)
		}
	}
	if err != nil {
		if errors.Is(err, errSheetNotFound) {
			names, _ := SheetNames(data)
			err = fmt.Errorf("%w (available sheets: %s)", err, strings.Join(names, ", "))
		}
		return nil, nil, fmt.Errorf("%w in workbook '%s'", err, filepath.Base(p))
	}
	rr := newRowReader(sheet, wb.shared)
	header, ok := rr.next()
	if !ok || len(header) == 0 {
		return nil, nil, errors.New("no columns to parse from sheet")
	}
	var records [][]string
	for {
		row, ok := rr.next()
		if !ok {
			break
		}
		if len(row) > len(header) && trailingEmpty(row[len(header):]) {
			row = row[:len(header)]
		}
		records = append(records, row)
	}
	return header, records, nil
}

// SheetNames lists the sheets of an xlsx workbook in declaration order.
func SheetNames(data []byte) ([]string, error) {
	wb, err := openWorkbook(data)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(wb.sheets))
	for i, s := range wb.sheets {
		out[i] = s.name
	}
	return out, nil
}

func trailingEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

type sheetRef struct {
	name string
	id   int
	rid  string
}

type workbook struct {
	zr     *zip.Reader
	sheets []sheetRef
	rels   map[string]string
	shared []string
}

func openWorkbook(data []byte) (*workbook, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	wb := &workbook{zr: zr}
	wb.sheets = parseSheets(wb.file("xl/workbook.xml"))
	wb.rels = parseRels(wb.file("xl/_rels/workbook.xml.rels"))
	wb.shared = parseSharedStrings(wb.file("xl/sharedStrings.xml"))
	return wb, nil
}

func (wb *workbook) file(name string) []byte {
	for _, f := range wb.zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return b
	}
	return nil
}

// sheetPath resolves the zip entry of the requested sheet. A name wins over an index; the
// index is 1-based and falls back to worksheets/sheetN.xml when the workbook has no match.
func (wb *workbook) sheetPath(name string, index int) (string, error) {
	if name != "" {
		for _, s := range wb.sheets {
			if strings.EqualFold(s.name, name) {
				if rel, ok := wb.rels[s.rid]; ok {
					return zipPath(rel), nil
				}
			}
		}
		return "", fmt.Errorf("sheet '%s' %w", name, errSheetNotFound)
	}
	if index <= 0 {
		index = 1
	}
	if index <= len(wb.sheets) {
		if rel, ok := wb.rels[wb.sheets[index-1].rid]; ok {
			return zipPath(rel), nil
		}
	}
	for _, s := range wb.sheets {
		if s.id == index {
			if rel, ok := wb.rels[s.rid]; ok {
				return zipPath(rel), nil
			}
		}
	}
	return path.Join("xl", "worksheets", fmt.Sprintf("sheet%d.xml", index)), nil
}

// zipPath maps a relationship target such as "/xl/worksheets/sheet1.xml" or
// "worksheets/sheet1.xml" to its zip entry name.
func zipPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}

func walkXML(data []byte, fn func(tok xml.Token)) {
	if len(data) == 0 {
		return
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		fn(tok)
	}
}

func parseSheets(data []byte) []sheetRef {
	var out []sheetRef
	walkXML(data, func(tok xml.Token) {
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			return
		}
		var s sheetRef
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				s.name = a.Value
			case "sheetId":
				s.id = atoiSafe(a.Value)
			case "id":
				s.rid = a.Value
			}
		}
		out = append(out, s)
	})
	return out
}

func parseRels(data []byte) map[string]string {
	out := map[string]string{}
	walkXML(data, func(tok xml.Token) {
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			return
		}
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" && target != "" {
			out[id] = target
		}
	})
	return out
}

func parseSharedStrings(data []byte) []string {
	var (
		out []string
		buf strings.Builder
		inT bool
	)
	walkXML(data, func(tok xml.Token) {
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
				buf.Reset()
			}
		case xml.CharData:
			if inT {
				buf.Write(se)
			}
		}
	})
	return out
}

// rowReader streams <row> elements of a worksheet as dense string slices.
type rowReader struct {
	dec    *xml.Decoder
	shared []string
}

func newRowReader(data []byte, shared []string) *rowReader {
	return &rowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

func (r *rowReader) next() ([]string, bool) {
	var (
		row   []string
		inRow bool
		width int
	)
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch {
			case se.Name.Local == "row":
				inRow, row, width = true, nil, 0
			case inRow && se.Name.Local == "c":
				var ref, typ string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				idx := len(row)
				if ci := colIndex(ref); ci >= 0 {
					idx = ci
				}
				if idx+1 > width {
					width = idx + 1
				}
				val := r.cellValue(typ)
				if len(row) <= idx {
					grown := make([]string, idx+1)
					copy(grown, row)
					row = grown
				}
				row[idx] = val
			}
		case xml.EndElement:
			if se.Name.Local == "row" && inRow {
				if len(row) < width {
					grown := make([]string, width)
					copy(grown, row)
					row = grown
				}
				return row, true
			}
		}
	}
}

// cellValue consumes tokens up to the closing </c> and decodes the value by cell type.
func (r *rowReader) cellValue(typ string) string {
	var val string
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				var sb strings.Builder
				for {
					tk, err := r.dec.Token()
					if err != nil {
						break
					}
					if end, ok := tk.(xml.EndElement); ok && (end.Name.Local == "v" || end.Name.Local == "t") {
						break
					}
					if ch, ok := tk.(xml.CharData); ok {
						sb.Write(ch)
					}
				}
				val += sb.String()
			}
		case xml.EndElement:
			if se.Name.Local != "c" {
				continue
			}
			switch typ {
			case "s":
				idx := atoiSafe(val)
				if idx >= 0 && idx < len(r.shared) {
					return r.shared[idx]
				}
				return ""
			case "b":
				if val == "1" {
					return "True"
				}
				return "False"
			}
			return val
		}
	}
}

// colIndex converts a cell reference like "C12" to a 0-based column index.
func colIndex(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			return idx - 1
		}
	}
	return idx - 1
}

func atoiSafe(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}
