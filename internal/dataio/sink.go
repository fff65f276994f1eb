package dataio

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"

	"github.com/KaramelBytes/datatidy-cli/internal/pipeline"
	"github.com/KaramelBytes/datatidy-cli/internal/table"
)

// Sink writes a cleaned table to a file. It implements pipeline.Exporter.
type Sink struct {
	Fs     afero.Fs
	Path   string
	Format Format
}

var _ pipeline.Exporter = Sink{}

func (s Sink) fs() afero.Fs {
	if s.Fs == nil {
		return afero.NewOsFs()
	}
	return s.Fs
}

// Export encodes t in the sink's format and writes it atomically. Every failure is a
// *pipeline.ExportError.
func (s Sink) Export(ctx context.Context, t table.Table, sum pipeline.Summary) error {
	format := s.Format
	if format == "" {
		format = FormatFromPath(s.Path)
	}
	fail := func(err error) error {
		return &pipeline.ExportError{Path: s.Path, Format: string(format), Err: err}
	}
	data, err := Encode(ctx, t, sum, format)
	if err != nil {
		return fail(err)
	}
	if err := SafeWriteFile(s.fs(), s.Path, data); err != nil {
		return fail(err)
	}
	return nil
}

// Size returns the size of the written file.
func (s Sink) Size() (int64, error) {
	fi, err := s.fs().Stat(s.Path)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// Encode renders t in the given format.
func Encode(ctx context.Context, t table.Table, sum pipeline.Summary, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return encodeDelimited(t, ',')
	case FormatTSV:
		return encodeDelimited(t, '\t')
	case FormatJSON:
		return encodeJSON(t)
	case FormatXLSX:
		var buf bytes.Buffer
		if err := encodeXLSX(&buf, []xsheet{dataSheet(t), summarySheet(sum), columnInfoSheet(t)}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatSQLite:
		return encodeSQLite(ctx, t)
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

func encodeDelimited(t table.Table, comma rune) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = comma
	if err := w.WriteAll(t.Records()); err != nil {
		return nil, fmt.Errorf("write records: %w", err)
	}
	return buf.Bytes(), nil
}

// encodeJSON writes an array of row objects with keys in column order.
func encodeJSON(t table.Table) ([]byte, error) {
	var buf bytes.Buffer
	names := t.Names()
	keys := make([][]byte, len(names))
	for i, n := range names {
		k, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}
	buf.WriteString("[")
	for r := 0; r < t.NumRows(); r++ {
		if r > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  {")
		for j, col := range t.Columns {
			if j > 0 {
				buf.WriteString(", ")
			}
			buf.Write(keys[j])
			buf.WriteString(": ")
			v, err := json.Marshal(jsonValue(col.Cells[r]))
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", r+1, col.Name, err)
			}
			buf.Write(v)
		}
		buf.WriteString("}")
	}
	if t.NumRows() > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")
	return buf.Bytes(), nil
}

func jsonValue(c table.Cell) any {
	switch c.Kind() {
	case table.KindNull:
		return nil
	case table.KindInt:
		v, _ := c.Int()
		return v
	case table.KindFloat:
		v, _ := c.Float64()
		return v
	case table.KindBool:
		v, _ := c.Bool()
		return v
	default:
		return c.String()
	}
}
