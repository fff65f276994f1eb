// Package dataio loads tables from delimited text and spreadsheet files and exports cleaned
// tables to csv, tsv, xlsx, sqlite and json.
package dataio

import (
	"errors"
	"path/filepath"
	"strings"
)

// ReadOptions tune how raw files are read. Zero values pick sensible defaults.
type ReadOptions struct {
	// Delimiter overrides the separator of delimited files. 0 infers it from the extension.
	Delimiter rune
	// SheetName selects an xlsx sheet by name; it wins over SheetIndex.
	SheetName string
	// SheetIndex selects an xlsx sheet, 1-based. <= 0 selects the first sheet.
	SheetIndex int
}

// Reader turns raw file content into a header and string records.
type Reader interface {
	CanRead(path string) bool
	// Text reports whether content must be plain text; binary input is rejected up front.
	Text() bool
	Read(path string, data []byte, opt ReadOptions) (header []string, records [][]string, err error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// ReaderFor returns the first registered reader that accepts path.
func ReaderFor(path string) (Reader, error) {
	for _, r := range registry {
		if r.CanRead(path) {
			return r, nil
		}
	}
	return nil, ErrUnsupported
}

// SupportedExtensions lists the file extensions the registered readers accept.
func SupportedExtensions() []string {
	return []string{".csv", ".tsv", ".txt", ".xlsx"}
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
}

// ErrUnsupported indicates a file format no reader accepts.
var ErrUnsupported = errors.New("unsupported input format")

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
