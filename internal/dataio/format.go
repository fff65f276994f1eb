package dataio

import (
	"fmt"
	"strings"
)

// Format is an export file format.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatTSV    Format = "tsv"
	FormatXLSX   Format = "xlsx"
	FormatSQLite Format = "sqlite"
	FormatJSON   Format = "json"
)

// Formats lists every supported export format.
var Formats = []Format{FormatCSV, FormatTSV, FormatXLSX, FormatSQLite, FormatJSON}

// ParseFormat validates a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format %q (expected one of %s)", s, FormatNames())
}

// FormatFromPath infers the format from a file extension, defaulting to csv.
func FormatFromPath(path string) Format {
	switch ext(path) {
	case ".tsv":
		return FormatTSV
	case ".xlsx":
		return FormatXLSX
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	case ".json":
		return FormatJSON
	}
	return FormatCSV
}

// FormatNames returns the formats joined with "|".
func FormatNames() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, "|")
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	if f == FormatSQLite {
		return ".db"
	}
	if f == "" {
		return ".csv"
	}
	return "." + string(f)
}
