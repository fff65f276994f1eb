package pipeline

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/datatidy-cli/internal/clean"
)

// ErrorKind classifies a failed run.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindLoad
	KindExport
)

func (k ErrorKind) String() string {
	switch k {
	case KindLoad:
		return "load"
	case KindExport:
		return "export"
	default:
		return "internal"
	}
}

// LoadError indicates the input could not be read or parsed into a table.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("failed to load input: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ExportError indicates the cleaned table could not be written.
type ExportError struct {
	Path   string
	Format string
	Err    error
}

func (e *ExportError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("failed to export %s as %s: %v", e.Path, e.Format, e.Err)
	}
	return fmt.Sprintf("failed to export %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// ColumnError is a per-column failure that a stage absorbed. It never fails a run.
type ColumnError = clean.ColumnError

// KindOf reports the kind of a run error.
func KindOf(err error) ErrorKind {
	var le *LoadError
	if errors.As(err, &le) {
		return KindLoad
	}
	var ee *ExportError
	if errors.As(err, &ee) {
		return KindExport
	}
	return KindInternal
}
