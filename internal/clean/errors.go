package clean

import "fmt"

// ColumnError is a recoverable failure confined to one column. The stage leaves that column
// unchanged and carries on with the rest of the table.
type ColumnError struct {
	Stage  string
	Column string
	Err    error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s: column %q: %v", e.Stage, e.Column, e.Err)
}

func (e *ColumnError) Unwrap() error { return e.Err }
