package dataio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"github.com/KaramelBytes/datatidy-cli/internal/pipeline"
	"github.com/KaramelBytes/datatidy-cli/internal/table"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Source loads a table from a file. It implements pipeline.Loader.
type Source struct {
	Fs      afero.Fs
	Path    string
	Options ReadOptions
}

var _ pipeline.Loader = Source{}

// Load reads, sniffs and parses the file. Every failure is a *pipeline.LoadError.
func (s Source) Load(ctx context.Context) (table.Table, error) {
	fail := func(err error) (table.Table, error) {
		return table.Table{}, &pipeline.LoadError{Path: s.Path, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	fs := s.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	r, err := ReaderFor(s.Path)
	if err != nil {
		return fail(fmt.Errorf("%w: %s (supported: %s)", err, ext(s.Path), strings.Join(SupportedExtensions(), ", ")))
	}
	data, err := afero.ReadFile(fs, s.Path)
	if err != nil {
		return fail(fmt.Errorf("read file: %w", err))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fail(errors.New("file is empty"))
	}
	if err := sniff(r, data); err != nil {
		return fail(err)
	}
	header, records, err := r.Read(s.Path, data, s.Options)
	if err != nil {
		return fail(err)
	}
	t, err := table.FromRecords(header, records)
	if err != nil {
		return fail(err)
	}
	return t, nil
}

// sniff rejects content that does not match what the reader expects.
func sniff(r Reader, data []byte) error {
	mt := mimetype.Detect(data)
	if r.Text() {
		for m := mt; m != nil; m = m.Parent() {
			if m.Is("text/plain") {
				return nil
			}
		}
		return fmt.Errorf("content is not delimited text (detected %s)", mt.String())
	}
	if mt.Is(xlsxMIME) || mt.Is("application/zip") {
		return nil
	}
	return fmt.Errorf("content is not an xlsx workbook (detected %s)", mt.String())
}
