package dataio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type csvReader struct{}

func (csvReader) CanRead(path string) bool {
	switch ext(path) {
	case ".csv", ".tsv", ".txt":
		return true
	}
	return false
}

func (csvReader) Text() bool { return true }

func (csvReader) Read(path string, data []byte, opt ReadOptions) ([]string, [][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delimiterFor(path, opt.Delimiter)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.New("no columns to parse from file")
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read record: %w", err)
		}
		records = append(records, rec)
	}
	return header, records, nil
}

// delimiterFor returns d when set, a tab for .tsv files and a comma otherwise.
func delimiterFor(path string, d rune) rune {
	if d != 0 {
		return d
	}
	if ext(path) == ".tsv" {
		return '\t'
	}
	return ','
}
