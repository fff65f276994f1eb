package dataio

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// SafeWriteFile writes data to a temp file and atomically renames it into place. Missing
// parent directories are created.
func SafeWriteFile(fs afero.Fs, path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

// PrettyJSON marshals a value as indented JSON.
func PrettyJSON(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return b, nil
}

// OutputPath derives "<dir>/<stem>_cleaned.<ext>" for an input file. An empty dir keeps the
// input's directory.
func OutputPath(input string, format Format, dir string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, stem+"_cleaned"+format.Ext())
}

// WithExt swaps the extension of path for the one of format.
func WithExt(path string, format Format) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + format.Ext()
}

// HumanSize renders a byte count as B, KB, MB or GB with one decimal.
func HumanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	f := float64(n)
	for _, suffix := range []string{"KB", "MB", "GB"} {
		f /= unit
		if f < unit || suffix == "GB" {
			return fmt.Sprintf("%.1f %s", f, suffix)
		}
	}
	return fmt.Sprintf("%d B", n)
}
