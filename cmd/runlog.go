package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/datatidy-cli/internal/dataio"
	"github.com/KaramelBytes/datatidy-cli/internal/pipeline"
)

// runRecord is what --log persists for one run.
type runRecord struct {
	Input  string          `json:"input" yaml:"input"`
	Output string          `json:"output,omitempty" yaml:"output,omitempty"`
	Format string          `json:"format,omitempty" yaml:"format,omitempty"`
	Text   string          `json:"instruction,omitempty" yaml:"instruction,omitempty"`
	Result pipeline.Result `json:"result" yaml:"result"`
}

// writeRunLog saves rec as JSON when path ends in .json and as YAML otherwise.
func writeRunLog(fs afero.Fs, path string, rec runRecord) error {
	var (
		b   []byte
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		b, err = dataio.PrettyJSON(rec)
	} else {
		b, err = yaml.Marshal(rec)
	}
	if err != nil {
		return fmt.Errorf("encode run log: %w", err)
	}
	if err := dataio.SafeWriteFile(fs, path, b); err != nil {
		return fmt.Errorf("write run log: %w", err)
	}
	return nil
}
