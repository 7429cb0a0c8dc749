package output

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dshills/forgereview/internal/history"
	"github.com/dshills/forgereview/internal/review"
)

// YAMLWriter outputs YAML documents with the same field names as JSON.
type YAMLWriter struct{}

func (y *YAMLWriter) WriteResult(w io.Writer, r review.Result) error {
	return writeYAML(w, r)
}

func (y *YAMLWriter) WriteHistory(w io.Writer, h history.History) error {
	if h == nil {
		h = history.History{}
	}
	return writeYAML(w, h)
}

func (y *YAMLWriter) WriteStats(w io.Writer, s history.Stats) error {
	return writeYAML(w, s)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing YAML: %w", err)
	}
	return enc.Close()
}
