package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/forgereview/internal/history"
	"github.com/dshills/forgereview/internal/review"
)

// JSONWriter outputs indented JSON.
type JSONWriter struct{}

func (j *JSONWriter) WriteResult(w io.Writer, r review.Result) error {
	return writeJSON(w, r)
}

func (j *JSONWriter) WriteHistory(w io.Writer, h history.History) error {
	return history.Export(w, h)
}

func (j *JSONWriter) WriteStats(w io.Writer, s history.Stats) error {
	return writeJSON(w, s)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
