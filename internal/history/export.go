package history

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Export writes h to w as an indented JSON array.
func Export(w io.Writer, h History) error {
	if h == nil {
		h = History{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(h); err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	return nil
}

// ExportFilename is the download name for a history export taken at t.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("pr-reviews-%s.json", t.Format("2006-01-02"))
}
