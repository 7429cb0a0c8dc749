package output

import (
	"fmt"
	"io"
	"os"

	"github.com/dshills/forgereview/internal/history"
	"github.com/dshills/forgereview/internal/review"
)

// Formats lists the accepted output formats.
var Formats = []string{"text", "json", "markdown", "yaml"}

// Writer renders reviews and history in one format.
type Writer interface {
	WriteResult(w io.Writer, r review.Result) error
	WriteHistory(w io.Writer, h history.History) error
	WriteStats(w io.Writer, s history.Stats) error
}

// Options tune the text writer. Other formats ignore them.
type Options struct {
	// Color enables ANSI styling and markdown rendering of the review body.
	Color bool
	// Width is the wrap width for rendered markdown. 0 means 100.
	Width int
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string, opts Options) (Writer, error) {
	switch format {
	case "", "text":
		return &TextWriter{Color: opts.Color, Width: opts.Width}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	case "yaml", "yml":
		return &YAMLWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteResult writes r to outPath, or to stdout when outPath is empty. Color
// is never used for files.
func WriteResult(stdout io.Writer, r review.Result, format, outPath string, opts Options) error {
	if outPath != "" {
		opts.Color = false
	}
	writer, err := GetWriter(format, opts)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = stdout
	}

	return writer.WriteResult(w, r)
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func scoreLabel(review string) string {
	if s, ok := history.ParseScore(review); ok {
		return fmt.Sprintf("%d/100", s)
	}
	return "-"
}
