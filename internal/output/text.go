package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/dshills/forgereview/internal/history"
	"github.com/dshills/forgereview/internal/review"
)

const defaultWidth = 100

// TextWriter outputs human-readable text.
type TextWriter struct {
	Color bool
	Width int
}

func (t *TextWriter) WriteResult(w io.Writer, r review.Result) error {
	ew := &errWriter{w: w}

	heading := t.style(color.Bold, color.FgCyan)
	ew.printf("%s\n", heading.Sprintf("PR Review: %s", terminalSafe(r.Title, false)))
	ew.printf("Provider: %s | Changed files: %d | Score: %s\n", r.Provider, r.ChangedFiles, scoreLabel(r.Review))
	ew.printf("URL: %s\n", terminalSafe(r.PRURL, false))
	if r.Cached {
		ew.println(t.style(color.Faint).Sprint("(cached review)"))
	}
	if r.Redactions > 0 {
		ew.println(t.style(color.FgYellow).Sprintf("%d secret(s) redacted from the diff before review", r.Redactions))
	}
	ew.println(strings.Repeat("─", 60))
	if ew.err != nil {
		return ew.err
	}

	body := terminalSafe(r.Review, true)
	if t.Color {
		rendered, err := t.render(body)
		if err == nil {
			body = rendered
		}
	}
	ew.println(strings.TrimRight(body, "\n"))
	return ew.err
}

func (t *TextWriter) WriteHistory(w io.Writer, h history.History) error {
	if len(h) == 0 {
		_, err := fmt.Fprintln(w, "No reviews yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	ew := &errWriter{w: tw}
	ew.println("TIME\tPROVIDER\tSCORE\tFILES\tTITLE")
	for _, r := range h {
		ew.printf("%s\t%s\t%s\t%d\t%s\n", shortTime(r.Timestamp), r.Provider, scoreLabel(r.Review), r.ChangedFiles, truncate(terminalSafe(r.Title, false), 60))
	}
	if ew.err != nil {
		return ew.err
	}
	return tw.Flush()
}

func (t *TextWriter) WriteStats(w io.Writer, s history.Stats) error {
	ew := &errWriter{w: w}
	ew.printf("Total reviews:   %d\n", s.TotalReviews)
	ew.printf("Average score:   %.1f\n", s.AvgScore)
	ew.printf("Providers used:  %d\n", s.Providers)
	return ew.err
}

func (t *TextWriter) style(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if t.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (t *TextWriter) render(md string) (string, error) {
	width := t.Width
	if width <= 0 {
		width = defaultWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// shortTime trims an RFC 3339 timestamp to minute precision for tables.
func shortTime(ts string) string {
	if len(ts) >= 16 {
		return strings.Replace(ts[:16], "T", " ", 1)
	}
	return ts
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
