package output

import (
	"io"
	"strings"

	"github.com/dshills/forgereview/internal/history"
	"github.com/dshills/forgereview/internal/review"
)

// MarkdownWriter outputs a PR-comment-friendly markdown document.
type MarkdownWriter struct{}

func (m *MarkdownWriter) WriteResult(w io.Writer, r review.Result) error {
	ew := &errWriter{w: w}
	ew.printf("## PR Review: %s\n\n", terminalSafe(r.Title, false))
	ew.printf("| Provider | Changed files | Score |\n")
	ew.printf("|----------|---------------|-------|\n")
	ew.printf("| %s | %d | %s |\n\n", r.Provider, r.ChangedFiles, scoreLabel(r.Review))
	ew.printf("<%s>\n\n", terminalSafe(r.PRURL, false))
	ew.println(strings.TrimRight(terminalSafe(r.Review, true), "\n"))
	return ew.err
}

func (m *MarkdownWriter) WriteHistory(w io.Writer, h history.History) error {
	ew := &errWriter{w: w}
	ew.println("## Review History\n")
	if len(h) == 0 {
		ew.println("No reviews yet.")
		return ew.err
	}
	ew.println("| Time | Provider | Score | Files | Title |")
	ew.println("|------|----------|-------|-------|-------|")
	for _, r := range h {
		ew.printf("| %s | %s | %s | %d | [%s](%s) |\n",
			shortTime(r.Timestamp), r.Provider, scoreLabel(r.Review), r.ChangedFiles, escapeCell(terminalSafe(r.Title, false)), terminalSafe(r.PRURL, false))
	}
	return ew.err
}

func (m *MarkdownWriter) WriteStats(w io.Writer, s history.Stats) error {
	ew := &errWriter{w: w}
	ew.println("## Review Statistics\n")
	ew.println("| Total reviews | Average score | Providers |")
	ew.println("|---------------|---------------|-----------|")
	ew.printf("| %d | %.1f | %d |\n", s.TotalReviews, s.AvgScore, s.Providers)
	return ew.err
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "[", `\[`)
	s = strings.ReplaceAll(s, "]", `\]`)
	return strings.ReplaceAll(s, "\n", " ")
}
