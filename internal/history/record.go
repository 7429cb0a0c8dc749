package history

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/forgereview/internal/forge"
)

// MaxRecords is the number of records kept; older records are dropped.
const MaxRecords = 50

// Record is one completed review. Records are never modified after they are
// stored.
type Record struct {
	Timestamp    string     `json:"timestamp" yaml:"timestamp"`
	PRURL        string     `json:"pr_url" yaml:"pr_url"`
	Provider     forge.Kind `json:"provider" yaml:"provider"`
	Title        string     `json:"title" yaml:"title"`
	Review       string     `json:"review" yaml:"review"`
	ChangedFiles int        `json:"changed_files" yaml:"changed_files"`
}

// History is an ordered sequence of records, newest first.
type History []Record

// Stats summarizes a History.
type Stats struct {
	TotalReviews int     `json:"total_reviews" yaml:"total_reviews"`
	AvgScore     float64 `json:"avg_score" yaml:"avg_score"`
	Providers    int     `json:"providers" yaml:"providers"`
}

//go:generate mockgen -destination=../../mocks/mock_store.go -package=mocks github.com/dshills/forgereview/internal/history Store

// Store persists review history.
type Store interface {
	// Load returns the stored history, newest first.
	Load(ctx context.Context) (History, error)
	// Append stamps r with the current time, stores it at the head of the
	// history and drops records beyond MaxRecords. It returns the stored record.
	Append(ctx context.Context, r Record) (Record, error)
	// Stats computes statistics over the stored history.
	Stats(ctx context.Context) (Stats, error)
}

const scoreToken = "SCORE:"

// ParseScore extracts the score from the first "SCORE: NN/100" token in text.
// It reports false when there is no token, the value is not an integer, or it
// falls outside 0..100.
func ParseScore(text string) (int, bool) {
	i := strings.Index(text, scoreToken)
	if i < 0 {
		return 0, false
	}
	rest := text[i+len(scoreToken):]
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		rest = rest[:slash]
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || n < 0 || n > 100 {
		return 0, false
	}
	return n, true
}

// ComputeStats returns the total record count, the mean of all parseable
// scores rounded to one decimal (0 when none parse), and the number of
// distinct providers.
func ComputeStats(h History) Stats {
	var sum, scored int
	providers := make(map[forge.Kind]struct{})
	for _, r := range h {
		providers[r.Provider] = struct{}{}
		if s, ok := ParseScore(r.Review); ok {
			sum += s
			scored++
		}
	}
	st := Stats{TotalReviews: len(h), Providers: len(providers)}
	if scored > 0 {
		st.AvgScore = math.Round(float64(sum)/float64(scored)*10) / 10
	}
	return st
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// prepend returns h with r at the head, truncated to MaxRecords.
func prepend(h History, r Record) History {
	out := make(History, 0, min(len(h)+1, MaxRecords))
	out = append(out, r)
	for _, old := range h {
		if len(out) == MaxRecords {
			break
		}
		out = append(out, old)
	}
	return out
}
