package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/forgereview/internal/forge"
	"github.com/dshills/forgereview/internal/history"
	"github.com/dshills/forgereview/internal/review"
)

//go:embed templates/*.html
var templateFS embed.FS

// maxBodyBytes caps JSON and form request bodies.
const maxBodyBytes = 1 << 20

// recentOnIndex is the number of history records shown on the dashboard.
const recentOnIndex = 10

// Runner performs one review. *review.Engine satisfies it.
type Runner interface {
	Run(ctx context.Context, prURL string) (review.Result, error)
}

// Handler serves the HTTP endpoints.
type Handler struct {
	runner Runner
	store  history.Store
	log    zerolog.Logger
	page   *template.Template
	now    func() time.Time
}

// NewHandler creates a Handler. store backs the history and stats endpoints
// and should be the same store runner records into.
func NewHandler(runner Runner, store history.Store, log zerolog.Logger) (*Handler, error) {
	page, err := template.New("index.html").Funcs(template.FuncMap{
		"score": func(text string) string {
			if s, ok := history.ParseScore(text); ok {
				return fmt.Sprintf("%d/100", s)
			}
			return "-"
		},
	}).ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Handler{runner: runner, store: store, log: log, page: page, now: time.Now}, nil
}

// reviewResponse is the body returned by both review endpoints.
type reviewResponse struct {
	Success      bool       `json:"success"`
	Review       string     `json:"review,omitempty"`
	Provider     forge.Kind `json:"provider,omitempty"`
	Title        string     `json:"title,omitempty"`
	ChangedFiles int        `json:"changed_files"`
	Error        string     `json:"error,omitempty"`
}

func successResponse(res review.Result) reviewResponse {
	return reviewResponse{
		Success:      true,
		Review:       res.Review,
		Provider:     res.Provider,
		Title:        res.Title,
		ChangedFiles: res.ChangedFiles,
	}
}

type indexData struct {
	Stats   history.Stats
	History history.History
}

// Index renders the dashboard.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	hist, err := h.store.Load(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	data := indexData{Stats: history.ComputeStats(hist), History: hist}
	if len(data.History) > recentOnIndex {
		data.History = data.History[:recentOnIndex]
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.page.Execute(w, data); err != nil {
		h.logger(r).Error().Err(err).Msg("rendering index")
	}
}

// FormReview handles the dashboard form. Review failures are reported in the
// body with success=false and status 200.
func (h *Handler) FormReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		h.respondJSON(w, r, http.StatusBadRequest, reviewResponse{Error: "invalid form body"})
		return
	}
	prURL := strings.TrimSpace(r.PostForm.Get("pr_url"))
	if prURL == "" {
		h.respondJSON(w, r, http.StatusBadRequest, reviewResponse{Error: "PR URL is required"})
		return
	}

	res, err := h.runner.Run(r.Context(), prURL)
	if err != nil {
		h.logReviewError(r, prURL, err)
		h.respondJSON(w, r, http.StatusOK, reviewResponse{Error: err.Error()})
		return
	}
	h.respondJSON(w, r, http.StatusOK, successResponse(res))
}

type apiReviewRequest struct {
	PRURL string `json:"pr_url"`
}

// APIReview handles programmatic review requests.
func (h *Handler) APIReview(w http.ResponseWriter, r *http.Request) {
	var req apiReviewRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		h.respondJSON(w, r, http.StatusBadRequest, reviewResponse{Error: "invalid JSON body"})
		return
	}
	prURL := strings.TrimSpace(req.PRURL)
	if prURL == "" {
		h.respondJSON(w, r, http.StatusBadRequest, reviewResponse{Error: "PR URL is required"})
		return
	}

	res, err := h.runner.Run(r.Context(), prURL)
	if err != nil {
		h.logReviewError(r, prURL, err)
		h.respondJSON(w, r, reviewErrorStatus(err), reviewResponse{Error: err.Error()})
		return
	}
	h.respondJSON(w, r, http.StatusOK, successResponse(res))
}

// History returns the stored history, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	hist, err := h.store.Load(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if hist == nil {
		hist = history.History{}
	}
	h.respondJSON(w, r, http.StatusOK, hist)
}

// Export returns the stored history as a JSON download.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	hist, err := h.store.Load(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", history.ExportFilename(h.now())))
	if err := history.Export(w, hist); err != nil {
		h.logger(r).Error().Err(err).Msg("writing export")
	}
}

// Stats returns history statistics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.store.Stats(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, st)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// reviewErrorStatus maps a review failure to an HTTP status: bad input is
// 422, an upstream forge failure is 502 and anything else is 500.
func reviewErrorStatus(err error) int {
	var unsupported *forge.UnsupportedProviderError
	var invalid *forge.InvalidURLFormatError
	var fetch *forge.FetchError
	switch {
	case errors.As(err, &unsupported), errors.As(err, &invalid):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) logReviewError(r *http.Request, prURL string, err error) {
	h.logger(r).Warn().Err(err).Str("pr_url", prURL).Msg("review failed")
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger(r).Error().Err(err).Msg("http server error")
	h.respondJSON(w, r, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// logger returns the request-scoped logger, or the handler's own when the
// request did not pass through the logging middleware.
func (h *Handler) logger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &h.log
}

func (h *Handler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger(r).Error().Err(err).Msg("failed to write json response")
	}
}
