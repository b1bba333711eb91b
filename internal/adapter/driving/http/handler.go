package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/trustscore/internal/application"
	"github.com/ericfisherdev/trustscore/internal/domain/model"
	"github.com/ericfisherdev/trustscore/internal/domain/port/driven"
)

const (
	maxRequestBody   = 1 << 20
	defaultListLimit = 20
	maxListLimit     = 100
)

// Scorer scores a repository given its URL. *application.ScoreService satisfies it.
type Scorer interface {
	Score(ctx context.Context, rawURL string) (*model.NetScoreReport, error)
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	scorer  Scorer
	reports driven.ReportStore
	logger  *slog.Logger
}

// NewHandler creates a Handler. reports may be nil when persistence is
// disabled; the history endpoints then answer 404.
func NewHandler(scorer Scorer, reports driven.ReportStore, logger *slog.Logger) *Handler {
	return &Handler{
		scorer:  scorer,
		reports: reports,
		logger:  logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with request logging and panic recovery. metricsHandler and observer may be nil.
func NewServeMux(h *Handler, metricsHandler http.Handler, observer RequestObserver, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/score", h.Score)
	mux.HandleFunc("GET /api/v1/reports/{owner}/{repo}", h.ListReports)
	mux.HandleFunc("GET /api/v1/report/{id}", h.GetReport)
	mux.HandleFunc("GET /api/v1/health", h.Health)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	return instrument(logger, observer, mux)
}

// Score resolves the posted URL and returns the wire report.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.scorer.Score(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, application.ErrInvalidRepositoryURL) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to score repository", "url", req.URL, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, NewReportResponse(*report))
}

// ListReports returns stored reports for a repository, newest first.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		writeError(w, http.StatusNotFound, "report history is disabled")
		return
	}

	owner := r.PathValue("owner")
	repo := r.PathValue("repo")

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxListLimit)
	}

	stored, err := h.reports.ListByRepository(r.Context(), owner, repo, limit)
	if err != nil {
		h.logger.Error("failed to list reports", "repo", owner+"/"+repo, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]StoredReportResponse, 0, len(stored))
	for _, s := range stored {
		resp = append(resp, toStoredReportResponse(s))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetReport returns a single stored report by ID.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		writeError(w, http.StatusNotFound, "report history is disabled")
		return
	}

	id := r.PathValue("id")

	stored, err := h.reports.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, driven.ErrReportNotFound) {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		h.logger.Error("failed to get report", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toStoredReportResponse(*stored))
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
