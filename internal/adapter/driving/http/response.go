package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// ScoreRequest is the JSON body for the score endpoint.
type ScoreRequest struct {
	URL string `json:"url"`
}

// ReportResponse is the wire form of a NetScoreReport. Field names are part of
// the public contract and must not change. Latencies are milliseconds.
type ReportResponse struct {
	NetScore                    float64 `json:"NetScore"`
	NetScoreLatency             float64 `json:"NetScoreLatency"`
	RampUp                      float64 `json:"RampUp"`
	RampUpLatency               float64 `json:"RampUpLatency"`
	BusFactor                   float64 `json:"BusFactor"`
	BusFactorLatency            float64 `json:"BusFactorLatency"`
	Correctness                 float64 `json:"Correctness"`
	CorrectnessLatency          float64 `json:"CorrectnessLatency"`
	ResponsiveMaintainer        float64 `json:"ResponsiveMaintainer"`
	ResponsiveMaintainerLatency float64 `json:"ResponsiveMaintainerLatency"`
	LicenseScore                float64 `json:"LicenseScore"`
	LicenseScoreLatency         float64 `json:"LicenseScoreLatency"`
	GoodPinningPractice         float64 `json:"GoodPinningPractice"`
	GoodPinningPracticeLatency  float64 `json:"GoodPinningPracticeLatency"`
	PullRequest                 float64 `json:"PullRequest"`
	PullRequestLatency          float64 `json:"PullRequestLatency"`
}

// StoredReportResponse is a persisted report with its identifier.
type StoredReportResponse struct {
	ID         string         `json:"id"`
	Repository string         `json:"repository"`
	URL        string         `json:"url"`
	CreatedAt  string         `json:"created_at"`
	Failures   []string       `json:"failures"`
	Report     ReportResponse `json:"report"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// NewReportResponse converts a domain report into its wire form. A signal
// missing from the report is emitted as the failure sentinel with zero latency.
func NewReportResponse(r model.NetScoreReport) ReportResponse {
	score := func(name model.SignalName) (float64, float64) {
		s, ok := r.Signal(name)
		if !ok {
			return model.FailedScore, 0
		}
		return s.Score, s.LatencyMs()
	}

	resp := ReportResponse{
		NetScore:        r.NetScore,
		NetScoreLatency: r.LatencyMs(),
	}
	resp.RampUp, resp.RampUpLatency = score(model.SignalRampUp)
	resp.BusFactor, resp.BusFactorLatency = score(model.SignalBusFactor)
	resp.Correctness, resp.CorrectnessLatency = score(model.SignalCorrectness)
	resp.ResponsiveMaintainer, resp.ResponsiveMaintainerLatency = score(model.SignalResponsiveMaintainer)
	resp.LicenseScore, resp.LicenseScoreLatency = score(model.SignalLicense)
	resp.GoodPinningPractice, resp.GoodPinningPracticeLatency = score(model.SignalPinningPractice)
	resp.PullRequest, resp.PullRequestLatency = score(model.SignalCodeReviewCoverage)

	return resp
}

// toStoredReportResponse converts a persisted report. Failures lists
// "signal:reason" for every failed signal, in canonical order.
func toStoredReportResponse(s model.StoredReport) StoredReportResponse {
	failures := []string{}
	for _, sig := range s.Report.Signals {
		if sig.Failed() {
			failures = append(failures, string(sig.Name)+":"+string(sig.Failure))
		}
	}

	return StoredReportResponse{
		ID:         s.ID,
		Repository: s.Report.Repository.FullName(),
		URL:        s.Report.Repository.CanonicalURL,
		CreatedAt:  s.Report.CreatedAt.UTC().Format(time.RFC3339),
		Failures:   failures,
		Report:     NewReportResponse(s.Report),
	}
}
