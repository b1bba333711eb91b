// Package application contains use-case orchestration services.
package application

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/ericfisherdev/trustscore/internal/application/signal"
	"github.com/ericfisherdev/trustscore/internal/domain/model"
	"github.com/ericfisherdev/trustscore/internal/domain/port/driven"
)

// DefaultSignalTimeout bounds a single signal so one slow upstream cannot
// stall the join barrier.
const DefaultSignalTimeout = 30 * time.Second

// ScoreService orchestrates one scoring request: it fans out every signal
// evaluator concurrently, consults the quota guard before each, waits for all
// of them, and aggregates the results into a NetScoreReport.
type ScoreService struct {
	guard      *QuotaGuard
	evaluators []signal.Evaluator
	aggregator *Aggregator
	store      driven.ReportStore
	recorder   driven.ScoreRecorder
	timeout    time.Duration
	logger     *slog.Logger
}

// NewScoreService creates a new ScoreService. store and recorder may be nil,
// in which case reports are not persisted and metrics are not recorded.
// A non-positive timeout falls back to DefaultSignalTimeout.
func NewScoreService(
	guard *QuotaGuard,
	evaluators []signal.Evaluator,
	aggregator *Aggregator,
	store driven.ReportStore,
	recorder driven.ScoreRecorder,
	timeout time.Duration,
	logger *slog.Logger,
) *ScoreService {
	if timeout <= 0 {
		timeout = DefaultSignalTimeout
	}
	return &ScoreService{
		guard:      guard,
		evaluators: evaluators,
		aggregator: aggregator,
		store:      store,
		recorder:   recorder,
		timeout:    timeout,
		logger:     logger,
	}
}

// Score resolves rawURL and scores the repository. A resolution failure is
// returned as is (wrapping ErrInvalidRepositoryURL) and no signal runs.
func (s *ScoreService) Score(ctx context.Context, rawURL string) (*model.NetScoreReport, error) {
	ref, err := ResolveRepository(rawURL)
	if err != nil {
		return nil, err
	}
	return s.ScoreRepository(ctx, ref), nil
}

// ScoreRepository runs all signals against ref and returns a complete report.
// Per-signal failures are recorded as FailedScore entries; they never abort
// the request. Signals appear in canonical order regardless of completion order.
func (s *ScoreService) ScoreRepository(ctx context.Context, ref model.RepositoryReference) *model.NetScoreReport {
	start := time.Now()
	results := make([]model.SignalResult, len(s.evaluators))

	var wg sync.WaitGroup
	for i, e := range s.evaluators {
		wg.Go(func() {
			results[i] = s.runSignal(ctx, e, ref)
		})
	}
	wg.Wait()

	latency := time.Since(start)
	sortCanonical(results)

	report := &model.NetScoreReport{
		Repository: ref,
		NetScore:   s.aggregator.NetScore(results),
		Latency:    latency,
		Signals:    results,
		CreatedAt:  time.Now().UTC(),
	}

	s.observe(report)
	s.persist(ctx, report)

	s.logger.Info("repository scored",
		"repo", ref.FullName(),
		"net_score", report.NetScore,
		"failed_signals", countFailed(results),
		"duration", latency.Round(time.Millisecond),
	)

	return report
}

// runSignal checks the quota immediately before the evaluator starts and
// short-circuits with (FailedScore, 0) when the budget is exhausted.
func (s *ScoreService) runSignal(ctx context.Context, e signal.Evaluator, ref model.RepositoryReference) model.SignalResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	checkStart := time.Now()
	status, err := s.guard.CheckQuota(ctx)
	if err != nil {
		reason := signal.Classify(ctx, err)
		s.logger.Warn("quota check failed", "signal", e.Name(), "repo", ref.FullName(), "reason", string(reason), "error", err)
		return signal.Failed(e.Name(), reason, time.Since(checkStart))
	}

	if !s.guard.HasBudget(status) {
		s.logger.Warn("quota exceeded, retry after",
			"signal", e.Name(),
			"repo", ref.FullName(),
			"reset_at", status.ResetAtEpochSeconds(),
		)
		if s.recorder != nil {
			s.recorder.ObserveQuotaExhausted(e.Name())
		}
		return signal.Failed(e.Name(), model.FailureQuotaExceeded, 0)
	}

	return signal.Run(ctx, e, ref, s.logger)
}

func (s *ScoreService) observe(report *model.NetScoreReport) {
	if s.recorder == nil {
		return
	}
	for _, r := range report.Signals {
		s.recorder.ObserveSignal(r)
	}
	s.recorder.ObserveReport(report.NetScore, report.Latency)
}

// persist stores the report for history. Storage failures are logged only;
// the caller still receives the report.
func (s *ScoreService) persist(ctx context.Context, report *model.NetScoreReport) {
	if s.store == nil {
		return
	}
	id, err := s.store.Save(context.WithoutCancel(ctx), *report)
	if err != nil {
		s.logger.Error("save report failed", "repo", report.Repository.FullName(), "error", err)
		return
	}
	s.logger.Debug("report saved", "repo", report.Repository.FullName(), "id", id)
}

// sortCanonical orders results by the canonical signal order.
func sortCanonical(results []model.SignalResult) {
	rank := make(map[model.SignalName]int, len(model.AllSignals()))
	for i, name := range model.AllSignals() {
		rank[name] = i
	}
	slices.SortStableFunc(results, func(a, b model.SignalResult) int {
		return rank[a.Name] - rank[b.Name]
	})
}

func countFailed(results []model.SignalResult) int {
	n := 0
	for _, r := range results {
		if r.Failed() {
			n++
		}
	}
	return n
}
