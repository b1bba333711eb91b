// Package signal implements the seven repository quality signals and the
// harness that runs one of them at the scoring boundary.
package signal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
	"github.com/ericfisherdev/trustscore/internal/domain/port/driven"
)

// Errors an Evaluator may return. Run classifies them into a FailureReason.
var (
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrUpstreamFetch = errors.New("upstream fetch failed")
	ErrMalformedData = errors.New("malformed upstream data")
	ErrUndetectable  = errors.New("signal undetectable")
)

// Evaluator computes one signal for a repository. A nil error means score is
// in [0,1]. Implementations hold no mutable state and are safe to run
// concurrently with each other against the same reference.
type Evaluator interface {
	Name() model.SignalName
	Evaluate(ctx context.Context, ref model.RepositoryReference) (float64, error)
}

// Run evaluates e at the scoring boundary. It never panics and never returns
// an error: every failure becomes a result with the FailedScore sentinel.
// Latency is wall-clock time spent inside Evaluate, failures included.
func Run(ctx context.Context, e Evaluator, ref model.RepositoryReference, logger *slog.Logger) (result model.SignalResult) {
	name := e.Name()
	start := time.Now()

	defer func() {
		if v := recover(); v != nil {
			logger.Error("signal panicked", "signal", name, "repo", ref.FullName(), "panic", v)
			result = Failed(name, model.FailureInternal, time.Since(start))
		}
	}()

	score, err := e.Evaluate(ctx, ref)
	latency := time.Since(start)

	if err == nil && !InRange(score) {
		err = fmt.Errorf("%w: score %v outside [0,1]", ErrMalformedData, score)
	}

	if err != nil {
		reason := Classify(ctx, err)
		logger.Warn("signal failed",
			"signal", name,
			"repo", ref.FullName(),
			"reason", string(reason),
			"latency", latency.Round(time.Millisecond),
			"error", err,
		)
		return Failed(name, reason, latency)
	}

	logger.Debug("signal evaluated",
		"signal", name,
		"repo", ref.FullName(),
		"score", score,
		"latency", latency.Round(time.Millisecond),
	)

	return model.SignalResult{Name: name, Score: score, Latency: latency}
}

// Failed builds a sentinel result for a signal that could not be computed.
func Failed(name model.SignalName, reason model.FailureReason, latency time.Duration) model.SignalResult {
	if reason == model.FailureNone {
		reason = model.FailureInternal
	}
	return model.SignalResult{
		Name:    name,
		Score:   model.FailedScore,
		Latency: latency,
		Failure: reason,
	}
}

// Classify maps an evaluation error to its FailureReason.
// Rate limiting wins over the generic fetch failure it is wrapped in.
func Classify(ctx context.Context, err error) model.FailureReason {
	switch {
	case err == nil:
		return model.FailureNone
	case errors.Is(err, ErrQuotaExceeded), errors.Is(err, driven.ErrRateLimited):
		return model.FailureQuotaExceeded
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return model.FailureTimeout
	case errors.Is(err, ErrMalformedData):
		return model.FailureMalformedData
	case errors.Is(err, ErrUndetectable):
		return model.FailureUndetectable
	default:
		return model.FailureUpstreamFetch
	}
}

// InRange reports whether score is a valid non-sentinel score.
func InRange(score float64) bool {
	return !math.IsNaN(score) && score >= 0 && score <= 1
}

// fetchError wraps a data source error as an upstream fetch failure,
// keeping the original cause visible to errors.Is.
func fetchError(what string, err error) error {
	return fmt.Errorf("fetching %s: %w: %w", what, ErrUpstreamFetch, err)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
