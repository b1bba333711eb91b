package signal

import (
	"context"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
	"github.com/ericfisherdev/trustscore/internal/domain/port/driven"
)

// Scores used when a repository has no issues to judge by.
const (
	correctnessWithChecks    = 1.0
	correctnessWithoutChecks = 0.5
)

// Correctness scores the share of recent issues that have been closed.
// Pull requests returned by the issues endpoint are excluded. With no issues
// at all, the presence of CI workflows decides the score.
type Correctness struct {
	source driven.RepositoryDataSource
	limit  int
}

// NewCorrectness creates a Correctness evaluator.
func NewCorrectness(source driven.RepositoryDataSource, opts Options) *Correctness {
	opts = opts.withDefaults()
	return &Correctness{source: source, limit: opts.IssueSampleSize}
}

// Name implements Evaluator.
func (e *Correctness) Name() model.SignalName { return model.SignalCorrectness }

// Evaluate implements Evaluator.
func (e *Correctness) Evaluate(ctx context.Context, ref model.RepositoryReference) (float64, error) {
	items, err := e.source.Issues(ctx, ref.Owner, ref.Name, e.limit)
	if err != nil {
		return 0, fetchError("issues", err)
	}

	var total, closed int
	for _, it := range items {
		if it.IsPullRequest {
			continue
		}
		total++
		if it.IsClosed() {
			closed++
		}
	}

	if total > 0 {
		return float64(closed) / float64(total), nil
	}

	workflows, err := e.source.WorkflowCount(ctx, ref.Owner, ref.Name)
	if err != nil {
		return 0, fetchError("workflows", err)
	}
	if workflows > 0 {
		return correctnessWithChecks, nil
	}
	return correctnessWithoutChecks, nil
}
