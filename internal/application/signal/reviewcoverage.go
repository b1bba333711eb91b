package signal

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
	"github.com/ericfisherdev/trustscore/internal/domain/port/driven"
)

// CodeReviewCoverage scores the fraction of recently merged pull requests
// that received at least one submitted, undismissed review. With no merged
// pull requests in the sample there is no unreviewed work, so the score is 1.
type CodeReviewCoverage struct {
	source      driven.RepositoryDataSource
	limit       int
	concurrency int
}

// NewCodeReviewCoverage creates a CodeReviewCoverage evaluator.
func NewCodeReviewCoverage(source driven.RepositoryDataSource, opts Options) *CodeReviewCoverage {
	opts = opts.withDefaults()
	return &CodeReviewCoverage{
		source:      source,
		limit:       opts.PullRequestSampleSize,
		concurrency: opts.ReviewConcurrency,
	}
}

// Name implements Evaluator.
func (e *CodeReviewCoverage) Name() model.SignalName { return model.SignalCodeReviewCoverage }

// Evaluate implements Evaluator. Reviews for merged pull requests are fetched
// with bounded concurrency; any failed fetch fails the signal.
func (e *CodeReviewCoverage) Evaluate(ctx context.Context, ref model.RepositoryReference) (float64, error) {
	prs, err := e.source.PullRequests(ctx, ref.Owner, ref.Name, string(model.PRStateClosed), e.limit)
	if err != nil {
		return 0, fetchError("pull requests", err)
	}

	var merged []model.PullRequest
	for _, pr := range prs {
		if pr.Merged {
			merged = append(merged, pr)
		}
	}

	if len(merged) == 0 {
		return 1, nil
	}

	var reviewed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, pr := range merged {
		g.Go(func() error {
			reviews, err := e.source.Reviews(gctx, ref.Owner, ref.Name, pr.Number)
			if err != nil {
				return fmt.Errorf("reviews for #%d: %w", pr.Number, err)
			}
			if slices.ContainsFunc(reviews, model.Review.Counts) {
				reviewed.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, fetchError("reviews", err)
	}

	return float64(reviewed.Load()) / float64(len(merged)), nil
}
