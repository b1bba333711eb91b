package signal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
	"github.com/ericfisherdev/trustscore/internal/domain/port/driven"
)

const (
	// responseHalfLifeHours is the average wait that scores exactly 0.5.
	responseHalfLifeHours = 72.0
	// firstCommentLimit bounds how many of the oldest comments are searched
	// for a reply from someone other than the author.
	firstCommentLimit = 10
)

// ResponsiveMaintainer scores how quickly recent issues and pull requests get
// a first response. A response is the first comment by someone other than the
// author; without one, the wait runs until the item was closed, or until now
// while it is still open. The average wait maps to 1/(1 + hours/72).
type ResponsiveMaintainer struct {
	source driven.RepositoryDataSource
	limit  int
	now    func() time.Time
}

// NewResponsiveMaintainer creates a ResponsiveMaintainer evaluator.
func NewResponsiveMaintainer(source driven.RepositoryDataSource, opts Options) *ResponsiveMaintainer {
	opts = opts.withDefaults()
	return &ResponsiveMaintainer{source: source, limit: opts.ResponseSampleSize, now: opts.Now}
}

// Name implements Evaluator.
func (e *ResponsiveMaintainer) Name() model.SignalName { return model.SignalResponsiveMaintainer }

// Evaluate implements Evaluator. An empty sample means nothing is waiting on
// the maintainers and scores 1.
func (e *ResponsiveMaintainer) Evaluate(ctx context.Context, ref model.RepositoryReference) (float64, error) {
	items, err := e.source.Issues(ctx, ref.Owner, ref.Name, e.limit)
	if err != nil {
		return 0, fetchError("issues", err)
	}
	if len(items) == 0 {
		return 1, nil
	}

	now := e.now()
	var total time.Duration
	for _, it := range items {
		wait, err := e.responseTime(ctx, ref, it, now)
		if err != nil {
			return 0, err
		}
		total += wait
	}

	avgHours := total.Hours() / float64(len(items))

	return 1 / (1 + avgHours/responseHalfLifeHours), nil
}

func (e *ResponsiveMaintainer) responseTime(ctx context.Context, ref model.RepositoryReference, it model.Issue, now time.Time) (time.Duration, error) {
	if it.CreatedAt.IsZero() {
		return 0, fmt.Errorf("%w: issue #%d has no creation time", ErrMalformedData, it.Number)
	}

	if it.Comments > 0 {
		comments, err := e.source.IssueComments(ctx, ref.Owner, ref.Name, it.Number, firstCommentLimit)
		if err != nil {
			return 0, fetchError(fmt.Sprintf("comments for #%d", it.Number), err)
		}
		for _, c := range comments {
			if strings.EqualFold(c.Author, it.Author) {
				continue
			}
			return nonNegative(c.CreatedAt.Sub(it.CreatedAt)), nil
		}
	}

	end := now
	if it.IsClosed() && !it.ClosedAt.IsZero() {
		end = it.ClosedAt
	}
	return nonNegative(end.Sub(it.CreatedAt)), nil
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
