package signal

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
	"github.com/ericfisherdev/trustscore/internal/domain/port/driven"
)

// BusFactor scores how many contributors carry the bulk of the commit volume.
// k is the smallest number of top contributors covering half of all commits;
// the score is 1 - 1/k, so a single dominant contributor scores 0.
type BusFactor struct {
	source driven.RepositoryDataSource
	limit  int
}

// NewBusFactor creates a BusFactor evaluator.
func NewBusFactor(source driven.RepositoryDataSource, opts Options) *BusFactor {
	opts = opts.withDefaults()
	return &BusFactor{source: source, limit: opts.ContributorSampleSize}
}

// Name implements Evaluator.
func (e *BusFactor) Name() model.SignalName { return model.SignalBusFactor }

// Evaluate implements Evaluator.
func (e *BusFactor) Evaluate(ctx context.Context, ref model.RepositoryReference) (float64, error) {
	contributors, err := e.source.Contributors(ctx, ref.Owner, ref.Name, e.limit)
	if err != nil {
		return 0, fetchError("contributors", err)
	}

	k, err := significantContributors(contributors)
	if err != nil {
		return 0, err
	}

	return 1 - 1/float64(k), nil
}

// significantContributors returns how many of the largest contributors are
// needed to cover more than half of all contributions.
func significantContributors(contributors []model.Contributor) (int, error) {
	counts := make([]int, 0, len(contributors))
	total := 0
	for _, c := range contributors {
		if c.Contributions <= 0 {
			continue
		}
		counts = append(counts, c.Contributions)
		total += c.Contributions
	}

	if total == 0 {
		return 0, fmt.Errorf("%w: no contributions recorded", ErrMalformedData)
	}

	slices.SortFunc(counts, func(a, b int) int { return cmp.Compare(b, a) })

	k, covered := 0, 0
	for _, n := range counts {
		covered += n
		k++
		if covered*2 > total {
			break
		}
	}

	return k, nil
}
