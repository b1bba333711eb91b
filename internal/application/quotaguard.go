package application

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
	"github.com/ericfisherdev/trustscore/internal/domain/port/driven"
)

// QuotaGuard reads the data source's remaining call budget. It never caches:
// the budget changes with every call made by any concurrent signal.
type QuotaGuard struct {
	source driven.RepositoryDataSource
}

// NewQuotaGuard creates a QuotaGuard over the given data source.
func NewQuotaGuard(source driven.RepositoryDataSource) *QuotaGuard {
	return &QuotaGuard{source: source}
}

// CheckQuota fetches the current budget with one round trip.
func (g *QuotaGuard) CheckQuota(ctx context.Context) (model.QuotaStatus, error) {
	status, err := g.source.QuotaStatus(ctx)
	if err != nil {
		return model.QuotaStatus{}, fmt.Errorf("checking quota: %w", err)
	}
	return status, nil
}

// HasBudget reports whether at least one more call may be made.
func (g *QuotaGuard) HasBudget(status model.QuotaStatus) bool {
	return status.Remaining > 0
}
