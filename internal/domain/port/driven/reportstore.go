package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
)

// ErrReportNotFound indicates the requested stored report does not exist.
var ErrReportNotFound = errors.New("report not found")

// ReportStore defines the driven port for score report history.
// GetByID returns ErrReportNotFound if no report has the given ID.
type ReportStore interface {
	Save(ctx context.Context, report model.NetScoreReport) (string, error)
	GetByID(ctx context.Context, id string) (*model.StoredReport, error)
	// ListByRepository returns the newest reports for owner/name first.
	ListByRepository(ctx context.Context, owner, name string, limit int) ([]model.StoredReport, error)
}
