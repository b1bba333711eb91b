package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
)

// Sentinel errors returned by RepositoryDataSource implementations.
var (
	// ErrNotFound indicates the requested resource does not exist upstream
	// (repository, README, license, or file).
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimited indicates the upstream primary rate limit was hit mid-call.
	ErrRateLimited = errors.New("upstream rate limit exceeded")
)

// RepositoryDataSource defines the driven port for reading repository history.
// Each method is one kind of the abstract fetchRepositoryData(owner, name, kind)
// capability. Implementations must be safe for concurrent use.
//
// Methods that take a limit return at most that many of the most recent items.
type RepositoryDataSource interface {
	// QuotaStatus returns the current primary rate-limit budget.
	QuotaStatus(ctx context.Context) (model.QuotaStatus, error)

	Repository(ctx context.Context, owner, name string) (*model.RepositoryMetadata, error)
	Contributors(ctx context.Context, owner, name string, limit int) ([]model.Contributor, error)
	// Issues lists issues and pull requests (state "all") newest first.
	Issues(ctx context.Context, owner, name string, limit int) ([]model.Issue, error)
	// IssueComments lists the oldest comments of an issue or pull request conversation.
	IssueComments(ctx context.Context, owner, name string, number int, limit int) ([]model.IssueComment, error)
	// PullRequests lists pull requests in the given state ("open", "closed", "all"), newest first.
	PullRequests(ctx context.Context, owner, name string, state string, limit int) ([]model.PullRequest, error)
	Reviews(ctx context.Context, owner, name string, number int) ([]model.Review, error)

	// License returns ErrNotFound when no license file is detected.
	License(ctx context.Context, owner, name string) (*model.LicenseInfo, error)
	// Readme returns ErrNotFound when the repository has no README.
	Readme(ctx context.Context, owner, name string) (*model.FileContent, error)
	// File returns ErrNotFound when path does not exist on the default branch.
	File(ctx context.Context, owner, name, path string) (*model.FileContent, error)
	// WorkflowCount returns the number of configured CI workflows.
	WorkflowCount(ctx context.Context, owner, name string) (int, error)
}
