package signal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
	"github.com/ericfisherdev/trustscore/internal/domain/port/driven"
)

var (
	testNow = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	testRef = model.RepositoryReference{
		NativeURL:    "https://github.com/owner/repo",
		CanonicalURL: "https://github.com/owner/repo",
		Owner:        "owner",
		Name:         "repo",
	}
	discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Now = func() time.Time { return testNow }
	return opts
}

// fakeSource is an in-memory RepositoryDataSource. Nil maps mean "not found"
// for files; errs short-circuits a method by name.
type fakeSource struct {
	mu    sync.Mutex
	calls map[string]int

	quota        model.QuotaStatus
	meta         *model.RepositoryMetadata
	contributors []model.Contributor
	issues       []model.Issue
	comments     map[int][]model.IssueComment
	pulls        []model.PullRequest
	reviews      map[int][]model.Review
	license      *model.LicenseInfo
	readme       *model.FileContent
	files        map[string][]byte
	workflows    int

	errs map[string]error
}

var _ driven.RepositoryDataSource = (*fakeSource)(nil)

func (f *fakeSource) record(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[method]++
	return f.errs[method]
}

func (f *fakeSource) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeSource) QuotaStatus(context.Context) (model.QuotaStatus, error) {
	if err := f.record("QuotaStatus"); err != nil {
		return model.QuotaStatus{}, err
	}
	return f.quota, nil
}

func (f *fakeSource) Repository(context.Context, string, string) (*model.RepositoryMetadata, error) {
	if err := f.record("Repository"); err != nil {
		return nil, err
	}
	if f.meta == nil {
		return &model.RepositoryMetadata{}, nil
	}
	return f.meta, nil
}

func (f *fakeSource) Contributors(_ context.Context, _, _ string, limit int) ([]model.Contributor, error) {
	if err := f.record("Contributors"); err != nil {
		return nil, err
	}
	return head(f.contributors, limit), nil
}

func (f *fakeSource) Issues(_ context.Context, _, _ string, limit int) ([]model.Issue, error) {
	if err := f.record("Issues"); err != nil {
		return nil, err
	}
	return head(f.issues, limit), nil
}

func (f *fakeSource) IssueComments(_ context.Context, _, _ string, number int, limit int) ([]model.IssueComment, error) {
	if err := f.record("IssueComments"); err != nil {
		return nil, err
	}
	return head(f.comments[number], limit), nil
}

func (f *fakeSource) PullRequests(_ context.Context, _, _ string, _ string, limit int) ([]model.PullRequest, error) {
	if err := f.record("PullRequests"); err != nil {
		return nil, err
	}
	return head(f.pulls, limit), nil
}

func (f *fakeSource) Reviews(_ context.Context, _, _ string, number int) ([]model.Review, error) {
	if err := f.record("Reviews"); err != nil {
		return nil, err
	}
	return f.reviews[number], nil
}

func (f *fakeSource) License(context.Context, string, string) (*model.LicenseInfo, error) {
	if err := f.record("License"); err != nil {
		return nil, err
	}
	if f.license == nil {
		return nil, fmt.Errorf("license: %w", driven.ErrNotFound)
	}
	return f.license, nil
}

func (f *fakeSource) Readme(context.Context, string, string) (*model.FileContent, error) {
	if err := f.record("Readme"); err != nil {
		return nil, err
	}
	if f.readme == nil {
		return nil, fmt.Errorf("readme: %w", driven.ErrNotFound)
	}
	return f.readme, nil
}

func (f *fakeSource) File(_ context.Context, _, _, path string) (*model.FileContent, error) {
	if err := f.record("File"); err != nil {
		return nil, err
	}
	content, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, driven.ErrNotFound)
	}
	return &model.FileContent{Path: path, Content: content}, nil
}

func (f *fakeSource) WorkflowCount(context.Context, string, string) (int, error) {
	if err := f.record("WorkflowCount"); err != nil {
		return 0, err
	}
	return f.workflows, nil
}

func head[T any](s []T, limit int) []T {
	if limit >= 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
