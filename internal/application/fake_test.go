package application

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

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeSource is an in-memory RepositoryDataSource that counts calls per method.
type fakeSource struct {
	mu    sync.Mutex
	calls map[string]int

	quota        model.QuotaStatus
	meta         *model.RepositoryMetadata
	contributors []model.Contributor
	issues       []model.Issue
	pulls        []model.PullRequest
	reviews      map[int][]model.Review
	license      *model.LicenseInfo
	readme       *model.FileContent
	files        map[string][]byte

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

// dataCalls counts every call except quota checks.
func (f *fakeSource) dataCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for method, c := range f.calls {
		if method != "QuotaStatus" {
			n += c
		}
	}
	return n
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

func (f *fakeSource) Contributors(context.Context, string, string, int) ([]model.Contributor, error) {
	if err := f.record("Contributors"); err != nil {
		return nil, err
	}
	return f.contributors, nil
}

func (f *fakeSource) Issues(context.Context, string, string, int) ([]model.Issue, error) {
	if err := f.record("Issues"); err != nil {
		return nil, err
	}
	return f.issues, nil
}

func (f *fakeSource) IssueComments(context.Context, string, string, int, int) ([]model.IssueComment, error) {
	if err := f.record("IssueComments"); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *fakeSource) PullRequests(_ context.Context, _, _ string, _ string, limit int) ([]model.PullRequest, error) {
	if err := f.record("PullRequests"); err != nil {
		return nil, err
	}
	if len(f.pulls) > limit {
		return f.pulls[:limit], nil
	}
	return f.pulls, nil
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
	return 0, nil
}

// fakeStore is an in-memory ReportStore.
type fakeStore struct {
	mu      sync.Mutex
	saved   []model.NetScoreReport
	saveErr error
}

func (s *fakeStore) Save(_ context.Context, r model.NetScoreReport) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.saved = append(s.saved, r)
	return fmt.Sprintf("report-%d", len(s.saved)), nil
}

func (s *fakeStore) GetByID(context.Context, string) (*model.StoredReport, error) {
	return nil, driven.ErrReportNotFound
}

func (s *fakeStore) ListByRepository(context.Context, string, string, int) ([]model.StoredReport, error) {
	return nil, nil
}

// fakeRecorder counts observations.
type fakeRecorder struct {
	mu             sync.Mutex
	signals        []model.SignalResult
	reports        []float64
	quotaExhausted []model.SignalName
}

func (r *fakeRecorder) ObserveSignal(s model.SignalResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, s)
}

func (r *fakeRecorder) ObserveReport(netScore float64, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, netScore)
}

func (r *fakeRecorder) ObserveQuotaExhausted(name model.SignalName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotaExhausted = append(r.quotaExhausted, name)
}
