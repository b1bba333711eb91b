package signal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
)

func TestResponsiveMaintainer(t *testing.T) {
	ago := func(h int) time.Time { return testNow.Add(-time.Duration(h) * time.Hour) }

	tests := []struct {
		name     string
		issues   []model.Issue
		comments map[int][]model.IssueComment
		want     float64
	}{
		{name: "nothing waiting", want: 1},
		{
			name: "first non-author comment and close time",
			issues: []model.Issue{
				{Number: 1, Author: "alice", State: model.IssueStateOpen, Comments: 2, CreatedAt: ago(48)},
				{Number: 2, Author: "bob", State: model.IssueStateClosed, CreatedAt: ago(72), ClosedAt: ago(24)},
			},
			comments: map[int][]model.IssueComment{
				1: {
					{ID: 10, Author: "ALICE", CreatedAt: ago(47)},
					{ID: 11, Author: "maintainer", CreatedAt: ago(24)},
				},
			},
			// (24h + 48h) / 2 = 36h
			want: 1 / (1 + 36.0/72.0),
		},
		{
			name:   "open and unanswered runs until now",
			issues: []model.Issue{{Number: 3, Author: "carol", State: model.IssueStateOpen, CreatedAt: ago(72)}},
			want:   0.5,
		},
		{
			name:     "only author comments",
			issues:   []model.Issue{{Number: 4, Author: "dave", State: model.IssueStateOpen, Comments: 1, CreatedAt: ago(72)}},
			comments: map[int][]model.IssueComment{4: {{ID: 12, Author: "dave", CreatedAt: ago(70)}}},
			want:     0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{issues: tt.issues, comments: tt.comments}

			score, err := NewResponsiveMaintainer(src, testOptions()).Evaluate(context.Background(), testRef)

			require.NoError(t, err)
			assert.InDelta(t, tt.want, score, 1e-9)
		})
	}
}

func TestResponsiveMaintainer_CommentsOnlyFetchedWhenPresent(t *testing.T) {
	src := &fakeSource{issues: []model.Issue{{Number: 1, State: model.IssueStateOpen, CreatedAt: testNow}}}

	_, err := NewResponsiveMaintainer(src, testOptions()).Evaluate(context.Background(), testRef)

	require.NoError(t, err)
	assert.Zero(t, src.callCount("IssueComments"))
}

func TestResponsiveMaintainer_Errors(t *testing.T) {
	t.Run("missing creation time", func(t *testing.T) {
		src := &fakeSource{issues: []model.Issue{{Number: 1}}}

		_, err := NewResponsiveMaintainer(src, testOptions()).Evaluate(context.Background(), testRef)

		assert.ErrorIs(t, err, ErrMalformedData)
	})

	t.Run("comment fetch failure", func(t *testing.T) {
		src := &fakeSource{
			issues: []model.Issue{{Number: 1, Comments: 1, CreatedAt: testNow}},
			errs:   map[string]error{"IssueComments": errors.New("502")},
		}

		_, err := NewResponsiveMaintainer(src, testOptions()).Evaluate(context.Background(), testRef)

		assert.ErrorIs(t, err, ErrUpstreamFetch)
	})
}
