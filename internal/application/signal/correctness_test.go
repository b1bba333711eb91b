package signal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
)

func TestCorrectness(t *testing.T) {
	tests := []struct {
		name      string
		issues    []model.Issue
		workflows int
		want      float64
	}{
		{
			name: "closed share excludes pull requests",
			issues: []model.Issue{
				{Number: 1, State: model.IssueStateClosed},
				{Number: 2, State: model.IssueStateClosed},
				{Number: 3, State: model.IssueStateOpen},
				{Number: 4, State: model.IssueStateOpen, IsPullRequest: true},
			},
			want: 2.0 / 3.0,
		},
		{name: "no issues, CI configured", workflows: 2, want: 1},
		{name: "no issues, no CI", want: 0.5},
		{
			name:      "only pull requests",
			issues:    []model.Issue{{Number: 9, State: model.IssueStateOpen, IsPullRequest: true}},
			workflows: 1,
			want:      1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{issues: tt.issues, workflows: tt.workflows}

			score, err := NewCorrectness(src, testOptions()).Evaluate(context.Background(), testRef)

			require.NoError(t, err)
			assert.InDelta(t, tt.want, score, 1e-9)
		})
	}
}

func TestCorrectness_WorkflowsNotFetchedWhenIssuesExist(t *testing.T) {
	src := &fakeSource{issues: []model.Issue{{Number: 1, State: model.IssueStateOpen}}}

	_, err := NewCorrectness(src, testOptions()).Evaluate(context.Background(), testRef)

	require.NoError(t, err)
	assert.Zero(t, src.callCount("WorkflowCount"))
}

func TestCorrectness_FetchError(t *testing.T) {
	src := &fakeSource{errs: map[string]error{"WorkflowCount": errors.New("502")}}

	_, err := NewCorrectness(src, testOptions()).Evaluate(context.Background(), testRef)

	assert.ErrorIs(t, err, ErrUpstreamFetch)
}
