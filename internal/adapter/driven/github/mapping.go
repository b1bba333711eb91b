package github

import (
	"fmt"
	"strings"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
)

// mapRepository converts a go-github Repository to domain metadata.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapRepository(r *gh.Repository) *model.RepositoryMetadata {
	return &model.RepositoryMetadata{
		FullName:      r.GetFullName(),
		DefaultBranch: r.GetDefaultBranch(),
		Description:   r.GetDescription(),
		HasWiki:       r.GetHasWiki(),
		Archived:      r.GetArchived(),
		PushedAt:      r.GetPushedAt().Time,
		CreatedAt:     r.GetCreatedAt().Time,
	}
}

// mapIssue converts a go-github Issue. Pull requests listed by the issues
// endpoint keep IsPullRequest set.
func mapIssue(i *gh.Issue) model.Issue {
	return model.Issue{
		Number:        i.GetNumber(),
		Author:        i.GetUser().GetLogin(),
		State:         model.IssueState(i.GetState()),
		IsPullRequest: i.IsPullRequest(),
		Comments:      i.GetComments(),
		CreatedAt:     i.GetCreatedAt().Time,
		ClosedAt:      i.GetClosedAt().Time,
	}
}

// mapPullRequest converts a go-github PullRequest. A non-zero merged_at is
// the only reliable merge marker in list responses.
func mapPullRequest(pr *gh.PullRequest) model.PullRequest {
	return model.PullRequest{
		Number:    pr.GetNumber(),
		Author:    pr.GetUser().GetLogin(),
		State:     model.PRState(pr.GetState()),
		Merged:    !pr.GetMergedAt().IsZero(),
		CreatedAt: pr.GetCreatedAt().Time,
		ClosedAt:  pr.GetClosedAt().Time,
		MergedAt:  pr.GetMergedAt().Time,
	}
}

// mapReview converts a go-github PullRequestReview to a domain model Review.
func mapReview(r *gh.PullRequestReview) model.Review {
	return model.Review{
		ID:            r.GetID(),
		ReviewerLogin: r.GetUser().GetLogin(),
		State:         model.ReviewState(strings.ToLower(r.GetState())),
	}
}

// decodeContent base64-decodes a contents API response.
func decodeContent(c *gh.RepositoryContent) (*model.FileContent, error) {
	text, err := c.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", c.GetPath(), err)
	}
	return &model.FileContent{
		Path:    c.GetPath(),
		Content: []byte(text),
	}, nil
}
