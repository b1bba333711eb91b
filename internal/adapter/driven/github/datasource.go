package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
	"github.com/ericfisherdev/trustscore/internal/domain/port/driven"
)

// QuotaStatus returns the core REST rate limit. The rate_limit endpoint does
// not itself count against the quota.
func (c *Client) QuotaStatus(ctx context.Context) (model.QuotaStatus, error) {
	var limits *gh.RateLimits

	err := c.call(ctx, "rate_limit", func() (*gh.Response, error) {
		var resp *gh.Response
		var err error
		limits, resp, err = c.gh.RateLimit.Get(ctx)
		return resp, err
	})
	if err != nil {
		return model.QuotaStatus{}, fmt.Errorf("fetching rate limit: %w", err)
	}

	core := limits.GetCore()
	if core == nil {
		return model.QuotaStatus{}, fmt.Errorf("rate limit response has no core budget")
	}

	return model.QuotaStatus{
		Remaining: core.Remaining,
		Limit:     core.Limit,
		ResetAt:   core.Reset.Time,
	}, nil
}

// Repository returns repository-level metadata.
func (c *Client) Repository(ctx context.Context, owner, name string) (*model.RepositoryMetadata, error) {
	var repo *gh.Repository

	err := c.call(ctx, owner+"/"+name, func() (*gh.Response, error) {
		var resp *gh.Response
		var err error
		repo, resp, err = c.gh.Repositories.Get(ctx, owner, name)
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching repository %s/%s: %w", owner, name, err)
	}

	return mapRepository(repo), nil
}

// Contributors lists up to limit contributors ordered by commit count.
func (c *Client) Contributors(ctx context.Context, owner, name string, limit int) ([]model.Contributor, error) {
	opts := &gh.ListContributorsOptions{}

	contributors, err := paginate(ctx, c, owner+"/"+name+"/contributors", limit, &opts.ListOptions,
		func() ([]*gh.Contributor, *gh.Response, error) {
			return c.gh.Repositories.ListContributors(ctx, owner, name, opts)
		})
	if err != nil {
		return nil, err
	}

	out := make([]model.Contributor, 0, len(contributors))
	for _, ct := range contributors {
		out = append(out, model.Contributor{
			Login:         ct.GetLogin(),
			Contributions: ct.GetContributions(),
		})
	}
	return out, nil
}

// Issues lists up to limit issues and pull requests, newest first.
func (c *Client) Issues(ctx context.Context, owner, name string, limit int) ([]model.Issue, error) {
	opts := &gh.IssueListByRepoOptions{
		State:     "all",
		Sort:      "created",
		Direction: "desc",
	}

	issues, err := paginate(ctx, c, owner+"/"+name+"/issues", limit, &opts.ListOptions,
		func() ([]*gh.Issue, *gh.Response, error) {
			return c.gh.Issues.ListByRepo(ctx, owner, name, opts)
		})
	if err != nil {
		return nil, err
	}

	out := make([]model.Issue, 0, len(issues))
	for _, is := range issues {
		out = append(out, mapIssue(is))
	}
	return out, nil
}

// IssueComments lists up to limit of the oldest comments on an issue or PR.
func (c *Client) IssueComments(ctx context.Context, owner, name string, number int, limit int) ([]model.IssueComment, error) {
	opts := &gh.IssueListCommentsOptions{
		Sort:      gh.Ptr("created"),
		Direction: gh.Ptr("asc"),
	}

	comments, err := paginate(ctx, c, fmt.Sprintf("%s/%s#%d/comments", owner, name, number), limit, &opts.ListOptions,
		func() ([]*gh.IssueComment, *gh.Response, error) {
			return c.gh.Issues.ListComments(ctx, owner, name, number, opts)
		})
	if err != nil {
		return nil, err
	}

	out := make([]model.IssueComment, 0, len(comments))
	for _, cm := range comments {
		out = append(out, model.IssueComment{
			ID:        cm.GetID(),
			Author:    cm.GetUser().GetLogin(),
			CreatedAt: cm.GetCreatedAt().Time,
		})
	}
	return out, nil
}

// PullRequests lists up to limit pull requests in state, most recently updated first.
func (c *Client) PullRequests(ctx context.Context, owner, name string, state string, limit int) ([]model.PullRequest, error) {
	opts := &gh.PullRequestListOptions{
		State:     state,
		Sort:      "updated",
		Direction: "desc",
	}

	prs, err := paginate(ctx, c, owner+"/"+name+"/pulls", limit, &opts.ListOptions,
		func() ([]*gh.PullRequest, *gh.Response, error) {
			return c.gh.PullRequests.List(ctx, owner, name, opts)
		})
	if err != nil {
		return nil, err
	}

	out := make([]model.PullRequest, 0, len(prs))
	for _, pr := range prs {
		out = append(out, mapPullRequest(pr))
	}
	return out, nil
}

// Reviews lists the reviews submitted on a pull request, up to one full page.
func (c *Client) Reviews(ctx context.Context, owner, name string, number int) ([]model.Review, error) {
	opts := &gh.ListOptions{}

	reviews, err := paginate(ctx, c, fmt.Sprintf("%s/%s#%d/reviews", owner, name, number), maxPerPage, opts,
		func() ([]*gh.PullRequestReview, *gh.Response, error) {
			return c.gh.PullRequests.ListReviews(ctx, owner, name, number, opts)
		})
	if err != nil {
		return nil, err
	}

	out := make([]model.Review, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, mapReview(r))
	}
	return out, nil
}

// License returns the license GitHub detected, or ErrNotFound.
func (c *Client) License(ctx context.Context, owner, name string) (*model.LicenseInfo, error) {
	var lic *gh.RepositoryLicense

	err := c.call(ctx, owner+"/"+name+"/license", func() (*gh.Response, error) {
		var resp *gh.Response
		var err error
		lic, resp, err = c.gh.Repositories.License(ctx, owner, name)
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching license for %s/%s: %w", owner, name, err)
	}

	return &model.LicenseInfo{
		SPDXID: lic.GetLicense().GetSPDXID(),
		Name:   lic.GetLicense().GetName(),
	}, nil
}

// Readme returns the decoded README, or ErrNotFound.
func (c *Client) Readme(ctx context.Context, owner, name string) (*model.FileContent, error) {
	var content *gh.RepositoryContent

	err := c.call(ctx, owner+"/"+name+"/readme", func() (*gh.Response, error) {
		var resp *gh.Response
		var err error
		content, resp, err = c.gh.Repositories.GetReadme(ctx, owner, name, nil)
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching readme for %s/%s: %w", owner, name, err)
	}

	return decodeContent(content)
}

// File returns the decoded file at path on the default branch, or ErrNotFound.
// A directory at path is reported as ErrNotFound.
func (c *Client) File(ctx context.Context, owner, name, path string) (*model.FileContent, error) {
	var content *gh.RepositoryContent

	err := c.call(ctx, owner+"/"+name+"/contents/"+path, func() (*gh.Response, error) {
		var resp *gh.Response
		var err error
		content, _, resp, err = c.gh.Repositories.GetContents(ctx, owner, name, path, nil)
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching %s for %s/%s: %w", path, owner, name, err)
	}

	if content == nil {
		return nil, fmt.Errorf("%s in %s/%s is a directory: %w", path, owner, name, driven.ErrNotFound)
	}

	return decodeContent(content)
}

// WorkflowCount returns how many GitHub Actions workflows are configured.
func (c *Client) WorkflowCount(ctx context.Context, owner, name string) (int, error) {
	var workflows *gh.Workflows

	err := c.call(ctx, owner+"/"+name+"/workflows", func() (*gh.Response, error) {
		var resp *gh.Response
		var err error
		workflows, resp, err = c.gh.Actions.ListWorkflows(ctx, owner, name, &gh.ListOptions{PerPage: 1})
		return resp, err
	})
	if err != nil {
		return 0, fmt.Errorf("listing workflows for %s/%s: %w", owner, name, err)
	}

	return workflows.GetTotalCount(), nil
}
