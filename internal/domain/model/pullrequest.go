package model

import "time"

// PullRequest represents a GitHub pull request sampled by the review coverage signal.
type PullRequest struct {
	Number    int
	Author    string
	State     PRState
	Merged    bool
	CreatedAt time.Time
	ClosedAt  time.Time
	MergedAt  time.Time
}
