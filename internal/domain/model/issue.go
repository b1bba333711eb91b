package model

import "time"

// Issue is an issue or pull request as listed by the issues endpoint.
// IsPullRequest distinguishes the two; the correctness signal drops PRs.
type Issue struct {
	Number        int
	Author        string
	State         IssueState
	IsPullRequest bool
	Comments      int
	CreatedAt     time.Time
	ClosedAt      time.Time
}

// IsClosed reports whether the issue has been closed.
func (i Issue) IsClosed() bool {
	return i.State == IssueStateClosed
}
