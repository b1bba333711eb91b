package model

// PRState represents the state of a pull request as reported upstream.
type PRState string

const (
	PRStateOpen   PRState = "open"
	PRStateClosed PRState = "closed"
)

// IssueState represents the state of an issue.
type IssueState string

const (
	IssueStateOpen   IssueState = "open"
	IssueStateClosed IssueState = "closed"
)

// ReviewState represents the state of a review.
type ReviewState string

const (
	ReviewStateApproved         ReviewState = "approved"
	ReviewStateChangesRequested ReviewState = "changes_requested"
	ReviewStateCommented        ReviewState = "commented"
	ReviewStatePending          ReviewState = "pending"
	ReviewStateDismissed        ReviewState = "dismissed"
)

// FailureReason classifies why a signal could not produce a score.
type FailureReason string

const (
	FailureNone          FailureReason = ""
	FailureQuotaExceeded FailureReason = "quota_exceeded"
	FailureUpstreamFetch FailureReason = "upstream_fetch_failure"
	FailureMalformedData FailureReason = "malformed_upstream_data"
	FailureUndetectable  FailureReason = "undetectable"
	FailureTimeout       FailureReason = "timeout"
	FailureInternal      FailureReason = "internal"
)
