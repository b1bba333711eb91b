package model

// Review represents a review on a pull request.
type Review struct {
	ID            int64
	ReviewerLogin string
	State         ReviewState
}

// Counts reports whether the review is evidence that the change was looked at.
// Pending drafts were never submitted and dismissed reviews were withdrawn.
func (r Review) Counts() bool {
	return r.State != ReviewStatePending && r.State != ReviewStateDismissed
}
