package model

import "time"

// QuotaStatus is a snapshot of the upstream API's primary rate-limit budget.
// It is never cached: every concurrent signal reads its own copy.
type QuotaStatus struct {
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// ResetAtEpochSeconds returns the reset time as Unix seconds, or 0 when unknown.
func (q QuotaStatus) ResetAtEpochSeconds() int64 {
	if q.ResetAt.IsZero() {
		return 0
	}
	return q.ResetAt.Unix()
}
