package model

import "time"

// IssueComment is a comment on an issue or pull request conversation.
type IssueComment struct {
	ID        int64
	Author    string
	CreatedAt time.Time
}
