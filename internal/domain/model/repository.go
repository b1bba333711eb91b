package model

import "time"

// RepositoryReference identifies a GitHub repository resolved from a
// user-supplied URL. It is immutable once resolved.
type RepositoryReference struct {
	NativeURL    string // URL exactly as supplied by the caller.
	CanonicalURL string // Always https://github.com/<owner>/<name>.
	Owner        string
	Name         string
}

// FullName returns the "owner/name" form used in logs and storage keys.
func (r RepositoryReference) FullName() string {
	return r.Owner + "/" + r.Name
}

// RepositoryMetadata holds the repository-level attributes the signals read.
type RepositoryMetadata struct {
	FullName      string
	DefaultBranch string
	Description   string
	HasWiki       bool
	Archived      bool
	PushedAt      time.Time
	CreatedAt     time.Time
}

// Contributor is a single committer with their commit count on the default branch.
type Contributor struct {
	Login         string
	Contributions int
}
