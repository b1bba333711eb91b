package model

// LicenseInfo is the license GitHub detected for a repository.
// SPDXID is "NOASSERTION" when GitHub found a license file it could not classify.
type LicenseInfo struct {
	SPDXID string
	Name   string
}

// FileContent is a decoded file fetched from the default branch.
type FileContent struct {
	Path    string
	Content []byte
}
