package application

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
)

// ErrInvalidRepositoryURL is returned when a URL does not name a GitHub
// repository. It aborts a scoring request before any signal runs.
var ErrInvalidRepositoryURL = errors.New("invalid repository URL")

const githubHost = "github.com"

// githubName matches a valid GitHub owner or repository name.
var githubName = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// scpLike matches the "git@github.com:owner/name.git" SSH shorthand.
var scpLike = regexp.MustCompile(`^[A-Za-z0-9_.-]+@([A-Za-z0-9.-]+):(.+)$`)

// ResolveRepository parses a GitHub repository URL into a RepositoryReference.
// Accepted forms include https, http, git+https, git, ssh, the scp-like SSH
// shorthand, and a bare "github.com/owner/name". A trailing ".git", extra path
// segments, query, and fragment are ignored.
func ResolveRepository(rawURL string) (model.RepositoryReference, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return model.RepositoryReference{}, fmt.Errorf("%w: empty", ErrInvalidRepositoryURL)
	}

	host, path, err := splitHostPath(trimmed)
	if err != nil {
		return model.RepositoryReference{}, fmt.Errorf("%w %q: %w", ErrInvalidRepositoryURL, rawURL, err)
	}

	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	if host != githubHost {
		return model.RepositoryReference{}, fmt.Errorf("%w %q: host %q is not %s", ErrInvalidRepositoryURL, rawURL, host, githubHost)
	}

	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(segments) < 2 {
		return model.RepositoryReference{}, fmt.Errorf("%w %q: expected %s/<owner>/<name>", ErrInvalidRepositoryURL, rawURL, githubHost)
	}

	owner := segments[0]
	name := strings.TrimSuffix(segments[1], ".git")
	if !githubName.MatchString(owner) || !githubName.MatchString(name) || name == "." || name == ".." {
		return model.RepositoryReference{}, fmt.Errorf("%w %q: invalid owner or name", ErrInvalidRepositoryURL, rawURL)
	}

	return model.RepositoryReference{
		NativeURL:    rawURL,
		CanonicalURL: fmt.Sprintf("https://%s/%s/%s", githubHost, owner, name),
		Owner:        owner,
		Name:         name,
	}, nil
}

// splitHostPath extracts host and path from the accepted URL shapes.
func splitHostPath(s string) (string, string, error) {
	if !strings.Contains(s, "://") {
		if m := scpLike.FindStringSubmatch(s); m != nil {
			return m[1], m[2], nil
		}
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", "", err
	}

	switch u.Scheme {
	case "http", "https", "git+https", "git", "ssh", "git+ssh":
	default:
		return "", "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	return u.Hostname(), u.Path, nil
}
