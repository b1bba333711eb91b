package signal

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
	"github.com/ericfisherdev/trustscore/internal/domain/port/driven"
)

// noAssertion is GitHub's SPDX id for a license file it could not classify.
const noAssertion = "NOASSERTION"

var (
	licenseHeading = regexp.MustCompile(`(?im)^#{1,6}\s*licen[cs]e\b.*$`)
	nextHeading    = regexp.MustCompile(`(?m)^#{1,6}\s`)
)

// readmeLicensePatterns maps license phrases to SPDX ids. Order matters:
// LGPL must be tested before GPL.
var readmeLicensePatterns = []struct {
	pattern *regexp.Regexp
	spdx    string
}{
	{regexp.MustCompile(`(?i)\bLGPL[- ]?(v)?2\.1\b|lesser general public license,? v(ersion)?\s*2\.1`), "LGPL-2.1"},
	{regexp.MustCompile(`(?i)\bLGPL[- ]?(v)?3|lesser general public license,? v(ersion)?\s*3`), "LGPL-3.0"},
	{regexp.MustCompile(`(?i)\bAGPL`), "AGPL-3.0"},
	{regexp.MustCompile(`(?i)\bGPL[- ]?(v)?3|general public license,? v(ersion)?\s*3`), "GPL-3.0"},
	{regexp.MustCompile(`(?i)\bGPL[- ]?(v)?2|general public license,? v(ersion)?\s*2`), "GPL-2.0"},
	{regexp.MustCompile(`(?i)\bapache([- ]license)?,?[- ]?(v(ersion)?)?\s*2(\.0)?\b`), "Apache-2.0"},
	{regexp.MustCompile(`(?i)\bMPL[- ]?2(\.0)?\b|mozilla public license,? v(ersion)?\s*2`), "MPL-2.0"},
	{regexp.MustCompile(`(?i)\bBSD[- ]3[- ]clause\b|\b3-clause BSD\b`), "BSD-3-Clause"},
	{regexp.MustCompile(`(?i)\bBSD[- ]2[- ]clause\b|\b2-clause BSD\b`), "BSD-2-Clause"},
	{regexp.MustCompile(`(?i)\bISC\b`), "ISC"},
	{regexp.MustCompile(`(?i)\bunlicense\b`), "Unlicense"},
	{regexp.MustCompile(`(?i)\bMIT\b`), "MIT"},
}

// License scores 1 when the repository's license is on the allow-list and 0
// when it is not. An undetectable license is a failure.
type License struct {
	source  driven.RepositoryDataSource
	allowed map[string]bool
}

// NewLicense creates a License evaluator.
func NewLicense(source driven.RepositoryDataSource, opts Options) *License {
	opts = opts.withDefaults()
	allowed := make(map[string]bool, len(opts.LicenseAllowList))
	for _, id := range opts.LicenseAllowList {
		allowed[strings.ToLower(strings.TrimSpace(id))] = true
	}
	return &License{source: source, allowed: allowed}
}

// Name implements Evaluator.
func (e *License) Name() model.SignalName { return model.SignalLicense }

// Evaluate implements Evaluator. GitHub's license detection is tried first;
// the README "License" section is the fallback.
func (e *License) Evaluate(ctx context.Context, ref model.RepositoryReference) (float64, error) {
	id, err := e.detect(ctx, ref)
	if err != nil {
		return 0, err
	}

	if e.allowed[strings.ToLower(id)] {
		return 1, nil
	}
	return 0, nil
}

func (e *License) detect(ctx context.Context, ref model.RepositoryReference) (string, error) {
	info, err := e.source.License(ctx, ref.Owner, ref.Name)
	switch {
	case errors.Is(err, driven.ErrNotFound):
	case err != nil:
		return "", fetchError("license", err)
	case info.SPDXID != "" && info.SPDXID != noAssertion:
		return info.SPDXID, nil
	}

	readme, err := e.source.Readme(ctx, ref.Owner, ref.Name)
	if errors.Is(err, driven.ErrNotFound) {
		return "", fmt.Errorf("%w: no license file and no README", ErrUndetectable)
	}
	if err != nil {
		return "", fetchError("readme", err)
	}

	id := licenseFromReadme(string(readme.Content))
	if id == "" {
		return "", fmt.Errorf("%w: no recognizable license in README", ErrUndetectable)
	}
	return id, nil
}

// licenseFromReadme returns the SPDX id named in the README's License section,
// or "" when there is no such section or it names no known license.
func licenseFromReadme(readme string) string {
	loc := licenseHeading.FindStringIndex(readme)
	if loc == nil {
		return ""
	}

	section := readme[loc[1]:]
	if next := nextHeading.FindStringIndex(section); next != nil {
		section = section[:next[0]]
	}

	for _, p := range readmeLicensePatterns {
		if p.pattern.MatchString(section) {
			return p.spdx
		}
	}
	return ""
}
