package signal

import (
	"time"

	"github.com/ericfisherdev/trustscore/internal/domain/port/driven"
)

// DefaultLicenseAllowList holds SPDX identifiers compatible with LGPL-2.1.
var DefaultLicenseAllowList = []string{
	"MIT",
	"ISC",
	"0BSD",
	"BSD-2-Clause",
	"BSD-3-Clause",
	"Zlib",
	"Unlicense",
	"LGPL-2.1",
	"LGPL-2.1-only",
	"LGPL-2.1-or-later",
}

// Options tunes sample sizes and policy inputs shared by the evaluators.
// Zero values fall back to the defaults.
type Options struct {
	LicenseAllowList      []string
	ContributorSampleSize int
	IssueSampleSize       int
	ResponseSampleSize    int
	PullRequestSampleSize int
	ReviewConcurrency     int
	// Now is the clock used for recency and outstanding-response math.
	Now func() time.Time
}

// DefaultOptions returns the options used in production.
func DefaultOptions() Options {
	return Options{
		LicenseAllowList:      DefaultLicenseAllowList,
		ContributorSampleSize: 100,
		IssueSampleSize:       100,
		ResponseSampleSize:    30,
		PullRequestSampleSize: 100,
		ReviewConcurrency:     8,
		Now:                   time.Now,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if len(o.LicenseAllowList) == 0 {
		o.LicenseAllowList = d.LicenseAllowList
	}
	if o.ContributorSampleSize <= 0 {
		o.ContributorSampleSize = d.ContributorSampleSize
	}
	if o.IssueSampleSize <= 0 {
		o.IssueSampleSize = d.IssueSampleSize
	}
	if o.ResponseSampleSize <= 0 {
		o.ResponseSampleSize = d.ResponseSampleSize
	}
	if o.PullRequestSampleSize <= 0 {
		o.PullRequestSampleSize = d.PullRequestSampleSize
	}
	if o.ReviewConcurrency <= 0 {
		o.ReviewConcurrency = d.ReviewConcurrency
	}
	if o.Now == nil {
		o.Now = d.Now
	}
	return o
}

// Defaults builds all seven evaluators in canonical report order.
func Defaults(source driven.RepositoryDataSource, opts Options) []Evaluator {
	opts = opts.withDefaults()
	return []Evaluator{
		NewRampUp(source, opts),
		NewBusFactor(source, opts),
		NewCorrectness(source, opts),
		NewResponsiveMaintainer(source, opts),
		NewLicense(source, opts),
		NewPinningPractice(source, opts),
		NewCodeReviewCoverage(source, opts),
	}
}
