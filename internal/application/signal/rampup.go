package signal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
	"github.com/ericfisherdev/trustscore/internal/domain/port/driven"
)

// Normalization targets for README content. Reaching a target earns full credit
// for that component.
const (
	readmeWordTarget     = 1000
	readmeHeadingTarget  = 8
	readmeCodeTarget     = 3
	recencyHalfLifeDays  = 180.0
	rampUpDocWeight      = 0.6
	rampUpRecencyWeight  = 0.4
	readmeWordsWeight    = 0.6
	readmeHeadingsWeight = 0.2
	readmeCodeWeight     = 0.2
)

// RampUp estimates how quickly a new contributor becomes productive from the
// README's substance and how recently the repository saw a push.
type RampUp struct {
	source driven.RepositoryDataSource
	now    func() time.Time
}

// NewRampUp creates a RampUp evaluator.
func NewRampUp(source driven.RepositoryDataSource, opts Options) *RampUp {
	opts = opts.withDefaults()
	return &RampUp{source: source, now: opts.Now}
}

// Name implements Evaluator.
func (e *RampUp) Name() model.SignalName { return model.SignalRampUp }

// Evaluate implements Evaluator. A missing README scores zero documentation
// rather than failing the signal.
func (e *RampUp) Evaluate(ctx context.Context, ref model.RepositoryReference) (float64, error) {
	meta, err := e.source.Repository(ctx, ref.Owner, ref.Name)
	if err != nil {
		return 0, fetchError("repository metadata", err)
	}

	var doc float64
	readme, err := e.source.Readme(ctx, ref.Owner, ref.Name)
	switch {
	case errors.Is(err, driven.ErrNotFound):
	case err != nil:
		return 0, fetchError("readme", err)
	default:
		stats, err := analyzeReadme(readme.Content)
		if err != nil {
			return 0, fmt.Errorf("%w: readme: %w", ErrMalformedData, err)
		}
		doc = stats.score()
	}

	recency := recencyScore(e.now(), meta.PushedAt)

	return clamp01(rampUpDocWeight*doc + rampUpRecencyWeight*recency), nil
}

// readmeStats summarizes the parts of a README that help onboarding.
type readmeStats struct {
	words      int
	headings   int
	codeBlocks int
}

func (s readmeStats) score() float64 {
	return readmeWordsWeight*ratio(s.words, readmeWordTarget) +
		readmeHeadingsWeight*ratio(s.headings, readmeHeadingTarget) +
		readmeCodeWeight*ratio(s.codeBlocks, readmeCodeTarget)
}

// analyzeReadme parses Markdown, counts structural nodes, then renders and
// strips all markup to count words of visible text.
func analyzeReadme(src []byte) (readmeStats, error) {
	var stats readmeStats

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindHeading:
			stats.headings++
		case ast.KindFencedCodeBlock, ast.KindCodeBlock:
			stats.codeBlocks++
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return readmeStats{}, fmt.Errorf("walking markdown: %w", err)
	}

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, src, root); err != nil {
		return readmeStats{}, fmt.Errorf("rendering markdown: %w", err)
	}

	plain := html.UnescapeString(bluemonday.StrictPolicy().Sanitize(buf.String()))
	stats.words = len(strings.Fields(plain))

	return stats, nil
}

// recencyScore decays from 1 toward 0 with days since the last push.
// A repository that was never pushed scores 0.
func recencyScore(now, pushedAt time.Time) float64 {
	if pushedAt.IsZero() {
		return 0
	}
	days := now.Sub(pushedAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	return 1 / (1 + days/recencyHalfLifeDays)
}

func ratio(n, target int) float64 {
	if target <= 0 {
		return 0
	}
	return clamp01(float64(n) / float64(target))
}
