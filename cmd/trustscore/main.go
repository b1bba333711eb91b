// Command trustscore scores the GitHub repositories named on its input, one
// URL per line, and prints one NDJSON report per URL.
//
//	trustscore urls.txt
//	cat urls.txt | trustscore
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/trustscore/internal/adapter/driven/github"
	httphandler "github.com/ericfisherdev/trustscore/internal/adapter/driving/http"
	"github.com/ericfisherdev/trustscore/internal/application"
	scoresignal "github.com/ericfisherdev/trustscore/internal/application/signal"
	"github.com/ericfisherdev/trustscore/internal/config"
)

// errInvalidInput marks a run in which at least one URL could not be scored.
var errInvalidInput = errors.New("one or more inputs could not be scored")

// line is one NDJSON output record: the wire report plus the input URL.
type line struct {
	URL string `json:"URL"`
	httphandler.ReportResponse
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errInvalidInput) {
			fmt.Fprintln(os.Stderr, "trustscore:", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	input := stdin
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		input = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aggregator, err := application.NewAggregator(cfg.ScoringWeights(), cfg.Policy())
	if err != nil {
		return err
	}

	opts := scoresignal.DefaultOptions()
	opts.LicenseAllowList = cfg.LicenseAllowList

	ghClient := githubadapter.NewClient(cfg.GitHubToken)
	svc := application.NewScoreService(
		application.NewQuotaGuard(ghClient),
		scoresignal.Defaults(ghClient, opts),
		aggregator,
		nil,
		nil,
		cfg.SignalTimeout,
		logger,
	)

	return scoreAll(ctx, svc, input, stdout, stderr)
}

// scoreAll scores every non-blank input line in order. An invalid URL is
// reported on stderr and does not stop the remaining lines.
func scoreAll(ctx context.Context, svc httphandler.Scorer, input io.Reader, stdout, stderr io.Writer) error {
	enc := json.NewEncoder(stdout)
	scanner := bufio.NewScanner(input)

	failed := false
	for scanner.Scan() {
		rawURL := strings.TrimSpace(scanner.Text())
		if rawURL == "" || strings.HasPrefix(rawURL, "#") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		report, err := svc.Score(ctx, rawURL)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", rawURL, err)
			failed = true
			continue
		}

		if err := enc.Encode(line{URL: rawURL, ReportResponse: httphandler.NewReportResponse(*report)}); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	if failed {
		return errInvalidInput
	}
	return nil
}
