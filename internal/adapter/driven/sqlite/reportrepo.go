package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
	"github.com/ericfisherdev/trustscore/internal/domain/port/driven"
)

// createdAtLayout is fixed width so that text order in SQLite is time order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Compile-time interface satisfaction check.
var _ driven.ReportStore = (*ReportRepo)(nil)

// ReportRepo is the SQLite implementation of the ReportStore port interface.
type ReportRepo struct {
	db *DB
}

// NewReportRepo creates a new ReportRepo backed by the given DB.
func NewReportRepo(db *DB) *ReportRepo {
	return &ReportRepo{db: db}
}

// Save inserts the report and its signal results in one transaction and
// returns the generated report ID.
func (r *ReportRepo) Save(ctx context.Context, report model.NetScoreReport) (string, error) {
	const insertReport = `INSERT INTO score_reports
		(id, owner, name, native_url, canonical_url, net_score, latency_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	const insertSignal = `INSERT INTO signal_results
		(report_id, position, signal, score, latency_ns, failure)
		VALUES (?, ?, ?, ?, ?, ?)`

	id := uuid.NewString()
	ref := report.Repository

	createdAt := report.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin save report: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, insertReport,
		id, ref.Owner, ref.Name, ref.NativeURL, ref.CanonicalURL,
		report.NetScore, int64(report.Latency), createdAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return "", fmt.Errorf("save report for %s: %w", ref.FullName(), err)
	}

	for i, s := range report.Signals {
		_, err := tx.ExecContext(ctx, insertSignal, id, i, string(s.Name), s.Score, int64(s.Latency), string(s.Failure))
		if err != nil {
			return "", fmt.Errorf("save signal %s for %s: %w", s.Name, ref.FullName(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit save report: %w", err)
	}

	return id, nil
}

// GetByID retrieves a report by ID. Returns ErrReportNotFound if absent.
func (r *ReportRepo) GetByID(ctx context.Context, id string) (*model.StoredReport, error) {
	const query = `SELECT id, owner, name, native_url, canonical_url, net_score, latency_ns, created_at
		FROM score_reports WHERE id = ?`

	stored, err := scanReport(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get report %s: %w", id, driven.ErrReportNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", id, err)
	}

	if err := r.loadSignals(ctx, stored); err != nil {
		return nil, err
	}

	return stored, nil
}

// ListByRepository returns up to limit reports for owner/name, newest first.
// Owner and name match case-insensitively, as they do on GitHub.
func (r *ReportRepo) ListByRepository(ctx context.Context, owner, name string, limit int) ([]model.StoredReport, error) {
	const query = `SELECT id, owner, name, native_url, canonical_url, net_score, latency_ns, created_at
		FROM score_reports WHERE owner = ? COLLATE NOCASE AND name = ? COLLATE NOCASE
		ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, owner, name, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports for %s/%s: %w", owner, name, err)
	}
	defer rows.Close()

	var reports []model.StoredReport
	for rows.Next() {
		stored, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, *stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}

	for i := range reports {
		if err := r.loadSignals(ctx, &reports[i]); err != nil {
			return nil, err
		}
	}

	return reports, nil
}

func (r *ReportRepo) loadSignals(ctx context.Context, stored *model.StoredReport) error {
	const query = `SELECT signal, score, latency_ns, failure
		FROM signal_results WHERE report_id = ? ORDER BY position`

	rows, err := r.db.Reader.QueryContext(ctx, query, stored.ID)
	if err != nil {
		return fmt.Errorf("load signals for report %s: %w", stored.ID, err)
	}
	defer rows.Close()

	signals := make([]model.SignalResult, 0, len(model.AllSignals()))
	for rows.Next() {
		var s model.SignalResult
		var name, failure string
		var latency int64
		if err := rows.Scan(&name, &s.Score, &latency, &failure); err != nil {
			return fmt.Errorf("scan signal: %w", err)
		}
		s.Name = model.SignalName(name)
		s.Failure = model.FailureReason(failure)
		s.Latency = time.Duration(latency)
		signals = append(signals, s)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate signals: %w", err)
	}

	stored.Report.Signals = signals
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanReport(s scanner) (*model.StoredReport, error) {
	var stored model.StoredReport
	var latency int64
	var createdAt string
	ref := &stored.Report.Repository

	err := s.Scan(&stored.ID, &ref.Owner, &ref.Name, &ref.NativeURL, &ref.CanonicalURL,
		&stored.Report.NetScore, &latency, &createdAt)
	if err != nil {
		return nil, err
	}

	stored.Report.Latency = time.Duration(latency)
	stored.Report.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &stored, nil
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		createdAtLayout,
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
