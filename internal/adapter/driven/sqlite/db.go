package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

// MemoryPath selects an in-memory report database that is discarded on exit.
const MemoryPath = ":memory:"

const (
	readerConns = 4
	pragmas     = "_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
)

// DB holds separate SQLite handles for writes and reads. SQLite admits one
// writer at a time, so Writer is capped at a single connection.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
}

// Open opens the report database at path in WAL mode, or a private
// in-memory database when path is MemoryPath.
func Open(ctx context.Context, path string) (*DB, error) {
	if path == MemoryPath {
		return OpenMemory(ctx, "trustscore")
	}
	return openPair(ctx, fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&%s", path, pragmas))
}

// OpenMemory opens a named in-memory database shared by both handles. The
// data lives until the last handle is closed.
func OpenMemory(ctx context.Context, name string) (*DB, error) {
	return openPair(ctx, fmt.Sprintf("file:%s?mode=memory&cache=shared&%s", url.PathEscape(name), pragmas))
}

func openPair(ctx context.Context, dsn string) (*DB, error) {
	writer, err := openHandle(ctx, dsn, 1)
	if err != nil {
		return nil, fmt.Errorf("writer: %w", err)
	}

	reader, err := openHandle(ctx, dsn, readerConns)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("reader: %w", err)
	}

	return &DB{Writer: writer, Reader: reader}, nil
}

func openHandle(ctx context.Context, dsn string, maxOpen int) (*sql.DB, error) {
	h, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	h.SetMaxOpenConns(maxOpen)

	if err := h.PingContext(ctx); err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return h, nil
}

// Close closes both handles and reports every failure.
func (db *DB) Close() error {
	return errors.Join(db.Reader.Close(), db.Writer.Close())
}
