package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// timestampLayout is fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// Ledger records every publish attempt the bot makes.
type Ledger interface {
	RecordAttempt(ctx context.Context, a *Attempt) error
	RecentAttempts(ctx context.Context, limit int) ([]Attempt, error)
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// SQLiteLedger implements Ledger backed by a SQLite database.
type SQLiteLedger struct {
	db *sql.DB
	// owned is set when Open created db, so Close closes it too.
	owned bool

	insertAttempt *sql.Stmt
	recent        *sql.Stmt
}

// NewSQLiteLedger creates a ledger from an already-opened and migrated database.
func NewSQLiteLedger(db *sql.DB) (*SQLiteLedger, error) {
	l := &SQLiteLedger{db: db}
	if err := l.prepareStatements(); err != nil {
		l.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}
	return l, nil
}

// Open creates the parent directory of path, opens the database, runs
// migrations and returns a ledger that owns the connection.
func Open(ctx context.Context, path string) (*SQLiteLedger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := NewMigrationRunner(db).Run(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	l, err := NewSQLiteLedger(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	l.owned = true
	return l, nil
}

func (l *SQLiteLedger) prepareStatements() error {
	var err error

	l.insertAttempt, err = l.db.Prepare(`
		INSERT INTO attempts (id, fact_id, status, remote_id, tries, warning, error, text, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	l.recent, err = l.db.Prepare(`
		SELECT id, fact_id, status, remote_id, tries, warning, error, text, ts
		FROM attempts ORDER BY ts DESC, rowid DESC LIMIT ?
	`)
	return err
}

// RecordAttempt stores a. ID is generated and At defaults to now when unset.
func (l *SQLiteLedger) RecordAttempt(ctx context.Context, a *Attempt) error {
	if a.Status != StatusPosted && a.Status != StatusFailed {
		return fmt.Errorf("record attempt: unknown status %q", a.Status)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.At.IsZero() {
		a.At = time.Now()
	}
	if a.Tries < 1 {
		a.Tries = 1
	}

	_, err := l.insertAttempt.ExecContext(ctx,
		a.ID, a.FactID, a.Status, a.RemoteID, a.Tries,
		a.Warning, a.Error, a.Text, a.At.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// RecentAttempts returns up to limit attempts, newest first.
func (l *SQLiteLedger) RecentAttempts(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.recent.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	attempts := []Attempt{}
	for rows.Next() {
		var a Attempt
		var tsStr string
		if err := rows.Scan(
			&a.ID, &a.FactID, &a.Status, &a.RemoteID, &a.Tries,
			&a.Warning, &a.Error, &a.Text, &tsStr,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.At, _ = parseTimestamp(tsStr)
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// GetStats returns aggregate statistics about the posting history.
func (l *SQLiteLedger) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := l.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(status = 'posted'), 0),
			COALESCE(SUM(status = 'failed'), 0),
			COUNT(DISTINCT CASE WHEN status = 'posted' THEN fact_id END)
		FROM attempts
	`).Scan(&stats.Posted, &stats.Failed, &stats.DistinctFacts)
	if err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}

	if stats.Posted > 0 {
		var lastStr string
		err = l.db.QueryRowContext(ctx,
			"SELECT MAX(ts) FROM attempts WHERE status = 'posted'",
		).Scan(&lastStr)
		if err != nil {
			return nil, fmt.Errorf("last posted: %w", err)
		}
		stats.LastPosted, _ = parseTimestamp(lastStr)
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT fact_id, COUNT(*) AS cnt FROM attempts
		WHERE status = 'posted'
		GROUP BY fact_id ORDER BY cnt DESC, fact_id ASC LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("top facts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fc FactCount
		if err := rows.Scan(&fc.FactID, &fc.Count); err != nil {
			return nil, err
		}
		stats.TopFacts = append(stats.TopFacts, fc)
	}
	return stats, rows.Err()
}

// Close releases prepared statements. The database is closed only when
// the ledger was created by Open.
func (l *SQLiteLedger) Close() error {
	for _, stmt := range []*sql.Stmt{l.insertAttempt, l.recent} {
		if stmt != nil {
			stmt.Close()
		}
	}
	if l.owned {
		return l.db.Close()
	}
	return nil
}

// parseTimestamp tries the layouts SQLite and this package write.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("cannot parse timestamp: " + s)
}
