package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteLedger is a SQLite implementation of core.Ledger. It is meant to be
// opened on an in-memory DSN; the ledger does not outlive the process.
type SQLiteLedger struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteLedger opens the ledger database and creates its table
func NewSQLiteLedger(dsn string, logger *zap.Logger) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// An in-memory database lives as long as its connection, so keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS processed_messages (
			message_id TEXT PRIMARY KEY,
			processed_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteLedger{
		db:     db,
		logger: logger,
	}, nil
}

// Contains reports whether id has been processed
func (l *SQLiteLedger) Contains(ctx context.Context, id string) (bool, error) {
	var one int
	err := l.db.QueryRowContext(ctx, `
		SELECT 1 FROM processed_messages WHERE message_id = ?
	`, id).Scan(&one)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query ledger: %w", err)
	}
	return true, nil
}

// Add marks id as processed
func (l *SQLiteLedger) Add(ctx context.Context, id string) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO processed_messages (message_id, processed_at)
		VALUES (?, ?)
	`, id, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	l.logger.Debug("Message recorded in ledger", zap.String("message_id", id))
	return nil
}

// Size returns the number of processed ids
func (l *SQLiteLedger) Size(ctx context.Context) (int, error) {
	var n int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM processed_messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}
	return n, nil
}

// Stop closes the database connection
func (l *SQLiteLedger) Stop() {
	if err := l.db.Close(); err != nil {
		l.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
