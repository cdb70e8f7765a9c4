// Package sqlite provides a local journal sink: each published batch is
// written to a records table in a single transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/loykin/batchq/cmd/batchq/sink/common"
	_ "modernc.org/sqlite"
)

// Publisher appends batches to a sqlite database. A batch is committed
// atomically: either every line of the batch is journaled or none is.
type Publisher struct {
	db   *sql.DB
	host string
}

func New(cfg Config, host string) (common.Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// Ensure directory exists
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory for database: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Publisher{db: db, host: host}, nil
}

func (p *Publisher) Publish(ctx context.Context, lines []string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (host, message, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, ln := range lines {
		if _, err := stmt.ExecContext(ctx, p.host, ln); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// Count reports the number of journaled records.
func (p *Publisher) Count(ctx context.Context) (int64, error) {
	row := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`)
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

func (p *Publisher) Close() error {
	return p.db.Close()
}
