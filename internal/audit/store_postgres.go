package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore appends audit entries to the audit_log table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed audit store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Insert appends an entry.
func (s *PostgresStore) Insert(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (
			id, occurred_at, source_addr, client_platform, account_id,
			difficulty, score_ms, rate_limited, success, outcome, request_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		entry.ID, entry.Timestamp, entry.SourceAddr, entry.ClientPlatform,
		entry.AccountID, entry.Difficulty, entry.ScoreMs, entry.RateLimited,
		entry.Success, entry.Outcome, entry.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
