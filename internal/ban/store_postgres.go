package ban

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	dErrors "scoregate/pkg/domain-errors"
)

// PostgresStore persists ban records in the bans table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed ban store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Upsert records a ban. ON CONFLICT DO NOTHING keeps the first record's
// reason and timestamp when the account is banned again.
func (s *PostgresStore) Upsert(ctx context.Context, record Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bans (account_id, reason, banned_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO NOTHING
	`, record.AccountID, record.Reason, record.BannedAt)
	if err != nil {
		return fmt.Errorf("upsert ban: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, accountID string) (Record, error) {
	var record Record
	err := s.db.QueryRowContext(ctx, `
		SELECT account_id, reason, banned_at FROM bans WHERE account_id = $1
	`, accountID).Scan(&record.AccountID, &record.Reason, &record.BannedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, dErrors.New(dErrors.CodeNotFound, "account not banned")
	}
	if err != nil {
		return Record{}, fmt.Errorf("get ban: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) Delete(ctx context.Context, accountID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bans WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("delete ban: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
