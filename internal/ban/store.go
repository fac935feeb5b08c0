package ban

import "context"

// Store persists ban records.
type Store interface {
	// Upsert records a ban. Re-banning an already banned account keeps the
	// original record untouched.
	Upsert(ctx context.Context, record Record) error
	// Get returns the record for accountID, or ErrNotFound.
	Get(ctx context.Context, accountID string) (Record, error)
	// Delete removes the record; deleting an absent record is not an error.
	Delete(ctx context.Context, accountID string) error
}
