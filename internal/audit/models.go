package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is the append-only record written once per submission attempt.
// The pipeline only writes; analysis tooling reads the table offline.
type Entry struct {
	ID             uuid.UUID
	Timestamp      time.Time
	SourceAddr     string
	ClientPlatform string
	AccountID      string
	Difficulty     string
	ScoreMs        int64
	RateLimited    bool
	Success        bool
	Outcome        string
	RequestID      string
}
