// Package ban tracks banned accounts and applies the auto-ban policy: a hard
// pipeline failure bans the offending account and erases it from every
// leaderboard bracket.
package ban

import "time"

// Record is one banned account.
type Record struct {
	AccountID string    `json:"account_id"`
	Reason    string    `json:"reason"`
	BannedAt  time.Time `json:"banned_at"`
}
