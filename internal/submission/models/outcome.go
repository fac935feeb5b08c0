package models

// Outcome names the terminal state of one submission for responses, audit
// entries, and metrics labels.
type Outcome string

const (
	OutcomeAccepted       Outcome = "accepted"
	OutcomeRateLimited    Outcome = "rate_limited"
	OutcomeStructural     Outcome = "structural_failure"
	OutcomeAuthentication Outcome = "authentication_failed"
	OutcomeBanned         Outcome = "account_banned"
	OutcomeImplausible    Outcome = "implausible_stats"
	OutcomeTransient      Outcome = "transient_error"
)

// IsSuccess reports whether the outcome is the accepting terminal state.
func (o Outcome) IsSuccess() bool {
	return o == OutcomeAccepted
}
