package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// The categories mirror the submission pipeline's failure taxonomy: transient
// infrastructure trouble, structural tampering, authentication failures,
// policy rejections, and plausibility rejections.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeBadRequest   Code = "bad_request"
	CodeInternal     Code = "internal_error"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"

	// CodeTransient marks store or network failures. Soft failure, safe to
	// retry client-side, never a ban trigger.
	CodeTransient Code = "transient"

	// CodeStructural marks missing or malformed required fields. An unmodified
	// client cannot produce these, so the pipeline treats them as hard failures.
	CodeStructural Code = "structural"

	// CodeAuthentication marks ticket/token failures that prove tampering.
	CodeAuthentication Code = "authentication_failed"

	// CodeBanned rejects submissions from accounts already on the ban list.
	CodeBanned Code = "account_banned"

	// CodeRateLimited rejects submissions exceeding a rate window.
	CodeRateLimited Code = "rate_limited"

	// CodePlausibility rejects stats outside the configured gameplay bounds.
	CodePlausibility Code = "implausible_stats"
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the domain code of err, or CodeInternal for unclassified errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
