// Package handlers defines the error codes carried by the letters API
// envelope {request_id, code, message}. Codes are lowercase snake_case and
// stable; clients branch on them rather than on messages.
//
// The interaction guard endpoint does not use these codes; it keeps its own
// minimal shapes ({error}, {reason}, {blocked, reason}).
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeInvalidTag    = "invalid_tag"
	ErrCodeTooLong       = "too_long"
	ErrCodeEmpty         = "empty"
	ErrCodeCreateFailed  = "create_failed"
	ErrCodeListFailed    = "list_failed"
	ErrCodeSummaryFailed = "summary_failed"
	ErrCodeBlocked       = "blocked"
	ErrCodeAlreadyDone   = "already_done"

	ErrCodeInvalidUnlockDate = "invalid_unlock_date"
	ErrCodeInvalidMediaURL   = "invalid_media_url"
)
