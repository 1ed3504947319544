package entity

import "errors"

// Domain errors
var (
	// Session errors
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionNotCompleted = errors.New("session is not completed")
	ErrNoResponses         = errors.New("session has no recorded responses")

	// Catalog errors
	ErrUnknownRole      = errors.New("unknown role")
	ErrQuestionNotFound = errors.New("question not found in sequence")

	// Result errors
	ErrResultNotFound = errors.New("assessment result not found")

	// Storage errors
	ErrObjectNotFound = errors.New("object not found")

	// Provider errors
	ErrTelephonyUnavailable = errors.New("telephony provider unavailable")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)
