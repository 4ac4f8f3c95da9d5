// Package service implements the business logic.
package service

import "errors"

// Errors returned by the services. Handlers map them to HTTP statuses with
// errors.Is; the wrapped detail is only ever logged.
var (
	ErrAuthenticationRequired = errors.New("authentication required")      // no valid session
	ErrExternalAuth           = errors.New("external authentication failed") // code missing, exchange or profile failure, state mismatch
	ErrInvalidInput           = errors.New("invalid input")                  // empty utterance, malformed id
	ErrNotFound               = errors.New("conversation not found")
	ErrForbidden              = errors.New("conversation belongs to another account")
	ErrGeneration             = errors.New("story generation failed")
	ErrPersistence            = errors.New("persistence failure")
)
