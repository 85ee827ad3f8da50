package services

import (
	"errors"
	"time"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrTemplateRequired = errors.New("template id is required")
	ErrNoRecipients     = errors.New("no recipients")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotConfigured    = errors.New("service not configured")
)

// Error carries a user facing message while still matching one of the
// sentinels above through errors.Is.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func invalid(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func noRecipients(msg string) error {
	return &Error{Kind: ErrNoRecipients, Message: msg}
}

func notConfigured(msg string) error {
	return &Error{Kind: ErrNotConfigured, Message: msg}
}

// Clock returns the current time. Services default to UTC wall time.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }
