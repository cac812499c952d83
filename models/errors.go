package models

import "errors"

// Errors surfaced by the paste service. Absent, expired and burned pastes
// are all reported as ErrNotFound so callers cannot probe for dead ids.
var (
	ErrNotFound        = errors.New("paste not found")
	ErrUnauthorized    = errors.New("invalid edit token")
	ErrPayloadTooLarge = errors.New("paste too large")
	ErrInvalidInput    = errors.New("invalid paste payload")
)
