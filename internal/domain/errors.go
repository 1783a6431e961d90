package domain

import "errors"

// Domain errors
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUnknownCategory     = errors.New("unknown category key")
	ErrInvalidAmount       = errors.New("amount must be non-negative")
	ErrNotesTooLong        = errors.New("notes exceed maximum length")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidYear         = errors.New("invalid year")
	ErrInvalidMonth        = errors.New("invalid month")
)

// Validation constants
const (
	MaxNotesLength = 1000
	MinYear        = 1970
	MaxYear        = 2100
)
