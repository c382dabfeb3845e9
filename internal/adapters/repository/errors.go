package repository

import "errors"

// Sentinel errors for checklist state storage.
var (
	ErrConflict   = errors.New("concurrent criterion state update")
	ErrClosed     = errors.New("store closed")
	ErrInvalidKey = errors.New("criterion key is required")
)
