package sentinel

import "errors"

// Sentinel dependency errors. Stores and adapters should return these
// (optionally wrapped) so services can translate them into domain errors
// exactly once.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrExpired             = errors.New("expired")
	ErrAlreadyUsed         = errors.New("already used")
	ErrAlreadyOwned        = errors.New("already owned")
	ErrInvalidState        = errors.New("invalid state")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUnavailable         = errors.New("unavailable")
)
