package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound    = errors.New("player not found")
	ErrDuplicatePlayerID = errors.New("player id already exists")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidUpdate   = errors.New("invalid session update")

	// Storage errors
	ErrStoreUnavailable = errors.New("store unavailable")
)
