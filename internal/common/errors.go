// Package common defines shared constants and sentinel errors used across
// the SaveEat client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Cache lookups.
	ErrNotFound = errors.New("not found")

	// Session state.
	ErrNotAuthenticated = errors.New("not authenticated")

	// Caller-side checks performed before a remote call is issued.
	ErrValidation = errors.New("validation error")

	// Listing/reservation status machine.
	ErrInvalidTransition = errors.New("invalid status transition")
)
