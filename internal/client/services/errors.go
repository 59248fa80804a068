package services

import (
	"fmt"

	"github.com/saveeat/saveeat-client/internal/common"
)

// ValidationError is raised before any remote call is issued when an input
// cannot be sent as is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == common.ErrValidation }

// UserMessage is picked up by client.Message.
func (e *ValidationError) UserMessage() string {
	return fmt.Sprintf("Invalid %s: %s.", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
