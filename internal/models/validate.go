package models

import (
	"fmt"
	"strings"
)

// ValidationError reports a rejected task field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ValidateNewTask checks the fields of a task about to be created.
func ValidateNewTask(title, description string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if strings.TrimSpace(description) == "" {
		return &ValidationError{Field: "description", Reason: "is required"}
	}
	return nil
}
