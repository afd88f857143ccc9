package api

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnavailable means the request never produced a server response
	// (connection refused, DNS failure, cancelled transport). Transient;
	// the caller decides whether to retry.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized covers 401/403-class responses.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound covers 404 responses, e.g. deleting an already
	// deleted book.
	ErrNotFound = errors.New("not found")
)

// ValidationError carries the server's field-keyed validation messages.
// It is surfaced to the caller for display and never retried.
type ValidationError struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"validationErrors"`
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	fields := make([]string, 0, len(e.Errors))
	for f, msg := range e.Errors {
		fields = append(fields, f+": "+msg)
	}
	sort.Strings(fields)
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(fields, "; "))
}

// FieldError returns the validation message for a single field, if any.
func (e *ValidationError) FieldError(field string) string {
	return e.Errors[field]
}
