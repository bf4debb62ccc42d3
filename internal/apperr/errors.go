package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrStoreUnavailable  = errors.New("document store unavailable")
	ErrWriteFailed       = errors.New("document store write failed")
	ErrNotFound          = errors.New("record not found")
	ErrUploadFailed      = errors.New("image upload failed")
	ErrUnauthenticated   = errors.New("user not authenticated")
	ErrUnauthorized      = errors.New("not allowed to modify this record")
	ErrProfileIncomplete = errors.New("profile incomplete: block and flat number are required")
	ErrValidation        = errors.New("validation failed")
)

// ValidationError reports per-field problems so callers can show them next to the form input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError for a single field.
func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Collector accumulates field errors; Err returns nil when nothing was added.
type Collector struct {
	fields map[string]string
}

func (c *Collector) Add(field, msg string) {
	if c.fields == nil {
		c.fields = make(map[string]string)
	}
	if _, exists := c.fields[field]; !exists {
		c.fields[field] = msg
	}
}

func (c *Collector) Require(field, value string) {
	if strings.TrimSpace(value) == "" {
		c.Add(field, "is required")
	}
}

func (c *Collector) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: c.fields}
}

// Status maps an error from any layer to the HTTP status the API answers with.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrProfileIncomplete):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUploadFailed):
		return http.StatusBadGateway
	case errors.Is(err, ErrStoreUnavailable), errors.Is(err, ErrWriteFailed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code is the short machine-readable error code returned alongside the message.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_failed"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrProfileIncomplete):
		return "profile_incomplete"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUploadFailed):
		return "upload_failed"
	case errors.Is(err, ErrWriteFailed):
		return "write_failed"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "internal"
	}
}

// FieldErrors returns the per-field messages carried by err, if any.
func FieldErrors(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
