package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

const GenericErrorMessage = "Something went wrong. Please try again."

// FieldErrors maps a field path like "variants[0].sku" to its message.
type FieldErrors map[string]string

func (fe FieldErrors) Keys() []string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// A ValidationError blocks a submission before any network call.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, k := range e.Fields.Keys() {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// A RequestError is a transport failure: network, timeout or bad payload.
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// A ServerError is a request the API rejected with its own message.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server rejected request (%d): %s", e.Status, e.Message)
}

func (e *ServerError) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}

// PublicMessage returns the text to display for err.
func PublicMessage(err error) string {
	var (
		se *ServerError
		re *RequestError
		ve *ValidationError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "You are not authorized to perform this action."
	case errors.As(err, &ve):
		return "Please check your input and try again."
	case errors.As(err, &se) && se.Message != "":
		return se.Message
	case errors.As(err, &re):
		return "Network error. Please check your connection."
	default:
		return GenericErrorMessage
	}
}
