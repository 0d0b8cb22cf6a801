// Package errors defines the error types returned by the snoo client.
package errors

import (
	"fmt"
	"strings"
)

// AuthError indicates an authentication failure: a rejected token exchange, an
// unexpected status on an authenticated call, or exhaustion of the single
// re-authentication retry.
type AuthError struct {
	// StatusCode is the HTTP status code, if the failure came from a response.
	StatusCode int
	// Message contains the human-readable diagnostic.
	Message string
	// Body contains the raw response body, if available. It may hold details
	// the server chose not to express in the status code.
	Body string
	// Err is the underlying error, if any.
	Err error
}

func (e *AuthError) Error() string {
	parts := []string{"auth error"}

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status code %d", e.StatusCode))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Body != "" {
		parts = append(parts, fmt.Sprintf("body: %q", e.Body))
	}
	if e.Err != nil {
		parts = append(parts, fmt.Sprintf("err: %v", e.Err))
	}

	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + ": " + strings.Join(parts[1:], ", ")
}

func (e *AuthError) Unwrap() error { return e.Err }

// RequestError indicates an underlying network or transport failure.
// These are surfaced directly and never retried by the client.
type RequestError struct {
	// Operation is the name of the operation that failed.
	Operation string
	// URL is the URL that was being accessed.
	URL string
	// Err is the underlying transport error.
	Err error
}

func (e *RequestError) Error() string {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" && e.URL != "" {
		return fmt.Sprintf("request error during %s to %s: %s", e.Operation, e.URL, msg)
	}
	if e.Operation != "" {
		return fmt.Sprintf("request error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("request error: %s", msg)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ParseError indicates that a response body failed structural decode.
type ParseError struct {
	// Operation is the name of the operation where decoding failed.
	Operation string
	// Message contains the detailed error message.
	Message string
	// Err is the underlying decode error, if any.
	Err error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" {
		return fmt.Sprintf("parse error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("parse error: %s", msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ConfigError indicates a problem with the client configuration.
type ConfigError struct {
	// Field contains the name of the configuration field that caused the error.
	Field string
	// Message contains the detailed error message.
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}
