package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNormalization represents an unrecognized or unresolvable product link
	ErrorTypeNormalization ErrorType = "normalization"
	// ErrorTypeNotFound represents a well-formed upstream response without the item
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeUpstream represents network, protocol, status or decoding failures
	ErrorTypeUpstream ErrorType = "upstream"
	// ErrorTypeValidation represents invalid caller input
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// Sentinels for errors.Is matching by type.
var (
	ErrNormalization = &Error{Type: ErrorTypeNormalization}
	ErrNotFound      = &Error{Type: ErrorTypeNotFound}
	ErrUpstream      = &Error{Type: ErrorTypeUpstream}
	ErrValidation    = &Error{Type: ErrorTypeValidation}
	ErrConfiguration = &Error{Type: ErrorTypeConfiguration}
)

// Error is the typed error returned by the lookup pipeline
type Error struct {
	Type        ErrorType
	Source      string
	Message     string
	StatusCode  int
	RateLimited bool
	Err         error
	Time        time.Time
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, msg)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// IsRetryable returns true if the error is retryable
func (e *Error) IsRetryable() bool {
	if e.Type != ErrorTypeUpstream || e.RateLimited {
		return false
	}
	// network failures carry the transport error and no status
	if e.StatusCode == 0 {
		return e.Err != nil
	}
	return e.StatusCode >= http.StatusInternalServerError
}

// New creates a new Error
func New(errType ErrorType, source, message string, err error) *Error {
	return &Error{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNormalization creates a new normalization error
func NewNormalization(source, message string, err error) *Error {
	return New(ErrorTypeNormalization, source, message, err)
}

// NewNotFound creates a new not-found error
func NewNotFound(source, message string) *Error {
	return New(ErrorTypeNotFound, source, message, nil)
}

// NewUpstream creates a new upstream error
func NewUpstream(source, message string, err error) *Error {
	return New(ErrorTypeUpstream, source, message, err)
}

// NewUpstreamStatus creates an upstream error for an unexpected HTTP status
func NewUpstreamStatus(source string, statusCode int) *Error {
	e := New(ErrorTypeUpstream, source, "unexpected status code", nil)
	e.StatusCode = statusCode
	return e
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(source string, duration time.Duration) *Error {
	message := fmt.Sprintf("rate limited for %v", duration)
	e := New(ErrorTypeUpstream, source, message, nil)
	e.RateLimited = true
	e.StatusCode = http.StatusTooManyRequests
	return e
}

// NewValidation creates a new validation error
func NewValidation(source, message string) *Error {
	return New(ErrorTypeValidation, source, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *Error {
	return New(ErrorTypeConfiguration, "config", message, err)
}

// TypeOf returns the ErrorType of the first *Error in err's chain, or "".
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ""
}

// IsRateLimited reports whether err carries a rate-limit upstream error.
func IsRateLimited(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.RateLimited
}
