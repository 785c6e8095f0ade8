package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeTransport represents non-2xx responses and driver-level failures
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeTimeout represents fetches that exceeded their time bound
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeResponse represents responses that could not be interpreted
	ErrorTypeResponse ErrorType = "response"
	// ErrorTypeTrigger represents expansion triggers that cannot be parsed
	ErrorTypeTrigger ErrorType = "trigger"
	// ErrorTypeConcurrency represents requests rejected by the single-flight guard
	ErrorTypeConcurrency ErrorType = "concurrency"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// Kind returns the error category. Typed errors embedding *BaseError inherit
// it, which is what lets TypeOf find them in a wrapped chain.
func (e *BaseError) Kind() ErrorType {
	return e.Type
}

type kinded interface {
	Kind() ErrorType
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Fetch Errors

// ErrTransport is returned when the graph backend answers with a non-2xx
// status or cannot be reached at all. StatusCode is zero for the latter.
type ErrTransport struct {
	*BaseError
	Endpoint   string
	StatusCode int
}

func NewTransport(endpoint string, statusCode int, err error) *ErrTransport {
	msg := fmt.Sprintf("request to %s failed", endpoint)
	if statusCode != 0 {
		msg = fmt.Sprintf("request to %s failed with status %d", endpoint, statusCode)
	}
	return &ErrTransport{
		BaseError:  NewBaseError(ErrorTypeTransport, msg, err),
		Endpoint:   endpoint,
		StatusCode: statusCode,
	}
}

// ErrFetchTimeout is returned when a fetch exceeds its time bound
type ErrFetchTimeout struct {
	*BaseError
	Operation string
	Timeout   time.Duration
}

func NewFetchTimeout(operation string, timeout time.Duration, err error) *ErrFetchTimeout {
	return &ErrFetchTimeout{
		BaseError: NewBaseError(ErrorTypeTimeout, fmt.Sprintf("%s timed out after %v", operation, timeout), err),
		Operation: operation,
		Timeout:   timeout,
	}
}

// ErrMalformedResponse is returned when a response lacks required fields or
// is not valid JSON
type ErrMalformedResponse struct {
	*BaseError
	Reason string
}

func NewMalformedResponse(reason string, err error) *ErrMalformedResponse {
	return &ErrMalformedResponse{
		BaseError: NewBaseError(ErrorTypeResponse, fmt.Sprintf("malformed response: %s", reason), err),
		Reason:    reason,
	}
}

// Expansion Errors

// ErrInvalidTrigger is returned when an expansion trigger id has no
// parseable type or local id
type ErrInvalidTrigger struct {
	*BaseError
	NodeID string
}

func NewInvalidTrigger(nodeID string) *ErrInvalidTrigger {
	return &ErrInvalidTrigger{
		BaseError: NewBaseError(ErrorTypeTrigger, fmt.Sprintf("cannot expand node %q", nodeID), nil),
		NodeID:    nodeID,
	}
}

// ErrConcurrencyRejected is returned when an expansion is already in flight
var ErrConcurrencyRejected = NewBaseError(ErrorTypeConcurrency, "expansion already in flight", nil)

// Config Errors

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// TypeOf returns the category of the first BaseError in err's chain, or ""
// when there is none.
func TypeOf(err error) ErrorType {
	var k kinded
	if stderrors.As(err, &k) {
		return k.Kind()
	}
	return ""
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}

// IsRetryable reports whether re-issuing the same fetch could succeed.
func IsRetryable(err error) bool {
	switch TypeOf(err) {
	case ErrorTypeTransport, ErrorTypeTimeout:
		return true
	}
	return false
}

// UserMessage converts a fetch-path error into a single sentence suitable for
// display next to the graph.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var timeout *ErrFetchTimeout
	if stderrors.As(err, &timeout) {
		return fmt.Sprintf("The graph backend timed out after %v. Please try again.", timeout.Timeout)
	}

	var transport *ErrTransport
	if stderrors.As(err, &transport) {
		if transport.StatusCode != 0 {
			return fmt.Sprintf("The graph backend returned an error (%d %s).",
				transport.StatusCode, http.StatusText(transport.StatusCode))
		}
		if transport.Err != nil {
			return fmt.Sprintf("Could not reach the graph backend: %v.", transport.Err)
		}
		return "Could not reach the graph backend."
	}

	var malformed *ErrMalformedResponse
	if stderrors.As(err, &malformed) {
		return fmt.Sprintf("The graph backend sent an unexpected response (%s).", malformed.Reason)
	}

	if IsErrorType(err, ErrorTypeConcurrency) {
		return "The graph is already being updated. Please wait."
	}

	return "Something went wrong while loading the graph."
}

// HTTPStatus maps a fetch-path error to the status the API reports for it.
func HTTPStatus(err error) int {
	switch TypeOf(err) {
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case ErrorTypeTransport, ErrorTypeResponse:
		return http.StatusBadGateway
	case ErrorTypeConcurrency:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
