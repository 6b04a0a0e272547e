package campuscard

import (
	"errors"
	"fmt"
	"strings"

	internalTypes "github.com/eshaffer321/campuscard-go/internal/types"
)

var (
	// ErrNotAuthenticated is returned when the servicehall credential is rejected or expired
	ErrNotAuthenticated = internalTypes.ErrNotAuthenticated

	// ErrRateLimited is returned when rate limited
	ErrRateLimited = internalTypes.ErrRateLimited

	// ErrTimeout is returned when the billing API does not answer in time
	ErrTimeout = internalTypes.ErrTimeout

	// ErrNotFound is returned when the endpoint is not found
	ErrNotFound = internalTypes.ErrNotFound

	// ErrInvalidRequest is returned for invalid requests
	ErrInvalidRequest = internalTypes.ErrInvalidRequest

	// ErrServerError is returned for server errors
	ErrServerError = internalTypes.ErrServerError

	// ErrTransport is returned when the network exchange fails
	ErrTransport = internalTypes.ErrTransport

	// ErrUnexpectedResponse is returned when a body or payload does not have the documented shape
	ErrUnexpectedResponse = internalTypes.ErrUnexpectedResponse

	// ErrNoTimeColumn is returned when no time-like column can be resolved
	ErrNoTimeColumn = errors.New("no time column")

	// ErrMissingColumn is returned when a fixed API column is absent
	ErrMissingColumn = errors.New("missing column")

	// ErrMalformedValue is returned when a timestamp or amount cannot be parsed
	ErrMalformedValue = errors.New("malformed value")

	// ErrNoData is returned when a summary is requested over an empty ledger
	ErrNoData = errors.New("no data")
)

// Error represents an API error
type Error = internalTypes.Error

// SchemaError reports a column that could not be resolved, with the columns
// that were actually present
type SchemaError struct {
	Field      string   `json:"field"`
	Candidates []string `json:"candidates"`
	Available  []string `json:"available"`
	Err        error    `json:"-"`
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	return fmt.Sprintf("cannot resolve %s column (tried %s); available columns: [%s]",
		e.Field, strings.Join(e.Candidates, ", "), strings.Join(e.Available, ", "))
}

// Unwrap returns the wrapped error
func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ParseError reports a value that could not be parsed
type ParseError struct {
	Column string      `json:"column"`
	Row    int         `json:"row"`
	Value  interface{} `json:"value"`
	Err    error       `json:"-"`
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse %s value %v: %v", e.Row, e.Column, e.Value, e.Err)
}

// Unwrap returns the wrapped error
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is matches ErrMalformedValue
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedValue
}

// ValidationError represents validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []*ValidationError `json:"errors"`
}

// Error implements the error interface
func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d validation errors occurred", len(e.Errors))
}

// NewError creates a new API error
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// IsAuthError checks if error means the credential was rejected
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotAuthenticated)
}

// IsTransportError checks if error came from the network exchange
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransport) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrServerError) ||
		errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidRequest)
}

// IsProtocolError checks if error means the API answered with an unexpected shape
func IsProtocolError(err error) bool {
	return errors.Is(err, ErrUnexpectedResponse)
}

// IsValidationError checks if error came from rejected caller input
func IsValidationError(err error) bool {
	var validationErrs *ValidationErrors
	var validationErr *ValidationError
	return errors.As(err, &validationErrs) || errors.As(err, &validationErr)
}

// IsSchemaError checks if error means the record set could not be understood
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

// ErrorKind names the taxonomy bucket of err: validation, auth, timeout,
// transport, protocol, schema, parse or unknown
func ErrorKind(err error) string {
	switch {
	case IsValidationError(err):
		return "validation"
	case IsAuthError(err):
		return "auth"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case IsTransportError(err):
		return "transport"
	case IsProtocolError(err):
		return "protocol"
	case IsSchemaError(err):
		return "schema"
	case errors.Is(err, ErrMalformedValue):
		return "parse"
	default:
		return "unknown"
	}
}
