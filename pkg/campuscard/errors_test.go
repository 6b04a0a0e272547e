package campuscard

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", &ValidationErrors{Errors: []*ValidationError{{Field: "idserial", Message: "required"}}}, "validation"},
		{"expired credential", errors.Wrap(&Error{Code: "NOT_AUTHENTICATED", Err: ErrNotAuthenticated}, "fetch"), "auth"},
		{"timeout", &Error{Code: "TIMEOUT", Err: ErrTimeout}, "timeout"},
		{"server error", &Error{Code: "SERVER_ERROR", StatusCode: 502, Err: ErrServerError}, "transport"},
		{"connection refused", &Error{Code: "TRANSPORT_ERROR", Err: ErrTransport}, "transport"},
		{"not json", &Error{Code: "UNEXPECTED_RESPONSE", Err: ErrUnexpectedResponse}, "protocol"},
		{"schema", &SchemaError{Field: "time", Err: ErrNoTimeColumn}, "schema"},
		{"parse", &ParseError{Column: "txdate", Err: fmt.Errorf("bad")}, "parse"},
		{"other", fmt.Errorf("boom"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestError_Format(t *testing.T) {
	err := &Error{Code: "SERVER_ERROR", Message: "server error: 502", Err: ErrServerError}
	assert.Equal(t, "SERVER_ERROR: server error: 502: server error", err.Error())

	assert.Equal(t, "BAD: nope", NewError("BAD", "nope").Error())
}

func TestError_IsByCode(t *testing.T) {
	err := &Error{Code: "RATE_LIMITED", Message: "slow down"}
	assert.True(t, errors.Is(err, &Error{Code: "RATE_LIMITED"}))
	assert.False(t, errors.Is(err, &Error{Code: "TIMEOUT"}))
}

func TestValidationErrors_Error(t *testing.T) {
	assert.Equal(t, "validation failed", (&ValidationErrors{}).Error())

	one := &ValidationErrors{Errors: []*ValidationError{{Field: "servicehall", Message: "required"}}}
	assert.Equal(t, "validation error on field 'servicehall': required", one.Error())
}
