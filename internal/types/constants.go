package types

import (
	"errors"
	"time"
)

const (
	// DefaultBaseURL is the default campus card service base URL
	DefaultBaseURL = "https://card.tsinghua.edu.cn"

	// TradeListEndpoint is the self-service trade list endpoint
	TradeListEndpoint = "/business/querySelfTradeList"

	// DefaultTimeout bounds the single exchange with the billing API
	DefaultTimeout = 30 * time.Second

	// DefaultPageSize is large enough to return a whole year in one page
	DefaultPageSize = 5000

	// AllTradeTypes asks the API for every trade type
	AllTradeTypes = "-1"

	// CredentialCookie is the cookie carrying the caller's session secret
	CredentialCookie = "servicehall"

	// UserAgent is the user agent string
	UserAgent = "campuscard-go/1.0.0"
)

// Common errors
var (
	// ErrNotAuthenticated is returned when the servicehall credential is rejected or expired
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrRateLimited is returned when rate limited
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout is returned on timeout
	ErrTimeout = errors.New("request timeout")

	// ErrNotFound is returned when the endpoint is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidRequest is returned when the API rejects the query
	ErrInvalidRequest = errors.New("invalid request")

	// ErrServerError is returned for server errors
	ErrServerError = errors.New("server error")

	// ErrTransport is returned when the exchange itself fails
	ErrTransport = errors.New("transport error")

	// ErrUnexpectedResponse is returned when the body does not have the documented shape
	ErrUnexpectedResponse = errors.New("unexpected response shape")
)
