package types

import (
	"context"
	"net/http"
	"time"
)

// TradeRequest holds the query parameters of one trade list exchange
type TradeRequest struct {
	PageNumber  int
	PageSize    int
	Start       time.Time
	End         time.Time
	IDSerial    string
	TradeType   string
	ServiceHall string
}

// Envelope is the outer, still encrypted, API response
type Envelope struct {
	// Data is the encrypted payload; empty means the API returned no records
	Data string

	// Message is the API's msg field, kept for diagnostics
	Message string
}

// HasData reports whether the envelope carries a payload
func (e *Envelope) HasData() bool {
	return e != nil && e.Data != ""
}

// Logger interface for logging
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// RetryConfig configures retry behavior. A nil config means exactly one exchange.
type RetryConfig struct {
	MaxRetries int           `json:"maxRetries"`
	RetryWait  time.Duration `json:"retryWait"`
	MaxWait    time.Duration `json:"maxWait"`
}

// Hooks provides lifecycle hooks for requests
type Hooks struct {
	OnRequest  func(ctx context.Context, req *http.Request)
	OnResponse func(ctx context.Context, resp *http.Response, duration time.Duration)
	OnError    func(ctx context.Context, err error)
}
