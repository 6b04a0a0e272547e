package campuscard

import (
	"context"
	"net/http"
	"time"

	"github.com/eshaffer321/campuscard-go/internal/transport"
	internalTypes "github.com/eshaffer321/campuscard-go/internal/types"
	"github.com/getsentry/sentry-go"
)

const (
	// DefaultBaseURL is the default campus card service base URL
	DefaultBaseURL = internalTypes.DefaultBaseURL

	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = internalTypes.DefaultTimeout

	// DefaultPageSize is the default trade list page size
	DefaultPageSize = internalTypes.DefaultPageSize

	// AllTradeTypes asks the API for every trade type
	AllTradeTypes = internalTypes.AllTradeTypes
)

// chinaStandardTime is the zone the API's naive timestamps are in
var chinaStandardTime = time.FixedZone("CST", 8*60*60)

// DefaultLocation returns China Standard Time (UTC+8). The same
// *time.Location is returned on every call.
func DefaultLocation() *time.Location {
	return chinaStandardTime
}

// Client is the main campus card API client
type Client struct {
	// Service interfaces
	Trades  TradeService
	Reports ReportService

	// Internal fields
	baseURL    string
	httpClient *http.Client
	transport  Transport
	options    *ClientOptions
	classifier *Classifier
}

// ClientOptions configures the client
type ClientOptions struct {
	// BaseURL overrides the default API base URL
	BaseURL string

	// HTTPClient allows using a custom HTTP client
	HTTPClient *http.Client

	// Timeout sets the HTTP client timeout
	Timeout time.Duration

	// IDSerial is the default identity (student number)
	IDSerial string

	// ServiceHall is the default session secret sent as the servicehall cookie
	ServiceHall string

	// PageSize overrides the default page size
	PageSize int

	// TradeType overrides the default trade type filter
	TradeType string

	// Location is used for timestamps that carry no zone
	Location *time.Location

	// Rules overrides the classifier token tables
	Rules *Rules

	// Logger for debug logging
	Logger Logger

	// RetryConfig enables retries; nil keeps a single exchange per query
	RetryConfig *RetryConfig

	// Hooks for observability
	Hooks *Hooks

	// SentryDSN enables Sentry error tracking when set
	SentryDSN string

	// SentryOptions allows custom Sentry configuration
	SentryOptions *sentry.ClientOptions
}

// RetryConfig configures retry behavior. A nil config means exactly one exchange.
type RetryConfig = internalTypes.RetryConfig

// Hooks provides lifecycle hooks for requests
type Hooks = internalTypes.Hooks

// Logger interface for logging
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Transport performs the trade list exchange
type Transport interface {
	Fetch(ctx context.Context, req *internalTypes.TradeRequest) (*internalTypes.Envelope, error)
}

// NewClient creates a new campus card client
func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil {
		opts = &ClientOptions{}
	}

	// Initialize Sentry if DSN is provided
	if opts.SentryDSN != "" || opts.SentryOptions != nil {
		sentryOpts := sentry.ClientOptions{}

		if opts.SentryOptions != nil {
			sentryOpts = *opts.SentryOptions
		}

		if opts.SentryDSN != "" {
			sentryOpts.Dsn = opts.SentryDSN
		}

		if sentryOpts.Environment == "" {
			sentryOpts.Environment = "production"
		}

		// Log error but don't fail client creation
		if err := sentry.Init(sentryOpts); err != nil && opts.Logger != nil {
			opts.Logger.Error("Failed to initialize Sentry", "error", err)
		}
	}

	// Set defaults
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: DefaultTimeout,
		}
	} else if opts.Timeout > 0 {
		// The caller's client keeps its own timeout
		httpClient := *opts.HTTPClient
		opts.HTTPClient = &httpClient
	}

	if opts.Timeout > 0 {
		opts.HTTPClient.Timeout = opts.Timeout
	}

	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}

	if opts.TradeType == "" {
		opts.TradeType = AllTradeTypes
	}

	if opts.Location == nil {
		opts.Location = DefaultLocation()
	}

	transportOpts := &transport.Options{
		BaseURL:     opts.BaseURL,
		HTTPClient:  opts.HTTPClient,
		RetryConfig: opts.RetryConfig,
		Hooks:       opts.Hooks,
	}
	if opts.Logger != nil {
		transportOpts.Logger = opts.Logger
	}

	c := &Client{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		transport:  transport.NewTradeTransport(transportOpts),
		options:    opts,
	}

	c.initServices()

	return c, nil
}

// NewClientWithCredentials creates a client for one identity
func NewClientWithCredentials(idSerial, serviceHall string) (*Client, error) {
	return NewClient(&ClientOptions{
		IDSerial:    idSerial,
		ServiceHall: serviceHall,
	})
}

// initServices initializes all service implementations
func (c *Client) initServices() {
	rules := DefaultRules()
	if c.options.Rules != nil {
		rules = *c.options.Rules
	}
	c.classifier = NewClassifier(rules)

	c.Trades = &tradeService{client: c}
	c.Reports = &reportService{client: c}
}

// Close flushes any pending Sentry events and performs cleanup
func (c *Client) Close() {
	sentry.Flush(2 * time.Second)
}

// logger returns the configured logger or a silent one
func (c *Client) logger() Logger {
	if c.options != nil && c.options.Logger != nil {
		return c.options.Logger
	}
	return nopLogger{}
}

// Location returns the zone naive timestamps are read in
func (c *Client) Location() *time.Location {
	if c.options != nil && c.options.Location != nil {
		return c.options.Location
	}
	return DefaultLocation()
}

// captureError reports a fatal pipeline error to Sentry with report context
func (c *Client) captureError(ctx context.Context, reportID string, err error) {
	capture := func(hub *sentry.Hub) {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("report.id", reportID)
			scope.SetTag("error.kind", ErrorKind(err))
			hub.CaptureException(err)
		})
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		capture(hub)
		return
	}
	capture(sentry.CurrentHub())
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
