package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/eshaffer321/campuscard-go/internal/types"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

const (
	dateLayout  = "2006-01-02"
	contentType = "application/json"
)

// TradeTransport performs the trade list exchange with the billing API
type TradeTransport struct {
	baseURL     string
	httpClient  *http.Client
	retryClient *retryablehttp.Client
	headers     map[string]string
	logger      types.Logger
	hooks       *types.Hooks
}

// tradeResponse is the outer JSON body
type tradeResponse struct {
	Data json.RawMessage `json:"data"`
	Msg  interface{}     `json:"msg"`
}

// NewTradeTransport creates a new trade transport
func NewTradeTransport(opts *Options) *TradeTransport {
	if opts == nil {
		opts = &Options{}
	}

	// Set defaults
	if opts.BaseURL == "" {
		opts.BaseURL = types.DefaultBaseURL
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: types.DefaultTimeout,
		}
	}

	// Retries are opt-in; without a config each call is a single exchange
	var retryClient *retryablehttp.Client
	if opts.RetryConfig != nil {
		retryClient = retryablehttp.NewClient()
		retryClient.HTTPClient = opts.HTTPClient
		retryClient.RetryMax = opts.RetryConfig.MaxRetries
		retryClient.RetryWaitMin = opts.RetryConfig.RetryWait
		retryClient.RetryWaitMax = opts.RetryConfig.MaxWait
		retryClient.Logger = nil

		if opts.Logger != nil {
			retryClient.Logger = &retryLogger{logger: opts.Logger}
		}
	}

	headers := map[string]string{
		"Accept":     contentType,
		"User-Agent": types.UserAgent,
	}

	// Merge custom headers
	for k, v := range opts.Headers {
		headers[k] = v
	}

	return &TradeTransport{
		baseURL:     opts.BaseURL,
		httpClient:  opts.HTTPClient,
		retryClient: retryClient,
		headers:     headers,
		logger:      opts.Logger,
		hooks:       opts.Hooks,
	}
}

// Fetch posts one trade list query and returns the still encrypted envelope
func (t *TradeTransport) Fetch(ctx context.Context, req *types.TradeRequest) (*types.Envelope, error) {
	if req == nil {
		return nil, errors.Wrap(types.ErrInvalidRequest, "nil trade request")
	}

	endpoint := t.baseURL + types.TradeListEndpoint + "?" + encodeQuery(req).Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	for k, v := range t.headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.AddCookie(&http.Cookie{Name: types.CredentialCookie, Value: req.ServiceHall})

	if t.hooks != nil && t.hooks.OnRequest != nil {
		t.hooks.OnRequest(ctx, httpReq)
	}

	// The servicehall secret is never logged
	if t.logger != nil {
		t.logger.Debug("trade list request",
			"idserial", req.IDSerial,
			"starttime", req.Start.Format(dateLayout),
			"endtime", req.End.Format(dateLayout),
			"pageSize", req.PageSize,
			"tradetype", req.TradeType)
	}

	start := time.Now()
	resp, err := t.doRequest(httpReq)
	duration := time.Since(start)

	if err != nil {
		err = classifyRequestError(ctx, err)
		if t.hooks != nil && t.hooks.OnError != nil {
			t.hooks.OnError(ctx, err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if t.hooks != nil && t.hooks.OnResponse != nil {
		t.hooks.OnResponse(ctx, resp, duration)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.Error{
			Code:    "TRANSPORT_ERROR",
			Message: fmt.Sprintf("failed to read response: %v", err),
			Err:     types.ErrTransport,
		}
	}

	if t.logger != nil {
		t.logger.Debug("trade list response", "status", resp.StatusCode, "duration", duration, "size", len(body))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, t.handleHTTPError(resp.StatusCode, body)
	}

	return parseEnvelope(body)
}

// doRequest executes the HTTP request with retry if configured
func (t *TradeTransport) doRequest(req *http.Request) (*http.Response, error) {
	if t.retryClient != nil {
		retryReq, err := retryablehttp.FromRequest(req)
		if err != nil {
			return nil, err
		}
		return t.retryClient.Do(retryReq)
	}
	return t.httpClient.Do(req)
}

// encodeQuery builds the query string the API expects
func encodeQuery(req *types.TradeRequest) url.Values {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = types.DefaultPageSize
	}
	tradeType := req.TradeType
	if tradeType == "" {
		tradeType = types.AllTradeTypes
	}

	q := url.Values{}
	q.Set("pageNumber", strconv.Itoa(req.PageNumber))
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("starttime", req.Start.Format(dateLayout))
	q.Set("endtime", req.End.Format(dateLayout))
	q.Set("idserial", req.IDSerial)
	q.Set("tradetype", tradeType)
	return q
}

// parseEnvelope decodes the outer body. A missing data field, or one that
// is null, "", false, 0, [] or {}, is a valid empty result.
func parseEnvelope(body []byte) (*types.Envelope, error) {
	var raw tradeResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &types.Error{
			Code:       "UNEXPECTED_RESPONSE",
			Message:    "response body is not valid JSON; check the network or whether the servicehall credential expired",
			StatusCode: http.StatusOK,
			Details:    map[string]interface{}{"body": truncate(string(body))},
			Err:        types.ErrUnexpectedResponse,
		}
	}

	env := &types.Envelope{Message: messageText(raw.Msg)}
	if len(raw.Data) == 0 {
		return env, nil
	}

	var data interface{}
	if err := json.Unmarshal(raw.Data, &data); err != nil {
		return nil, errors.Wrap(types.ErrUnexpectedResponse, err.Error())
	}
	if isEmptyValue(data) {
		return env, nil
	}

	text, ok := data.(string)
	if !ok {
		return nil, &types.Error{
			Code:       "UNEXPECTED_RESPONSE",
			Message:    "data field is not a string",
			StatusCode: http.StatusOK,
			Details:    map[string]interface{}{"msg": env.Message},
			Err:        types.ErrUnexpectedResponse,
		}
	}
	env.Data = text

	return env, nil
}

// isEmptyValue reports whether a decoded JSON value is falsy
func isEmptyValue(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case float64:
		return val == 0
	case []interface{}:
		return len(val) == 0
	case map[string]interface{}:
		return len(val) == 0
	default:
		return false
	}
}

func messageText(msg interface{}) string {
	switch v := msg.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// classifyRequestError separates timeouts from other exchange failures
func classifyRequestError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return &types.Error{
			Code:    "TIMEOUT",
			Message: "billing API did not answer in time",
			Err:     types.ErrTimeout,
		}
	}
	return &types.Error{
		Code:    "TRANSPORT_ERROR",
		Message: err.Error(),
		Err:     types.ErrTransport,
	}
}

// handleHTTPError handles HTTP errors
func (t *TradeTransport) handleHTTPError(statusCode int, body []byte) error {
	// Try to parse error response
	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}

	_ = json.Unmarshal(body, &errResp)

	msg := errResp.Msg
	if msg == "" {
		msg = errResp.Message
	}
	if msg == "" {
		msg = errResp.Error
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &types.Error{
			Code:       "NOT_AUTHENTICATED",
			Message:    "servicehall credential rejected; it may have expired",
			StatusCode: statusCode,
			Err:        types.ErrNotAuthenticated,
		}
	case http.StatusNotFound:
		return &types.Error{
			Code:       "NOT_FOUND",
			Message:    "trade list endpoint not found",
			StatusCode: statusCode,
			Err:        types.ErrNotFound,
		}
	case http.StatusTooManyRequests:
		return &types.Error{
			Code:       "RATE_LIMITED",
			Message:    "too many requests",
			StatusCode: statusCode,
			Err:        types.ErrRateLimited,
		}
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return &types.Error{
			Code:       "TIMEOUT",
			Message:    fmt.Sprintf("upstream timeout: %d", statusCode),
			StatusCode: statusCode,
			Err:        types.ErrTimeout,
		}
	case http.StatusBadRequest:
		return &types.Error{
			Code:       "BAD_REQUEST",
			Message:    msg,
			StatusCode: statusCode,
			Err:        types.ErrInvalidRequest,
		}
	default:
		if statusCode >= 500 {
			baseMsg := fmt.Sprintf("server error: %d", statusCode)
			if desc := httpStatusDescription(statusCode); desc != "" {
				baseMsg = fmt.Sprintf("server error: %d (%s)", statusCode, desc)
			}

			if msg != "" {
				baseMsg = fmt.Sprintf("%s: %s", baseMsg, msg)
			}

			return &types.Error{
				Code:       "SERVER_ERROR",
				Message:    baseMsg,
				StatusCode: statusCode,
				Err:        types.ErrServerError,
			}
		}
		return &types.Error{
			Code:       "HTTP_ERROR",
			Message:    fmt.Sprintf("HTTP error: %d", statusCode),
			StatusCode: statusCode,
			Err:        types.ErrTransport,
		}
	}
}

// httpStatusDescription returns a human-readable description for common 5xx codes
func httpStatusDescription(statusCode int) string {
	descriptions := map[int]string{
		500: "Internal Server Error",
		501: "Not Implemented",
		502: "Bad Gateway",
		503: "Service Unavailable",
		504: "Gateway Timeout",
	}
	return descriptions[statusCode]
}

// truncate shortens response bodies kept in error details
func truncate(s string) string {
	const maxLen = 200
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Options for trade transport
type Options struct {
	BaseURL     string
	HTTPClient  *http.Client
	Headers     map[string]string
	RetryConfig *types.RetryConfig
	Logger      types.Logger
	Hooks       *types.Hooks
}

// retryLogger adapts our logger to retryablehttp
type retryLogger struct {
	logger types.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keysAndValues...)
}
