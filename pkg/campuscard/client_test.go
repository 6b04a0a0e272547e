package campuscard

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	assert.Equal(t, DefaultPageSize, client.options.PageSize)
	assert.Equal(t, AllTradeTypes, client.options.TradeType)
	assert.Same(t, DefaultLocation(), client.Location())
	assert.NotNil(t, client.Trades)
	assert.NotNil(t, client.Reports)
}

func TestNewClient_TimeoutDoesNotChangeCallerHTTPClient(t *testing.T) {
	callerClient := &http.Client{Timeout: 90 * time.Second}

	client, err := NewClient(&ClientOptions{
		HTTPClient: callerClient,
		Timeout:    5 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, callerClient.Timeout)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	assert.NotSame(t, callerClient, client.httpClient)
}

func TestNewClient_CallerHTTPClientUsedAsIsWithoutTimeout(t *testing.T) {
	callerClient := &http.Client{Timeout: 90 * time.Second}

	client, err := NewClient(&ClientOptions{HTTPClient: callerClient})
	require.NoError(t, err)

	assert.Same(t, callerClient, client.httpClient)
	assert.Equal(t, 90*time.Second, client.httpClient.Timeout)
}

func TestNewClient_Location(t *testing.T) {
	utc3 := time.FixedZone("UTC+3", 3*60*60)

	client, err := NewClient(&ClientOptions{Location: utc3})
	require.NoError(t, err)

	assert.Same(t, utc3, client.Location())
}

func TestDefaultLocation(t *testing.T) {
	assert.Same(t, DefaultLocation(), DefaultLocation())

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).In(DefaultLocation())
	assert.Equal(t, 8, ts.Hour())
}
