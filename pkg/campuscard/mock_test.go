package campuscard

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/eshaffer321/campuscard-go/internal/cipher"
	internalTypes "github.com/eshaffer321/campuscard-go/internal/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testKey = "HoloSpiceAndWolf"

// MockTransport is a mock implementation of Transport
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Fetch(ctx context.Context, req *internalTypes.TradeRequest) (*internalTypes.Envelope, error) {
	args := m.Called(ctx, req)

	env, _ := args.Get(0).(*internalTypes.Envelope)
	return env, args.Error(1)
}

// newTestClient builds a client around a mock transport
func newTestClient(transport Transport) *Client {
	client := &Client{
		transport: transport,
		baseURL:   "https://card.test",
		options: &ClientOptions{
			IDSerial:    "2021012345",
			ServiceHall: "secret",
			PageSize:    DefaultPageSize,
			TradeType:   AllTradeTypes,
			Location:    DefaultLocation(),
		},
	}
	client.initServices()
	return client
}

// sealedEnvelope encrypts rows the way the API does
func sealedEnvelope(t *testing.T, rows []map[string]interface{}) *internalTypes.Envelope {
	t.Helper()

	doc, err := json.Marshal(map[string]interface{}{
		"resultData": map[string]interface{}{"rows": rows},
	})
	require.NoError(t, err)

	payload, err := cipher.Seal(testKey, string(doc))
	require.NoError(t, err)

	return &internalTypes.Envelope{Data: payload, Message: "success"}
}
