package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_RoundTrip(t *testing.T) {
	type payload struct {
		OrderID string `json:"order_id"`
	}

	env, err := NewEnvelope("PurchaseConfirmed", "storefront-api", "ORD-ABC", payload{OrderID: "ORD-ABC"})
	require.NoError(t, err)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, 1, env.EventVersion)

	b, err := json.Marshal(env)
	require.NoError(t, err)

	decoded, err := DecodeEnvelope(b)
	require.NoError(t, err)
	assert.Equal(t, "PurchaseConfirmed", decoded.EventType)
	assert.Equal(t, "ORD-ABC", decoded.CorrelationID)

	p, err := UnwrapPayload[payload](decoded.Payload)
	require.NoError(t, err)
	assert.Equal(t, "ORD-ABC", p.OrderID)
}

func TestDecodeEnvelope_Invalid(t *testing.T) {
	_, err := DecodeEnvelope([]byte("{"))
	assert.Error(t, err)
}
