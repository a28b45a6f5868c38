package registry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hijabina/hijabina-backend/pkg/config"
	"github.com/hijabina/hijabina-backend/pkg/db/models"
	"github.com/hijabina/hijabina-backend/pkg/enums"
	"github.com/hijabina/hijabina-backend/pkg/outbox"
	"github.com/hijabina/hijabina-backend/pkg/outbox/payloads"
)

const ordersTopic = "hijabina-order-events"

func testRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{OrdersTopic: ordersTopic})
	require.NoError(t, err)
	return reg
}

// orderRow builds an order outbox row whose payload is sealed the same way
// the writer seals it. envelopeType overrides the type stamped inside.
func orderRow(t *testing.T, eventType, envelopeType enums.OutboxEventType, data any) models.OutboxEvent {
	t.Helper()
	raw, ok := data.(json.RawMessage)
	if !ok {
		var err error
		raw, err = json.Marshal(data)
		require.NoError(t, err)
	}
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		EventType:  envelopeType,
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	})
	require.NoError(t, err)
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       payload,
	}
}

func TestResolveOrderCreated(t *testing.T) {
	orderID := uuid.New()
	row := orderRow(t, enums.EventOrderCreated, enums.EventOrderCreated, payloads.OrderCreatedEvent{
		OrderID: orderID,
		Number:  "ORD-1700000000000",
		Total:   165000,
	})

	resolved, err := testRegistry(t).Resolve(row)
	require.NoError(t, err)

	assert.Equal(t, ordersTopic, resolved.Descriptor.Topic)
	require.IsType(t, &payloads.OrderCreatedEvent{}, resolved.Payload)
	created := resolved.Payload.(*payloads.OrderCreatedEvent)
	assert.Equal(t, orderID, created.OrderID)
	assert.EqualValues(t, 165000, created.Total)
	assert.NotEmpty(t, resolved.Envelope.EventID)
	assert.False(t, resolved.Envelope.OccurredAt.IsZero())
}

func TestResolveStatusChangedWithoutEnvelopeType(t *testing.T) {
	// rows sealed before the envelope carried a type still resolve
	row := orderRow(t, enums.EventOrderStatusChanged, "", payloads.OrderStatusChangedEvent{
		From: enums.OrderStatusPending,
		To:   enums.OrderStatusProcessing,
	})

	resolved, err := testRegistry(t).Resolve(row)
	require.NoError(t, err)
	require.IsType(t, &payloads.OrderStatusChangedEvent{}, resolved.Payload)
	assert.Equal(t, enums.OrderStatusProcessing, resolved.Payload.(*payloads.OrderStatusChangedEvent).To)
}

func TestResolveRejectsUnpublishableRows(t *testing.T) {
	empty := json.RawMessage(`{}`)
	tests := map[string]func(t *testing.T) models.OutboxEvent{
		"unknown event": func(t *testing.T) models.OutboxEvent {
			return orderRow(t, "order_shipped", "", empty)
		},
		"aggregate mismatch": func(t *testing.T) models.OutboxEvent {
			row := orderRow(t, enums.EventOrderCreated, "", empty)
			row.AggregateType = "cart"
			return row
		},
		"missing aggregate id": func(t *testing.T) models.OutboxEvent {
			row := orderRow(t, enums.EventOrderCreated, "", empty)
			row.AggregateID = uuid.Nil
			return row
		},
		"null data": func(t *testing.T) models.OutboxEvent {
			return orderRow(t, enums.EventOrderCreated, "", json.RawMessage("null"))
		},
		"envelope type disagrees": func(t *testing.T) models.OutboxEvent {
			return orderRow(t, enums.EventOrderCreated, enums.EventOrderStatusChanged, empty)
		},
		"truncated envelope": func(t *testing.T) models.OutboxEvent {
			row := orderRow(t, enums.EventOrderCreated, "", empty)
			row.Payload = json.RawMessage(`{"data":`)
			return row
		},
	}
	reg := testRegistry(t)
	for name, build := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := reg.Resolve(build(t))
			require.Error(t, err)
			assert.ErrorAs(t, err, new(NonRetryableError))
		})
	}
}

func TestNewEventRegistryRequiresTopic(t *testing.T) {
	_, err := NewEventRegistry(config.PubSubConfig{})
	assert.Error(t, err)
}
