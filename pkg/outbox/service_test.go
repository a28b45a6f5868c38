package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hijabina/hijabina-backend/pkg/db/dbtest"
	"github.com/hijabina/hijabina-backend/pkg/db/models"
	"github.com/hijabina/hijabina-backend/pkg/enums"
	"github.com/hijabina/hijabina-backend/pkg/logger"
)

func TestEmitWritesEnvelope(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewRepository(db)
	svc := NewService(repo, logger.Nop())
	orderID := uuid.New()
	actor := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(ctx, tx, DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         &ActorRef{UserID: actor, Role: "customer"},
			Data:          map[string]any{"number": "ORD-1"},
		})
	})
	require.NoError(t, err)

	rows, err := repo.FetchUnpublished(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, orderID, rows[0].AggregateID)

	var env PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &env))
	assert.Equal(t, 1, env.Version)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, actor, env.Actor.UserID)
	assert.Equal(t, enums.EventOrderCreated, env.EventType)
	assert.Equal(t, orderID, env.AggregateID)
	assert.JSONEq(t, `{"number":"ORD-1"}`, string(env.Data))
}

func TestEmitRollsBackWithTransaction(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewRepository(db)
	svc := NewService(repo, nil)

	boom := errors.New("order insert failed")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := svc.Emit(ctx, tx, DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Data:          struct{}{},
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	rows, err := repo.FetchUnpublished(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestEmitValidation(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	assert.Error(t, svc.Emit(context.Background(), nil, DomainEvent{}))

	db := dbtest.Open(t)
	err := svc.Emit(context.Background(), db, DomainEvent{EventType: "nope", AggregateType: enums.AggregateOrder})
	assert.Error(t, err)
}

func TestMarkPublishedAndFailed(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewRepository(db)

	first := models.OutboxEvent{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}
	second := models.OutboxEvent{EventType: enums.EventOrderStatusChanged, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}
	require.NoError(t, repo.Insert(ctx, db, first))
	require.NoError(t, repo.Insert(ctx, db, second))

	rows, err := repo.FetchUnpublished(ctx, 10, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	for _, row := range rows {
		if row.EventType == enums.EventOrderCreated {
			require.NoError(t, repo.MarkPublished(ctx, row.ID))
			continue
		}
		require.NoError(t, repo.MarkFailed(ctx, row.ID, errors.New("deadline exceeded")))
		require.NoError(t, repo.MarkFailed(ctx, row.ID, errors.New("deadline exceeded")))
	}

	rows, err = repo.FetchUnpublished(ctx, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, rows, "published and exhausted rows must not be fetched")

	var exhausted models.OutboxEvent
	require.NoError(t, db.First(&exhausted, "event_type = ?", enums.EventOrderStatusChanged).Error)
	assert.Equal(t, 2, exhausted.AttemptCount)
	require.NotNil(t, exhausted.LastError)
	assert.Equal(t, "deadline exceeded", *exhausted.LastError)
}

func TestEmitRejectsEmptyData(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	svc := NewService(NewRepository(db), nil)

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(ctx, tx, DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
		})
	})
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestOpenEnvelopeRejectsNullData(t *testing.T) {
	_, err := OpenEnvelope([]byte(`{"version":1,"eventId":"x","data":null}`))
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = OpenEnvelope([]byte(`{"data":`))
	assert.Error(t, err)
}
