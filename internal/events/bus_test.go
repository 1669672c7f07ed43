package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-importa/internal/db/dbtest"
	dbgen "github.com/noah-isme/backend-importa/internal/db/gen"
	"github.com/noah-isme/backend-importa/internal/events"
)

type captureNotifier struct {
	events []dbgen.DomainEvent
	err    error
}

func (c *captureNotifier) Notify(_ context.Context, event dbgen.DomainEvent) error {
	c.events = append(c.events, event)
	return c.err
}

func TestEmitPersistsAndNotifies(t *testing.T) {
	store := dbtest.New()
	notifier := &captureNotifier{}
	bus := events.Bus{Store: store, Notifiers: []events.Notifier{notifier}}

	aggregate := uuid.New()
	ctx := context.Background()
	event, err := bus.Emit(ctx, events.TopicOrderCreated, aggregate, map[string]any{"revenue": "159.06"})
	require.NoError(t, err)
	require.Equal(t, aggregate, event.AggregateID)
	require.Len(t, notifier.events, 1)
	require.Equal(t, event.ID, notifier.events[0].ID)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	require.Equal(t, "159.06", decoded["revenue"])

	stored, err := store.ListDomainEvents(ctx, dbgen.ListDomainEventsParams{
		Topic:     pgtype.Text{String: events.TopicOrderCreated, Valid: true},
		LimitRows: 10,
	})
	require.NoError(t, err)
	require.Len(t, stored, 1)
}

func TestEmitValidatesInput(t *testing.T) {
	bus := events.Bus{Store: dbtest.New()}
	ctx := context.Background()

	_, err := bus.Emit(ctx, " ", uuid.New(), nil)
	require.Error(t, err)
	_, err = bus.Emit(ctx, events.TopicOrderCreated, uuid.Nil, nil)
	require.Error(t, err)
	_, err = bus.Emit(ctx, events.TopicOrderCreated, uuid.New(), "{not json")
	require.Error(t, err)

	var nilBus *events.Bus
	_, err = nilBus.Emit(ctx, events.TopicOrderCreated, uuid.New(), nil)
	require.Error(t, err)
}

func TestEmitJoinsNotifierErrors(t *testing.T) {
	boom := errors.New("boom")
	bus := events.Bus{Store: dbtest.New(), Notifiers: []events.Notifier{&captureNotifier{err: boom}}}
	ev, err := bus.Emit(context.Background(), events.TopicProductRestocked, uuid.New(), nil)
	require.ErrorIs(t, err, boom)
	require.NotEqual(t, uuid.Nil, ev.ID, "event is persisted even when a notifier fails")
	require.JSONEq(t, `{}`, string(ev.Payload))
}

func TestEmitAfterCommitLogsFailures(t *testing.T) {
	store := dbtest.New()
	store.FailOn("InsertDomainEvent", 0, errors.New("db down"))
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	events.EmitAfterCommit(context.Background(), &events.Bus{Store: store}, logger, events.TopicOrderStatusChanged, uuid.New(), nil)
	require.Contains(t, buf.String(), "event_emit_failed")
	require.Contains(t, buf.String(), "db down")
}

func TestLogNotifierWritesEvent(t *testing.T) {
	var buf bytes.Buffer
	n := events.LogNotifier{Logger: zerolog.New(&buf)}
	require.NoError(t, n.Notify(context.Background(), dbgen.DomainEvent{
		ID:      uuid.New(),
		Topic:   events.TopicOrderCreated,
		Payload: []byte(`{"a":1}`),
	}))
	require.Contains(t, buf.String(), `"topic":"order.created"`)
	require.Contains(t, buf.String(), `"payload":{"a":1}`)
}
