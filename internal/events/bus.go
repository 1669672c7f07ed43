package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	dbgen "github.com/noah-isme/backend-importa/internal/db/gen"
	"github.com/noah-isme/backend-importa/internal/obs"
)

// EventStore defines the persistence operations required by the event bus.
type EventStore interface {
	InsertDomainEvent(ctx context.Context, arg dbgen.InsertDomainEventParams) (dbgen.DomainEvent, error)
}

// Notifier reacts to emitted events.
type Notifier interface {
	Notify(ctx context.Context, event dbgen.DomainEvent) error
}

// Emitter is what services depend on.
type Emitter interface {
	Emit(ctx context.Context, topic string, aggregateID uuid.UUID, payload any) (dbgen.DomainEvent, error)
}

// Bus persists domain events and fans them out to notifiers.
type Bus struct {
	Store     EventStore
	Notifiers []Notifier
}

// Emit records the event and dispatches it to all configured notifiers.
// Notifier failures are joined; the event stays persisted.
func (b *Bus) Emit(ctx context.Context, topic string, aggregateID uuid.UUID, payload any) (dbgen.DomainEvent, error) {
	if b == nil || b.Store == nil {
		return dbgen.DomainEvent{}, errors.New("events: store not configured")
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return dbgen.DomainEvent{}, errors.New("events: topic is required")
	}
	if aggregateID == uuid.Nil {
		return dbgen.DomainEvent{}, errors.New("events: aggregate id is required")
	}
	encoded, err := encodePayload(payload)
	if err != nil {
		return dbgen.DomainEvent{}, fmt.Errorf("events: encode payload: %w", err)
	}
	ev, err := b.Store.InsertDomainEvent(ctx, dbgen.InsertDomainEventParams{
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     encoded,
	})
	if err != nil {
		recordDelivery(topic, "store_error")
		return dbgen.DomainEvent{}, fmt.Errorf("events: persist event: %w", err)
	}
	var joined error
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if notifyErr := notifier.Notify(ctx, ev); notifyErr != nil {
			recordDelivery(topic, "notify_error")
			joined = errors.Join(joined, fmt.Errorf("events: notifier: %w", notifyErr))
			continue
		}
		recordDelivery(topic, "ok")
	}
	return ev, joined
}

// EmitAfterCommit emits on a best-effort basis: failures are logged and never
// returned, since the business write has already committed.
func EmitAfterCommit(ctx context.Context, em Emitter, logger zerolog.Logger, topic string, aggregateID uuid.UUID, payload any) {
	if em == nil {
		return
	}
	if _, err := em.Emit(ctx, topic, aggregateID, payload); err != nil {
		logger.Warn().Err(err).Str("topic", topic).Str("aggregate_id", aggregateID.String()).Msg("event_emit_failed")
	}
}

// LogNotifier writes every event to a zerolog logger.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(_ context.Context, event dbgen.DomainEvent) error {
	n.Logger.Info().
		Str("event_id", event.ID.String()).
		Str("topic", event.Topic).
		Str("aggregate_id", event.AggregateID.String()).
		RawJSON("payload", event.Payload).
		Msg("domain_event")
	return nil
}

func recordDelivery(topic, result string) {
	if obs.EventDeliveriesTotal == nil {
		return
	}
	obs.EventDeliveriesTotal.WithLabelValues(topic, result).Inc()
}

func encodePayload(payload any) ([]byte, error) {
	if payload == nil {
		return []byte("{}"), nil
	}
	switch v := payload.(type) {
	case []byte:
		return validJSON(v)
	case json.RawMessage:
		return validJSON(v)
	case string:
		if strings.TrimSpace(v) == "" {
			return []byte("{}"), nil
		}
		return validJSON([]byte(v))
	default:
		return json.Marshal(v)
	}
}

func validJSON(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte("{}"), nil
	}
	if !json.Valid(data) {
		return nil, errors.New("payload is not valid json")
	}
	return append([]byte(nil), data...), nil
}
