package events

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/backend-importa/internal/common"
	dbgen "github.com/noah-isme/backend-importa/internal/db/gen"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Lister reads the persisted event log.
type Lister interface {
	ListDomainEvents(ctx context.Context, arg dbgen.ListDomainEventsParams) ([]dbgen.DomainEvent, error)
}

// View is the JSON shape of one persisted event.
type View struct {
	ID          uuid.UUID       `json:"id"`
	Topic       string          `json:"topic"`
	AggregateID uuid.UUID       `json:"aggregateId"`
	Payload     json.RawMessage `json:"payload"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

// Handler exposes the event log read-only.
type Handler struct {
	Store Lister
}

// Routes mounts GET /events.
func (h Handler) Routes(r chi.Router) {
	r.Get("/events", h.List)
}

// List returns the newest events first, optionally filtered by ?topic=.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	if topic != "" && !knownTopic(topic) {
		common.WriteError(w, common.Validation("invalid request", map[string]string{"topic": "unknown topic"}))
		return
	}
	limit := common.QueryLimit(r, defaultListLimit, maxListLimit)
	rows, err := h.Store.ListDomainEvents(r.Context(), dbgen.ListDomainEventsParams{
		Topic:     pgtype.Text{String: topic, Valid: topic != ""},
		LimitRows: int32(limit),
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	out := make([]View, 0, len(rows))
	for _, row := range rows {
		payload := json.RawMessage(row.Payload)
		if len(payload) == 0 {
			payload = json.RawMessage("{}")
		}
		out = append(out, View{ID: row.ID, Topic: row.Topic, AggregateID: row.AggregateID, Payload: payload, OccurredAt: row.OccurredAt})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

func knownTopic(topic string) bool {
	for _, t := range DefaultTopics() {
		if t == topic {
			return true
		}
	}
	return false
}
