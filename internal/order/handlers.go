package order

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-importa/internal/common"
)

// Handler exposes order endpoints.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

// Routes mounts the order endpoints on r.
func (h *Handler) Routes(r chi.Router, idempotent func(http.Handler) http.Handler) {
	create := http.Handler(http.HandlerFunc(h.Create))
	if idempotent != nil {
		create = idempotent(create)
	}
	r.Get("/orders", h.List)
	r.Method(http.MethodPost, "/orders", create)
	r.Get("/orders/{id}", h.Get)
	r.Patch("/orders/{id}/status", h.UpdateStatus)
}

// List handles GET /api/v1/orders.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	orders, err := h.service.List(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": NewViews(orders)})
}

// Get handles GET /api/v1/orders/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, err := common.ParseUUID("id", chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	o, err := h.service.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": NewView(o)})
}

// Create handles POST /api/v1/orders.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in CreateInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	o, err := h.service.Create(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": NewView(o)})
}

// UpdateStatus handles PATCH /api/v1/orders/{id}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, err := common.ParseUUID("id", chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var in StatusInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	o, err := h.service.UpdateStatus(r.Context(), id, in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": NewView(o)})
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "order service not configured", nil)
		return false
	}
	return true
}
