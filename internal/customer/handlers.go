package customer

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-importa/internal/common"
	"github.com/noah-isme/backend-importa/internal/money"
)

// Handler exposes customer endpoints.
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

// Routes mounts the customer endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/customers", h.List)
	r.Post("/customers", h.Create)
	r.Get("/customers/{id}", h.Get)
	r.Get("/customers/{id}/total-spent", h.TotalSpent)
}

// List handles GET /api/v1/customers?q=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	items, err := h.service.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	views := make([]View, 0, len(items))
	for _, c := range items {
		views = append(views, NewView(c))
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": views})
}

// Create handles POST /api/v1/customers.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in CreateInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	c, err := h.service.Create(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": NewView(c)})
}

// Get handles GET /api/v1/customers/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, err := common.ParseUUID("id", chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": NewDetailView(d)})
}

// TotalSpent handles GET /api/v1/customers/{id}/total-spent.
func (h *Handler) TotalSpent(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, err := common.ParseUUID("id", chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	total, err := h.service.TotalSpent(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]string{
		"customerId": id.String(),
		"totalSpent": money.Format(total),
	}})
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "customer service not configured", nil)
		return false
	}
	return true
}
