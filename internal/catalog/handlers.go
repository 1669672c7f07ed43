package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-importa/internal/common"
)

// Handler exposes catalog endpoints.
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

// Routes mounts category and product endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/categories", h.Categories)
	r.Post("/categories", h.CreateCategory)
	r.Delete("/categories/{id}", h.DeleteCategory)

	r.Get("/products", h.Products)
	r.Post("/products", h.CreateProduct)
	r.Get("/products/{id}", h.Product)
	r.Patch("/products/{id}", h.UpdateProduct)
	r.Delete("/products/{id}", h.DeleteProduct)
	r.Post("/products/{id}/restock", h.Restock)
}

// Categories handles GET /api/v1/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	rows, err := h.service.ListCategories(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rows})
}

// CreateCategory handles POST /api/v1/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in CategoryInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	cat, err := h.service.CreateCategory(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": cat})
}

// DeleteCategory handles DELETE /api/v1/categories/{id}.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, err := common.ParseUUID("id", chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Products handles GET /api/v1/products?q=.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	items, err := h.service.ListProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": items})
}

// Product handles GET /api/v1/products/{id}.
func (h *Handler) Product(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, err := common.ParseUUID("id", chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": p})
}

// CreateProduct handles POST /api/v1/products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in ProductInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	p, err := h.service.CreateProduct(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": p})
}

// UpdateProduct handles PATCH /api/v1/products/{id}.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, err := common.ParseUUID("id", chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var patch ProductPatch
	if err := common.DecodeJSON(r, &patch); err != nil {
		common.WriteError(w, err)
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": p})
}

// DeleteProduct handles DELETE /api/v1/products/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, err := common.ParseUUID("id", chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Restock handles POST /api/v1/products/{id}/restock.
func (h *Handler) Restock(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, err := common.ParseUUID("id", chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var in RestockInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	res, err := h.service.Restock(r.Context(), id, in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": res})
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog service not configured", nil)
		return false
	}
	return true
}
