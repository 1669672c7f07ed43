package analytics

import (
	"net/http"

	"github.com/noah-isme/backend-importa/internal/common"
)

// Handler exposes analytics read endpoints.
type Handler struct {
	Svc *Service
}

// Dashboard handles GET /api/v1/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_NOT_CONFIGURED", "analytics service not configured", nil)
		return
	}
	summary, err := h.Svc.Summary(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": summary})
}

// TopProducts handles GET /api/v1/dashboard/top-products?limit=.
func (h *Handler) TopProducts(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_NOT_CONFIGURED", "analytics service not configured", nil)
		return
	}
	limit := common.QueryLimit(r, 10, 100)
	rows, err := h.Svc.TopProducts(r.Context(), limit)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rows})
}
