package fx

import (
	"net/http"
	"time"

	"github.com/noah-isme/backend-importa/internal/common"
	"github.com/noah-isme/backend-importa/internal/money"
)

// RateView is the GET /fx/rate payload.
type RateView struct {
	Pair            string    `json:"pair"`
	BaseRate        string    `json:"baseRate"`
	AdjustedRate    string    `json:"adjustedRate"`
	SurchargeFactor string    `json:"surchargeFactor"`
	Fallback        bool      `json:"fallback"`
	FetchedAt       time.Time `json:"fetchedAt"`
}

// Handler serves the current quote.
type Handler struct {
	Provider *Provider
}

// Rate handles GET /api/v1/fx/rate.
func (h Handler) Rate(w http.ResponseWriter, r *http.Request) {
	if h.Provider == nil {
		common.JSONError(w, http.StatusInternalServerError, "FX_NOT_CONFIGURED", "exchange rate provider not configured", nil)
		return
	}
	q := h.Provider.Quote(r.Context())
	common.JSON(w, http.StatusOK, map[string]any{"data": RateView{
		Pair:            q.Pair,
		BaseRate:        q.Base.StringFixed(4),
		AdjustedRate:    money.Format(q.Adjusted),
		SurchargeFactor: SurchargeFactor.StringFixed(3),
		Fallback:        q.Fallback,
		FetchedAt:       q.FetchedAt,
	}})
}
