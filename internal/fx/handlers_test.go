package fx_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-importa/internal/fx"
)

func TestRateHandlerReportsFallback(t *testing.T) {
	src, calls := countingSource("", errors.New("feed down"))
	h := fx.Handler{Provider: fx.NewProvider(fx.ProviderConfig{Source: src})}

	rr := httptest.NewRecorder()
	h.Rate(rr, httptest.NewRequest(http.MethodGet, "/api/v1/fx/rate", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data fx.RateView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "5.3000", body.Data.BaseRate)
	require.Equal(t, "5.59", body.Data.AdjustedRate)
	require.Equal(t, "1.054", body.Data.SurchargeFactor)
	require.True(t, body.Data.Fallback)

	rr = httptest.NewRecorder()
	h.Rate(rr, httptest.NewRequest(http.MethodGet, "/api/v1/fx/rate", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.EqualValues(t, 1, calls.Load())
}

func TestRateHandlerWithoutProvider(t *testing.T) {
	rr := httptest.NewRecorder()
	fx.Handler{}.Rate(rr, httptest.NewRequest(http.MethodGet, "/api/v1/fx/rate", nil))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}
