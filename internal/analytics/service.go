// Package analytics computes the dashboard summary from the order aggregate.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-importa/internal/cache"
	dbgen "github.com/noah-isme/backend-importa/internal/db/gen"
	"github.com/noah-isme/backend-importa/internal/money"
	"github.com/noah-isme/backend-importa/internal/order"
)

// Querier defines the database access required for analytics operations.
type Querier interface {
	order.Reader
	ListProducts(ctx context.Context, search pgtype.Text) ([]dbgen.ListProductsRow, error)
}

// RateProvider yields the adjusted exchange rate.
type RateProvider interface {
	AdjustedRate(ctx context.Context) decimal.Decimal
}

// Service provides the dashboard. Order totals are cached; the rate is
// always read live from the provider, which has its own cache.
type Service struct {
	Q      Querier
	Rates  RateProvider
	Cache  *cache.JSON
	Logger zerolog.Logger
	Now    func() time.Time
}

// Summary is the dashboard payload.
type Summary struct {
	TotalProfit         string    `json:"totalProfit"`
	TotalRevenue        string    `json:"totalRevenue"`
	CurrentAdjustedRate string    `json:"currentAdjustedRate"`
	OpenOrdersCount     int       `json:"openOrdersCount"`
	ComputedAt          time.Time `json:"computedAt"`
}

// TopProduct is one entry of the best sellers list.
type TopProduct struct {
	ProductID  string `json:"productId"`
	Name       string `json:"name"`
	Brand      string `json:"brand"`
	SalesCount int64  `json:"salesCount"`
	Stock      int    `json:"stock"`
}

type totals struct {
	Revenue    string    `json:"revenue"`
	Profit     string    `json:"profit"`
	OpenOrders int       `json:"openOrders"`
	ComputedAt time.Time `json:"computedAt"`
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Summary returns total profit and revenue across all orders, the number of
// open orders and the current adjusted rate.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	if s == nil || s.Q == nil || s.Rates == nil {
		return Summary{}, fmt.Errorf("analytics service not configured")
	}
	t, err := s.totals(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		TotalProfit:         t.Profit,
		TotalRevenue:        t.Revenue,
		CurrentAdjustedRate: money.Format(s.Rates.AdjustedRate(ctx)),
		OpenOrdersCount:     t.OpenOrders,
		ComputedAt:          t.ComputedAt,
	}, nil
}

func (s *Service) totals(ctx context.Context) (totals, error) {
	var cached totals
	if ok, err := s.Cache.GetJSON(ctx, cache.KeyDashboard, &cached); err == nil && ok {
		return cached, nil
	} else if err != nil {
		s.Logger.Warn().Err(err).Msg("dashboard_cache_read_failed")
	}
	orders, err := order.LoadAll(ctx, s.Q)
	if err != nil {
		return totals{}, err
	}
	agg := order.Aggregate(orders)
	t := totals{
		Revenue:    money.Format(agg.Revenue),
		Profit:     money.Format(agg.Profit),
		OpenOrders: agg.OpenOrders,
		ComputedAt: s.now(),
	}
	if err := s.Cache.SetJSON(ctx, cache.KeyDashboard, t); err != nil {
		s.Logger.Warn().Err(err).Msg("dashboard_cache_store_failed")
	}
	return t, nil
}

// Invalidate drops the cached order totals.
func (s *Service) Invalidate(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.Cache.Delete(ctx, cache.KeyDashboard)
}

// TopProducts returns the best selling products, at most limit entries.
func (s *Service) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	if s == nil || s.Q == nil {
		return nil, fmt.Errorf("analytics service not configured")
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.Q.ListProducts(ctx, pgtype.Text{})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]TopProduct, 0, limit)
	for _, row := range rows {
		if len(out) == limit || row.SalesCount == 0 {
			break
		}
		out = append(out, TopProduct{
			ProductID:  row.ID.String(),
			Name:       row.Name,
			Brand:      row.Brand,
			SalesCount: row.SalesCount,
			Stock:      int(row.Stock),
		})
	}
	return out, nil
}
