// Package app assembles the domain services and mounts the versioned API.
package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-importa/internal/analytics"
	"github.com/noah-isme/backend-importa/internal/cache"
	"github.com/noah-isme/backend-importa/internal/catalog"
	"github.com/noah-isme/backend-importa/internal/common"
	"github.com/noah-isme/backend-importa/internal/customer"
	dbgen "github.com/noah-isme/backend-importa/internal/db/gen"
	"github.com/noah-isme/backend-importa/internal/events"
	"github.com/noah-isme/backend-importa/internal/fx"
	"github.com/noah-isme/backend-importa/internal/order"
	"github.com/noah-isme/backend-importa/internal/ratelimit"
	"github.com/noah-isme/backend-importa/internal/security"
)

// Dependencies are the shared clients every service is built from.
type Dependencies struct {
	Store  dbgen.Store
	Redis  *redis.Client
	Rates  *fx.Provider
	Logger zerolog.Logger
}

// Options tune caching and request guards. Zero values disable the guard.
type Options struct {
	AnalyticsCacheTTL time.Duration
	CatalogCacheTTL   time.Duration
	IdempotencyTTL    time.Duration
	BodyLimitBytes    int64

	Limiter        ratelimit.Backend
	RateLimit      ratelimit.Config
	OrderLimiter   ratelimit.Backend
	OrderRateLimit ratelimit.Config
}

// App holds the wired services.
type App struct {
	Catalog   *catalog.Service
	Customers *customer.Service
	Orders    *order.Service
	Analytics *analytics.Service
	Events    *events.Bus

	deps Dependencies
	opts Options
}

// New wires the services. Redis is optional; without it nothing is cached
// and POST /orders is not idempotent.
func New(deps Dependencies, opts Options) (*App, error) {
	if deps.Store == nil {
		return nil, errors.New("app: store is required")
	}
	if deps.Rates == nil {
		return nil, errors.New("app: rate provider is required")
	}

	bus := &events.Bus{
		Store:     deps.Store,
		Notifiers: []events.Notifier{events.LogNotifier{Logger: deps.Logger}},
	}
	dashboard := &analytics.Service{
		Q:      deps.Store,
		Rates:  deps.Rates,
		Cache:  cache.New(deps.Redis, opts.AnalyticsCacheTTL),
		Logger: deps.Logger.With().Str("component", "analytics").Logger(),
	}

	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{
		Queries: deps.Store,
		Rates:   deps.Rates,
		Cache:   cache.New(deps.Redis, opts.CatalogCacheTTL),
		Events:  bus,
		Logger:  deps.Logger,
	})
	if err != nil {
		return nil, err
	}
	customerSvc, err := customer.NewService(customer.ServiceConfig{Queries: deps.Store, Logger: deps.Logger})
	if err != nil {
		return nil, err
	}
	orderSvc, err := order.NewService(order.ServiceConfig{
		Store:     deps.Store,
		Rates:     deps.Rates,
		Events:    bus,
		Dashboard: dashboard,
		Logger:    deps.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Catalog:   catalogSvc,
		Customers: customerSvc,
		Orders:    orderSvc,
		Analytics: dashboard,
		Events:    bus,
		deps:      deps,
		opts:      opts,
	}, nil
}

// Routes mounts every /api/v1 endpoint on r.
func (a *App) Routes(r chi.Router) {
	r.Route("/api/v1", func(v chi.Router) {
		v.Use(security.BodyLimit{Max: a.opts.BodyLimitBytes}.Middleware)
		v.Use(a.guard(a.opts.Limiter, a.opts.RateLimit))

		catalog.NewHandler(catalog.HandlerConfig{Service: a.Catalog}).Routes(v)
		customer.NewHandler(customer.HandlerConfig{Service: a.Customers}).Routes(v)
		order.NewHandler(order.HandlerConfig{Service: a.Orders}).Routes(v, a.orderWrites())

		dash := &analytics.Handler{Svc: a.Analytics}
		v.Get("/dashboard", dash.Dashboard)
		v.Get("/dashboard/top-products", dash.TopProducts)
		v.Get("/fx/rate", fx.Handler{Provider: a.deps.Rates}.Rate)
		events.Handler{Store: a.deps.Store}.Routes(v)
	})
}

func (a *App) orderWrites() func(http.Handler) http.Handler {
	idem := common.Idem{R: a.deps.Redis, TTL: a.opts.IdempotencyTTL}
	limit := a.guard(a.opts.OrderLimiter, a.opts.OrderRateLimit)
	return func(next http.Handler) http.Handler {
		return limit(idem.Middleware(next))
	}
}

func (a *App) guard(backend ratelimit.Backend, cfg ratelimit.Config) func(http.Handler) http.Handler {
	h := ratelimit.Handler{
		Limiter: backend,
		Config:  cfg,
		OnError: func(err error) {
			a.deps.Logger.Warn().Err(err).Msg("rate_limit_backend_error")
		},
	}
	return h.Middleware
}
