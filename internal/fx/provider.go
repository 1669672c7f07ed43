package fx

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-importa/internal/obs"
)

// Provider resolves the adjusted rate, serving it from cache for TTL and
// falling back to a fixed base rate whenever the source fails. It never
// returns an error to its callers.
type Provider struct {
	source   Source
	cache    Cache
	ttl      time.Duration
	timeout  time.Duration
	fallback decimal.Decimal
	pair     string
	logger   zerolog.Logger
	now      func() time.Time
}

// ProviderConfig groups Provider dependencies. Zero values take defaults.
type ProviderConfig struct {
	Source       Source
	Cache        Cache
	TTL          time.Duration
	FetchTimeout time.Duration
	FallbackRate decimal.Decimal
	Pair         string
	Logger       *zerolog.Logger
	Now          func() time.Time
}

// NewProvider constructs a Provider. A nil Cache gets a private MemoryCache.
func NewProvider(cfg ProviderConfig) *Provider {
	p := &Provider{
		source:   cfg.Source,
		cache:    cfg.Cache,
		ttl:      cfg.TTL,
		timeout:  cfg.FetchTimeout,
		fallback: cfg.FallbackRate,
		pair:     cfg.Pair,
		logger:   zerolog.Nop(),
		now:      cfg.Now,
	}
	if p.cache == nil {
		p.cache = &MemoryCache{}
	}
	if p.ttl <= 0 {
		p.ttl = DefaultTTL
	}
	if p.timeout <= 0 {
		p.timeout = DefaultFetchTimeout
	}
	if p.fallback.Sign() <= 0 {
		p.fallback = DefaultFallbackRate
	}
	if p.pair == "" {
		p.pair = DefaultPair
	}
	if cfg.Logger != nil {
		p.logger = *cfg.Logger
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// AdjustedRate returns the local-currency-per-foreign-unit rate including surcharges.
func (p *Provider) AdjustedRate(ctx context.Context) decimal.Decimal {
	return p.Quote(ctx).Adjusted
}

// Quote returns the cached quote when fresh, otherwise refreshes it.
func (p *Provider) Quote(ctx context.Context) Quote {
	if q, ok := p.Cached(ctx); ok {
		return q
	}
	return p.Refresh(ctx)
}

// Cached returns the cached quote only while it is younger than the TTL.
func (p *Provider) Cached(ctx context.Context) (Quote, bool) {
	q, ok := p.cache.Get(ctx)
	if !ok || q.Adjusted.Sign() <= 0 {
		return Quote{}, false
	}
	if p.now().Sub(q.FetchedAt) >= p.ttl {
		return Quote{}, false
	}
	return q, true
}

// Refresh fetches the base rate regardless of the cache and stores the result.
// Fallback quotes are cached too, so a failing feed is not hammered.
func (p *Provider) Refresh(ctx context.Context) Quote {
	base, err := p.fetch(ctx)
	q := Quote{Pair: p.pair, FetchedAt: p.now()}
	if err != nil {
		p.logger.Warn().Err(err).Str("pair", p.pair).Str("fallback", p.fallback.String()).Msg("fx_rate_fallback")
		recordFetch("fallback")
		q.Base = p.fallback
		q.Fallback = true
	} else {
		recordFetch("ok")
		q.Base = base
	}
	q.Adjusted = Adjust(q.Base)
	p.cache.Set(ctx, q, p.ttl)
	return q
}

// RateState summarises the cached quote: "live", "fallback" or "stale".
func (p *Provider) RateState(ctx context.Context) string {
	q, ok := p.Cached(ctx)
	switch {
	case !ok:
		return "stale"
	case q.Fallback:
		return "fallback"
	default:
		return "live"
	}
}

// TTL exposes the cache lifetime.
func (p *Provider) TTL() time.Duration { return p.ttl }

func (p *Provider) fetch(ctx context.Context) (decimal.Decimal, error) {
	if p.source == nil {
		return decimal.Zero, ErrSourceNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type result struct {
		rate decimal.Decimal
		err  error
	}
	done := make(chan result, 1)
	go func() {
		rate, err := p.source.BaseRate(ctx)
		done <- result{rate: rate, err: err}
	}()
	select {
	case <-ctx.Done():
		return decimal.Zero, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return decimal.Zero, res.err
		}
		if res.rate.Sign() <= 0 {
			return decimal.Zero, errors.New("fx: source returned non-positive rate")
		}
		return res.rate, nil
	}
}

func recordFetch(result string) {
	if obs.FXRateFetchTotal == nil {
		return
	}
	obs.FXRateFetchTotal.WithLabelValues(result).Inc()
}
