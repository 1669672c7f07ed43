package fx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-importa/internal/money"
	"github.com/noah-isme/backend-importa/internal/resilience"
)

var (
	// ErrMalformedQuote is returned when the feed payload lacks a usable rate.
	ErrMalformedQuote = errors.New("fx: malformed quote")
	// ErrSourceNotConfigured is returned by a zero-value source.
	ErrSourceNotConfigured = errors.New("fx: source not configured")
)

// Source yields the commercial base rate for one currency pair.
type Source interface {
	BaseRate(ctx context.Context) (decimal.Decimal, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (decimal.Decimal, error)

// BaseRate calls f.
func (f SourceFunc) BaseRate(ctx context.Context) (decimal.Decimal, error) { return f(ctx) }

// StaticSource always returns the same base rate.
type StaticSource struct {
	Rate decimal.Decimal
}

// BaseRate returns the configured rate.
func (s StaticSource) BaseRate(context.Context) (decimal.Decimal, error) {
	if s.Rate.Sign() <= 0 {
		return decimal.Zero, ErrSourceNotConfigured
	}
	return s.Rate, nil
}

// HTTPSource reads a quote document shaped like {"USDBRL":{"bid":"5.3012"}}.
type HTTPSource struct {
	URL    string
	Pair   string
	Client *resilience.HTTPClient
}

type quoteEntry struct {
	Bid string `json:"bid"`
}

// BaseRate fetches and parses the bid for the configured pair.
func (s HTTPSource) BaseRate(ctx context.Context) (decimal.Decimal, error) {
	if s.Client == nil || strings.TrimSpace(s.URL) == "" {
		return decimal.Zero, ErrSourceNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fx: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.Client.Do(ctx, req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fx: fetch quote: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return decimal.Zero, fmt.Errorf("fx: unexpected status %d", resp.StatusCode)
	}
	var doc map[string]quoteEntry
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&doc); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrMalformedQuote, err)
	}
	pair := s.Pair
	if pair == "" {
		pair = DefaultPair
	}
	entry, ok := doc[pair]
	if !ok || strings.TrimSpace(entry.Bid) == "" {
		return decimal.Zero, fmt.Errorf("%w: missing %s.bid", ErrMalformedQuote, pair)
	}
	rate, err := money.Parse(entry.Bid)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrMalformedQuote, err)
	}
	if rate.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: non-positive rate %s", ErrMalformedQuote, rate)
	}
	return rate, nil
}
