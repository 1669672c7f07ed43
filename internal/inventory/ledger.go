// Package inventory owns every stock mutation. Decrements are single
// conditional updates so concurrent reservations can never drive stock
// below zero.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	dbgen "github.com/noah-isme/backend-importa/internal/db/gen"
	"github.com/noah-isme/backend-importa/internal/obs"
)

var (
	// ErrInsufficientStock is matched by every *InsufficientStockError.
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
	// ErrProductNotFound is returned for unknown product ids.
	ErrProductNotFound = errors.New("inventory: product not found")
	// ErrInvalidQuantity is returned for quantities outside 1..MaxQuantity.
	ErrInvalidQuantity = errors.New("inventory: quantity out of range")
	// ErrStockLimit is returned when a restock would push stock past MaxQuantity.
	ErrStockLimit = errors.New("inventory: stock limit exceeded")
)

// MaxQuantity is the largest quantity or stock level the integer columns hold.
const MaxQuantity = math.MaxInt32

// pgNumericOutOfRange is raised when stock + qty overflows the column.
const pgNumericOutOfRange = "22003"

func validQuantity(qty int) bool {
	return qty >= 1 && qty <= MaxQuantity
}

// InsufficientStockError describes one line that cannot be fulfilled.
type InsufficientStockError struct {
	ProductID uuid.UUID `json:"productId"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("inventory: insufficient stock for %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// Is lets errors.Is match ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Querier is the subset of dbgen.Querier the ledger needs.
type Querier interface {
	GetProduct(ctx context.Context, id uuid.UUID) (dbgen.Product, error)
	DecrementStock(ctx context.Context, arg dbgen.DecrementStockParams) (int32, error)
	IncrementStock(ctx context.Context, arg dbgen.IncrementStockParams) (int32, error)
}

// Ledger applies stock changes through Q.
type Ledger struct {
	Q Querier
}

// WithQuerier binds the ledger to q, typically a transaction, so its
// reservations commit or roll back together with the caller's writes.
func (l Ledger) WithQuerier(q Querier) Ledger {
	return Ledger{Q: q}
}

// Check validates that qty units are available without changing anything.
func (l Ledger) Check(ctx context.Context, productID uuid.UUID, qty int) error {
	if !validQuantity(qty) {
		return ErrInvalidQuantity
	}
	p, err := l.Q.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return err
	}
	if int(p.Stock) < qty {
		return &InsufficientStockError{ProductID: productID, Requested: qty, Available: int(p.Stock)}
	}
	return nil
}

// Reserve atomically removes qty units and returns the remaining stock. When
// the conditional update matches no row the product is re-read to tell a
// missing product from a shortage.
func (l Ledger) Reserve(ctx context.Context, productID uuid.UUID, qty int) (int, error) {
	if !validQuantity(qty) {
		return 0, ErrInvalidQuantity
	}
	left, err := l.Q.DecrementStock(ctx, dbgen.DecrementStockParams{ID: productID, Qty: int32(qty)})
	if err == nil {
		recordReservation("ok")
		return int(left), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		recordReservation("error")
		return 0, err
	}
	p, getErr := l.Q.GetProduct(ctx, productID)
	if getErr != nil {
		if errors.Is(getErr, pgx.ErrNoRows) {
			recordReservation("not_found")
			return 0, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		recordReservation("error")
		return 0, getErr
	}
	recordReservation("insufficient")
	return 0, &InsufficientStockError{ProductID: productID, Requested: qty, Available: int(p.Stock)}
}

// Restock atomically adds qty units and returns the new stock.
func (l Ledger) Restock(ctx context.Context, productID uuid.UUID, qty int) (int, error) {
	if !validQuantity(qty) {
		return 0, ErrInvalidQuantity
	}
	stock, err := l.Q.IncrementStock(ctx, dbgen.IncrementStockParams{ID: productID, Qty: int32(qty)})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgNumericOutOfRange {
			return 0, fmt.Errorf("%w: %s", ErrStockLimit, productID)
		}
		return 0, err
	}
	if obs.ProductRestockTotal != nil {
		obs.ProductRestockTotal.Inc()
	}
	return int(stock), nil
}

func recordReservation(result string) {
	if obs.StockReservationTotal == nil {
		return
	}
	obs.StockReservationTotal.WithLabelValues(result).Inc()
}
