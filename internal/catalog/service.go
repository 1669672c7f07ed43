package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-importa/internal/cache"
	"github.com/noah-isme/backend-importa/internal/common"
	dbgen "github.com/noah-isme/backend-importa/internal/db/gen"
	"github.com/noah-isme/backend-importa/internal/events"
	"github.com/noah-isme/backend-importa/internal/inventory"
	"github.com/noah-isme/backend-importa/internal/money"
	"github.com/noah-isme/backend-importa/internal/pricing"
)

var (
	// ErrCategoryNotFound is wrapped by lookups of unknown categories.
	ErrCategoryNotFound = errors.New("catalog: category not found")
	// ErrProductNotFound is wrapped by lookups of unknown products.
	ErrProductNotFound = errors.New("catalog: product not found")
)

type queryProvider interface {
	inventory.Querier
	CreateCategory(ctx context.Context, name string) (dbgen.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (dbgen.Category, error)
	ListCategories(ctx context.Context) ([]dbgen.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) (int64, error)
	CreateProduct(ctx context.Context, arg dbgen.CreateProductParams) (dbgen.Product, error)
	ListProducts(ctx context.Context, search pgtype.Text) ([]dbgen.ListProductsRow, error)
	UpdateProduct(ctx context.Context, arg dbgen.UpdateProductParams) (dbgen.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error)
	ProductSalesCount(ctx context.Context, productID pgtype.UUID) (int64, error)
}

// RateProvider yields the adjusted exchange rate used for current local costs.
type RateProvider interface {
	AdjustedRate(ctx context.Context) decimal.Decimal
}

// Service orchestrates catalog queries, DTO assembly, and caching.
type Service struct {
	queries queryProvider
	rates   RateProvider
	ledger  inventory.Ledger
	cache   *cache.JSON
	events  events.Emitter
	logger  zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries queryProvider
	Rates   RateProvider
	Cache   *cache.JSON
	Events  events.Emitter
	Logger  zerolog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("catalog: queries provider is required")
	}
	if cfg.Rates == nil {
		return nil, errors.New("catalog: rate provider is required")
	}
	return &Service{
		queries: cfg.Queries,
		rates:   cfg.Rates,
		ledger:  inventory.Ledger{Q: cfg.Queries},
		cache:   cfg.Cache,
		events:  cfg.Events,
		logger:  cfg.Logger.With().Str("component", "catalog").Logger(),
	}, nil
}

// Category represents the public category payload.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Product represents the public product payload. CurrentLocalCost is what
// one unit would cost if sold now; existing order lines keep their own cost.
type Product struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Brand            string    `json:"brand"`
	CategoryID       *string   `json:"categoryId"`
	CategoryName     *string   `json:"categoryName"`
	ForeignCost      string    `json:"foreignCost"`
	Stock            int       `json:"stock"`
	SalesCount       int64     `json:"salesCount"`
	ExchangeRate     string    `json:"exchangeRate"`
	CurrentLocalCost string    `json:"currentLocalCost"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// CategoryInput is the create category request.
type CategoryInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

// ProductInput is the create product request.
type ProductInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Brand       string  `json:"brand" validate:"required,max=100"`
	CategoryID  *string `json:"categoryId"`
	ForeignCost string  `json:"foreignCost" validate:"required,money_nonneg"`
	Stock       int     `json:"stock" validate:"min=0,max=2147483647"`
}

// ProductPatch updates the provided product fields. An empty categoryId
// clears the category. Stock only changes through Restock or orders.
type ProductPatch struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Brand       *string `json:"brand" validate:"omitempty,min=1,max=100"`
	CategoryID  *string `json:"categoryId"`
	ForeignCost *string `json:"foreignCost" validate:"omitempty,money_nonneg"`
}

// RestockInput is the restock request.
type RestockInput struct {
	Quantity int `json:"quantity" validate:"min=1,max=2147483647"`
}

// RestockResult reports the stock after a restock.
type RestockResult struct {
	ProductID string `json:"productId"`
	Added     int    `json:"added"`
	Stock     int    `json:"stock"`
}

// ListCategories returns all categories sorted by name.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	var cached []Category
	if ok, err := s.cache.GetJSON(ctx, cache.KeyCategories, &cached); err == nil && ok {
		return cached, nil
	}
	rows, err := s.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	result := make([]Category, 0, len(rows))
	for _, row := range rows {
		result = append(result, toCategory(row))
	}
	if err := s.cache.SetJSON(ctx, cache.KeyCategories, result); err != nil {
		s.logger.Warn().Err(err).Msg("category_cache_store_failed")
	}
	return result, nil
}

// CreateCategory stores a category. Names are unique.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := common.ValidateStruct(in); err != nil {
		return Category{}, err
	}
	row, err := s.queries.CreateCategory(ctx, in.Name)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return Category{}, common.Conflict("category name already exists", err)
		}
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	s.invalidateCategories(ctx)
	return toCategory(row), nil
}

// DeleteCategory removes a category; its products stay, uncategorised.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	n, err := s.queries.DeleteCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n == 0 {
		return categoryNotFound(id)
	}
	s.invalidateCategories(ctx)
	return nil
}

// ListProducts searches name, brand and category name; best sellers first.
func (s *Service) ListProducts(ctx context.Context, search string) ([]Product, error) {
	var filter pgtype.Text
	if q := strings.TrimSpace(search); q != "" {
		filter = pgtype.Text{String: q, Valid: true}
	}
	rows, err := s.queries.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	rate := s.rates.AdjustedRate(ctx)
	items := make([]Product, 0, len(rows))
	for _, row := range rows {
		items = append(items, productView(dbgen.Product{
			ID:          row.ID,
			Name:        row.Name,
			Brand:       row.Brand,
			CategoryID:  row.CategoryID,
			ForeignCost: row.ForeignCost,
			Stock:       row.Stock,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		}, row.CategoryName, row.SalesCount, rate))
	}
	return items, nil
}

// GetProduct returns one product with its sales count and current local cost.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	row, err := s.queries.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, productNotFound(id)
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return s.describe(ctx, row)
}

// CreateProduct stores a product with its initial stock.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = strings.TrimSpace(in.Brand)
	if err := common.ValidateStruct(in); err != nil {
		return Product{}, err
	}
	categoryID, err := s.categoryParam(ctx, in.CategoryID)
	if err != nil {
		return Product{}, err
	}
	row, err := s.queries.CreateProduct(ctx, dbgen.CreateProductParams{
		Name:        in.Name,
		Brand:       in.Brand,
		CategoryID:  categoryID,
		ForeignCost: money.Round2(money.MustParse(in.ForeignCost)),
		Stock:       int32(in.Stock),
	})
	if err != nil {
		return Product{}, mapWriteError("create product", err)
	}
	s.logger.Info().Str("product_id", row.ID.String()).Msg("product_created")
	return s.describe(ctx, row)
}

// UpdateProduct applies patch. Order lines already sold keep their frozen cost.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (Product, error) {
	if err := common.ValidateStruct(patch); err != nil {
		return Product{}, err
	}
	current, err := s.queries.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, productNotFound(id)
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	arg := dbgen.UpdateProductParams{
		ID:          id,
		Name:        current.Name,
		Brand:       current.Brand,
		CategoryID:  current.CategoryID,
		ForeignCost: current.ForeignCost,
	}
	if patch.Name != nil {
		arg.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Brand != nil {
		arg.Brand = strings.TrimSpace(*patch.Brand)
	}
	if patch.ForeignCost != nil {
		arg.ForeignCost = money.Round2(money.MustParse(*patch.ForeignCost))
	}
	if patch.CategoryID != nil {
		if arg.CategoryID, err = s.categoryParam(ctx, patch.CategoryID); err != nil {
			return Product{}, err
		}
	}
	if arg.Name == "" || arg.Brand == "" {
		return Product{}, common.Validation("name and brand cannot be blank", nil)
	}
	row, err := s.queries.UpdateProduct(ctx, arg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, productNotFound(id)
		}
		return Product{}, mapWriteError("update product", err)
	}
	return s.describe(ctx, row)
}

// DeleteProduct removes a product. Order lines keep their snapshot.
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	n, err := s.queries.DeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return productNotFound(id)
	}
	s.logger.Info().Str("product_id", id.String()).Msg("product_deleted")
	return nil
}

// Restock adds units to a product's stock atomically.
func (s *Service) Restock(ctx context.Context, id uuid.UUID, in RestockInput) (RestockResult, error) {
	if err := common.ValidateStruct(in); err != nil {
		return RestockResult{}, err
	}
	stock, err := s.ledger.Restock(ctx, id, in.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, inventory.ErrProductNotFound):
			return RestockResult{}, productNotFound(id)
		case errors.Is(err, inventory.ErrInvalidQuantity):
			return RestockResult{}, common.Validation("invalid request", map[string]string{"quantity": "must be between 1 and 2147483647"})
		case errors.Is(err, inventory.ErrStockLimit):
			return RestockResult{}, common.Validation("invalid request", map[string]string{"quantity": "would push stock past 2147483647"})
		}
		return RestockResult{}, fmt.Errorf("restock product: %w", err)
	}
	result := RestockResult{ProductID: id.String(), Added: in.Quantity, Stock: stock}
	s.logger.Info().Str("product_id", id.String()).Int("added", in.Quantity).Int("stock", stock).Msg("product_restocked")
	events.EmitAfterCommit(ctx, s.events, s.logger, events.TopicProductRestocked, id, result)
	return result, nil
}

func (s *Service) describe(ctx context.Context, row dbgen.Product) (Product, error) {
	var categoryName pgtype.Text
	if row.CategoryID.Valid {
		cat, err := s.queries.GetCategory(ctx, uuid.UUID(row.CategoryID.Bytes))
		switch {
		case err == nil:
			categoryName = pgtype.Text{String: cat.Name, Valid: true}
		case !errors.Is(err, pgx.ErrNoRows):
			return Product{}, fmt.Errorf("get category: %w", err)
		}
	}
	sales, err := s.queries.ProductSalesCount(ctx, pgtype.UUID{Bytes: row.ID, Valid: true})
	if err != nil {
		return Product{}, fmt.Errorf("product sales count: %w", err)
	}
	return productView(row, categoryName, sales, s.rates.AdjustedRate(ctx)), nil
}

// categoryParam resolves an optional category id; nil or "" means none.
func (s *Service) categoryParam(ctx context.Context, raw *string) (pgtype.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return pgtype.UUID{}, nil
	}
	id, err := common.ParseUUID("categoryId", strings.TrimSpace(*raw))
	if err != nil {
		return pgtype.UUID{}, err
	}
	if _, err := s.queries.GetCategory(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgtype.UUID{}, categoryNotFound(id)
		}
		return pgtype.UUID{}, fmt.Errorf("get category: %w", err)
	}
	return pgtype.UUID{Bytes: id, Valid: true}, nil
}

func (s *Service) invalidateCategories(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.KeyCategories); err != nil {
		s.logger.Warn().Err(err).Msg("category_cache_invalidate_failed")
	}
}

func toCategory(row dbgen.Category) Category {
	return Category{ID: row.ID.String(), Name: row.Name, CreatedAt: row.CreatedAt}
}

func productView(row dbgen.Product, categoryName pgtype.Text, sales int64, rate decimal.Decimal) Product {
	p := Product{
		ID:               row.ID.String(),
		Name:             row.Name,
		Brand:            row.Brand,
		ForeignCost:      money.Format(row.ForeignCost),
		Stock:            int(row.Stock),
		SalesCount:       sales,
		ExchangeRate:     money.Format(rate),
		CurrentLocalCost: money.Format(pricing.LocalCost(row.ForeignCost, rate)),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if row.CategoryID.Valid {
		id := uuid.UUID(row.CategoryID.Bytes).String()
		p.CategoryID = &id
	}
	if categoryName.Valid {
		name := categoryName.String
		p.CategoryName = &name
	}
	return p
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func mapWriteError(op string, err error) error {
	switch pgCode(err) {
	case pgForeignKeyViolation:
		return common.NotFound("category not found", err)
	case pgCheckViolation:
		return common.Validation("value out of range", nil)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func categoryNotFound(id uuid.UUID) error {
	return common.NotFound("category not found", fmt.Errorf("%w: %s", ErrCategoryNotFound, id))
}

func productNotFound(id uuid.UUID) *common.AppError {
	return &common.AppError{
		Code:       common.CodeNotFound,
		Message:    "product not found",
		HTTPStatus: http.StatusNotFound,
		Err:        fmt.Errorf("%w: %s", ErrProductNotFound, id),
		Details:    map[string]any{"productId": id.String()},
	}
}
