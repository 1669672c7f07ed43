package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-importa/internal/common"
	dbgen "github.com/noah-isme/backend-importa/internal/db/gen"
	"github.com/noah-isme/backend-importa/internal/order"
)

// ErrNotFound is wrapped by lookups of unknown customers.
var ErrNotFound = errors.New("customer: not found")

type queryProvider interface {
	order.Reader
	CreateCustomer(ctx context.Context, arg dbgen.CreateCustomerParams) (dbgen.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (dbgen.Customer, error)
	ListCustomers(ctx context.Context, search pgtype.Text) ([]dbgen.ListCustomersRow, error)
}

// Service reads and writes customers.
type Service struct {
	queries queryProvider
	logger  zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries queryProvider
	Logger  zerolog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("customer: queries provider is required")
	}
	return &Service{queries: cfg.Queries, logger: cfg.Logger.With().Str("component", "customer").Logger()}, nil
}

// CreateInput is the create customer request.
type CreateInput struct {
	FullName string `json:"fullName" validate:"required,max=255"`
	Phone    string `json:"phone" validate:"required,max=20"`
	Address  string `json:"address" validate:"required,max=255"`
}

// Create stores a new customer.
func (s *Service) Create(ctx context.Context, in CreateInput) (Customer, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	if err := common.ValidateStruct(in); err != nil {
		return Customer{}, err
	}
	row, err := s.queries.CreateCustomer(ctx, dbgen.CreateCustomerParams{
		FullName: in.FullName,
		Phone:    in.Phone,
		Address:  in.Address,
	})
	if err != nil {
		return Customer{}, fmt.Errorf("create customer: %w", err)
	}
	s.logger.Info().Str("customer_id", row.ID.String()).Msg("customer_created")
	return Customer{
		ID:         row.ID,
		FullName:   row.FullName,
		Phone:      row.Phone,
		Address:    row.Address,
		CreatedAt:  row.CreatedAt,
		TotalSpent: decimal.Zero,
	}, nil
}

// Get returns the customer with all their orders, open ones first.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Detail, error) {
	row, err := s.queries.GetCustomer(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Detail{}, notFound(id)
		}
		return Detail{}, fmt.Errorf("get customer: %w", err)
	}
	orders, err := order.LoadByCustomer(ctx, s.queries, id)
	if err != nil {
		return Detail{}, err
	}
	order.SortOpenFirst(orders)
	d := Detail{
		Customer: Customer{
			ID:         row.ID,
			FullName:   row.FullName,
			Phone:      row.Phone,
			Address:    row.Address,
			CreatedAt:  row.CreatedAt,
			OpenOrders: order.Aggregate(orders).OpenOrders,
			TotalSpent: TotalSpent(orders),
		},
		Orders: orders,
	}
	return d, nil
}

// TotalSpent returns the customer's total over closed orders.
func (s *Service) TotalSpent(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	if _, err := s.queries.GetCustomer(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, notFound(id)
		}
		return decimal.Zero, fmt.Errorf("get customer: %w", err)
	}
	orders, err := order.LoadByCustomer(ctx, s.queries, id)
	if err != nil {
		return decimal.Zero, err
	}
	return TotalSpent(orders), nil
}

// List returns customers matching search over name, phone and address;
// customers with open orders come first.
func (s *Service) List(ctx context.Context, search string) ([]Customer, error) {
	var filter pgtype.Text
	if q := strings.TrimSpace(search); q != "" {
		filter = pgtype.Text{String: q, Valid: true}
	}
	rows, err := s.queries.ListCustomers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	if len(rows) == 0 {
		return []Customer{}, nil
	}
	all, err := order.LoadAll(ctx, s.queries)
	if err != nil {
		return nil, err
	}
	byCustomer := make(map[uuid.UUID][]order.Order)
	for _, o := range all {
		byCustomer[o.CustomerID] = append(byCustomer[o.CustomerID], o)
	}
	out := make([]Customer, 0, len(rows))
	for _, row := range rows {
		out = append(out, Customer{
			ID:         row.ID,
			FullName:   row.FullName,
			Phone:      row.Phone,
			Address:    row.Address,
			CreatedAt:  row.CreatedAt,
			OpenOrders: int(row.OpenOrders),
			TotalSpent: TotalSpent(byCustomer[row.ID]),
		})
	}
	return out, nil
}

func notFound(id uuid.UUID) error {
	return common.NotFound("customer not found", fmt.Errorf("%w: %s", ErrNotFound, id))
}
