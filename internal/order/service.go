package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-importa/internal/common"
	dbgen "github.com/noah-isme/backend-importa/internal/db/gen"
	"github.com/noah-isme/backend-importa/internal/events"
	"github.com/noah-isme/backend-importa/internal/inventory"
	"github.com/noah-isme/backend-importa/internal/money"
	"github.com/noah-isme/backend-importa/internal/obs"
	"github.com/noah-isme/backend-importa/internal/pricing"
)

var (
	// ErrNotFound is wrapped by lookups of unknown orders.
	ErrNotFound = errors.New("order: not found")
	// ErrCustomerNotFound is returned when an order references an unknown customer.
	ErrCustomerNotFound = errors.New("order: customer not found")
	// ErrProductNotFound is returned when a line references an unknown product.
	ErrProductNotFound = errors.New("order: product not found")
)

// RateProvider yields the adjusted exchange rate.
type RateProvider interface {
	AdjustedRate(ctx context.Context) decimal.Decimal
}

// Invalidator drops derived read caches after order writes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service creates, updates and reads orders.
type Service struct {
	store     dbgen.Store
	rates     RateProvider
	events    events.Emitter
	dashboard Invalidator
	logger    zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store     dbgen.Store
	Rates     RateProvider
	Events    events.Emitter
	Dashboard Invalidator
	Logger    zerolog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("order: store is required")
	}
	if cfg.Rates == nil {
		return nil, errors.New("order: rate provider is required")
	}
	return &Service{
		store:     cfg.Store,
		rates:     cfg.Rates,
		events:    cfg.Events,
		dashboard: cfg.Dashboard,
		logger:    cfg.Logger.With().Str("component", "order").Logger(),
	}, nil
}

// LineInput is one requested line.
type LineInput struct {
	ProductID  string `json:"productId" validate:"required,uuid"`
	Quantity   int    `json:"quantity" validate:"min=1,max=2147483647"`
	UnitMargin string `json:"unitMargin" validate:"required,money_nonneg"`
}

// CreateInput is the createOrder request.
type CreateInput struct {
	CustomerID     string      `json:"customerId" validate:"required,uuid"`
	PaymentMethod  string      `json:"paymentMethod" validate:"required,oneof=one_time installment"`
	Installments   int         `json:"installments" validate:"omitempty,min=1,max=600"`
	DueDay         *int        `json:"dueDay" validate:"omitempty,min=1,max=31"`
	PaymentStatus  string      `json:"paymentStatus" validate:"required,oneof=paid unpaid overdue current"`
	DeliveryStatus string      `json:"deliveryStatus" validate:"omitempty,oneof=delivered not_delivered"`
	ServiceFee     string      `json:"serviceFee" validate:"omitempty,money_nonneg"`
	Lines          []LineInput `json:"lines" validate:"required,min=1,dive"`
}

// StatusInput is the updateOrderStatus request. At least one field is required.
type StatusInput struct {
	PaymentStatus  *string `json:"paymentStatus" validate:"omitempty,oneof=paid unpaid overdue current"`
	DeliveryStatus *string `json:"deliveryStatus" validate:"omitempty,oneof=delivered not_delivered"`
}

type plannedLine struct {
	productID uuid.UUID
	quantity  int
	margin    decimal.Decimal
}

type plan struct {
	customerID     uuid.UUID
	method         PaymentMethod
	installments   int
	dueDay         *int
	paymentStatus  PaymentStatus
	deliveryStatus DeliveryStatus
	serviceFee     decimal.Decimal
	lines          []plannedLine
}

func buildPlan(in CreateInput) (plan, error) {
	if err := common.ValidateStruct(in); err != nil {
		return plan{}, err
	}
	p := plan{
		customerID:     uuid.MustParse(in.CustomerID),
		method:         PaymentMethod(in.PaymentMethod),
		installments:   in.Installments,
		dueDay:         in.DueDay,
		paymentStatus:  PaymentStatus(in.PaymentStatus),
		deliveryStatus: DeliveryStatus(in.DeliveryStatus),
		serviceFee:     decimal.Zero,
	}
	if p.installments == 0 {
		p.installments = 1
	}
	if p.deliveryStatus == "" {
		p.deliveryStatus = DeliveryNotDelivered
	}
	switch p.method {
	case MethodInstallment:
		if p.dueDay == nil {
			return plan{}, common.Validation("invalid request", map[string]string{"dueDay": "is required for installment payments"})
		}
	case MethodOneTime:
		if p.installments != 1 {
			return plan{}, common.Validation("invalid request", map[string]string{"installments": "must be 1 for one_time payments"})
		}
	}
	if s := strings.TrimSpace(in.ServiceFee); s != "" {
		p.serviceFee = money.Round2(decimal.RequireFromString(s))
	}

	index := make(map[uuid.UUID]int, len(in.Lines))
	for i, l := range in.Lines {
		id := uuid.MustParse(l.ProductID)
		margin := money.Round2(decimal.RequireFromString(strings.TrimSpace(l.UnitMargin)))
		if at, ok := index[id]; ok {
			if !p.lines[at].margin.Equal(margin) {
				return plan{}, common.Validation("invalid request", map[string]string{
					fmt.Sprintf("lines[%d].unitMargin", i): "conflicts with an earlier line for the same product",
				})
			}
			p.lines[at].quantity += l.Quantity
			if p.lines[at].quantity > inventory.MaxQuantity {
				return plan{}, common.Validation("invalid request", map[string]string{
					fmt.Sprintf("lines[%d].quantity", i): "merged quantity exceeds 2147483647",
				})
			}
			continue
		}
		index[id] = len(p.lines)
		p.lines = append(p.lines, plannedLine{productID: id, quantity: l.Quantity, margin: margin})
	}
	return p, nil
}

// Create validates the request, reserves stock and persists the order with
// every line priced at a single rate snapshot. Nothing is written unless
// every step succeeds.
func (s *Service) Create(ctx context.Context, in CreateInput) (Order, error) {
	p, err := buildPlan(in)
	if err != nil {
		recordCreate("invalid")
		return Order{}, err
	}
	rate := s.rates.AdjustedRate(ctx)

	var created Order
	err = s.store.ExecTx(ctx, func(q dbgen.Querier) error {
		if _, err := q.GetCustomer(ctx, p.customerID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return common.NotFound("customer not found", fmt.Errorf("%w: %s", ErrCustomerNotFound, p.customerID))
			}
			return fmt.Errorf("load customer: %w", err)
		}

		ledger := inventory.Ledger{Q: q}
		products := make(map[uuid.UUID]dbgen.Product, len(p.lines))
		var shortages []*inventory.InsufficientStockError
		for _, l := range p.lines {
			product, err := q.GetProductForUpdate(ctx, l.productID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return productNotFound(l.productID)
				}
				return fmt.Errorf("load product: %w", err)
			}
			products[l.productID] = product
			if !money.InRange(pricing.LocalCost(product.ForeignCost, rate)) {
				return common.Validation("invalid request", map[string]string{
					"productId": product.ID.String(),
					"unitCost":  "local cost exceeds " + money.MaxAmount.StringFixed(money.Places),
				})
			}
			if err := ledger.Check(ctx, l.productID, l.quantity); err != nil {
				var short *inventory.InsufficientStockError
				if errors.As(err, &short) {
					shortages = append(shortages, short)
					continue
				}
				return mapLedgerError(err)
			}
		}
		if len(shortages) > 0 {
			return insufficientStock(shortages)
		}

		row, err := q.CreateOrder(ctx, dbgen.CreateOrderParams{
			CustomerID:     p.customerID,
			PaymentMethod:  string(p.method),
			Installments:   int32(p.installments),
			DueDay:         dueDayParam(p.dueDay),
			PaymentStatus:  string(p.paymentStatus),
			DeliveryStatus: string(p.deliveryStatus),
			ServiceFee:     p.serviceFee,
		})
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		lines := make([]dbgen.OrderLine, 0, len(p.lines))
		for _, l := range p.lines {
			if _, err := ledger.Reserve(ctx, l.productID, l.quantity); err != nil {
				return mapLedgerError(err)
			}
			product := products[l.productID]
			line, err := q.CreateOrderLine(ctx, dbgen.CreateOrderLineParams{
				OrderID:         row.ID,
				ProductID:       pgtype.UUID{Bytes: product.ID, Valid: true},
				ProductName:     product.Name,
				ProductBrand:    product.Brand,
				ForeignUnitCost: product.ForeignCost,
				ExchangeRate:    rate,
				Quantity:        int32(l.quantity),
				UnitCost:        pricing.LocalCost(product.ForeignCost, rate),
				UnitMargin:      l.margin,
			})
			if err != nil {
				return fmt.Errorf("insert order line: %w", err)
			}
			lines = append(lines, line)
		}
		created = FromRows(row, lines)
		return nil
	})
	if err != nil {
		recordCreate("error")
		return Order{}, err
	}

	recordCreate("success")
	if obs.OrderRevenue != nil {
		obs.OrderRevenue.Observe(created.TotalRevenue().InexactFloat64())
	}
	s.logger.Info().
		Str("order_id", created.ID.String()).
		Str("customer_id", created.CustomerID.String()).
		Str("rate", rate.String()).
		Int("lines", len(created.Lines)).
		Msg("order_created")
	events.EmitAfterCommit(ctx, s.events, s.logger, events.TopicOrderCreated, created.ID, map[string]any{
		"orderId":      created.ID,
		"customerId":   created.CustomerID,
		"exchangeRate": money.Format(rate),
		"totalRevenue": money.Format(created.TotalRevenue()),
		"totalProfit":  money.Format(created.TotalProfit()),
		"lines":        len(created.Lines),
	})
	s.invalidate(ctx)
	return created, nil
}

// UpdateStatus changes payment and/or delivery status. Line data is never touched.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, in StatusInput) (Order, error) {
	if err := common.ValidateStruct(in); err != nil {
		return Order{}, err
	}
	if in.PaymentStatus == nil && in.DeliveryStatus == nil {
		return Order{}, common.Validation("paymentStatus or deliveryStatus is required", nil)
	}
	row, err := s.store.UpdateOrderStatus(ctx, dbgen.UpdateOrderStatusParams{
		ID:             id,
		PaymentStatus:  textParam(in.PaymentStatus),
		DeliveryStatus: textParam(in.DeliveryStatus),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, orderNotFound(id)
		}
		return Order{}, fmt.Errorf("update order status: %w", err)
	}
	lines, err := s.store.ListOrderLines(ctx, id)
	if err != nil {
		return Order{}, fmt.Errorf("list order lines: %w", err)
	}
	updated := FromRows(row, lines)

	if obs.OrderStatusChangesTotal != nil {
		obs.OrderStatusChangesTotal.WithLabelValues(string(updated.DeliveryStatus)).Inc()
	}
	events.EmitAfterCommit(ctx, s.events, s.logger, events.TopicOrderStatusChanged, updated.ID, map[string]any{
		"orderId":        updated.ID,
		"paymentStatus":  updated.PaymentStatus,
		"deliveryStatus": updated.DeliveryStatus,
		"status":         updated.Status(),
	})
	s.invalidate(ctx)
	return updated, nil
}

// Get loads one order with its lines.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Order, error) {
	row, err := s.store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, orderNotFound(id)
		}
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	lines, err := s.store.ListOrderLines(ctx, id)
	if err != nil {
		return Order{}, fmt.Errorf("list order lines: %w", err)
	}
	return FromRows(row, lines), nil
}

// List returns every order, open ones first and newest first within each group.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	orders, err := LoadAll(ctx, s.store)
	if err != nil {
		return nil, err
	}
	SortOpenFirst(orders)
	return orders, nil
}

// Reader is the query subset needed to assemble orders.
type Reader interface {
	ListOrders(ctx context.Context) ([]dbgen.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID) ([]dbgen.Order, error)
	ListOrderLinesByOrderIDs(ctx context.Context, orderIds []uuid.UUID) ([]dbgen.OrderLine, error)
}

// LoadAll reads every order with its lines in two queries.
func LoadAll(ctx context.Context, r Reader) ([]Order, error) {
	rows, err := r.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return withLines(ctx, r, rows)
}

// LoadByCustomer reads one customer's orders with their lines.
func LoadByCustomer(ctx context.Context, r Reader, customerID uuid.UUID) ([]Order, error) {
	rows, err := r.ListOrdersByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}
	return withLines(ctx, r, rows)
}

func withLines(ctx context.Context, r Reader, rows []dbgen.Order) ([]Order, error) {
	if len(rows) == 0 {
		return []Order{}, nil
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	lines, err := r.ListOrderLinesByOrderIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	return Assemble(rows, lines), nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.dashboard == nil {
		return
	}
	if err := s.dashboard.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("dashboard_invalidate_failed")
	}
}

func recordCreate(result string) {
	if obs.OrdersCreatedTotal == nil {
		return
	}
	obs.OrdersCreatedTotal.WithLabelValues(result).Inc()
}

func orderNotFound(id uuid.UUID) error {
	return common.NotFound("order not found", fmt.Errorf("%w: %s", ErrNotFound, id))
}

func productNotFound(id uuid.UUID) error {
	e := common.NotFound("product not found", fmt.Errorf("%w: %s", ErrProductNotFound, id))
	e.Details = map[string]string{"productId": id.String()}
	return e
}

func insufficientStock(shortages []*inventory.InsufficientStockError) error {
	errs := make([]error, 0, len(shortages))
	for _, s := range shortages {
		errs = append(errs, s)
	}
	e := common.NewAppError(common.CodeInsufficientStock, "insufficient stock", http.StatusConflict, errors.Join(errs...))
	e.Details = map[string]any{"lines": shortages}
	return e
}

func mapLedgerError(err error) error {
	var short *inventory.InsufficientStockError
	switch {
	case errors.As(err, &short):
		return insufficientStock([]*inventory.InsufficientStockError{short})
	case errors.Is(err, inventory.ErrProductNotFound):
		return common.NotFound("product not found", err)
	case errors.Is(err, inventory.ErrInvalidQuantity):
		return common.Validation("quantity must be between 1 and 2147483647", nil)
	}
	return err
}

func dueDayParam(d *int) pgtype.Int4 {
	if d == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(*d), Valid: true}
}

func textParam(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}
