package order

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-importa/internal/common"
	dbgen "github.com/noah-isme/backend-importa/internal/db/gen"
	"github.com/noah-isme/backend-importa/internal/db/dbtest"
	"github.com/noah-isme/backend-importa/internal/events"
	"github.com/noah-isme/backend-importa/internal/inventory"
)

type fixedRate struct{ rate decimal.Decimal }

func (f fixedRate) AdjustedRate(context.Context) decimal.Decimal { return f.rate }

type countingInvalidator struct{ n atomic.Int32 }

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.n.Add(1)
	return nil
}

type fixture struct {
	svc       *Service
	store     *dbtest.Fake
	dashboard *countingInvalidator
	customer  uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := dbtest.New()
	dash := &countingInvalidator{}
	svc, err := NewService(ServiceConfig{
		Store:     store,
		Rates:     fixedRate{rate: decimal.RequireFromString("5.59")},
		Events:    &events.Bus{Store: store},
		Dashboard: dash,
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)
	c, err := store.CreateCustomer(context.Background(), dbgen.CreateCustomerParams{
		FullName: "Ana Souza", Phone: "+55 11 99999-0000", Address: "Rua A, 10",
	})
	require.NoError(t, err)
	return fixture{svc: svc, store: store, dashboard: dash, customer: c.ID}
}

func (f fixture) product(t *testing.T, name, foreign string, stock int32) dbgen.Product {
	t.Helper()
	p, err := f.store.CreateProduct(context.Background(), dbgen.CreateProductParams{
		Name:        name,
		Brand:       "Acme",
		ForeignCost: decimal.RequireFromString(foreign),
		Stock:       stock,
	})
	require.NoError(t, err)
	return p
}

func (f fixture) stock(t *testing.T, id uuid.UUID) int32 {
	t.Helper()
	p, err := f.store.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (f fixture) input(lines ...LineInput) CreateInput {
	return CreateInput{
		CustomerID:    f.customer.String(),
		PaymentMethod: string(MethodOneTime),
		PaymentStatus: string(PaymentPaid),
		Lines:         lines,
	}
}

func requireCode(t *testing.T, err error, code string, status int) *common.AppError {
	t.Helper()
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
	require.Equal(t, status, appErr.HTTPStatus)
	return appErr
}

func TestCreateFreezesCostAndTotals(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Headphones", "10.00", 5)

	o, err := f.svc.Create(context.Background(), f.input(LineInput{ProductID: p.ID.String(), Quantity: 2, UnitMargin: "15.00"}))
	require.NoError(t, err)

	require.Len(t, o.Lines, 1)
	line := o.Lines[0]
	require.Equal(t, "59.53", line.UnitCost.StringFixed(2))
	require.Equal(t, "5.59", line.ExchangeRate.StringFixed(2))
	require.Equal(t, "10.00", line.ForeignUnitCost.StringFixed(2))
	require.Equal(t, "Headphones", line.ProductName)
	require.Equal(t, "149.06", o.SubtotalItems().StringFixed(2))
	require.Equal(t, "149.06", o.TotalRevenue().StringFixed(2))
	require.Equal(t, "30.00", o.TotalProfit().StringFixed(2))
	require.Equal(t, StatusOpen, o.Status())
	require.Equal(t, DeliveryNotDelivered, o.DeliveryStatus)
	require.Equal(t, 1, o.Installments)
	require.EqualValues(t, 3, f.stock(t, p.ID))
	require.EqualValues(t, 1, f.dashboard.n.Load())

	evs, err := f.store.ListDomainEvents(context.Background(), dbgen.ListDomainEventsParams{
		Topic: pgtype.Text{String: events.TopicOrderCreated, Valid: true}, LimitRows: 10,
	})
	require.NoError(t, err)
	require.Len(t, evs, 1)
	require.Equal(t, o.ID, evs[0].AggregateID)
}

func TestCreateServiceFeeCountsTowardRevenueAndProfit(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Headphones", "10.00", 5)
	in := f.input(LineInput{ProductID: p.ID.String(), Quantity: 2, UnitMargin: "15.00"})
	in.ServiceFee = "10"

	o, err := f.svc.Create(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, "159.06", o.TotalRevenue().StringFixed(2))
	require.Equal(t, "40.00", o.TotalProfit().StringFixed(2))

	v := NewView(o)
	require.Equal(t, "10.00", v.ServiceFee)
	require.Equal(t, "159.06", v.TotalRevenue)
	require.Equal(t, "59.53", v.Lines[0].UnitCost)
	require.Equal(t, "74.53", v.Lines[0].UnitPrice)
}

func TestFrozenCostSurvivesProductEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Headphones", "10.00", 5)

	o, err := f.svc.Create(ctx, f.input(LineInput{ProductID: p.ID.String(), Quantity: 1, UnitMargin: "5.00"}))
	require.NoError(t, err)

	_, err = f.store.UpdateProduct(ctx, dbgen.UpdateProductParams{
		ID: p.ID, Name: "Headphones v2", Brand: "Acme", ForeignCost: decimal.RequireFromString("99.00"),
	})
	require.NoError(t, err)

	reloaded, err := f.svc.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, "59.53", reloaded.Lines[0].UnitCost.StringFixed(2))
	require.Equal(t, "Headphones", reloaded.Lines[0].ProductName)
	require.True(t, reloaded.TotalRevenue().Equal(o.TotalRevenue()))
}

func TestDeletedProductKeepsLineSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Headphones", "10.00", 5)

	o, err := f.svc.Create(ctx, f.input(LineInput{ProductID: p.ID.String(), Quantity: 2, UnitMargin: "15.00"}))
	require.NoError(t, err)
	_, err = f.store.DeleteProduct(ctx, p.ID)
	require.NoError(t, err)

	reloaded, err := f.svc.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Nil(t, reloaded.Lines[0].ProductID)
	require.Equal(t, "Headphones", reloaded.Lines[0].ProductName)
	require.Equal(t, "149.06", reloaded.TotalRevenue().StringFixed(2))
}

func TestCreateIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "Headphones", "10.00", 5)
	b := f.product(t, "Charger", "3.00", 5)
	f.store.FailOn("CreateOrderLine", 2, errors.New("disk full"))

	_, err := f.svc.Create(ctx, f.input(
		LineInput{ProductID: a.ID.String(), Quantity: 2, UnitMargin: "15.00"},
		LineInput{ProductID: b.ID.String(), Quantity: 1, UnitMargin: "2.00"},
	))
	require.Error(t, err)

	require.EqualValues(t, 5, f.stock(t, a.ID))
	require.EqualValues(t, 5, f.stock(t, b.ID))
	orders, err := f.store.ListOrders(ctx)
	require.NoError(t, err)
	require.Empty(t, orders)
	evs, err := f.store.ListDomainEvents(ctx, dbgen.ListDomainEventsParams{LimitRows: 10})
	require.NoError(t, err)
	require.Empty(t, evs)
	require.EqualValues(t, 0, f.dashboard.n.Load())
}

func TestCreateReportsEveryShortage(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Headphones", "10.00", 1)
	b := f.product(t, "Charger", "3.00", 0)
	c := f.product(t, "Cable", "1.00", 10)

	_, err := f.svc.Create(context.Background(), f.input(
		LineInput{ProductID: a.ID.String(), Quantity: 2, UnitMargin: "1.00"},
		LineInput{ProductID: b.ID.String(), Quantity: 1, UnitMargin: "1.00"},
		LineInput{ProductID: c.ID.String(), Quantity: 1, UnitMargin: "1.00"},
	))
	appErr := requireCode(t, err, common.CodeInsufficientStock, http.StatusConflict)
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
	details := appErr.Details.(map[string]any)["lines"].([]*inventory.InsufficientStockError)
	require.Len(t, details, 2)
	require.Equal(t, a.ID, details[0].ProductID)
	require.Equal(t, 1, details[0].Available)
	require.Equal(t, b.ID, details[1].ProductID)
	require.EqualValues(t, 10, f.stock(t, c.ID))
	require.Zero(t, f.store.Calls("CreateOrder"))
}

func TestCreateMergesLinesForSameProduct(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Headphones", "10.00", 5)

	o, err := f.svc.Create(context.Background(), f.input(
		LineInput{ProductID: p.ID.String(), Quantity: 1, UnitMargin: "15.00"},
		LineInput{ProductID: p.ID.String(), Quantity: 1, UnitMargin: "15"},
	))
	require.NoError(t, err)
	require.Len(t, o.Lines, 1)
	require.Equal(t, 2, o.Lines[0].Quantity)
	require.EqualValues(t, 3, f.stock(t, p.ID))

	_, err = f.svc.Create(context.Background(), f.input(
		LineInput{ProductID: p.ID.String(), Quantity: 1, UnitMargin: "15.00"},
		LineInput{ProductID: p.ID.String(), Quantity: 1, UnitMargin: "16.00"},
	))
	requireCode(t, err, common.CodeValidation, http.StatusBadRequest)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Headphones", "10.00", 5)
	line := LineInput{ProductID: p.ID.String(), Quantity: 1, UnitMargin: "1.00"}
	day := 10

	cases := map[string]func(in *CreateInput){
		"no lines":              func(in *CreateInput) { in.Lines = nil },
		"zero quantity":         func(in *CreateInput) { in.Lines[0].Quantity = 0 },
		"negative margin":       func(in *CreateInput) { in.Lines[0].UnitMargin = "-1.00" },
		"garbage margin":        func(in *CreateInput) { in.Lines[0].UnitMargin = "abc" },
		"negative fee":          func(in *CreateInput) { in.ServiceFee = "-0.01" },
		"bad payment status":    func(in *CreateInput) { in.PaymentStatus = "refunded" },
		"bad delivery status":   func(in *CreateInput) { in.DeliveryStatus = "lost" },
		"bad method":            func(in *CreateInput) { in.PaymentMethod = "barter" },
		"installment no dueDay": func(in *CreateInput) { in.PaymentMethod = string(MethodInstallment); in.Installments = 3 },
		"due day out of range": func(in *CreateInput) {
			in.PaymentMethod = string(MethodInstallment)
			bad := 32
			in.DueDay = &bad
		},
		"one_time with installments": func(in *CreateInput) { in.Installments = 2 },
		"margin beyond numeric":      func(in *CreateInput) { in.Lines[0].UnitMargin = "10000000000.00" },
		"fee beyond numeric":         func(in *CreateInput) { in.ServiceFee = "99999999999" },
		"quantity beyond int32":      func(in *CreateInput) { in.Lines[0].Quantity = 4294967297 },
		"merged quantity beyond int32": func(in *CreateInput) {
			in.Lines = append(in.Lines, LineInput{ProductID: in.Lines[0].ProductID, Quantity: 2147483647, UnitMargin: "1.00"})
		},
		"bad customer id":            func(in *CreateInput) { in.CustomerID = "nope" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := f.input(line)
			mutate(&in)
			_, err := f.svc.Create(context.Background(), in)
			requireCode(t, err, common.CodeValidation, http.StatusBadRequest)
		})
	}
	require.EqualValues(t, 5, f.stock(t, p.ID))

	in := f.input(line)
	in.PaymentMethod = string(MethodInstallment)
	in.Installments = 3
	in.DueDay = &day
	in.PaymentStatus = string(PaymentCurrent)
	o, err := f.svc.Create(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, 3, o.Installments)
	require.Equal(t, 10, *o.DueDay)
}

func TestCreateRejectsLocalCostBeyondNumeric(t *testing.T) {
	f := newFixture(t)
	pricey := f.product(t, "Yacht", "9999999999.99", 3)

	_, err := f.svc.Create(context.Background(), f.input(LineInput{ProductID: pricey.ID.String(), Quantity: 1, UnitMargin: "1.00"}))
	appErr := requireCode(t, err, common.CodeValidation, http.StatusBadRequest)
	require.Contains(t, appErr.Details, "unitCost")
	require.EqualValues(t, 3, f.stock(t, pricey.ID))
	require.Zero(t, f.store.Calls("CreateOrder"))
}

func TestCreateNotFound(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Headphones", "10.00", 5)

	in := f.input(LineInput{ProductID: uuid.NewString(), Quantity: 1, UnitMargin: "1.00"})
	_, err := f.svc.Create(context.Background(), in)
	requireCode(t, err, common.CodeNotFound, http.StatusNotFound)
	require.ErrorIs(t, err, ErrProductNotFound)

	in = f.input(LineInput{ProductID: p.ID.String(), Quantity: 1, UnitMargin: "1.00"})
	in.CustomerID = uuid.NewString()
	_, err = f.svc.Create(context.Background(), in)
	requireCode(t, err, common.CodeNotFound, http.StatusNotFound)
	require.ErrorIs(t, err, ErrCustomerNotFound)
	require.EqualValues(t, 5, f.stock(t, p.ID))
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Headphones", "10.00", 3)

	var wg sync.WaitGroup
	var ok, short atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), f.input(LineInput{ProductID: p.ID.String(), Quantity: 1, UnitMargin: "1.00"}))
			switch {
			case err == nil:
				ok.Add(1)
			case common.HasCode(err, common.CodeInsufficientStock):
				short.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 3, ok.Load())
	require.EqualValues(t, 7, short.Load())
	require.EqualValues(t, 0, f.stock(t, p.ID))
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Headphones", "10.00", 5)
	in := f.input(LineInput{ProductID: p.ID.String(), Quantity: 2, UnitMargin: "15.00"})
	in.PaymentStatus = string(PaymentUnpaid)
	o, err := f.svc.Create(ctx, in)
	require.NoError(t, err)

	delivered := string(DeliveryDelivered)
	updated, err := f.svc.UpdateStatus(ctx, o.ID, StatusInput{DeliveryStatus: &delivered})
	require.NoError(t, err)
	require.Equal(t, StatusOpen, updated.Status())

	current := string(PaymentCurrent)
	updated, err = f.svc.UpdateStatus(ctx, o.ID, StatusInput{PaymentStatus: &current})
	require.NoError(t, err)
	require.Equal(t, StatusClosed, updated.Status())
	require.Equal(t, "149.06", updated.TotalRevenue().StringFixed(2))

	_, err = f.svc.UpdateStatus(ctx, o.ID, StatusInput{})
	requireCode(t, err, common.CodeValidation, http.StatusBadRequest)

	bogus := "shipped"
	_, err = f.svc.UpdateStatus(ctx, o.ID, StatusInput{DeliveryStatus: &bogus})
	requireCode(t, err, common.CodeValidation, http.StatusBadRequest)

	_, err = f.svc.UpdateStatus(ctx, uuid.New(), StatusInput{PaymentStatus: &current})
	requireCode(t, err, common.CodeNotFound, http.StatusNotFound)
	require.ErrorIs(t, err, ErrNotFound)

	evs, err := f.store.ListDomainEvents(ctx, dbgen.ListDomainEventsParams{
		Topic: pgtype.Text{String: events.TopicOrderStatusChanged, Valid: true}, LimitRows: 10,
	})
	require.NoError(t, err)
	require.Len(t, evs, 2)
}

func TestListOpenFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Headphones", "10.00", 10)

	create := func(pay PaymentStatus, del DeliveryStatus) Order {
		in := f.input(LineInput{ProductID: p.ID.String(), Quantity: 1, UnitMargin: "1.00"})
		in.PaymentStatus = string(pay)
		in.DeliveryStatus = string(del)
		o, err := f.svc.Create(ctx, in)
		require.NoError(t, err)
		return o
	}
	closedOld := create(PaymentPaid, DeliveryDelivered)
	openOld := create(PaymentUnpaid, DeliveryDelivered)
	closedNew := create(PaymentCurrent, DeliveryDelivered)
	openNew := create(PaymentPaid, DeliveryNotDelivered)

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	got := make([]uuid.UUID, 0, len(list))
	for _, o := range list {
		got = append(got, o.ID)
	}
	require.Equal(t, []uuid.UUID{openNew.ID, openOld.ID, closedNew.ID, closedOld.ID}, got)
}
