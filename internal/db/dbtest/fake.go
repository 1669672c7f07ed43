// Package dbtest provides an in-memory dbgen.Store for service tests.
//
// The fake mirrors the constraints the schema enforces (unique names, the
// stock check, foreign keys, ON DELETE SET NULL) and gives ExecTx
// all-or-nothing semantics: the callback works on a private copy that is
// published only when it returns nil. Transactions are serialised.
package dbtest

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	dbgen "github.com/noah-isme/backend-importa/internal/db/gen"
)

type state struct {
	categories map[uuid.UUID]dbgen.Category
	products   map[uuid.UUID]dbgen.Product
	customers  map[uuid.UUID]dbgen.Customer
	orders     map[uuid.UUID]dbgen.Order
	lines      []dbgen.OrderLine
	events     []dbgen.DomainEvent
	clock      time.Time
}

func newState() *state {
	return &state{
		categories: map[uuid.UUID]dbgen.Category{},
		products:   map[uuid.UUID]dbgen.Product{},
		customers:  map[uuid.UUID]dbgen.Customer{},
		orders:     map[uuid.UUID]dbgen.Order{},
		clock:      time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *state) clone() *state {
	c := &state{
		categories: make(map[uuid.UUID]dbgen.Category, len(s.categories)),
		products:   make(map[uuid.UUID]dbgen.Product, len(s.products)),
		customers:  make(map[uuid.UUID]dbgen.Customer, len(s.customers)),
		orders:     make(map[uuid.UUID]dbgen.Order, len(s.orders)),
		lines:      append([]dbgen.OrderLine(nil), s.lines...),
		events:     append([]dbgen.DomainEvent(nil), s.events...),
		clock:      s.clock,
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	return c
}

// tick advances the fake clock so created_at ordering is deterministic.
func (s *state) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type failure struct {
	call int
	err  error
}

type faults struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]failure
}

func (f *faults) hit(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	if fl, ok := f.fail[method]; ok && (fl.call == 0 || fl.call == f.calls[method]) {
		return fl.err
	}
	return nil
}

// Fake is an in-memory dbgen.Store.
type Fake struct {
	mu     *sync.Mutex
	st     *state
	faults *faults
}

var _ dbgen.Store = (*Fake)(nil)

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		mu:     &sync.Mutex{},
		st:     newState(),
		faults: &faults{calls: map[string]int{}, fail: map[string]failure{}},
	}
}

// FailOn makes the call-th invocation of method return err. call 0 fails every call.
func (f *Fake) FailOn(method string, call int, err error) {
	f.faults.mu.Lock()
	defer f.faults.mu.Unlock()
	f.faults.calls[method] = 0
	f.faults.fail[method] = failure{call: call, err: err}
}

// Calls reports how many times method was invoked.
func (f *Fake) Calls(method string) int {
	f.faults.mu.Lock()
	defer f.faults.mu.Unlock()
	return f.faults.calls[method]
}

func (f *Fake) lock() func() {
	if f.mu == nil {
		return func() {}
	}
	f.mu.Lock()
	return f.mu.Unlock
}

// ExecTx runs fn against a copy of the data and publishes it only on success.
func (f *Fake) ExecTx(ctx context.Context, fn func(dbgen.Querier) error) error {
	if f.mu == nil {
		return fn(f)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	draft := f.st.clone()
	tx := &Fake{st: draft, faults: f.faults}
	if err := fn(tx); err != nil {
		return err
	}
	*f.st = *draft
	return nil
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

func checkViolation(constraint string) error {
	return &pgconn.PgError{Code: "23514", ConstraintName: constraint, Message: "new row violates check constraint"}
}

func outOfRange() error {
	return &pgconn.PgError{Code: "22003", Message: "integer out of range"}
}

func fkViolation(constraint string) error {
	return &pgconn.PgError{Code: "23503", ConstraintName: constraint, Message: "insert or update violates foreign key constraint"}
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func isClosed(o dbgen.Order) bool {
	return o.DeliveryStatus == "delivered" && (o.PaymentStatus == "paid" || o.PaymentStatus == "current")
}

// CreateCategory implements dbgen.Querier.
func (f *Fake) CreateCategory(_ context.Context, name string) (dbgen.Category, error) {
	defer f.lock()()
	if err := f.faults.hit("CreateCategory"); err != nil {
		return dbgen.Category{}, err
	}
	for _, c := range f.st.categories {
		if c.Name == name {
			return dbgen.Category{}, uniqueViolation("categories_name_key")
		}
	}
	c := dbgen.Category{ID: uuid.New(), Name: name, CreatedAt: f.st.tick()}
	f.st.categories[c.ID] = c
	return c, nil
}

// GetCategory implements dbgen.Querier.
func (f *Fake) GetCategory(_ context.Context, id uuid.UUID) (dbgen.Category, error) {
	defer f.lock()()
	if err := f.faults.hit("GetCategory"); err != nil {
		return dbgen.Category{}, err
	}
	c, ok := f.st.categories[id]
	if !ok {
		return dbgen.Category{}, pgx.ErrNoRows
	}
	return c, nil
}

// ListCategories implements dbgen.Querier.
func (f *Fake) ListCategories(_ context.Context) ([]dbgen.Category, error) {
	defer f.lock()()
	if err := f.faults.hit("ListCategories"); err != nil {
		return nil, err
	}
	out := make([]dbgen.Category, 0, len(f.st.categories))
	for _, c := range f.st.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteCategory implements dbgen.Querier.
func (f *Fake) DeleteCategory(_ context.Context, id uuid.UUID) (int64, error) {
	defer f.lock()()
	if err := f.faults.hit("DeleteCategory"); err != nil {
		return 0, err
	}
	if _, ok := f.st.categories[id]; !ok {
		return 0, nil
	}
	delete(f.st.categories, id)
	for pid, p := range f.st.products {
		if p.CategoryID.Valid && uuid.UUID(p.CategoryID.Bytes) == id {
			p.CategoryID = pgtype.UUID{}
			f.st.products[pid] = p
		}
	}
	return 1, nil
}

func (f *Fake) validCategory(id pgtype.UUID) bool {
	if !id.Valid {
		return true
	}
	_, ok := f.st.categories[uuid.UUID(id.Bytes)]
	return ok
}

// CreateProduct implements dbgen.Querier.
func (f *Fake) CreateProduct(_ context.Context, arg dbgen.CreateProductParams) (dbgen.Product, error) {
	defer f.lock()()
	if err := f.faults.hit("CreateProduct"); err != nil {
		return dbgen.Product{}, err
	}
	if arg.Stock < 0 {
		return dbgen.Product{}, checkViolation("products_stock_check")
	}
	if arg.ForeignCost.Sign() < 0 {
		return dbgen.Product{}, checkViolation("products_foreign_cost_check")
	}
	if !f.validCategory(arg.CategoryID) {
		return dbgen.Product{}, fkViolation("products_category_id_fkey")
	}
	now := f.st.tick()
	p := dbgen.Product{
		ID:          uuid.New(),
		Name:        arg.Name,
		Brand:       arg.Brand,
		CategoryID:  arg.CategoryID,
		ForeignCost: arg.ForeignCost,
		Stock:       arg.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.st.products[p.ID] = p
	return p, nil
}

// GetProduct implements dbgen.Querier.
func (f *Fake) GetProduct(_ context.Context, id uuid.UUID) (dbgen.Product, error) {
	defer f.lock()()
	if err := f.faults.hit("GetProduct"); err != nil {
		return dbgen.Product{}, err
	}
	p, ok := f.st.products[id]
	if !ok {
		return dbgen.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

// GetProductForUpdate implements dbgen.Querier. Transactions are already
// serialised, so it behaves like GetProduct.
func (f *Fake) GetProductForUpdate(_ context.Context, id uuid.UUID) (dbgen.Product, error) {
	defer f.lock()()
	if err := f.faults.hit("GetProductForUpdate"); err != nil {
		return dbgen.Product{}, err
	}
	p, ok := f.st.products[id]
	if !ok {
		return dbgen.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func (f *Fake) salesCount(id uuid.UUID) int64 {
	var n int64
	for _, l := range f.st.lines {
		if l.ProductID.Valid && uuid.UUID(l.ProductID.Bytes) == id {
			n += int64(l.Quantity)
		}
	}
	return n
}

// ListProducts implements dbgen.Querier.
func (f *Fake) ListProducts(_ context.Context, search pgtype.Text) ([]dbgen.ListProductsRow, error) {
	defer f.lock()()
	if err := f.faults.hit("ListProducts"); err != nil {
		return nil, err
	}
	out := make([]dbgen.ListProductsRow, 0, len(f.st.products))
	for _, p := range f.st.products {
		row := dbgen.ListProductsRow{
			ID:          p.ID,
			Name:        p.Name,
			Brand:       p.Brand,
			CategoryID:  p.CategoryID,
			ForeignCost: p.ForeignCost,
			Stock:       p.Stock,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
			SalesCount:  f.salesCount(p.ID),
		}
		if p.CategoryID.Valid {
			if c, ok := f.st.categories[uuid.UUID(p.CategoryID.Bytes)]; ok {
				row.CategoryName = pgtype.Text{String: c.Name, Valid: true}
			}
		}
		if search.Valid && !contains(row.Name, search.String) && !contains(row.Brand, search.String) &&
			!(row.CategoryName.Valid && contains(row.CategoryName.String, search.String)) {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SalesCount != out[j].SalesCount {
			return out[i].SalesCount > out[j].SalesCount
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// UpdateProduct implements dbgen.Querier.
func (f *Fake) UpdateProduct(_ context.Context, arg dbgen.UpdateProductParams) (dbgen.Product, error) {
	defer f.lock()()
	if err := f.faults.hit("UpdateProduct"); err != nil {
		return dbgen.Product{}, err
	}
	p, ok := f.st.products[arg.ID]
	if !ok {
		return dbgen.Product{}, pgx.ErrNoRows
	}
	if arg.ForeignCost.Sign() < 0 {
		return dbgen.Product{}, checkViolation("products_foreign_cost_check")
	}
	if !f.validCategory(arg.CategoryID) {
		return dbgen.Product{}, fkViolation("products_category_id_fkey")
	}
	p.Name = arg.Name
	p.Brand = arg.Brand
	p.CategoryID = arg.CategoryID
	p.ForeignCost = arg.ForeignCost
	p.UpdatedAt = f.st.tick()
	f.st.products[p.ID] = p
	return p, nil
}

// DeleteProduct implements dbgen.Querier. Lines keep their snapshot and lose the reference.
func (f *Fake) DeleteProduct(_ context.Context, id uuid.UUID) (int64, error) {
	defer f.lock()()
	if err := f.faults.hit("DeleteProduct"); err != nil {
		return 0, err
	}
	if _, ok := f.st.products[id]; !ok {
		return 0, nil
	}
	delete(f.st.products, id)
	for i, l := range f.st.lines {
		if l.ProductID.Valid && uuid.UUID(l.ProductID.Bytes) == id {
			f.st.lines[i].ProductID = pgtype.UUID{}
		}
	}
	return 1, nil
}

// DecrementStock implements dbgen.Querier with the same conditional semantics
// as the SQL: no row is returned when stock would go negative.
func (f *Fake) DecrementStock(_ context.Context, arg dbgen.DecrementStockParams) (int32, error) {
	defer f.lock()()
	if err := f.faults.hit("DecrementStock"); err != nil {
		return 0, err
	}
	p, ok := f.st.products[arg.ID]
	if !ok || p.Stock < arg.Qty {
		return 0, pgx.ErrNoRows
	}
	p.Stock -= arg.Qty
	if p.Stock < 0 {
		return 0, checkViolation("products_stock_check")
	}
	p.UpdatedAt = f.st.tick()
	f.st.products[p.ID] = p
	return p.Stock, nil
}

// IncrementStock implements dbgen.Querier.
func (f *Fake) IncrementStock(_ context.Context, arg dbgen.IncrementStockParams) (int32, error) {
	defer f.lock()()
	if err := f.faults.hit("IncrementStock"); err != nil {
		return 0, err
	}
	p, ok := f.st.products[arg.ID]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	next := int64(p.Stock) + int64(arg.Qty)
	if next > math.MaxInt32 {
		return 0, outOfRange()
	}
	if next < 0 {
		return 0, checkViolation("products_stock_check")
	}
	p.Stock = int32(next)
	p.UpdatedAt = f.st.tick()
	f.st.products[p.ID] = p
	return p.Stock, nil
}

// ProductSalesCount implements dbgen.Querier.
func (f *Fake) ProductSalesCount(_ context.Context, productID pgtype.UUID) (int64, error) {
	defer f.lock()()
	if err := f.faults.hit("ProductSalesCount"); err != nil {
		return 0, err
	}
	if !productID.Valid {
		return 0, nil
	}
	return f.salesCount(uuid.UUID(productID.Bytes)), nil
}

// CreateCustomer implements dbgen.Querier.
func (f *Fake) CreateCustomer(_ context.Context, arg dbgen.CreateCustomerParams) (dbgen.Customer, error) {
	defer f.lock()()
	if err := f.faults.hit("CreateCustomer"); err != nil {
		return dbgen.Customer{}, err
	}
	c := dbgen.Customer{
		ID:        uuid.New(),
		FullName:  arg.FullName,
		Phone:     arg.Phone,
		Address:   arg.Address,
		CreatedAt: f.st.tick(),
	}
	f.st.customers[c.ID] = c
	return c, nil
}

// GetCustomer implements dbgen.Querier.
func (f *Fake) GetCustomer(_ context.Context, id uuid.UUID) (dbgen.Customer, error) {
	defer f.lock()()
	if err := f.faults.hit("GetCustomer"); err != nil {
		return dbgen.Customer{}, err
	}
	c, ok := f.st.customers[id]
	if !ok {
		return dbgen.Customer{}, pgx.ErrNoRows
	}
	return c, nil
}

// ListCustomers implements dbgen.Querier.
func (f *Fake) ListCustomers(_ context.Context, search pgtype.Text) ([]dbgen.ListCustomersRow, error) {
	defer f.lock()()
	if err := f.faults.hit("ListCustomers"); err != nil {
		return nil, err
	}
	open := map[uuid.UUID]int64{}
	for _, o := range f.st.orders {
		if !isClosed(o) {
			open[o.CustomerID]++
		}
	}
	out := make([]dbgen.ListCustomersRow, 0, len(f.st.customers))
	for _, c := range f.st.customers {
		if search.Valid && !contains(c.FullName, search.String) && !contains(c.Phone, search.String) && !contains(c.Address, search.String) {
			continue
		}
		out = append(out, dbgen.ListCustomersRow{
			ID:         c.ID,
			FullName:   c.FullName,
			Phone:      c.Phone,
			Address:    c.Address,
			CreatedAt:  c.CreatedAt,
			OpenOrders: open[c.ID],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OpenOrders != out[j].OpenOrders {
			return out[i].OpenOrders > out[j].OpenOrders
		}
		return out[i].FullName < out[j].FullName
	})
	return out, nil
}

// CreateOrder implements dbgen.Querier.
func (f *Fake) CreateOrder(_ context.Context, arg dbgen.CreateOrderParams) (dbgen.Order, error) {
	defer f.lock()()
	if err := f.faults.hit("CreateOrder"); err != nil {
		return dbgen.Order{}, err
	}
	if _, ok := f.st.customers[arg.CustomerID]; !ok {
		return dbgen.Order{}, fkViolation("orders_customer_id_fkey")
	}
	if arg.Installments < 1 {
		return dbgen.Order{}, checkViolation("orders_installments_check")
	}
	if arg.ServiceFee.Sign() < 0 {
		return dbgen.Order{}, checkViolation("orders_service_fee_check")
	}
	delivery := arg.DeliveryStatus
	if delivery == "" {
		delivery = "not_delivered"
	}
	o := dbgen.Order{
		ID:             uuid.New(),
		CustomerID:     arg.CustomerID,
		CreatedAt:      f.st.tick(),
		PaymentMethod:  arg.PaymentMethod,
		Installments:   arg.Installments,
		DueDay:         arg.DueDay,
		PaymentStatus:  arg.PaymentStatus,
		DeliveryStatus: delivery,
		ServiceFee:     arg.ServiceFee,
	}
	f.st.orders[o.ID] = o
	return o, nil
}

// GetOrder implements dbgen.Querier.
func (f *Fake) GetOrder(_ context.Context, id uuid.UUID) (dbgen.Order, error) {
	defer f.lock()()
	if err := f.faults.hit("GetOrder"); err != nil {
		return dbgen.Order{}, err
	}
	o, ok := f.st.orders[id]
	if !ok {
		return dbgen.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (f *Fake) sortedOrders(keep func(dbgen.Order) bool) []dbgen.Order {
	out := make([]dbgen.Order, 0, len(f.st.orders))
	for _, o := range f.st.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// ListOrders implements dbgen.Querier.
func (f *Fake) ListOrders(_ context.Context) ([]dbgen.Order, error) {
	defer f.lock()()
	if err := f.faults.hit("ListOrders"); err != nil {
		return nil, err
	}
	return f.sortedOrders(func(dbgen.Order) bool { return true }), nil
}

// ListOrdersByCustomer implements dbgen.Querier.
func (f *Fake) ListOrdersByCustomer(_ context.Context, customerID uuid.UUID) ([]dbgen.Order, error) {
	defer f.lock()()
	if err := f.faults.hit("ListOrdersByCustomer"); err != nil {
		return nil, err
	}
	return f.sortedOrders(func(o dbgen.Order) bool { return o.CustomerID == customerID }), nil
}

// UpdateOrderStatus implements dbgen.Querier.
func (f *Fake) UpdateOrderStatus(_ context.Context, arg dbgen.UpdateOrderStatusParams) (dbgen.Order, error) {
	defer f.lock()()
	if err := f.faults.hit("UpdateOrderStatus"); err != nil {
		return dbgen.Order{}, err
	}
	o, ok := f.st.orders[arg.ID]
	if !ok {
		return dbgen.Order{}, pgx.ErrNoRows
	}
	if arg.PaymentStatus.Valid {
		o.PaymentStatus = arg.PaymentStatus.String
	}
	if arg.DeliveryStatus.Valid {
		o.DeliveryStatus = arg.DeliveryStatus.String
	}
	f.st.orders[o.ID] = o
	return o, nil
}

// CreateOrderLine implements dbgen.Querier.
func (f *Fake) CreateOrderLine(_ context.Context, arg dbgen.CreateOrderLineParams) (dbgen.OrderLine, error) {
	defer f.lock()()
	if err := f.faults.hit("CreateOrderLine"); err != nil {
		return dbgen.OrderLine{}, err
	}
	if _, ok := f.st.orders[arg.OrderID]; !ok {
		return dbgen.OrderLine{}, fkViolation("order_lines_order_id_fkey")
	}
	if arg.ProductID.Valid {
		if _, ok := f.st.products[uuid.UUID(arg.ProductID.Bytes)]; !ok {
			return dbgen.OrderLine{}, fkViolation("order_lines_product_id_fkey")
		}
		for _, l := range f.st.lines {
			if l.OrderID == arg.OrderID && l.ProductID == arg.ProductID {
				return dbgen.OrderLine{}, uniqueViolation("order_lines_order_id_product_id_key")
			}
		}
	}
	if arg.Quantity < 1 {
		return dbgen.OrderLine{}, checkViolation("order_lines_quantity_check")
	}
	if arg.UnitMargin.Sign() < 0 {
		return dbgen.OrderLine{}, checkViolation("order_lines_unit_margin_check")
	}
	l := dbgen.OrderLine{
		ID:              uuid.New(),
		OrderID:         arg.OrderID,
		ProductID:       arg.ProductID,
		ProductName:     arg.ProductName,
		ProductBrand:    arg.ProductBrand,
		ForeignUnitCost: arg.ForeignUnitCost,
		ExchangeRate:    arg.ExchangeRate,
		Quantity:        arg.Quantity,
		UnitCost:        arg.UnitCost,
		UnitMargin:      arg.UnitMargin,
	}
	f.st.lines = append(f.st.lines, l)
	return l, nil
}

// ListOrderLines implements dbgen.Querier.
func (f *Fake) ListOrderLines(_ context.Context, orderID uuid.UUID) ([]dbgen.OrderLine, error) {
	defer f.lock()()
	if err := f.faults.hit("ListOrderLines"); err != nil {
		return nil, err
	}
	var out []dbgen.OrderLine
	for _, l := range f.st.lines {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out, nil
}

// ListOrderLinesByOrderIDs implements dbgen.Querier.
func (f *Fake) ListOrderLinesByOrderIDs(_ context.Context, orderIds []uuid.UUID) ([]dbgen.OrderLine, error) {
	defer f.lock()()
	if err := f.faults.hit("ListOrderLinesByOrderIDs"); err != nil {
		return nil, err
	}
	want := make(map[uuid.UUID]struct{}, len(orderIds))
	for _, id := range orderIds {
		want[id] = struct{}{}
	}
	var out []dbgen.OrderLine
	for _, l := range f.st.lines {
		if _, ok := want[l.OrderID]; ok {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := bytes.Compare(out[i].OrderID[:], out[j].OrderID[:]); c != 0 {
			return c < 0
		}
		return out[i].ProductName < out[j].ProductName
	})
	return out, nil
}

// InsertDomainEvent implements dbgen.Querier.
func (f *Fake) InsertDomainEvent(_ context.Context, arg dbgen.InsertDomainEventParams) (dbgen.DomainEvent, error) {
	defer f.lock()()
	if err := f.faults.hit("InsertDomainEvent"); err != nil {
		return dbgen.DomainEvent{}, err
	}
	ev := dbgen.DomainEvent{
		ID:          uuid.New(),
		Topic:       arg.Topic,
		AggregateID: arg.AggregateID,
		Payload:     append([]byte(nil), arg.Payload...),
		OccurredAt:  f.st.tick(),
	}
	f.st.events = append(f.st.events, ev)
	return ev, nil
}

// ListDomainEvents implements dbgen.Querier.
func (f *Fake) ListDomainEvents(_ context.Context, arg dbgen.ListDomainEventsParams) ([]dbgen.DomainEvent, error) {
	defer f.lock()()
	if err := f.faults.hit("ListDomainEvents"); err != nil {
		return nil, err
	}
	var out []dbgen.DomainEvent
	for i := len(f.st.events) - 1; i >= 0; i-- {
		ev := f.st.events[i]
		if arg.Topic.Valid && ev.Topic != arg.Topic.String {
			continue
		}
		out = append(out, ev)
		if arg.LimitRows > 0 && int32(len(out)) >= arg.LimitRows {
			break
		}
	}
	return out, nil
}

// String summarises row counts, handy in failure messages.
func (f *Fake) String() string {
	defer f.lock()()
	return fmt.Sprintf("dbtest.Fake{categories:%d products:%d customers:%d orders:%d lines:%d events:%d}",
		len(f.st.categories), len(f.st.products), len(f.st.customers), len(f.st.orders), len(f.st.lines), len(f.st.events))
}
