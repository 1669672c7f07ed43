// Package order holds the order aggregate and the service that creates and
// updates orders. Every monetary figure on an order is derived on read from
// the costs frozen on its lines; nothing is re-priced at the live rate.
package order

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbgen "github.com/noah-isme/backend-importa/internal/db/gen"
	"github.com/noah-isme/backend-importa/internal/pricing"
)

// PaymentStatus is the payment state recorded on an order.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentOverdue PaymentStatus = "overdue"
	PaymentCurrent PaymentStatus = "current"
)

// Valid reports whether p is a known payment status.
func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPaid, PaymentUnpaid, PaymentOverdue, PaymentCurrent:
		return true
	}
	return false
}

// Settled reports whether the payment counts as fulfilled: paid outright, or
// an installment plan that is up to date.
func (p PaymentStatus) Settled() bool {
	return p == PaymentPaid || p == PaymentCurrent
}

// DeliveryStatus is the delivery state recorded on an order.
type DeliveryStatus string

const (
	DeliveryDelivered    DeliveryStatus = "delivered"
	DeliveryNotDelivered DeliveryStatus = "not_delivered"
)

// Valid reports whether d is a known delivery status.
func (d DeliveryStatus) Valid() bool {
	return d == DeliveryDelivered || d == DeliveryNotDelivered
}

// PaymentMethod distinguishes single payments from installment plans.
type PaymentMethod string

const (
	MethodOneTime     PaymentMethod = "one_time"
	MethodInstallment PaymentMethod = "installment"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	return m == MethodOneTime || m == MethodInstallment
}

// Status is derived, never stored.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Line is one product on an order with its cost frozen at sale time.
// ProductID is nil once the product has been deleted; the snapshot fields
// keep the line readable.
type Line struct {
	ID              uuid.UUID
	ProductID       *uuid.UUID
	ProductName     string
	ProductBrand    string
	ForeignUnitCost decimal.Decimal
	ExchangeRate    decimal.Decimal
	Quantity        int
	UnitCost        decimal.Decimal
	UnitMargin      decimal.Decimal
}

func (l Line) priced() pricing.Line {
	return pricing.Line{Quantity: l.Quantity, UnitCost: l.UnitCost, UnitMargin: l.UnitMargin}
}

// Order is the aggregate root.
type Order struct {
	ID             uuid.UUID
	CustomerID     uuid.UUID
	CreatedAt      time.Time
	PaymentMethod  PaymentMethod
	Installments   int
	DueDay         *int
	PaymentStatus  PaymentStatus
	DeliveryStatus DeliveryStatus
	ServiceFee     decimal.Decimal
	Lines          []Line
}

// Status is closed iff the order is delivered and its payment is settled.
func (o Order) Status() Status {
	if o.DeliveryStatus == DeliveryDelivered && o.PaymentStatus.Settled() {
		return StatusClosed
	}
	return StatusOpen
}

// Summary prices the order from its frozen lines.
func (o Order) Summary() pricing.Summary {
	lines := make([]pricing.Line, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, l.priced())
	}
	return pricing.Compute(lines, o.ServiceFee)
}

// SubtotalItems is Σ (unit cost + unit margin) × quantity.
func (o Order) SubtotalItems() decimal.Decimal { return o.Summary().Subtotal }

// TotalRevenue is SubtotalItems plus the service fee.
func (o Order) TotalRevenue() decimal.Decimal { return o.Summary().Revenue }

// TotalProfit is Σ unit margin × quantity plus the service fee.
func (o Order) TotalProfit() decimal.Decimal { return o.Summary().Profit }

// FromRows builds the aggregate from persisted rows.
func FromRows(row dbgen.Order, lines []dbgen.OrderLine) Order {
	o := Order{
		ID:             row.ID,
		CustomerID:     row.CustomerID,
		CreatedAt:      row.CreatedAt,
		PaymentMethod:  PaymentMethod(row.PaymentMethod),
		Installments:   int(row.Installments),
		PaymentStatus:  PaymentStatus(row.PaymentStatus),
		DeliveryStatus: DeliveryStatus(row.DeliveryStatus),
		ServiceFee:     row.ServiceFee,
		Lines:          make([]Line, 0, len(lines)),
	}
	if row.DueDay.Valid {
		d := int(row.DueDay.Int32)
		o.DueDay = &d
	}
	for _, l := range lines {
		line := Line{
			ID:              l.ID,
			ProductName:     l.ProductName,
			ProductBrand:    l.ProductBrand,
			ForeignUnitCost: l.ForeignUnitCost,
			ExchangeRate:    l.ExchangeRate,
			Quantity:        int(l.Quantity),
			UnitCost:        l.UnitCost,
			UnitMargin:      l.UnitMargin,
		}
		if l.ProductID.Valid {
			id := uuid.UUID(l.ProductID.Bytes)
			line.ProductID = &id
		}
		o.Lines = append(o.Lines, line)
	}
	return o
}

// Assemble groups lines under their orders, preserving the order of rows.
func Assemble(rows []dbgen.Order, lines []dbgen.OrderLine) []Order {
	byOrder := make(map[uuid.UUID][]dbgen.OrderLine, len(rows))
	for _, l := range lines {
		byOrder[l.OrderID] = append(byOrder[l.OrderID], l)
	}
	out := make([]Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromRows(row, byOrder[row.ID]))
	}
	return out
}

// SortOpenFirst orders open orders before closed ones, newest first within each group.
func SortOpenFirst(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		oi, oj := orders[i].Status() == StatusOpen, orders[j].Status() == StatusOpen
		if oi != oj {
			return oi
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

// Totals aggregates revenue, profit and open count across orders.
type Totals struct {
	Revenue    decimal.Decimal
	Profit     decimal.Decimal
	OpenOrders int
}

// Aggregate sums every order's revenue and profit and counts the open ones.
func Aggregate(orders []Order) Totals {
	t := Totals{Revenue: decimal.Zero, Profit: decimal.Zero}
	for _, o := range orders {
		s := o.Summary()
		t.Revenue = t.Revenue.Add(s.Revenue)
		t.Profit = t.Profit.Add(s.Profit)
		if o.Status() == StatusOpen {
			t.OpenOrders++
		}
	}
	return t
}
