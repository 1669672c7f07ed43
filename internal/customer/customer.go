// Package customer manages customers and what they have spent.
package customer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-importa/internal/money"
	"github.com/noah-isme/backend-importa/internal/order"
)

// TotalSpent sums the revenue of closed orders only: delivered, with the
// payment settled. Open orders contribute nothing.
func TotalSpent(orders []order.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		if o.Status() != order.StatusClosed {
			continue
		}
		total = total.Add(o.TotalRevenue())
	}
	return money.Round2(total)
}

// Customer is a customer with the derived figures shown in lists.
type Customer struct {
	ID         uuid.UUID
	FullName   string
	Phone      string
	Address    string
	CreatedAt  time.Time
	OpenOrders int
	TotalSpent decimal.Decimal
}

// Detail is a customer with their orders.
type Detail struct {
	Customer
	Orders []order.Order
}

// View is the response payload for a customer.
type View struct {
	ID         string    `json:"id"`
	FullName   string    `json:"fullName"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	CreatedAt  time.Time `json:"createdAt"`
	OpenOrders int       `json:"openOrders"`
	TotalSpent string    `json:"totalSpent"`
}

// DetailView adds the customer's orders.
type DetailView struct {
	View
	Orders []order.View `json:"orders"`
}

// NewView renders c.
func NewView(c Customer) View {
	return View{
		ID:         c.ID.String(),
		FullName:   c.FullName,
		Phone:      c.Phone,
		Address:    c.Address,
		CreatedAt:  c.CreatedAt,
		OpenOrders: c.OpenOrders,
		TotalSpent: money.Format(c.TotalSpent),
	}
}

// NewDetailView renders d with its orders.
func NewDetailView(d Detail) DetailView {
	return DetailView{View: NewView(d.Customer), Orders: order.NewViews(d.Orders)}
}
