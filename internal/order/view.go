package order

import (
	"time"

	"github.com/noah-isme/backend-importa/internal/money"
)

// LineView is the response payload for a line.
type LineView struct {
	ID              string  `json:"id"`
	ProductID       *string `json:"productId"`
	ProductName     string  `json:"productName"`
	ProductBrand    string  `json:"productBrand"`
	ForeignUnitCost string  `json:"foreignUnitCost"`
	ExchangeRate    string  `json:"exchangeRate"`
	Quantity        int     `json:"quantity"`
	UnitCost        string  `json:"unitCost"`
	UnitMargin      string  `json:"unitMargin"`
	UnitPrice       string  `json:"unitPrice"`
	Subtotal        string  `json:"subtotal"`
	Profit          string  `json:"profit"`
}

// View is the response payload for an order.
type View struct {
	ID             string     `json:"id"`
	CustomerID     string     `json:"customerId"`
	CreatedAt      time.Time  `json:"createdAt"`
	PaymentMethod  string     `json:"paymentMethod"`
	Installments   int        `json:"installments"`
	DueDay         *int       `json:"dueDay,omitempty"`
	PaymentStatus  string     `json:"paymentStatus"`
	DeliveryStatus string     `json:"deliveryStatus"`
	Status         string     `json:"status"`
	ServiceFee     string     `json:"serviceFee"`
	SubtotalItems  string     `json:"subtotalItems"`
	TotalRevenue   string     `json:"totalRevenue"`
	TotalProfit    string     `json:"totalProfit"`
	Lines          []LineView `json:"lines"`
}

// NewView renders o with every amount as a two-decimal string.
func NewView(o Order) View {
	s := o.Summary()
	v := View{
		ID:             o.ID.String(),
		CustomerID:     o.CustomerID.String(),
		CreatedAt:      o.CreatedAt,
		PaymentMethod:  string(o.PaymentMethod),
		Installments:   o.Installments,
		DueDay:         o.DueDay,
		PaymentStatus:  string(o.PaymentStatus),
		DeliveryStatus: string(o.DeliveryStatus),
		Status:         string(o.Status()),
		ServiceFee:     money.Format(s.ServiceFee),
		SubtotalItems:  money.Format(s.Subtotal),
		TotalRevenue:   money.Format(s.Revenue),
		TotalProfit:    money.Format(s.Profit),
		Lines:          make([]LineView, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		p := l.priced()
		lv := LineView{
			ID:              l.ID.String(),
			ProductName:     l.ProductName,
			ProductBrand:    l.ProductBrand,
			ForeignUnitCost: money.Format(l.ForeignUnitCost),
			ExchangeRate:    money.Format(l.ExchangeRate),
			Quantity:        l.Quantity,
			UnitCost:        money.Format(l.UnitCost),
			UnitMargin:      money.Format(l.UnitMargin),
			UnitPrice:       money.Format(p.UnitPrice()),
			Subtotal:        money.Format(p.Subtotal()),
			Profit:          money.Format(p.Profit()),
		}
		if l.ProductID != nil {
			id := l.ProductID.String()
			lv.ProductID = &id
		}
		v.Lines = append(v.Lines, lv)
	}
	return v
}

// NewViews renders a slice of orders.
func NewViews(orders []Order) []View {
	out := make([]View, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewView(o))
	}
	return out
}
