package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// FXRateFetchTotal counts exchange-rate fetches by result (ok, fallback).
	FXRateFetchTotal *prometheus.CounterVec
	// StockReservationTotal counts per-line stock reservations by result.
	StockReservationTotal *prometheus.CounterVec
	// OrdersCreatedTotal counts order creation attempts by result.
	OrdersCreatedTotal *prometheus.CounterVec
	// OrderStatusChangesTotal counts status updates by the resulting delivery status.
	OrderStatusChangesTotal *prometheus.CounterVec
	// OrderRevenue records the revenue of each created order in local currency.
	OrderRevenue prometheus.Histogram
	// ProductRestockTotal counts restock operations.
	ProductRestockTotal prometheus.Counter
	// EventDeliveriesTotal tracks domain event notification outcomes.
	EventDeliveriesTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		FXRateFetchTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fx_rate_fetch_total",
			Help:      "Count of exchange rate fetches by outcome.",
		}, []string{"result"}))
		StockReservationTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_reservation_total",
			Help:      "Count of stock reservation attempts by outcome.",
		}, []string{"result"}))
		OrdersCreatedTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Count of order creation attempts by outcome.",
		}, []string{"result"}))
		OrderStatusChangesTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_changes_total",
			Help:      "Count of order status updates by delivery status.",
		}, []string{"delivery_status"}))
		OrderRevenue = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_revenue",
			Help:      "Revenue of created orders in local currency.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}))
		ProductRestockTotal = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_restock_total",
			Help:      "Total number of product restock operations.",
		}))
		EventDeliveriesTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_deliveries_total",
			Help:      "Count of domain event notification outcomes.",
		}, []string{"topic", "result"}))
	})
}
