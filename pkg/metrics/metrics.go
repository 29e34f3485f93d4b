package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Checkout struct {
	OrdersCreated       prometheus.Counter
	OrdersCancelled     prometheus.Counter
	ReservationFailures prometheus.Counter
	RequestLatencyMS    *prometheus.HistogramVec
}

func NewCheckout(reg prometheus.Registerer) *Checkout {
	c := &Checkout{
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "orders_created_total",
			Help:      "Orders successfully created.",
		}),
		OrdersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "orders_cancelled_total",
			Help:      "Orders transitioned into cancelled.",
		}),
		ReservationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "reservation_failures_total",
			Help:      "Stock reservations rejected for insufficient stock.",
		}),
		RequestLatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "checkout",
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"route"}),
	}
	reg.MustRegister(c.OrdersCreated, c.OrdersCancelled, c.ReservationFailures, c.RequestLatencyMS)
	return c
}

func Handler() http.Handler {
	return promhttp.Handler()
}
