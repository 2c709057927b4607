package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so several apps (tests) can coexist in one process.
type Metrics struct {
	Registry      *prometheus.Registry
	Requests      *prometheus.CounterVec
	LatencyMS     *prometheus.HistogramVec
	CartMutations *prometheus.CounterVec
	OrdersPlaced  prometheus.Counter
	OrderLines    prometheus.Counter
	OutboxSent    prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
		CartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "cart_mutations_total",
			Help:      "Cart mutations by operation and outcome.",
		}, []string{"op", "result"}),
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "orders_placed_total",
			Help:      "Successful checkouts.",
		}),
		OrderLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "order_lines_total",
			Help:      "Placed order rows created from cart lines.",
		}),
		OutboxSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "outbox_sent_total",
			Help:      "Outbox records handed to the publisher.",
		}),
	}
	m.Registry.MustRegister(m.Requests, m.LatencyMS, m.CartMutations, m.OrdersPlaced, m.OrderLines, m.OutboxSent)
	return m
}

// CartOp records one cart mutation; nil receivers are ignored.
func (m *Metrics) CartOp(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.CartMutations.WithLabelValues(op, result).Inc()
}

func (m *Metrics) OrderPlaced(lines int) {
	if m == nil {
		return
	}
	m.OrdersPlaced.Inc()
	m.OrderLines.Add(float64(lines))
}

func (m *Metrics) Sent(n int) {
	if m == nil {
		return
	}
	m.OutboxSent.Add(float64(n))
}

// Middleware counts requests by matched route pattern, not raw path, to keep
// label cardinality bounded.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
		return err
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
