// Package metrics exposes Prometheus collectors for the issuing server.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lazymint"

// Metrics holds the server's collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	vouchersIssued    prometheus.Counter
	voucherRejections *prometheus.CounterVec
	mintsConfirmed    prometheus.Counter
	priceQuotes       *prometheus.CounterVec
	paymentIntents    *prometheus.CounterVec
}

// New registers every collector, plus Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
		vouchersIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "voucher",
			Name:      "issued_total",
			Help:      "Vouchers signed and returned to buyers",
		}),
		voucherRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "voucher",
				Name:      "rejections_total",
				Help:      "Voucher requests refused, by reason",
			},
			[]string{"reason"},
		),
		mintsConfirmed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "mints_confirmed_total",
			Help:      "Mint confirmations recorded in the advisory tracker",
		}),
		priceQuotes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "payment",
				Name:      "quotes_total",
				Help:      "Price quotes computed, by currency and result",
			},
			[]string{"currency", "result"},
		),
		paymentIntents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "payment",
				Name:      "intents_total",
				Help:      "Payment intents entering each status",
			},
			[]string{"status"},
		),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// VoucherIssued counts one signed voucher.
func (m *Metrics) VoucherIssued() {
	if m == nil {
		return
	}
	m.vouchersIssued.Inc()
}

// VoucherRejected counts one refused voucher request.
func (m *Metrics) VoucherRejected(reason string) {
	if m == nil {
		return
	}
	m.voucherRejections.WithLabelValues(reason).Inc()
}

// MintConfirmed counts one tracker confirmation.
func (m *Metrics) MintConfirmed() {
	if m == nil {
		return
	}
	m.mintsConfirmed.Inc()
}

// PriceQuoted counts one quote attempt.
func (m *Metrics) PriceQuoted(currency string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.priceQuotes.WithLabelValues(currency, result).Inc()
}

// PaymentIntent counts one intent entering status.
func (m *Metrics) PaymentIntent(status string) {
	if m == nil {
		return
	}
	m.paymentIntents.WithLabelValues(status).Inc()
}

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		method := c.Method()
		m.requestCounter.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
