package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_DomainCounters(t *testing.T) {
	m := New()

	m.VoucherIssued()
	m.VoucherIssued()
	m.VoucherRejected("already_minted")
	m.MintConfirmed()
	m.PriceQuoted("btc", true)
	m.PriceQuoted("btc", false)
	m.PaymentIntent("pending")
	m.PaymentIntent("pending")
	m.PaymentIntent("confirmed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.vouchersIssued))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.voucherRejections.WithLabelValues("already_minted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mintsConfirmed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.priceQuotes.WithLabelValues("btc", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.priceQuotes.WithLabelValues("btc", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.paymentIntents.WithLabelValues("pending")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.paymentIntents.WithLabelValues("confirmed")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.VoucherIssued()
		m.VoucherRejected("x")
		m.MintConfirmed()
		m.PriceQuoted("eth", true)
		m.PaymentIntent("expired")
	})
}

func TestMetrics_MiddlewareAndHandler(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/api/nft/:tokenId", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/nft/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCounter.WithLabelValues("GET", "/api/nft/:tokenId", "200")),
		"requests are labelled by route pattern, not raw path")

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "lazymint_api_requests_total")
	assert.Contains(t, string(body), "go_goroutines")
}
