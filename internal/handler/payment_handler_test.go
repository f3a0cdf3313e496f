package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/lazymint/internal/model"
	"github.com/fairyhunter13/lazymint/internal/service"
	appvalidator "github.com/fairyhunter13/lazymint/internal/validator"
)

const testPaymentID = "6f1c2a9e-3b7d-4c1e-9a55-0d2f4b8e7c11"

// mockPaymentService is a mock implementation of PaymentServiceInterface.
type mockPaymentService struct {
	currenciesFn func(ctx context.Context) []model.Currency
	calculateFn  func(ctx context.Context, req *model.CalculatePriceRequest) (*model.PriceQuote, error)
	createFn     func(ctx context.Context, req *model.CreatePaymentRequest) (*model.PaymentIntent, error)
	statusFn     func(ctx context.Context, id string) (*model.PaymentIntent, error)
	confirmFn    func(ctx context.Context, req *model.PaymentWebhookRequest) (*model.PaymentIntent, error)
}

func (m *mockPaymentService) Currencies(ctx context.Context) []model.Currency {
	if m.currenciesFn != nil {
		return m.currenciesFn(ctx)
	}
	return []model.Currency{}
}

func (m *mockPaymentService) Calculate(ctx context.Context, req *model.CalculatePriceRequest) (*model.PriceQuote, error) {
	if m.calculateFn != nil {
		return m.calculateFn(ctx, req)
	}
	return nil, nil
}

func (m *mockPaymentService) Create(ctx context.Context, req *model.CreatePaymentRequest) (*model.PaymentIntent, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return nil, nil
}

func (m *mockPaymentService) Status(ctx context.Context, id string) (*model.PaymentIntent, error) {
	if m.statusFn != nil {
		return m.statusFn(ctx, id)
	}
	return nil, nil
}

func (m *mockPaymentService) Confirm(ctx context.Context, req *model.PaymentWebhookRequest) (*model.PaymentIntent, error) {
	if m.confirmFn != nil {
		return m.confirmFn(ctx, req)
	}
	return nil, nil
}

func setupPaymentTestApp(mockSvc *mockPaymentService) *fiber.App {
	return setupPaymentTestAppWithSecret(mockSvc, "")
}

func setupPaymentTestAppWithSecret(mockSvc *mockPaymentService, secret string) *fiber.App {
	app := fiber.New()
	h := NewPaymentHandler(mockSvc, appvalidator.New(), secret)
	app.Get("/api/payment/currencies", h.Currencies)
	app.Post("/api/payment/calculate", h.Calculate)
	app.Post("/api/payment/create", h.CreatePayment)
	app.Get("/api/payment/status/:paymentId", h.PaymentStatus)
	app.Post("/api/payment/webhook", h.Webhook)
	return app
}

func pendingPayment() *model.PaymentIntent {
	created := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	return &model.PaymentIntent{
		ID:            testPaymentID,
		TokenID:       2,
		Buyer:         strings.ToLower(testBuyer),
		Currency:      "ETH",
		Amount:        "0.05",
		AmountUSD:     "175.00",
		PaymentMethod: "eth",
		Status:        model.PaymentPending,
		CreatedAt:     created,
		ExpiresAt:     created.Add(30 * time.Minute),
	}
}

func TestCurrencies(t *testing.T) {
	mockSvc := &mockPaymentService{
		currenciesFn: func(ctx context.Context) []model.Currency {
			return []model.Currency{
				{Symbol: "eth", Name: "Ethereum", PriceUSD: "3000", IsSupported: true, Network: "sepolia"},
				{Symbol: "btc", Name: "Bitcoin"},
			}
		},
	}
	app := setupPaymentTestApp(mockSvc)

	status, body := getJSON(t, app, "/api/payment/currencies")
	assert.Equal(t, fiber.StatusOK, status)

	data, ok := body["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 2)

	eth := data[0].(map[string]any)
	assert.Equal(t, true, eth["isSupported"])
	assert.Equal(t, "sepolia", eth["network"])

	btc := data[1].(map[string]any)
	assert.Equal(t, false, btc["isSupported"])
	assert.NotContains(t, btc, "priceUSD")
}

func TestCalculate_Success(t *testing.T) {
	expires := time.Date(2026, 5, 1, 0, 15, 0, 0, time.UTC)
	var got *model.CalculatePriceRequest
	mockSvc := &mockPaymentService{
		calculateFn: func(ctx context.Context, req *model.CalculatePriceRequest) (*model.PriceQuote, error) {
			got = req
			return &model.PriceQuote{
				ID:         "2d3c4e1a-0000-4000-8000-000000000001",
				TokenID:    req.TokenID,
				Currency:   req.Currency,
				Amount:     "0.00250000",
				AmountUSD:  "150.00",
				PriceInETH: "0.05",
				ExpiresAt:  expires,
			}, nil
		},
	}
	app := setupPaymentTestApp(mockSvc)

	status, body := postJSON(t, app, "/api/payment/calculate", `{"tokenId":2,"currency":"btc"}`)
	assert.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, got)
	assert.Equal(t, uint64(2), got.TokenID)
	assert.Equal(t, "btc", got.Currency)

	data := body["data"].(map[string]any)
	assert.Equal(t, "0.00250000", data["amount"])
	assert.Equal(t, "150.00", data["amountUSD"])
	assert.Equal(t, "2026-05-01T00:15:00Z", data["expiresAt"])
}

func TestCalculate_ValidationErrors(t *testing.T) {
	app := setupPaymentTestApp(&mockPaymentService{})

	testCases := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing_token", `{"currency":"eth"}`, "tokenId must be a positive integer"},
		{"missing_currency", `{"tokenId":1}`, "currency is required"},
		{"blank_currency", `{"tokenId":1,"currency":"  "}`, "currency is required"},
		{"long_currency", `{"tokenId":1,"currency":"abcdefghijk"}`, "currency exceeds maximum length"},
		{"negative_token", `{"tokenId":-1,"currency":"eth"}`, "invalid request body"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := postJSON(t, app, "/api/payment/calculate", tc.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Contains(t, body["error"], tc.wantMsg)
		})
	}
}

func TestCalculate_ServiceErrors(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not_found", service.ErrNFTNotFound, fiber.StatusNotFound},
		{"unsupported", fmt.Errorf("%w: doge", service.ErrUnsupportedCurrency), fiber.StatusBadRequest},
		{"invalid", service.ErrInvalidRequest, fiber.StatusBadRequest},
		{"upstream", errors.New("coingecko: 429"), fiber.StatusBadGateway},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockSvc := &mockPaymentService{
				calculateFn: func(ctx context.Context, req *model.CalculatePriceRequest) (*model.PriceQuote, error) {
					return nil, tc.err
				},
			}
			app := setupPaymentTestApp(mockSvc)

			status, body := postJSON(t, app, "/api/payment/calculate", `{"tokenId":1,"currency":"doge"}`)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestCreatePayment_Success(t *testing.T) {
	var got *model.CreatePaymentRequest
	mockSvc := &mockPaymentService{
		createFn: func(ctx context.Context, req *model.CreatePaymentRequest) (*model.PaymentIntent, error) {
			got = req
			return pendingPayment(), nil
		},
	}
	app := setupPaymentTestApp(mockSvc)

	status, body := postJSON(t, app, "/api/payment/create", `{"tokenId":2,"buyer":"`+testBuyer+`","currency":"eth"}`)

	assert.Equal(t, fiber.StatusCreated, status)
	require.NotNil(t, got)
	assert.Equal(t, uint64(2), got.TokenID)
	assert.Equal(t, testBuyer, got.Buyer)

	data := body["data"].(map[string]any)
	assert.Equal(t, testPaymentID, data["paymentId"])
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "2026-05-01T00:30:00Z", data["expiresAt"])
	assert.NotContains(t, data, "confirmedAt")
	assert.NotContains(t, data, "transactionHash")
}

func TestCreatePayment_ValidationErrors(t *testing.T) {
	app := setupPaymentTestApp(&mockPaymentService{})

	testCases := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing_token", `{"buyer":"` + testBuyer + `","currency":"eth"}`, "tokenId must be a positive integer"},
		{"missing_buyer", `{"tokenId":2,"currency":"eth"}`, "buyer is required"},
		{"bad_buyer", `{"tokenId":2,"buyer":"0x123","currency":"eth"}`, "buyer must be a hex address"},
		{"missing_currency", `{"tokenId":2,"buyer":"` + testBuyer + `"}`, "currency is required"},
		{"not_json", `tokenId=2`, "invalid request body"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := postJSON(t, app, "/api/payment/create", tc.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Contains(t, body["error"], tc.wantMsg)
		})
	}
}

func TestCreatePayment_ServiceErrors(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not_found", service.ErrNFTNotFound, fiber.StatusNotFound},
		{"minted", service.ErrAlreadyMinted, fiber.StatusConflict},
		{"unsupported", service.ErrUnsupportedCurrency, fiber.StatusBadRequest},
		{"invalid", service.ErrInvalidRequest, fiber.StatusBadRequest},
		{"upstream", fmt.Errorf("%w: quote eth: 429", service.ErrPriceUnavailable), fiber.StatusBadGateway},
		{"database", errors.New("connection reset"), fiber.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockSvc := &mockPaymentService{
				createFn: func(ctx context.Context, req *model.CreatePaymentRequest) (*model.PaymentIntent, error) {
					return nil, tc.err
				},
			}
			app := setupPaymentTestApp(mockSvc)

			status, body := postJSON(t, app, "/api/payment/create", `{"tokenId":2,"buyer":"`+testBuyer+`","currency":"eth"}`)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestPaymentStatus(t *testing.T) {
	var gotID string
	mockSvc := &mockPaymentService{
		statusFn: func(ctx context.Context, id string) (*model.PaymentIntent, error) {
			gotID = id
			p := pendingPayment()
			p.Status = model.PaymentExpired
			return p, nil
		},
	}
	app := setupPaymentTestApp(mockSvc)

	status, body := getJSON(t, app, "/api/payment/status/"+testPaymentID)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, testPaymentID, gotID)
	assert.Equal(t, "expired", body["data"].(map[string]any)["status"])
}

func TestPaymentStatus_Errors(t *testing.T) {
	notFound := &mockPaymentService{
		statusFn: func(ctx context.Context, id string) (*model.PaymentIntent, error) {
			return nil, service.ErrPaymentNotFound
		},
	}
	status, body := getJSON(t, setupPaymentTestApp(notFound), "/api/payment/status/"+testPaymentID)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "payment not found", body["error"])

	called := false
	unreachable := &mockPaymentService{
		statusFn: func(ctx context.Context, id string) (*model.PaymentIntent, error) {
			called = true
			return nil, nil
		},
	}
	status, body = getJSON(t, setupPaymentTestApp(unreachable), "/api/payment/status/42")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["error"], "paymentId must be a uuid")
	assert.False(t, called)

	broken := &mockPaymentService{
		statusFn: func(ctx context.Context, id string) (*model.PaymentIntent, error) {
			return nil, errors.New("connection reset")
		},
	}
	status, _ = getJSON(t, setupPaymentTestApp(broken), "/api/payment/status/"+testPaymentID)
	assert.Equal(t, fiber.StatusInternalServerError, status)
}

func TestWebhook_Confirmed(t *testing.T) {
	var got *model.PaymentWebhookRequest
	mockSvc := &mockPaymentService{
		confirmFn: func(ctx context.Context, req *model.PaymentWebhookRequest) (*model.PaymentIntent, error) {
			got = req
			p := pendingPayment()
			p.Status = model.PaymentConfirmed
			p.TransactionHash = req.TransactionHash
			confirmedAt := p.CreatedAt.Add(time.Minute)
			p.ConfirmedAt = &confirmedAt
			return p, nil
		},
	}
	app := setupPaymentTestApp(mockSvc)

	status, body := postJSON(t, app, "/api/payment/webhook",
		`{"paymentId":"`+testPaymentID+`","status":"confirmed","transactionHash":"`+testTxHash+`"}`)

	assert.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, got)
	assert.Equal(t, model.PaymentConfirmed, got.Status)

	data := body["data"].(map[string]any)
	assert.Equal(t, "confirmed", data["status"])
	assert.Equal(t, testTxHash, data["transactionHash"])
	assert.Equal(t, "2026-05-01T00:01:00Z", data["confirmedAt"])
}

func TestWebhook_ValidationErrors(t *testing.T) {
	app := setupPaymentTestApp(&mockPaymentService{})

	testCases := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing_id", `{"status":"failed"}`, "paymentId is required"},
		{"bad_id", `{"paymentId":"42","status":"failed"}`, "paymentId must be a uuid"},
		{"missing_status", `{"paymentId":"` + testPaymentID + `"}`, "status must be one of"},
		{"pending_status", `{"paymentId":"` + testPaymentID + `","status":"pending"}`, "status must be one of"},
		{"bad_hash", `{"paymentId":"` + testPaymentID + `","status":"confirmed","transactionHash":"0x12"}`, "transactionHash must be"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := postJSON(t, app, "/api/payment/webhook", tc.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Contains(t, body["error"], tc.wantMsg)
		})
	}
}

func TestWebhook_ServiceErrors(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not_found", service.ErrPaymentNotFound, fiber.StatusNotFound},
		{"missing_hash", service.ErrInvalidRequest, fiber.StatusBadRequest},
		{"expired", service.ErrPaymentExpired, fiber.StatusConflict},
		{"finalized", service.ErrPaymentFinalized, fiber.StatusConflict},
		{"minted", service.ErrAlreadyMinted, fiber.StatusConflict},
		{"database", errors.New("connection reset"), fiber.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockSvc := &mockPaymentService{
				confirmFn: func(ctx context.Context, req *model.PaymentWebhookRequest) (*model.PaymentIntent, error) {
					return nil, tc.err
				},
			}
			app := setupPaymentTestApp(mockSvc)

			status, body := postJSON(t, app, "/api/payment/webhook", `{"paymentId":"`+testPaymentID+`","status":"failed"}`)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestWebhook_Secret(t *testing.T) {
	calls := 0
	mockSvc := &mockPaymentService{
		confirmFn: func(ctx context.Context, req *model.PaymentWebhookRequest) (*model.PaymentIntent, error) {
			calls++
			p := pendingPayment()
			p.Status = model.PaymentFailed
			return p, nil
		},
	}
	app := setupPaymentTestAppWithSecret(mockSvc, "s3cret")
	payload := `{"paymentId":"` + testPaymentID + `","status":"failed"}`

	send := func(secret string) (int, map[string]any) {
		req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		if secret != "" {
			req.Header.Set("X-Webhook-Secret", secret)
		}
		return doRequest(t, app, req)
	}

	status, body := send("")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "invalid webhook secret", body["error"])

	status, _ = send("wrong")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Zero(t, calls)

	status, _ = send("s3cret")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, calls)
}
