package handler

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/lazymint/internal/model"
	"github.com/fairyhunter13/lazymint/internal/service"
)

// webhookSecretHeader carries the shared secret on gateway notifications.
const webhookSecretHeader = "X-Webhook-Secret"

// PaymentServiceInterface defines the interface for quotes and payment intents.
type PaymentServiceInterface interface {
	Currencies(ctx context.Context) []model.Currency
	Calculate(ctx context.Context, req *model.CalculatePriceRequest) (*model.PriceQuote, error)
	Create(ctx context.Context, req *model.CreatePaymentRequest) (*model.PaymentIntent, error)
	Status(ctx context.Context, id string) (*model.PaymentIntent, error)
	Confirm(ctx context.Context, req *model.PaymentWebhookRequest) (*model.PaymentIntent, error)
}

// PaymentHandler handles HTTP requests for payment quotes and intents.
type PaymentHandler struct {
	service       PaymentServiceInterface
	validator     *validator.Validate
	webhookSecret string
}

// NewPaymentHandler creates a new PaymentHandler with the given service and validator.
// When webhookSecret is non-empty, webhook calls must present it in the
// X-Webhook-Secret header.
func NewPaymentHandler(svc PaymentServiceInterface, v *validator.Validate, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{service: svc, validator: v, webhookSecret: webhookSecret}
}

// Currencies handles GET /api/payment/currencies requests.
func (h *PaymentHandler) Currencies(c *fiber.Ctx) error {
	return success(c, fiber.StatusOK, h.service.Currencies(c.Context()))
}

// Calculate handles POST /api/payment/calculate requests.
func (h *PaymentHandler) Calculate(c *fiber.Ctx) error {
	var req model.CalculatePriceRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return failure(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	quote, err := h.service.Calculate(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNFTNotFound):
			return failure(c, fiber.StatusNotFound, "nft not found")
		case errors.Is(err, service.ErrUnsupportedCurrency):
			return failure(c, fiber.StatusBadRequest, "unsupported currency")
		case errors.Is(err, service.ErrInvalidRequest):
			return failure(c, fiber.StatusBadRequest, "invalid request")
		}
		log.Warn().Err(err).Uint64("token_id", req.TokenID).Str("currency", req.Currency).Msg("price quote failed")
		return failure(c, fiber.StatusBadGateway, "price source unavailable")
	}

	return success(c, fiber.StatusOK, quote)
}

// CreatePayment handles POST /api/payment/create requests.
func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	var req model.CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return failure(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	p, err := h.service.Create(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNFTNotFound):
			return failure(c, fiber.StatusNotFound, "nft not found")
		case errors.Is(err, service.ErrAlreadyMinted):
			return failure(c, fiber.StatusConflict, "nft already minted")
		case errors.Is(err, service.ErrUnsupportedCurrency):
			return failure(c, fiber.StatusBadRequest, "unsupported currency")
		case errors.Is(err, service.ErrInvalidRequest):
			return failure(c, fiber.StatusBadRequest, "invalid request")
		case errors.Is(err, service.ErrPriceUnavailable):
			log.Warn().Err(err).Uint64("token_id", req.TokenID).Str("currency", req.Currency).Msg("price quote failed")
			return failure(c, fiber.StatusBadGateway, "price source unavailable")
		}
		return internalError(c, err, "failed to create payment")
	}

	return success(c, fiber.StatusCreated, p)
}

// PaymentStatus handles GET /api/payment/status/:paymentId requests.
func (h *PaymentHandler) PaymentStatus(c *fiber.Ctx) error {
	id := c.Params("paymentId")
	if err := h.validator.Var(id, "required,uuid"); err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid request: paymentId must be a uuid")
	}

	p, err := h.service.Status(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			return failure(c, fiber.StatusNotFound, "payment not found")
		case errors.Is(err, service.ErrInvalidRequest):
			return failure(c, fiber.StatusBadRequest, "invalid request")
		}
		return internalError(c, err, "failed to get payment")
	}

	return success(c, fiber.StatusOK, p)
}

// Webhook handles POST /api/payment/webhook requests from a payment gateway.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	if h.webhookSecret != "" {
		got := c.Get(webhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.webhookSecret)) != 1 {
			return failure(c, fiber.StatusUnauthorized, "invalid webhook secret")
		}
	}

	var req model.PaymentWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return failure(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	p, err := h.service.Confirm(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			return failure(c, fiber.StatusNotFound, "payment not found")
		case errors.Is(err, service.ErrNFTNotFound):
			return failure(c, fiber.StatusNotFound, "nft not found")
		case errors.Is(err, service.ErrInvalidRequest):
			return failure(c, fiber.StatusBadRequest, "invalid request: transactionHash is required")
		case errors.Is(err, service.ErrPaymentExpired):
			return failure(c, fiber.StatusConflict, "payment expired")
		case errors.Is(err, service.ErrPaymentFinalized):
			return failure(c, fiber.StatusConflict, "payment already finalized")
		case errors.Is(err, service.ErrAlreadyMinted):
			return failure(c, fiber.StatusConflict, "nft already minted")
		}
		return internalError(c, err, "failed to update payment")
	}

	return success(c, fiber.StatusOK, p)
}
