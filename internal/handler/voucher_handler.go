package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/lazymint/internal/model"
	"github.com/fairyhunter13/lazymint/internal/service"
	"github.com/fairyhunter13/lazymint/internal/voucher"
)

// VoucherServiceInterface defines the interface for voucher issuing logic.
type VoucherServiceInterface interface {
	IssueVoucher(ctx context.Context, tokenID uint64, buyer string) (*voucher.Voucher, error)
	ConfirmMint(ctx context.Context, tokenID uint64, owner, txHash string) (*model.MintRecord, error)
	VerifyVoucher(ctx context.Context, v voucher.Voucher) (*model.VerifyResponse, error)
}

// VoucherHandler handles HTTP requests for voucher issuing and mint confirmation.
type VoucherHandler struct {
	service   VoucherServiceInterface
	validator *validator.Validate
}

// NewVoucherHandler creates a new VoucherHandler with the given service and validator.
func NewVoucherHandler(svc VoucherServiceInterface, v *validator.Validate) *VoucherHandler {
	return &VoucherHandler{service: svc, validator: v}
}

// IssueVoucher handles POST /api/nft/voucher/:tokenId requests.
func (h *VoucherHandler) IssueVoucher(c *fiber.Ctx) error {
	tokenID, ok := tokenIDParam(c)
	if !ok {
		return failure(c, fiber.StatusBadRequest, "invalid request: tokenId must be a positive integer")
	}

	var req model.VoucherRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return failure(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	v, err := h.service.IssueVoucher(c.Context(), tokenID, req.Buyer)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNFTNotFound):
			return failure(c, fiber.StatusNotFound, "nft not found")
		case errors.Is(err, service.ErrAlreadyMinted):
			return failure(c, fiber.StatusConflict, "nft already minted")
		case errors.Is(err, service.ErrInvalidRequest):
			return failure(c, fiber.StatusBadRequest, "invalid request")
		case errors.Is(err, service.ErrSignerUnavailable):
			return failure(c, fiber.StatusServiceUnavailable, "voucher signing unavailable")
		}
		return internalError(c, err, "failed to issue voucher")
	}

	return success(c, fiber.StatusOK, v)
}

// ConfirmMint handles POST /api/nft/minted/:tokenId requests.
func (h *VoucherHandler) ConfirmMint(c *fiber.Ctx) error {
	tokenID, ok := tokenIDParam(c)
	if !ok {
		return failure(c, fiber.StatusBadRequest, "invalid request: tokenId must be a positive integer")
	}

	var req model.MintedRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return failure(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	rec, err := h.service.ConfirmMint(c.Context(), tokenID, req.Owner, req.TransactionHash)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNFTNotFound):
			return failure(c, fiber.StatusNotFound, "nft not found")
		case errors.Is(err, service.ErrAlreadyMinted):
			return failure(c, fiber.StatusConflict, "nft already minted")
		case errors.Is(err, service.ErrInvalidRequest):
			return failure(c, fiber.StatusBadRequest, "invalid request")
		}
		return internalError(c, err, "failed to record mint")
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Uint64("token_id", rec.TokenID).
		Str("owner", rec.Owner).
		Msg("mint recorded")

	return success(c, fiber.StatusOK, fiber.Map{
		"tokenId":         rec.TokenID,
		"owner":           rec.Owner,
		"transactionHash": rec.TransactionHash,
		"minted":          true,
		"mintedAt":        rec.MintedAt,
	})
}

// VerifyVoucher handles POST /api/nft/verify requests.
func (h *VoucherHandler) VerifyVoucher(c *fiber.Ctx) error {
	var v voucher.Voucher
	if err := c.BodyParser(&v); err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid voucher body")
	}

	resp, err := h.service.VerifyVoucher(c.Context(), v)
	if err != nil {
		if errors.Is(err, service.ErrSignerUnavailable) {
			return failure(c, fiber.StatusServiceUnavailable, "voucher signing unavailable")
		}
		return internalError(c, err, "failed to verify voucher")
	}

	return success(c, fiber.StatusOK, resp)
}
