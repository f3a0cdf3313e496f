package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/lazymint/internal/model"
	"github.com/fairyhunter13/lazymint/internal/service"
)

// NFTServiceInterface defines the interface for catalog queries.
type NFTServiceInterface interface {
	List(ctx context.Context, q model.ListNFTsQuery) (*model.NFTList, error)
	GetByTokenID(ctx context.Context, tokenID uint64) (*model.NFTResponse, error)
	ListByOwner(ctx context.Context, owner string) ([]model.NFTResponse, error)
	Stats(ctx context.Context) (*model.CollectionStats, error)
}

// NFTHandler handles HTTP requests for the catalog.
type NFTHandler struct {
	service   NFTServiceInterface
	validator *validator.Validate
}

// NewNFTHandler creates a new NFTHandler with the given service and validator.
func NewNFTHandler(svc NFTServiceInterface, v *validator.Validate) *NFTHandler {
	return &NFTHandler{service: svc, validator: v}
}

// ListNFTs handles GET /api/nft?minted=&limit=&offset= requests.
func (h *NFTHandler) ListNFTs(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid request: "+err.Error())
	}
	if err := h.validator.Struct(q); err != nil {
		return failure(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	list, err := h.service.List(c.Context(), q)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return failure(c, fiber.StatusBadRequest, "invalid request")
		}
		return internalError(c, err, "failed to list nfts")
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       list.Data,
		"pagination": list.Pagination,
	})
}

// parseListQuery reads the listing filters. Unlike c.QueryInt it rejects
// malformed numbers instead of silently using the default.
func parseListQuery(c *fiber.Ctx) (model.ListNFTsQuery, error) {
	var q model.ListNFTsQuery

	if raw := c.Query("minted"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return q, errors.New("minted must be true or false")
		}
		q.Minted = &b
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, errors.New("limit must be an integer")
		}
		q.Limit = n
	}
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, errors.New("offset must be an integer")
		}
		q.Offset = n
	}
	return q, nil
}

// GetNFT handles GET /api/nft/:tokenId requests.
func (h *NFTHandler) GetNFT(c *fiber.Ctx) error {
	tokenID, ok := tokenIDParam(c)
	if !ok {
		return failure(c, fiber.StatusBadRequest, "invalid request: tokenId must be a positive integer")
	}

	nft, err := h.service.GetByTokenID(c.Context(), tokenID)
	if err != nil {
		if errors.Is(err, service.ErrNFTNotFound) {
			return failure(c, fiber.StatusNotFound, "nft not found")
		}
		return internalError(c, err, "failed to get nft")
	}

	return success(c, fiber.StatusOK, nft)
}

// ListByOwner handles GET /api/nft/owner/:address requests.
func (h *NFTHandler) ListByOwner(c *fiber.Ctx) error {
	address := c.Params("address")
	if err := h.validator.Var(address, "required,ethaddr"); err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid request: address must be a hex address")
	}

	nfts, err := h.service.ListByOwner(c.Context(), address)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return failure(c, fiber.StatusBadRequest, "invalid request")
		}
		return internalError(c, err, "failed to list nfts by owner")
	}

	return success(c, fiber.StatusOK, nfts)
}

// Stats handles GET /api/nft/stats/collection requests.
func (h *NFTHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return internalError(c, err, "failed to compute collection stats")
	}
	return success(c, fiber.StatusOK, stats)
}
