package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Pinger is an interface for health check ping operations.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	pool          Pinger
	signerAddress string
	chainEnabled  bool
}

// NewHealthHandler creates a new HealthHandler with the given database pool.
// signerAddress is empty when voucher signing is not configured.
func NewHealthHandler(pool Pinger, signerAddress string, chainEnabled bool) *HealthHandler {
	return &HealthHandler{pool: pool, signerAddress: signerAddress, chainEnabled: chainEnabled}
}

// Check performs a health check by pinging the database.
// Returns 200 OK with {"status": "healthy"} when database is reachable.
// Returns 503 Service Unavailable with {"status": "unhealthy", "error": "..."} when database is unreachable.
// A missing signer degrades the service but does not fail the check.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.pool.Ping(c.Context()); err != nil {
		log.Error().Err(err).Msg("health check failed: database unreachable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  "database connection failed",
		})
	}

	status := "healthy"
	if h.signerAddress == "" {
		status = "degraded"
	}
	return c.JSON(fiber.Map{
		"status":        status,
		"signerAddress": h.signerAddress,
		"chain":         h.chainEnabled,
	})
}
