package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// success writes the {"success": true, "data": ...} envelope.
func success(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"success": true, "data": data})
}

// failure writes the {"success": false, "error": ...} envelope.
func failure(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

// internalError logs err with request context and hides it from the client.
func internalError(c *fiber.Ctx, err error, msg string) error {
	log.Error().
		Err(err).
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg(msg)
	return failure(c, fiber.StatusInternalServerError, "internal server error")
}

// tokenIDParam parses a positive :tokenId route parameter.
// Ids are capped at MaxInt64, the range of the BIGINT token columns.
func tokenIDParam(c *fiber.Ctx) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params("tokenId"), 10, 63)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// formatValidationError converts validator errors to client-facing messages.
// Provides defensive handling for unknown fields with descriptive fallback messages.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := fe.Field()
			tag := fe.Tag()

			switch field {
			case "Buyer", "Owner":
				name := "buyer"
				if field == "Owner" {
					name = "owner"
				}
				if tag == "required" {
					return "invalid request: " + name + " is required"
				}
				if tag == "ethaddr" {
					return "invalid request: " + name + " must be a hex address"
				}
				return "invalid request: " + name + " is invalid"
			case "TransactionHash":
				if tag == "required" {
					return "invalid request: transactionHash is required"
				}
				return "invalid request: transactionHash must be a 0x-prefixed 32-byte hash"
			case "TokenID":
				return "invalid request: tokenId must be a positive integer"
			case "Currency":
				if tag == "max" {
					return "invalid request: currency exceeds maximum length of 10"
				}
				return "invalid request: currency is required"
			case "PaymentID":
				if tag == "required" {
					return "invalid request: paymentId is required"
				}
				return "invalid request: paymentId must be a uuid"
			case "Status":
				return "invalid request: status must be one of confirmed, failed, expired"
			case "Limit":
				return "invalid request: limit must be between 0 and 500"
			case "Offset":
				return "invalid request: offset must not be negative"
			default:
				// Defensive: handle unknown fields with descriptive message
				if tag == "required" {
					return "invalid request: " + field + " is required"
				}
				return "invalid request: " + field + " is invalid"
			}
		}
	}
	return "invalid request"
}
