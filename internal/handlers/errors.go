package handlers

import (
	"context"
	"errors"

	"petstore/internal/recommend"
	"petstore/internal/repositories"
	"petstore/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// respondError maps service errors to HTTP responses.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	var (
		stockErr   *services.InsufficientStockError
		storageErr *repositories.StorageError
	)

	switch {
	case errors.Is(err, services.ErrProductNotFound), errors.Is(err, services.ErrNoActiveProducts):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Not found",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrProductNotActive):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Product cannot be sold",
			"error":   err.Error(),
		})
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":   "Insufficient stock",
			"error":     err.Error(),
			"available": stockErr.Available,
		})
	case errors.Is(err, services.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid quantity",
			"error":   err.Error(),
		})
	case errors.Is(err, recommend.ErrDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Recommendations are not configured",
		})
	case errors.Is(err, context.DeadlineExceeded):
		logger.Error("request timed out", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{
			"message": "Request timed out",
		})
	case errors.As(err, &storageErr):
		logger.Error("database error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message":        "Database error",
			"database_error": storageErr.Op,
		})
	case errors.Is(err, recommend.ErrUnknownProduct), errors.Is(err, recommend.ErrMalformedResponse),
		errors.Is(err, recommend.ErrGenerationFailed):
		logger.Error("unusable recommendation", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message":              "Recommendation failed",
			"recommendation_error": err.Error(),
		})
	default:
		logger.Error("unexpected error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal error",
			"error":   err.Error(),
		})
	}
}
