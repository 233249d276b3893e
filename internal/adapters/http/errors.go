package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/chargemap/internal/core/domain"
	"github.com/samirrijal/chargemap/internal/pkg/geospatial"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, invalid_coordinate, invalid_viewport, not_found, internal_error
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errServiceUnavailable returns a 503 error.
func errServiceUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, "unavailable", msg)
}

// serviceError maps a service error onto an HTTP response.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, geospatial.ErrInvalidCoordinate):
		return newError(c, fiber.StatusBadRequest, "invalid_coordinate", err.Error())
	case errors.Is(err, geospatial.ErrInvalidViewport):
		return newError(c, fiber.StatusBadRequest, "invalid_viewport", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return newError(c, fiber.StatusNotFound, "not_found", err.Error())
	default:
		LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
		return newError(c, fiber.StatusInternalServerError, "internal_error", "internal server error")
	}
}
