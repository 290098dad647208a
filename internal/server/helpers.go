package server

import (
	"errors"
	"log/slog"

	"islandmarket/internal/middleware"
	"islandmarket/internal/models"
	"islandmarket/internal/service"
	"islandmarket/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps an error to the HTTP status the sidecar answers with.
func statusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	if errors.Is(err, service.ErrNoRepository) {
		return fiber.StatusServiceUnavailable
	}

	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeMapping, models.CodeGuardAmbiguity:
		return fiber.StatusUnprocessableEntity
	case models.CodeClassifierError:
		return fiber.StatusBadGateway
	case models.CodeRateLimited:
		return fiber.StatusTooManyRequests
	}
	return fiber.StatusInternalServerError
}

// respondWithError writes err as an ErrorResponse. Server-side failures are
// logged; caller mistakes are not.
func respondWithError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}

// errorHandler renders errors returned by handlers and fiber itself.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	return respondWithError(c, err)
}

// parseBody decodes the JSON request body into out and checks its
// validate tags.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return validation.Struct(out)
}

// userParam reads the :id route user and tags the request context with it.
func userParam(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if id == "" {
		return "", models.NewValidationError("Invalid user ID")
	}
	middleware.WithUserID(c, id)
	return id, nil
}
