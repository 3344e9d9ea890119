package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cmv-api/internal/application/dto"
	"github.com/jhoicas/cmv-api/internal/domain"
	"github.com/jhoicas/cmv-api/internal/domain/entity"
)

// venueChecker contrato mínimo del middleware; lo implementa repository.VenueRepository.
type venueChecker interface {
	GetSettings(ctx context.Context, venueID int64) (*entity.VenueSettings, error)
}

// RequireVenue verifica que el local del parámetro :venue exista antes de llegar al handler.
//
// Comportamiento:
//   - 400 Bad Request → :venue no es un entero positivo.
//   - 404 Not Found → local inexistente.
//   - 503 Service Unavailable → fallo de infraestructura al consultar la DB.
func RequireVenue(checker venueChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		venueID, err := c.ParamsInt("venue")
		if err != nil || venueID <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code:    "INVALID_VENUE",
				Message: "venue debe ser un entero positivo",
			})
		}
		_, err = checker.GetSettings(c.Context(), int64(venueID))
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Code:    "VENUE_NOT_FOUND",
				Message: "local no encontrado",
			})
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "VENUE_CHECK_FAILED",
				Message: "no se pudo verificar el local, intente más tarde",
			})
		}
		return c.Next()
	}
}
