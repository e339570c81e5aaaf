package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/credifiscal-api/internal/application/dto"
	"github.com/jhoicas/credifiscal-api/internal/domain"
)

// respondError traduce errores de dominio a respuestas HTTP uniformes.
// La jerarquía de errores (Unwrap a los centinelas) permite mapear por tipo
// conservando el detalle para el cliente.
func respondError(c *fiber.Ctx, err error) error {
	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: valErr.Detail})
	}
	var stateErr *domain.InvalidStateError
	if errors.As(err, &stateErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: stateErr.Detail})
	}
	var preErr *domain.PreconditionError
	if errors.As(err, &preErr) {
		return c.Status(fiber.StatusPreconditionFailed).JSON(dto.ErrorResponse{
			Code:         "PRECONDITION_FAILED",
			Message:      preErr.Detail,
			MissingRoles: preErr.MissingRoles,
		})
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el rol no puede ejecutar esta operación"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: "la acción ya no está disponible en el estado actual"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto con el estado actual"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
