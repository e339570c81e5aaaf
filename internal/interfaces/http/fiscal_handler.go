package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/credifiscal-api/internal/application/dto"
	"github.com/jhoicas/credifiscal-api/internal/application/request"
)

// FiscalHandler expone el motor de cálculo fiscal sin persistir nada.
// Permite a las entidades previsualizar derechos, IVA y crédito antes de
// registrar la solicitud.
type FiscalHandler struct {
	queryUC *request.RequestQueryUseCase
}

// NewFiscalHandler construye el handler.
func NewFiscalHandler(queryUC *request.RequestQueryUseCase) *FiscalHandler {
	return &FiscalHandler{queryUC: queryUC}
}

// Recalculate recalcula el modelo fiscal recibido y devuelve los derivados.
// POST /api/fiscal/recalculate
func (h *FiscalHandler) Recalculate(c *fiber.Ctx) error {
	var in dto.RecalculateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.queryUC.Recalculate(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
