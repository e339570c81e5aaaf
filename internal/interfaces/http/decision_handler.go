package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/credifiscal-api/internal/application/decision"
	"github.com/jhoicas/credifiscal-api/internal/application/dto"
	"github.com/jhoicas/credifiscal-api/internal/application/request"
	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
	"github.com/jhoicas/credifiscal-api/pkg/metrics"
)

// DecisionHandler maneja las decisiones de los organismos sobre una solicitud.
type DecisionHandler struct {
	submitUC *decision.SubmitDecisionUseCase
	queryUC  *request.RequestQueryUseCase
}

// NewDecisionHandler construye el handler.
func NewDecisionHandler(submitUC *decision.SubmitDecisionUseCase, queryUC *request.RequestQueryUseCase) *DecisionHandler {
	return &DecisionHandler{submitUC: submitUC, queryUC: queryUC}
}

// Submit registra la decisión del organismo del usuario autenticado.
// El rol sale del token, nunca del cuerpo: un organismo no puede decidir por otro.
// POST /api/requests/:id/decisions
func (h *DecisionHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitDecisionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.submitUC.Submit(c.Context(), c.Params("id"), GetUserID(c), GetRole(c), in)
	if err != nil {
		return respondError(c, err)
	}
	metrics.DecisionsSubmitted.WithLabelValues(resp.Role, resp.Kind).Inc()
	if resp.IsFinal {
		outcome := string(entity.StatusAdoptada)
		if resp.Kind == string(entity.KindRechazo) {
			outcome = string(entity.StatusRechazada)
		}
		metrics.FinalOutcomes.WithLabelValues(outcome).Inc()
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List devuelve las decisiones de la solicitud (vigentes e historial).
// GET /api/requests/:id/decisions
func (h *DecisionHandler) List(c *fiber.Ctx) error {
	resp, err := h.queryUC.ListDecisions(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
