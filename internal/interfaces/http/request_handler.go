package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/credifiscal-api/internal/application/dto"
	"github.com/jhoicas/credifiscal-api/internal/application/request"
	"github.com/jhoicas/credifiscal-api/pkg/metrics"
)

// RequestHandler maneja las peticiones HTTP del expediente de corrección.
type RequestHandler struct {
	createUC *request.CreateRequestUseCase
	queryUC  *request.RequestQueryUseCase
	admisUC  *request.AdmissibilityUseCase
}

// NewRequestHandler construye el handler.
func NewRequestHandler(
	createUC *request.CreateRequestUseCase,
	queryUC *request.RequestQueryUseCase,
	admisUC *request.AdmissibilityUseCase,
) *RequestHandler {
	return &RequestHandler{createUC: createUC, queryUC: queryUC, admisUC: admisUC}
}

// Create registra una solicitud de corrección con su modelo fiscal inicial.
// POST /api/requests
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	var in dto.CreateRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.EntityID == "" {
		in.EntityID = GetEntityID(c)
	}
	resp, err := h.createUC.Create(c.Context(), userID, in)
	if err != nil {
		return respondError(c, err)
	}
	metrics.RequestsCreated.Inc()
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetByID obtiene el expediente completo: modelo fiscal, crédito, decisiones y estado.
// GET /api/requests/:id
func (h *RequestHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.queryUC.GetRequest(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// List enumera solicitudes con filtros opcionales por entidad y estado.
// GET /api/requests?entity_id=&status=&limit=&offset=
func (h *RequestHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	resp, err := h.queryUC.List(c.Context(), c.Query("entity_id"), c.Query("status"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// GetStatus devuelve el estado derivado de la solicitud y las visas faltantes.
// GET /api/requests/:id/status
func (h *RequestHandler) GetStatus(c *fiber.Ctx) error {
	resp, err := h.queryUC.GetStatus(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// GetCredit devuelve el resumen de crédito fiscal calculado.
// GET /api/requests/:id/credit
func (h *RequestHandler) GetCredit(c *fiber.Ctx) error {
	resp, err := h.queryUC.GetCreditSummary(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// UpdateFiscal reemplaza el modelo fiscal mientras la solicitud no esté congelada.
// PUT /api/requests/:id/fiscal
func (h *RequestHandler) UpdateFiscal(c *fiber.Ctx) error {
	var in dto.UpdateFiscalRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.createUC.UpdateFiscalModel(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// DeclareAdmissibility registra el resultado del examen de admisibilidad (SECRETARIA).
// POST /api/requests/:id/admissibility
func (h *RequestHandler) DeclareAdmissibility(c *fiber.Ctx) error {
	var in dto.DeclareAdmissibilityRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.admisUC.Declare(c.Context(), c.Params("id"), GetRole(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// MarkNotified marca una solicitud cerrada como notificada al solicitante.
// POST /api/requests/:id/notify
func (h *RequestHandler) MarkNotified(c *fiber.Ctx) error {
	resp, err := h.admisUC.MarkNotified(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// GetActe devuelve el acte XML de la decisión final.
// GET /api/requests/:id/acte
func (h *RequestHandler) GetActe(c *fiber.Ctx) error {
	xmlBytes, err := h.queryUC.GetActe(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.Send(xmlBytes)
}

// GetActePDF devuelve la representación gráfica del acte.
// GET /api/requests/:id/acte/pdf
func (h *RequestHandler) GetActePDF(c *fiber.Ctx) error {
	pdfBytes, err := h.queryUC.GetActePDF(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdfBytes)
}
