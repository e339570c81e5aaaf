package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/credifiscal-api/internal/application/document"
	"github.com/jhoicas/credifiscal-api/internal/application/dto"
	"github.com/jhoicas/credifiscal-api/pkg/metrics"
)

// DocumentHandler maneja el expediente documental de la solicitud.
type DocumentHandler struct {
	uploadUC *document.UploadUseCase
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(uploadUC *document.UploadUseCase) *DocumentHandler {
	return &DocumentHandler{uploadUC: uploadUC}
}

// Upload sube una nueva versión al slot documental indicado.
// POST /api/requests/:id/documents/:docType
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	var in dto.UploadDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	docType := c.Params("docType")
	resp, err := h.uploadUC.Upload(c.Context(), c.Params("id"), docType, GetUserID(c), GetRole(c), in)
	if err != nil {
		return respondError(c, err)
	}
	metrics.DocumentUploads.WithLabelValues(docType).Inc()
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListVersions devuelve el historial de versiones de un slot.
// GET /api/requests/:id/documents/:docType
func (h *DocumentHandler) ListVersions(c *fiber.Ctx) error {
	resp, err := h.uploadUC.ListVersions(c.Context(), c.Params("id"), c.Params("docType"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// ListSlots devuelve todos los slots documentales con su historial.
// GET /api/requests/:id/documents
func (h *DocumentHandler) ListSlots(c *fiber.Ctx) error {
	resp, err := h.uploadUC.ListSlots(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
