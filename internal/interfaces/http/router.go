package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/credifiscal-api/internal/application/decision"
	"github.com/jhoicas/credifiscal-api/internal/application/document"
	"github.com/jhoicas/credifiscal-api/internal/application/request"
	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateRequest  *request.CreateRequestUseCase
	RequestQuery   *request.RequestQueryUseCase
	Admissibility  *request.AdmissibilityUseCase
	SubmitDecision *decision.SubmitDecisionUseCase
	DocumentUpload *document.UploadUseCase
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Motor fiscal sin persistencia (público: previsualización de cálculo)
	fiscalHandler := NewFiscalHandler(deps.RequestQuery)
	api.Post("/fiscal/recalculate", fiscalHandler.Recalculate)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	requests := protected.Group("/requests")
	requestHandler := NewRequestHandler(deps.CreateRequest, deps.RequestQuery, deps.Admissibility)
	requests.Post("/", RequireRole(entity.RoleSolicitante, entity.RoleSecretaria), requestHandler.Create)
	requests.Get("/", requestHandler.List)
	requests.Get("/:id", requestHandler.GetByID)
	requests.Get("/:id/status", requestHandler.GetStatus)
	requests.Get("/:id/credit", requestHandler.GetCredit)
	requests.Put("/:id/fiscal", RequireRole(entity.RoleSolicitante, entity.RoleSecretaria), requestHandler.UpdateFiscal)
	requests.Post("/:id/admissibility", RequireRole(entity.RoleSecretaria), requestHandler.DeclareAdmissibility)
	requests.Post("/:id/notify", RequireRole(entity.RoleSecretaria), requestHandler.MarkNotified)
	requests.Get("/:id/acte", requestHandler.GetActe)
	requests.Get("/:id/acte/pdf", requestHandler.GetActePDF)

	// Decisiones de los organismos
	decisionHandler := NewDecisionHandler(deps.SubmitDecision, deps.RequestQuery)
	requests.Post("/:id/decisions", decisionHandler.Submit)
	requests.Get("/:id/decisions", decisionHandler.List)

	// Expediente documental
	documentHandler := NewDocumentHandler(deps.DocumentUpload)
	requests.Get("/:id/documents", documentHandler.ListSlots)
	requests.Post("/:id/documents/:docType", documentHandler.Upload)
	requests.Get("/:id/documents/:docType", documentHandler.ListVersions)
}
