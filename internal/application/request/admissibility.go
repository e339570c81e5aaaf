package request

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/credifiscal-api/internal/application/dto"
	"github.com/jhoicas/credifiscal-api/internal/application/ports"
	"github.com/jhoicas/credifiscal-api/internal/domain"
	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
	"github.com/jhoicas/credifiscal-api/internal/domain/repository"
	"github.com/jhoicas/credifiscal-api/internal/domain/workflow"
)

// AdmissibilityUseCase dictamen de admisibilidad de la secretaría y
// contabilidad de notificación posterior al cierre.
type AdmissibilityUseCase struct {
	txRunner TxRunner
	notifier ports.Notifier
}

// NewAdmissibilityUseCase construye el caso de uso.
func NewAdmissibilityUseCase(txRunner TxRunner, notifier ports.Notifier) *AdmissibilityUseCase {
	return &AdmissibilityUseCase{txRunner: txRunner, notifier: notifier}
}

// Declare dictamina la admisibilidad: RECIBIDA -> ADMISIBLE o INCOMPLETA (con
// los documentos faltantes). Solo la secretaría, y solo mientras ningún
// organismo haya decidido.
func (uc *AdmissibilityUseCase) Declare(ctx context.Context, requestID string, role entity.OrganismRole, in dto.DeclareAdmissibilityRequest) (*dto.StatusResponse, error) {
	if role != entity.RoleSecretaria {
		return nil, domain.ErrForbidden
	}
	if !in.Admissible && len(in.MissingDocs) == 0 {
		return nil, domain.NewValidationError("el dictamen de incompletitud debe enumerar los documentos faltantes")
	}

	var req *entity.CorrectionRequest
	var newStatus entity.RequestStatus
	err := uc.txRunner.RunRequest(ctx, func(reqRepo repository.CorrectionRequestRepository, decRepo repository.DecisionRepository) error {
		var err error
		req, err = reqRepo.GetForUpdate(requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		decisions, err := decRepo.GetCurrent(requestID)
		if err != nil {
			return err
		}
		status := workflow.Derive(req, decisions)
		if status != entity.StatusRecibida && status != entity.StatusIncompleta && status != entity.StatusAdmisible {
			return domain.NewInvalidStateError("la solicitud %s ya está en evaluación", req.Reference)
		}

		detail := ""
		newStatus = entity.StatusAdmisible
		if !in.Admissible {
			newStatus = entity.StatusIncompleta
			detail = strings.Join(in.MissingDocs, ", ")
		}
		req.Admissibility = newStatus
		req.AdmissibilityDetail = detail
		req.UpdatedAt = time.Now()
		return reqRepo.SetAdmissibility(requestID, newStatus, detail)
	})
	if err != nil {
		return nil, err
	}

	// Fire-and-forget: el adaptador registra el fallo de publicación.
	_ = uc.notifier.NotifyStatusChange(ctx, ports.NotificationEvent{
		RequestID:      req.ID,
		Reference:      req.Reference,
		NewStatus:      newStatus,
		AffectedUserID: req.EntityID,
	})

	return &dto.StatusResponse{RequestID: req.ID, Reference: req.Reference, Status: string(newStatus)}, nil
}

// MarkNotified transición de contabilidad posterior al cierre: la capa
// orquestadora confirma que la notificación del desenlace fue entregada.
func (uc *AdmissibilityUseCase) MarkNotified(ctx context.Context, requestID string) (*dto.StatusResponse, error) {
	var req *entity.CorrectionRequest
	err := uc.txRunner.RunRequest(ctx, func(reqRepo repository.CorrectionRequestRepository, decRepo repository.DecisionRepository) error {
		var err error
		req, err = reqRepo.GetForUpdate(requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		decisions, err := decRepo.GetCurrent(requestID)
		if err != nil {
			return err
		}
		if status := workflow.Derive(req, decisions); !status.IsTerminal() && status != entity.StatusNotificada {
			return domain.NewInvalidStateError("solo una solicitud cerrada puede marcarse como notificada")
		}
		req.Notified = true
		return reqRepo.MarkNotified(requestID)
	})
	if err != nil {
		return nil, err
	}
	return &dto.StatusResponse{RequestID: req.ID, Reference: req.Reference, Status: string(entity.StatusNotificada)}, nil
}
