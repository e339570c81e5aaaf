package request

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/credifiscal-api/internal/application/dto"
	"github.com/jhoicas/credifiscal-api/internal/domain"
	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
	"github.com/jhoicas/credifiscal-api/internal/domain/fiscal"
	"github.com/jhoicas/credifiscal-api/internal/domain/repository"
	"github.com/jhoicas/credifiscal-api/internal/domain/workflow"
)

// CreateRequestUseCase presentación de solicitudes y edición del modelo fiscal
// previa al congelamiento.
type CreateRequestUseCase struct {
	txRunner TxRunner
	reqRepo  repository.CorrectionRequestRepository
}

// NewCreateRequestUseCase construye el caso de uso.
func NewCreateRequestUseCase(txRunner TxRunner, reqRepo repository.CorrectionRequestRepository) *CreateRequestUseCase {
	return &CreateRequestUseCase{txRunner: txRunner, reqRepo: reqRepo}
}

// Create registra una solicitud de corrección en estado RECIBIDA: valida los
// inputs, recalcula líneas y modelo interno, y persiste todo atómicamente.
func (uc *CreateRequestUseCase) Create(ctx context.Context, userID string, in dto.CreateRequestRequest) (*dto.RequestResponse, error) {
	if in.EntityID == "" {
		return nil, domain.NewValidationError("entidad solicitante requerida")
	}
	if in.AuthorityID == "" {
		return nil, domain.NewValidationError("autoridad patrocinadora requerida")
	}
	if err := validateLines(in.Lines); err != nil {
		return nil, err
	}
	if err := validateDomestic(in.Domestic); err != nil {
		return nil, err
	}

	lines, domestic, summary := fiscal.RecalcAll(linesFromInput(in.Lines), domesticFromInput(in.Domestic))

	now := time.Now()
	req := &entity.CorrectionRequest{
		ID:            uuid.New().String(),
		Reference:     fmt.Sprintf("SC-%d-%d", now.Year(), now.Unix()),
		EntityID:      in.EntityID,
		AuthorityID:   in.AuthorityID,
		ProjectID:     in.ProjectID,
		Admissibility: entity.StatusRecibida,
		Domestic:      domestic,
		SubmittedAt:   now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	lineEntities := make([]*entity.ImportLine, len(lines))
	for i := range lines {
		lines[i].ID = uuid.New().String()
		lines[i].RequestID = req.ID
		lineEntities[i] = &lines[i]
	}
	dqe := dqeFromInput(in.Dqe)
	dqeEntities := make([]*entity.DqeLine, len(dqe))
	for i := range dqe {
		dqe[i] = fiscal.RecalcDqeLine(dqe[i])
		dqe[i].ID = uuid.New().String()
		dqe[i].RequestID = req.ID
		dqeEntities[i] = &dqe[i]
	}

	err := uc.txRunner.RunRequest(ctx, func(reqRepo repository.CorrectionRequestRepository, _ repository.DecisionRepository) error {
		return reqRepo.Create(req, lineEntities, dqeEntities)
	})
	if err != nil {
		return nil, err
	}

	resp := buildRequestResponse(req, lines, dqe, domestic, summary, nil, nil)
	return resp, nil
}

// UpdateFiscalModel reemplaza líneas de importación y modelo interno mientras
// la solicitud siga editable. Tras el congelamiento (primera decisión) la
// operación falla con InvalidStateError: los valores que determinan el crédito
// quedan de solo lectura para el solicitante.
func (uc *CreateRequestUseCase) UpdateFiscalModel(ctx context.Context, requestID string, in dto.UpdateFiscalRequest) (*dto.RequestResponse, error) {
	if err := validateLines(in.Lines); err != nil {
		return nil, err
	}
	if err := validateDomestic(in.Domestic); err != nil {
		return nil, err
	}

	lines, domestic, summary := fiscal.RecalcAll(linesFromInput(in.Lines), domesticFromInput(in.Domestic))

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
		if req.FiscalFrozen {
			return domain.NewInvalidStateError("el modelo fiscal de %s está congelado", req.Reference)
		}
		decisions, err := decRepo.GetCurrent(requestID)
		if err != nil {
			return err
		}
		if status := workflow.Derive(req, decisions); !status.IsOpen() {
			return domain.NewInvalidStateError("la solicitud %s está cerrada", req.Reference)
		}

		lineEntities := make([]*entity.ImportLine, len(lines))
		for i := range lines {
			lines[i].ID = uuid.New().String()
			lines[i].RequestID = requestID
			lineEntities[i] = &lines[i]
		}
		req.Domestic = domestic
		req.UpdatedAt = time.Now()
		return reqRepo.ReplaceFiscalModel(requestID, lineEntities, domestic)
	})
	if err != nil {
		return nil, err
	}

	return buildRequestResponse(req, lines, nil, domestic, summary, nil, nil), nil
}

// buildRequestResponse arma el detalle. Status rederivado por el caller cuando
// hay decisiones; aquí se usa la fase de admisibilidad si no se pasan.
func buildRequestResponse(
	req *entity.CorrectionRequest,
	lines []entity.ImportLine,
	dqe []entity.DqeLine,
	domestic entity.DomesticTaxModel,
	summary entity.CreditSummary,
	decisions []*entity.Decision,
	slots []*entity.DocumentSlot,
) *dto.RequestResponse {
	resp := &dto.RequestResponse{
		ID:              req.ID,
		Reference:       req.Reference,
		EntityID:        req.EntityID,
		AuthorityID:     req.AuthorityID,
		ProjectID:       req.ProjectID,
		Status:          string(workflow.Derive(req, decisions)),
		RejectionReason: req.RejectionReason,
		FiscalFrozen:    req.FiscalFrozen,
		SubmittedAt:     req.SubmittedAt.Format(time.RFC3339),
		Lines:           linesToResponse(lines),
		Dqe:             dqeToResponse(dqe),
		Domestic:        domesticToResponse(domestic),
		Credit:          creditToResponse(summary),
		ActeDigest:      req.ActeDigest,
	}
	for _, d := range decisions {
		resp.Decisions = append(resp.Decisions, decisionToResponse(d))
	}
	for _, s := range slots {
		slot := dto.DocumentSlotResponse{DocType: s.DocType}
		for _, v := range s.Versions {
			slot.Versions = append(slot.Versions, dto.DocumentVersionResponse{
				ID:         v.ID,
				DocType:    v.DocType,
				Version:    v.Version,
				Filename:   v.Filename,
				StorageRef: v.StorageRef,
				UploadedBy: v.UploadedBy,
				UploadedAt: v.UploadedAt.Format(time.RFC3339),
				Active:     v.Active,
			})
		}
		resp.Documents = append(resp.Documents, slot)
	}
	return resp
}
