package document

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/credifiscal-api/internal/application/dto"
	"github.com/jhoicas/credifiscal-api/internal/domain"
	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
	"github.com/jhoicas/credifiscal-api/internal/domain/repository"
	"github.com/jhoicas/credifiscal-api/internal/domain/workflow"
)

// UploadUseCase almacén de versiones documentales: versionado aditivo con
// historial permanente y una sola versión activa por slot.
type UploadUseCase struct {
	txRunner TxRunner
	docRepo  repository.DocumentRepository
	reqRepo  repository.CorrectionRequestRepository
}

// NewUploadUseCase construye el caso de uso.
func NewUploadUseCase(txRunner TxRunner, docRepo repository.DocumentRepository, reqRepo repository.CorrectionRequestRepository) *UploadUseCase {
	return &UploadUseCase{txRunner: txRunner, docRepo: docRepo, reqRepo: reqRepo}
}

// Upload agrega una versión al slot: número = máx(existentes)+1, la nueva queda
// activa y las hermanas inactivas. Nunca falla por existir versión previa.
//
// Reglas de acceso: el solicitante solo sube mientras la solicitud está en
// RECIBIDA o INCOMPLETA (tras el congelamiento solo los revisores adjuntan
// documentos de corrección); los roles de la comisión, en cualquier estado
// abierto. Una subida del solicitante sobre una solicitud INCOMPLETA la
// devuelve a RECIBIDA para un nuevo dictamen.
func (uc *UploadUseCase) Upload(ctx context.Context, requestID, docType, userID string, role entity.OrganismRole, in dto.UploadDocumentRequest) (*dto.DocumentVersionResponse, error) {
	if docType == "" {
		return nil, domain.NewValidationError("tipo de documento requerido")
	}
	if in.Filename == "" || in.StorageRef == "" {
		return nil, domain.NewValidationError("filename y storage_ref requeridos")
	}

	var version *entity.DocumentVersion
	err := uc.txRunner.RunDocument(ctx, func(
		reqRepo repository.CorrectionRequestRepository,
		decRepo repository.DecisionRepository,
		docRepo repository.DocumentRepository,
	) error {
		req, err := reqRepo.GetForUpdate(requestID)
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
		if !status.IsOpen() {
			return domain.NewInvalidStateError("la solicitud %s está cerrada", req.Reference)
		}
		if role == entity.RoleSolicitante && status != entity.StatusRecibida && status != entity.StatusIncompleta {
			return domain.NewInvalidStateError("el solicitante ya no puede adjuntar documentos en estado %s", status)
		}

		max, err := docRepo.MaxVersion(requestID, docType)
		if err != nil {
			return err
		}
		if err := docRepo.DeactivateAll(requestID, docType); err != nil {
			return err
		}
		version = &entity.DocumentVersion{
			ID:         uuid.New().String(),
			RequestID:  requestID,
			DocType:    docType,
			Version:    max + 1,
			Filename:   in.Filename,
			StorageRef: in.StorageRef,
			UploadedBy: userID,
			UploadedAt: time.Now(),
			Active:     true,
		}
		if err := docRepo.Create(version); err != nil {
			return err
		}

		// Documento corregido por el solicitante: vuelve a RECIBIDA para redictaminar.
		if role == entity.RoleSolicitante && status == entity.StatusIncompleta {
			return reqRepo.SetAdmissibility(requestID, entity.StatusRecibida, "")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toVersionResponse(version)
	return &resp, nil
}

// ListVersions historial completo del slot, ordenado por versión ascendente.
func (uc *UploadUseCase) ListVersions(ctx context.Context, requestID, docType string) ([]dto.DocumentVersionResponse, error) {
	req, err := uc.reqRepo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	versions, err := uc.docRepo.ListVersions(requestID, docType)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DocumentVersionResponse, 0, len(versions))
	for _, v := range versions {
		out = append(out, toVersionResponse(v))
	}
	return out, nil
}

// ListSlots devuelve los slots documentales de la solicitud con su historial.
func (uc *UploadUseCase) ListSlots(ctx context.Context, requestID string) ([]dto.DocumentSlotResponse, error) {
	req, err := uc.reqRepo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	slots, err := uc.docRepo.ListSlots(requestID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DocumentSlotResponse, 0, len(slots))
	for _, s := range slots {
		versions := make([]dto.DocumentVersionResponse, 0, len(s.Versions))
		for _, v := range s.Versions {
			versions = append(versions, toVersionResponse(v))
		}
		out = append(out, dto.DocumentSlotResponse{DocType: s.DocType, Versions: versions})
	}
	return out, nil
}

func toVersionResponse(v *entity.DocumentVersion) dto.DocumentVersionResponse {
	return dto.DocumentVersionResponse{
		ID:         v.ID,
		DocType:    v.DocType,
		Version:    v.Version,
		Filename:   v.Filename,
		StorageRef: v.StorageRef,
		UploadedBy: v.UploadedBy,
		UploadedAt: v.UploadedAt.Format(time.RFC3339),
		Active:     v.Active,
	}
}
