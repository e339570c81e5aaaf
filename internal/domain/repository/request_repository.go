package repository

import "github.com/jhoicas/credifiscal-api/internal/domain/entity"

// CorrectionRequestRepository puerto de persistencia de la solicitud y su modelo fiscal.
type CorrectionRequestRepository interface {
	// Create persiste la solicitud con sus líneas de importación y DQE.
	Create(req *entity.CorrectionRequest, lines []*entity.ImportLine, dqe []*entity.DqeLine) error
	GetByID(id string) (*entity.CorrectionRequest, error)
	// GetForUpdate obtiene la solicitud con bloqueo de fila (SELECT ... FOR UPDATE).
	// Solo tiene sentido dentro de una transacción: serializa decisiones y
	// subidas concurrentes sobre la misma solicitud.
	GetForUpdate(id string) (*entity.CorrectionRequest, error)
	List(entityID string, status string, limit, offset int) ([]*entity.CorrectionRequest, error)

	GetImportLines(requestID string) ([]*entity.ImportLine, error)
	GetDqeLines(requestID string) ([]*entity.DqeLine, error)
	// ReplaceFiscalModel sustituye líneas de importación y modelo interno
	// (solo válido antes del congelamiento; el caso de uso lo garantiza).
	ReplaceFiscalModel(requestID string, lines []*entity.ImportLine, domestic entity.DomesticTaxModel) error

	// Freeze congela el modelo fiscal. Se invoca en la misma transacción que
	// la primera decisión para cerrar la carrera con una edición tardía.
	Freeze(requestID string) error
	SetAdmissibility(requestID string, phase entity.RequestStatus, detail string) error
	// SetFinalOutcome guarda el motivo de rechazo y el acte de la decisión final.
	SetFinalOutcome(requestID, rejectionReason, acteXML, acteDigest string) error
	MarkNotified(requestID string) error
}
