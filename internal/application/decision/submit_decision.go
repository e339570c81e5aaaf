package decision

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/credifiscal-api/internal/application/dto"
	"github.com/jhoicas/credifiscal-api/internal/application/ports"
	"github.com/jhoicas/credifiscal-api/internal/domain"
	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
	"github.com/jhoicas/credifiscal-api/internal/domain/fiscal"
	"github.com/jhoicas/credifiscal-api/internal/domain/repository"
	"github.com/jhoicas/credifiscal-api/internal/domain/workflow"
)

// SubmitDecisionUseCase emisión de decisiones de organismo: registra en el
// libro, congela el modelo fiscal con la primera decisión, aplica la compuerta
// de decisión final y genera el acte al cierre. Todo en una transacción.
type SubmitDecisionUseCase struct {
	txRunner TxRunner
	acteGen  ActeGenerator
	notifier ports.Notifier
}

// NewSubmitDecisionUseCase construye el caso de uso.
func NewSubmitDecisionUseCase(txRunner TxRunner, acteGen ActeGenerator, notifier ports.Notifier) *SubmitDecisionUseCase {
	return &SubmitDecisionUseCase{txRunner: txRunner, acteGen: acteGen, notifier: notifier}
}

// Submit emite la decisión del rol sobre la solicitud.
//
// Reglas (todas verificadas bajo el bloqueo de fila de la solicitud):
//   - RECHAZO exige motivo (ValidationError).
//   - Solicitud cerrada: toda emisión posterior falla (InvalidStateError).
//   - No final: solo organismos obligatorios; reemplaza la vigente del mismo
//     rol (último gana por timestamp de emisión, no por orden de llegada).
//   - Final: solo roles habilitados (TESORO, PRESIDENCIA); la adopción exige
//     visado vigente de los cuatro organismos (PreconditionError con los
//     faltantes); el rechazo final solo exige motivo.
//   - La primera decisión congela el modelo fiscal en la misma transacción.
func (uc *SubmitDecisionUseCase) Submit(ctx context.Context, requestID, actingUser string, role entity.OrganismRole, in dto.SubmitDecisionRequest) (*dto.DecisionResponse, error) {
	kind := entity.DecisionKind(in.Kind)

	var req *entity.CorrectionRequest
	var dec *entity.Decision
	var newStatus entity.RequestStatus

	err := uc.txRunner.RunDecision(ctx, func(reqRepo repository.CorrectionRequestRepository, decRepo repository.DecisionRepository) error {
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
		if err := workflow.CheckSubmission(req, decisions, role, kind, in.Motive, in.IsFinal); err != nil {
			return err
		}

		now := time.Now()
		dec = &entity.Decision{
			ID:         uuid.New().String(),
			RequestID:  requestID,
			Role:       role,
			Kind:       kind,
			Motive:     in.Motive,
			ActingUser: actingUser,
			DecidedAt:  now,
			IsFinal:    in.IsFinal,
			IsCurrent:  true,
		}

		// Congelamiento atómico con la primera decisión: cierra la carrera con
		// una edición tardía del solicitante.
		if !req.FiscalFrozen {
			if err := reqRepo.Freeze(requestID); err != nil {
				return err
			}
			req.FiscalFrozen = true
		}

		// Reemplazo por rol: último gana por timestamp de emisión. Si la vigente
		// es posterior a la nueva, la nueva se guarda solo como historial. La
		// decisión final es la excepción: cierra el expediente de forma
		// irrevocable y queda vigente sin importar el timestamp de la vigente.
		existing, err := decRepo.GetCurrentByRole(requestID, role)
		if err != nil {
			return err
		}
		if existing != nil && !in.IsFinal && existing.DecidedAt.After(now) {
			dec.IsCurrent = false
		} else if existing != nil {
			if err := decRepo.Supersede(requestID, role); err != nil {
				return err
			}
		}
		if err := decRepo.Create(dec); err != nil {
			return err
		}

		// Rederivar con el conjunto actualizado.
		updated, err := decRepo.GetCurrent(requestID)
		if err != nil {
			return err
		}
		newStatus = workflow.Derive(req, updated)

		if in.IsFinal {
			return uc.closeRequest(reqRepo, req, dec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Despacho fire-and-forget tras el commit; el adaptador registra fallos.
	_ = uc.notifier.NotifyStatusChange(ctx, ports.NotificationEvent{
		RequestID:      req.ID,
		Reference:      req.Reference,
		NewStatus:      newStatus,
		AffectedUserID: req.EntityID,
	})

	return &dto.DecisionResponse{
		ID:         dec.ID,
		RequestID:  dec.RequestID,
		Role:       string(dec.Role),
		Kind:       string(dec.Kind),
		Motive:     dec.Motive,
		ActingUser: dec.ActingUser,
		DecidedAt:  dec.DecidedAt.Format(time.RFC3339),
		IsFinal:    dec.IsFinal,
		IsCurrent:  dec.IsCurrent,
		NewStatus:  string(newStatus),
	}, nil
}

// closeRequest materializa el desenlace final: motivo de rechazo y acte
// (XML + digest canónico) calculado sobre el crédito recalculado.
func (uc *SubmitDecisionUseCase) closeRequest(reqRepo repository.CorrectionRequestRepository, req *entity.CorrectionRequest, final *entity.Decision) error {
	stored, err := reqRepo.GetImportLines(req.ID)
	if err != nil {
		return err
	}
	lines := make([]entity.ImportLine, len(stored))
	for i, l := range stored {
		lines[i] = *l
	}
	lines, _, summary := fiscal.RecalcAll(lines, req.Domestic)

	acteXML, digest, err := uc.acteGen.Build(req, final, lines, summary)
	if err != nil {
		return err
	}
	req.ActeXML = string(acteXML)
	req.ActeDigest = digest
	rejection := ""
	if final.Kind == entity.KindRechazo {
		rejection = final.Motive
	}
	req.RejectionReason = rejection
	return reqRepo.SetFinalOutcome(req.ID, rejection, req.ActeXML, digest)
}
