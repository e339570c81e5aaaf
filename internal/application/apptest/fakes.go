// Package apptest provee implementaciones en memoria de los puertos de
// persistencia para los tests de los casos de uso. Sin concurrencia: los
// tests ejercitan la lógica de negocio, no el bloqueo de filas.
package apptest

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"sort"

	"github.com/jhoicas/credifiscal-api/internal/application/ports"
	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
	"github.com/jhoicas/credifiscal-api/internal/domain/repository"
)

// Store estado compartido de los repos en memoria.
type Store struct {
	Requests  map[string]*entity.CorrectionRequest
	Lines     map[string][]*entity.ImportLine
	Dqe       map[string][]*entity.DqeLine
	Decisions []*entity.Decision
	Documents []*entity.DocumentVersion
}

// NewStore construye un Store vacío.
func NewStore() *Store {
	return &Store{
		Requests: make(map[string]*entity.CorrectionRequest),
		Lines:    make(map[string][]*entity.ImportLine),
		Dqe:      make(map[string][]*entity.DqeLine),
	}
}

// Seed registra una solicitud con sus líneas.
func (s *Store) Seed(req *entity.CorrectionRequest, lines ...*entity.ImportLine) {
	s.Requests[req.ID] = req
	s.Lines[req.ID] = lines
}

// ── CorrectionRequestRepository ───────────────────────────────────────────────

type RequestRepo struct{ S *Store }

var _ repository.CorrectionRequestRepository = (*RequestRepo)(nil)

func (r *RequestRepo) Create(req *entity.CorrectionRequest, lines []*entity.ImportLine, dqe []*entity.DqeLine) error {
	r.S.Requests[req.ID] = req
	r.S.Lines[req.ID] = lines
	r.S.Dqe[req.ID] = dqe
	return nil
}

func (r *RequestRepo) GetByID(id string) (*entity.CorrectionRequest, error) {
	req, ok := r.S.Requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *RequestRepo) GetForUpdate(id string) (*entity.CorrectionRequest, error) {
	return r.GetByID(id)
}

func (r *RequestRepo) List(entityID, status string, limit, offset int) ([]*entity.CorrectionRequest, error) {
	var out []*entity.CorrectionRequest
	for _, req := range r.S.Requests {
		if entityID != "" && req.EntityID != entityID {
			continue
		}
		if status != "" && string(req.Admissibility) != status {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reference < out[j].Reference })
	return out, nil
}

func (r *RequestRepo) GetImportLines(requestID string) ([]*entity.ImportLine, error) {
	return r.S.Lines[requestID], nil
}

func (r *RequestRepo) GetDqeLines(requestID string) ([]*entity.DqeLine, error) {
	return r.S.Dqe[requestID], nil
}

func (r *RequestRepo) ReplaceFiscalModel(requestID string, lines []*entity.ImportLine, domestic entity.DomesticTaxModel) error {
	r.S.Lines[requestID] = lines
	r.S.Requests[requestID].Domestic = domestic
	return nil
}

func (r *RequestRepo) Freeze(requestID string) error {
	r.S.Requests[requestID].FiscalFrozen = true
	return nil
}

func (r *RequestRepo) SetAdmissibility(requestID string, phase entity.RequestStatus, detail string) error {
	req := r.S.Requests[requestID]
	req.Admissibility = phase
	req.AdmissibilityDetail = detail
	return nil
}

func (r *RequestRepo) SetFinalOutcome(requestID, rejectionReason, acteXML, acteDigest string) error {
	req := r.S.Requests[requestID]
	req.RejectionReason = rejectionReason
	req.ActeXML = acteXML
	req.ActeDigest = acteDigest
	return nil
}

func (r *RequestRepo) MarkNotified(requestID string) error {
	r.S.Requests[requestID].Notified = true
	return nil
}

// ── DecisionRepository ────────────────────────────────────────────────────────

type DecisionRepo struct{ S *Store }

var _ repository.DecisionRepository = (*DecisionRepo)(nil)

func (r *DecisionRepo) GetCurrent(requestID string) ([]*entity.Decision, error) {
	var out []*entity.Decision
	for _, d := range r.S.Decisions {
		if d.RequestID == requestID && d.IsCurrent {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *DecisionRepo) GetCurrentByRole(requestID string, role entity.OrganismRole) (*entity.Decision, error) {
	for _, d := range r.S.Decisions {
		if d.RequestID == requestID && d.Role == role && d.IsCurrent {
			return d, nil
		}
	}
	return nil, nil
}

func (r *DecisionRepo) ListAll(requestID string) ([]*entity.Decision, error) {
	var out []*entity.Decision
	for _, d := range r.S.Decisions {
		if d.RequestID == requestID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DecidedAt.Before(out[j].DecidedAt) })
	return out, nil
}

func (r *DecisionRepo) Supersede(requestID string, role entity.OrganismRole) error {
	for _, d := range r.S.Decisions {
		if d.RequestID == requestID && d.Role == role && d.IsCurrent {
			d.IsCurrent = false
		}
	}
	return nil
}

func (r *DecisionRepo) Create(d *entity.Decision) error {
	r.S.Decisions = append(r.S.Decisions, d)
	return nil
}

// ── DocumentRepository ────────────────────────────────────────────────────────

type DocumentRepo struct{ S *Store }

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

func (r *DocumentRepo) ListVersions(requestID, docType string) ([]*entity.DocumentVersion, error) {
	var out []*entity.DocumentVersion
	for _, v := range r.S.Documents {
		if v.RequestID == requestID && v.DocType == docType {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (r *DocumentRepo) ActiveVersion(requestID, docType string) (*entity.DocumentVersion, error) {
	for _, v := range r.S.Documents {
		if v.RequestID == requestID && v.DocType == docType && v.Active {
			return v, nil
		}
	}
	return nil, nil
}

func (r *DocumentRepo) MaxVersion(requestID, docType string) (int, error) {
	max := 0
	for _, v := range r.S.Documents {
		if v.RequestID == requestID && v.DocType == docType && v.Version > max {
			max = v.Version
		}
	}
	return max, nil
}

func (r *DocumentRepo) DeactivateAll(requestID, docType string) error {
	for _, v := range r.S.Documents {
		if v.RequestID == requestID && v.DocType == docType {
			v.Active = false
		}
	}
	return nil
}

func (r *DocumentRepo) Create(v *entity.DocumentVersion) error {
	r.S.Documents = append(r.S.Documents, v)
	return nil
}

func (r *DocumentRepo) ListSlots(requestID string) ([]*entity.DocumentSlot, error) {
	byType := make(map[string]*entity.DocumentSlot)
	var order []string
	for _, v := range r.S.Documents {
		if v.RequestID != requestID {
			continue
		}
		slot, ok := byType[v.DocType]
		if !ok {
			slot = &entity.DocumentSlot{RequestID: requestID, DocType: v.DocType}
			byType[v.DocType] = slot
			order = append(order, v.DocType)
		}
		slot.Versions = append(slot.Versions, v)
	}
	sort.Strings(order)
	out := make([]*entity.DocumentSlot, 0, len(order))
	for _, dt := range order {
		out = append(out, byType[dt])
	}
	return out, nil
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

// TxRunner ejecuta los callbacks directamente contra el Store, sin transacción.
type TxRunner struct{ S *Store }

func (t *TxRunner) RunRequest(_ context.Context, fn func(repository.CorrectionRequestRepository, repository.DecisionRepository) error) error {
	return fn(&RequestRepo{S: t.S}, &DecisionRepo{S: t.S})
}

func (t *TxRunner) RunDecision(ctx context.Context, fn func(repository.CorrectionRequestRepository, repository.DecisionRepository) error) error {
	return t.RunRequest(ctx, fn)
}

func (t *TxRunner) RunDocument(_ context.Context, fn func(repository.CorrectionRequestRepository, repository.DecisionRepository, repository.DocumentRepository) error) error {
	return fn(&RequestRepo{S: t.S}, &DecisionRepo{S: t.S}, &DocumentRepo{S: t.S})
}

// ── ActeGenerator / Notifier ──────────────────────────────────────────────────

// ActeGen genera un acte sintético determinista para los tests.
type ActeGen struct{}

func (ActeGen) Build(req *entity.CorrectionRequest, final *entity.Decision, lines []entity.ImportLine, summary entity.CreditSummary) ([]byte, string, error) {
	payload := []byte("<Acte>" + req.Reference + ":" + string(final.Kind) + "</Acte>")
	hash := sha512.Sum384(payload)
	return payload, hex.EncodeToString(hash[:]), nil
}

// Recorder captura los eventos de notificación despachados.
type Recorder struct {
	Events []ports.NotificationEvent
}

func (r *Recorder) NotifyStatusChange(_ context.Context, ev ports.NotificationEvent) error {
	r.Events = append(r.Events, ev)
	return nil
}
