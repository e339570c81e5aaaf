package request

import (
	"context"

	"github.com/jhoicas/credifiscal-api/internal/application/dto"
	"github.com/jhoicas/credifiscal-api/internal/domain"
	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
	"github.com/jhoicas/credifiscal-api/internal/domain/fiscal"
	"github.com/jhoicas/credifiscal-api/internal/domain/repository"
	"github.com/jhoicas/credifiscal-api/internal/domain/workflow"
)

// RequestQueryUseCase lecturas de la solicitud. El estado siempre se rederiva
// del libro de decisiones: ningún camino de lectura confía en un campo cacheado.
type RequestQueryUseCase struct {
	reqRepo repository.CorrectionRequestRepository
	decRepo repository.DecisionRepository
	docRepo repository.DocumentRepository
	pdfGen  ActePDFGenerator
}

// NewRequestQueryUseCase construye el caso de uso de consulta.
func NewRequestQueryUseCase(
	reqRepo repository.CorrectionRequestRepository,
	decRepo repository.DecisionRepository,
	docRepo repository.DocumentRepository,
	pdfGen ActePDFGenerator,
) *RequestQueryUseCase {
	return &RequestQueryUseCase{reqRepo: reqRepo, decRepo: decRepo, docRepo: docRepo, pdfGen: pdfGen}
}

// load obtiene solicitud + líneas recalculadas + decisiones vigentes.
func (uc *RequestQueryUseCase) load(requestID string) (*entity.CorrectionRequest, []entity.ImportLine, entity.DomesticTaxModel, entity.CreditSummary, []*entity.Decision, error) {
	req, err := uc.reqRepo.GetByID(requestID)
	if err != nil {
		return nil, nil, entity.DomesticTaxModel{}, entity.CreditSummary{}, nil, err
	}
	if req == nil {
		return nil, nil, entity.DomesticTaxModel{}, entity.CreditSummary{}, nil, domain.ErrNotFound
	}
	stored, err := uc.reqRepo.GetImportLines(requestID)
	if err != nil {
		return nil, nil, entity.DomesticTaxModel{}, entity.CreditSummary{}, nil, err
	}
	lines := make([]entity.ImportLine, len(stored))
	for i, l := range stored {
		lines[i] = *l
	}
	lines, domestic, summary := fiscal.RecalcAll(lines, req.Domestic)
	decisions, err := uc.decRepo.GetCurrent(requestID)
	if err != nil {
		return nil, nil, entity.DomesticTaxModel{}, entity.CreditSummary{}, nil, err
	}
	return req, lines, domestic, summary, decisions, nil
}

// GetRequest detalle completo: líneas con derivados recalculados, resumen de
// crédito, decisiones (historial) y slots documentales.
func (uc *RequestQueryUseCase) GetRequest(ctx context.Context, requestID string) (*dto.RequestResponse, error) {
	req, lines, domestic, summary, _, err := uc.load(requestID)
	if err != nil {
		return nil, err
	}
	history, err := uc.decRepo.ListAll(requestID)
	if err != nil {
		return nil, err
	}
	slots, err := uc.docRepo.ListSlots(requestID)
	if err != nil {
		return nil, err
	}
	dqeStored, err := uc.reqRepo.GetDqeLines(requestID)
	if err != nil {
		return nil, err
	}
	dqe := make([]entity.DqeLine, len(dqeStored))
	for i, l := range dqeStored {
		dqe[i] = fiscal.RecalcDqeLine(*l)
	}
	return buildRequestResponse(req, lines, dqe, domestic, summary, history, slots), nil
}

// List lista solicitudes filtrando por entidad y/o estado. El filtro de estado
// opera sobre el estado derivado, igual que el campo Status de la respuesta; la
// columna de admisibilidad solo preacota las tres fases que persiste.
func (uc *RequestQueryUseCase) List(ctx context.Context, entityID, status string, page dto.PageRequest) ([]dto.RequestSummaryResponse, error) {
	page.DefaultPage()
	stored := ""
	switch entity.RequestStatus(status) {
	case entity.StatusRecibida, entity.StatusIncompleta, entity.StatusAdmisible:
		stored = status
	}
	reqs, err := uc.reqRepo.List(entityID, stored, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RequestSummaryResponse, 0, len(reqs))
	for _, req := range reqs {
		decisions, err := uc.decRepo.GetCurrent(req.ID)
		if err != nil {
			return nil, err
		}
		derived := workflow.Derive(req, decisions)
		if status != "" && string(derived) != status {
			continue
		}
		out = append(out, dto.RequestSummaryResponse{
			ID:          req.ID,
			Reference:   req.Reference,
			EntityID:    req.EntityID,
			AuthorityID: req.AuthorityID,
			Status:      string(derived),
			SubmittedAt: req.SubmittedAt.Format("2006-01-02"),
		})
	}
	return out, nil
}

// GetStatus estado vigente (proyección pura sobre las decisiones).
func (uc *RequestQueryUseCase) GetStatus(ctx context.Context, requestID string) (*dto.StatusResponse, error) {
	req, err := uc.reqRepo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	decisions, err := uc.decRepo.GetCurrent(requestID)
	if err != nil {
		return nil, err
	}
	return &dto.StatusResponse{
		RequestID: req.ID,
		Reference: req.Reference,
		Status:    string(workflow.Derive(req, decisions)),
	}, nil
}

// GetCreditSummary resumen del crédito fiscal, recalculado desde los inputs.
func (uc *RequestQueryUseCase) GetCreditSummary(ctx context.Context, requestID string) (*dto.CreditSummaryResponse, error) {
	_, _, _, summary, _, err := uc.load(requestID)
	if err != nil {
		return nil, err
	}
	resp := creditToResponse(summary)
	return &resp, nil
}

// ListDecisions historial completo de decisiones (las vigentes con IsCurrent=true).
func (uc *RequestQueryUseCase) ListDecisions(ctx context.Context, requestID string) ([]dto.DecisionResponse, error) {
	req, err := uc.reqRepo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	history, err := uc.decRepo.ListAll(requestID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DecisionResponse, 0, len(history))
	for _, d := range history {
		out = append(out, decisionToResponse(d))
	}
	return out, nil
}

// Recalculate recálculo puro e idempotente de líneas (y modelo interno si se
// envía). No toca persistencia: es la misma aritmética que usa el servidor al
// guardar, expuesta para que el cliente nunca duplique el cálculo.
func (uc *RequestQueryUseCase) Recalculate(ctx context.Context, in dto.RecalculateRequest) (*dto.RecalculateResponse, error) {
	if err := validateLines(in.Lines); err != nil {
		return nil, err
	}
	lines := fiscal.RecalcImportLines(linesFromInput(in.Lines))
	resp := &dto.RecalculateResponse{Lines: linesToResponse(lines)}
	if in.Domestic != nil {
		if err := validateDomestic(*in.Domestic); err != nil {
			return nil, err
		}
		domestic := fiscal.RecalcDomestic(domesticFromInput(*in.Domestic), fiscal.DeductibleVAT(lines))
		summary := fiscal.AggregateCredit(lines, domestic)
		d := domesticToResponse(domestic)
		c := creditToResponse(summary)
		resp.Domestic = &d
		resp.Credit = &c
	}
	return resp, nil
}

// GetActe devuelve el XML del acte de la decisión final.
func (uc *RequestQueryUseCase) GetActe(ctx context.Context, requestID string) ([]byte, error) {
	req, err := uc.reqRepo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	if req.ActeXML == "" {
		return nil, domain.NewInvalidStateError("la solicitud %s no tiene decisión final", req.Reference)
	}
	return []byte(req.ActeXML), nil
}

// GetActePDF genera la representación gráfica del acte.
func (uc *RequestQueryUseCase) GetActePDF(ctx context.Context, requestID string) ([]byte, error) {
	req, lines, _, summary, decisions, err := uc.load(requestID)
	if err != nil {
		return nil, err
	}
	final := workflow.FinalDecision(decisions)
	if final == nil {
		return nil, domain.NewInvalidStateError("la solicitud %s no tiene decisión final", req.Reference)
	}
	return uc.pdfGen.GenerateActePDF(ctx, req, final, lines, summary)
}
