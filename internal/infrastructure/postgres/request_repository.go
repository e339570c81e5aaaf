package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
	"github.com/jhoicas/credifiscal-api/internal/domain/repository"
)

var _ repository.CorrectionRequestRepository = (*CorrectionRequestRepo)(nil)

// CorrectionRequestRepo implementación de CorrectionRequestRepository (usable con pool o tx).
type CorrectionRequestRepo struct {
	q Querier
}

// NewCorrectionRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCorrectionRequestRepository(q Querier) *CorrectionRequestRepo {
	return &CorrectionRequestRepo{q: q}
}

const requestColumns = `
	id, reference, entity_id, authority_id, project_id,
	admissibility, admissibility_detail,
	fiscal_frozen, rejection_reason, notified,
	pre_tax_amount, domestic_vat_rate, other_taxes,
	acte_xml, acte_digest,
	submitted_at, created_at, updated_at`

// Create persiste la solicitud con sus líneas de importación y DQE.
func (r *CorrectionRequestRepo) Create(req *entity.CorrectionRequest, lines []*entity.ImportLine, dqe []*entity.DqeLine) error {
	query := `
		INSERT INTO correction_requests (
			id, reference, entity_id, authority_id, project_id,
			admissibility, admissibility_detail, fiscal_frozen, rejection_reason, notified,
			pre_tax_amount, domestic_vat_rate, other_taxes,
			submitted_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`
	_, err := r.q.Exec(context.Background(), query,
		req.ID, req.Reference, req.EntityID, req.AuthorityID, nullIfEmpty(req.ProjectID),
		string(req.Admissibility), nullIfEmpty(req.AdmissibilityDetail),
		req.FiscalFrozen, nullIfEmpty(req.RejectionReason), req.Notified,
		req.Domestic.PreTaxAmount, req.Domestic.VATRate, req.Domestic.OtherTaxes,
		req.SubmittedAt, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("la referencia ya existe: %w", err)
		}
		return fmt.Errorf("insert correction request: %w", err)
	}
	if err := r.insertImportLines(req.ID, lines); err != nil {
		return err
	}
	return r.insertDqeLines(req.ID, dqe)
}

func (r *CorrectionRequestRepo) insertImportLines(requestID string, lines []*entity.ImportLine) error {
	query := `
		INSERT INTO import_lines (
			id, request_id, position, designation, unit,
			quantity, unit_price, duty_rate, levy_rate, contribution_rate, vat_rate)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	for _, l := range lines {
		_, err := r.q.Exec(context.Background(), query,
			l.ID, requestID, l.Position, l.Designation, l.Unit,
			l.Quantity, l.UnitPrice, l.DutyRate, l.LevyRate, l.ContributionRate, l.VATRate,
		)
		if err != nil {
			return fmt.Errorf("insert import line: %w", err)
		}
	}
	return nil
}

func (r *CorrectionRequestRepo) insertDqeLines(requestID string, dqe []*entity.DqeLine) error {
	query := `
		INSERT INTO dqe_lines (id, request_id, position, designation, unit, quantity, unit_price)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`
	for _, l := range dqe {
		_, err := r.q.Exec(context.Background(), query,
			l.ID, requestID, l.Position, l.Designation, l.Unit, l.Quantity, l.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("insert dqe line: %w", err)
		}
	}
	return nil
}

func (r *CorrectionRequestRepo) scanRequest(row pgx.Row) (*entity.CorrectionRequest, error) {
	var req entity.CorrectionRequest
	var projectID, admDetail, rejection, acteXML, acteDigest *string
	var admissibility string
	err := row.Scan(
		&req.ID, &req.Reference, &req.EntityID, &req.AuthorityID, &projectID,
		&admissibility, &admDetail,
		&req.FiscalFrozen, &rejection, &req.Notified,
		&req.Domestic.PreTaxAmount, &req.Domestic.VATRate, &req.Domestic.OtherTaxes,
		&acteXML, &acteDigest,
		&req.SubmittedAt, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan correction request: %w", err)
	}
	req.ProjectID = derefStr(projectID)
	req.Admissibility = entity.RequestStatus(admissibility)
	req.AdmissibilityDetail = derefStr(admDetail)
	req.RejectionReason = derefStr(rejection)
	req.ActeXML = derefStr(acteXML)
	req.ActeDigest = derefStr(acteDigest)
	return &req, nil
}

// GetByID obtiene la solicitud por ID.
func (r *CorrectionRequestRepo) GetByID(id string) (*entity.CorrectionRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM correction_requests WHERE id = $1`
	return r.scanRequest(r.q.QueryRow(context.Background(), query, id))
}

// GetForUpdate obtiene la solicitud con bloqueo de fila. Solo dentro de una tx:
// serializa decisiones y subidas concurrentes sobre la misma solicitud.
func (r *CorrectionRequestRepo) GetForUpdate(id string) (*entity.CorrectionRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM correction_requests WHERE id = $1 FOR UPDATE`
	return r.scanRequest(r.q.QueryRow(context.Background(), query, id))
}

// List lista solicitudes con filtros opcionales por entidad y fase guardada.
// El estado derivado lo calcula el caso de uso; aquí solo se filtra por la
// fase de admisibilidad persistida cuando se pide.
func (r *CorrectionRequestRepo) List(entityID, status string, limit, offset int) ([]*entity.CorrectionRequest, error) {
	query := `SELECT ` + requestColumns + `
		FROM correction_requests
		WHERE ($1 = '' OR entity_id = $1)
		  AND ($2 = '' OR admissibility = $2)
		ORDER BY submitted_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, entityID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list correction requests: %w", err)
	}
	defer rows.Close()
	var list []*entity.CorrectionRequest
	for rows.Next() {
		req, err := r.scanRequest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, req)
	}
	return list, rows.Err()
}

// GetImportLines obtiene las líneas de importación (solo inputs; los derivados
// se recalculan siempre en el dominio).
func (r *CorrectionRequestRepo) GetImportLines(requestID string) ([]*entity.ImportLine, error) {
	query := `
		SELECT id, request_id, position, designation, unit,
		       quantity, unit_price, duty_rate, levy_rate, contribution_rate, vat_rate
		FROM import_lines WHERE request_id = $1 ORDER BY position`
	rows, err := r.q.Query(context.Background(), query, requestID)
	if err != nil {
		return nil, fmt.Errorf("list import lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.ImportLine
	for rows.Next() {
		var l entity.ImportLine
		if err := rows.Scan(
			&l.ID, &l.RequestID, &l.Position, &l.Designation, &l.Unit,
			&l.Quantity, &l.UnitPrice, &l.DutyRate, &l.LevyRate, &l.ContributionRate, &l.VATRate,
		); err != nil {
			return nil, fmt.Errorf("scan import line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// GetDqeLines obtiene las líneas DQE.
func (r *CorrectionRequestRepo) GetDqeLines(requestID string) ([]*entity.DqeLine, error) {
	query := `
		SELECT id, request_id, position, designation, unit, quantity, unit_price
		FROM dqe_lines WHERE request_id = $1 ORDER BY position`
	rows, err := r.q.Query(context.Background(), query, requestID)
	if err != nil {
		return nil, fmt.Errorf("list dqe lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.DqeLine
	for rows.Next() {
		var l entity.DqeLine
		if err := rows.Scan(&l.ID, &l.RequestID, &l.Position, &l.Designation, &l.Unit, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan dqe line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// ReplaceFiscalModel sustituye líneas y modelo interno (solo pre-congelamiento;
// el caso de uso lo garantiza bajo el bloqueo de fila).
func (r *CorrectionRequestRepo) ReplaceFiscalModel(requestID string, lines []*entity.ImportLine, domestic entity.DomesticTaxModel) error {
	if _, err := r.q.Exec(context.Background(), `DELETE FROM import_lines WHERE request_id = $1`, requestID); err != nil {
		return fmt.Errorf("delete import lines: %w", err)
	}
	if err := r.insertImportLines(requestID, lines); err != nil {
		return err
	}
	query := `
		UPDATE correction_requests
		SET pre_tax_amount = $2, domestic_vat_rate = $3, other_taxes = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		requestID, domestic.PreTaxAmount, domestic.VATRate, domestic.OtherTaxes, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("update fiscal model: %w", err)
	}
	return nil
}

// Freeze congela el modelo fiscal (misma tx que la primera decisión).
func (r *CorrectionRequestRepo) Freeze(requestID string) error {
	query := `UPDATE correction_requests SET fiscal_frozen = TRUE, updated_at = $2 WHERE id = $1`
	if _, err := r.q.Exec(context.Background(), query, requestID, time.Now()); err != nil {
		return fmt.Errorf("freeze fiscal model: %w", err)
	}
	return nil
}

// SetAdmissibility guarda la fase de admisibilidad y su detalle.
func (r *CorrectionRequestRepo) SetAdmissibility(requestID string, phase entity.RequestStatus, detail string) error {
	query := `UPDATE correction_requests SET admissibility = $2, admissibility_detail = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.q.Exec(context.Background(), query, requestID, string(phase), nullIfEmpty(detail), time.Now()); err != nil {
		return fmt.Errorf("set admissibility: %w", err)
	}
	return nil
}

// SetFinalOutcome guarda motivo de rechazo y acte de la decisión final.
func (r *CorrectionRequestRepo) SetFinalOutcome(requestID, rejectionReason, acteXML, acteDigest string) error {
	query := `
		UPDATE correction_requests
		SET rejection_reason = $2, acte_xml = $3, acte_digest = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		requestID, nullIfEmpty(rejectionReason), nullIfEmpty(acteXML), nullIfEmpty(acteDigest), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("set final outcome: %w", err)
	}
	return nil
}

// MarkNotified marca la notificación del desenlace como entregada.
func (r *CorrectionRequestRepo) MarkNotified(requestID string) error {
	query := `UPDATE correction_requests SET notified = TRUE, updated_at = $2 WHERE id = $1`
	if _, err := r.q.Exec(context.Background(), query, requestID, time.Now()); err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}
