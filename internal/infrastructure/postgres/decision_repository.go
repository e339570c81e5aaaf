package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
	"github.com/jhoicas/credifiscal-api/internal/domain/repository"
)

var _ repository.DecisionRepository = (*DecisionRepo)(nil)

// DecisionRepo implementación de DecisionRepository (usable con pool o tx).
// El índice parcial único sobre (request_id, role) WHERE is_current respalda
// en la base el invariante "una decisión vigente por rol".
type DecisionRepo struct {
	q Querier
}

// NewDecisionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDecisionRepository(q Querier) *DecisionRepo {
	return &DecisionRepo{q: q}
}

const decisionColumns = `id, request_id, role, kind, motive, acting_user, decided_at, is_final, is_current`

func scanDecision(row pgx.Row) (*entity.Decision, error) {
	var d entity.Decision
	var role, kind string
	var motive *string
	err := row.Scan(&d.ID, &d.RequestID, &role, &kind, &motive, &d.ActingUser, &d.DecidedAt, &d.IsFinal, &d.IsCurrent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan decision: %w", err)
	}
	d.Role = entity.OrganismRole(role)
	d.Kind = entity.DecisionKind(kind)
	d.Motive = derefStr(motive)
	return &d, nil
}

func (r *DecisionRepo) query(query string, args ...any) ([]*entity.Decision, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// GetCurrent decisiones vigentes de la solicitud (a lo sumo una por rol).
func (r *DecisionRepo) GetCurrent(requestID string) ([]*entity.Decision, error) {
	return r.query(`
		SELECT `+decisionColumns+`
		FROM decisions WHERE request_id = $1 AND is_current
		ORDER BY decided_at`, requestID)
}

// GetCurrentByRole decisión vigente del rol, o nil.
func (r *DecisionRepo) GetCurrentByRole(requestID string, role entity.OrganismRole) (*entity.Decision, error) {
	query := `
		SELECT ` + decisionColumns + `
		FROM decisions WHERE request_id = $1 AND role = $2 AND is_current`
	return scanDecision(r.q.QueryRow(context.Background(), query, requestID, string(role)))
}

// ListAll historial completo ordenado por fecha de emisión (auditoría).
func (r *DecisionRepo) ListAll(requestID string) ([]*entity.Decision, error) {
	return r.query(`
		SELECT `+decisionColumns+`
		FROM decisions WHERE request_id = $1
		ORDER BY decided_at`, requestID)
}

// Supersede marca como no vigente la decisión actual del rol. Las reemplazadas
// nunca se borran: son el historial de auditoría.
func (r *DecisionRepo) Supersede(requestID string, role entity.OrganismRole) error {
	query := `UPDATE decisions SET is_current = FALSE WHERE request_id = $1 AND role = $2 AND is_current`
	if _, err := r.q.Exec(context.Background(), query, requestID, string(role)); err != nil {
		return fmt.Errorf("supersede decision: %w", err)
	}
	return nil
}

// Create persiste una decisión.
func (r *DecisionRepo) Create(d *entity.Decision) error {
	query := `
		INSERT INTO decisions (id, request_id, role, kind, motive, acting_user, decided_at, is_final, is_current)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.q.Exec(context.Background(), query,
		d.ID, d.RequestID, string(d.Role), string(d.Kind), nullIfEmpty(d.Motive),
		d.ActingUser, d.DecidedAt, d.IsFinal, d.IsCurrent,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ya existe una decisión vigente del rol: %w", err)
		}
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}
