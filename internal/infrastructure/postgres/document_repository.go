package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
	"github.com/jhoicas/credifiscal-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo implementación de DocumentRepository (usable con pool o tx).
// Índices parciales/únicos respaldan "una activa por slot" y "versión nunca
// reutilizada"; no existe DELETE: el historial es permanente.
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

const documentColumns = `id, request_id, doc_type, version, filename, storage_ref, uploaded_by, uploaded_at, active`

func (r *DocumentRepo) queryVersions(query string, args ...any) ([]*entity.DocumentVersion, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query document versions: %w", err)
	}
	defer rows.Close()
	var list []*entity.DocumentVersion
	for rows.Next() {
		var v entity.DocumentVersion
		if err := rows.Scan(&v.ID, &v.RequestID, &v.DocType, &v.Version, &v.Filename, &v.StorageRef, &v.UploadedBy, &v.UploadedAt, &v.Active); err != nil {
			return nil, fmt.Errorf("scan document version: %w", err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}

// ListVersions historial del slot ordenado por versión ascendente.
func (r *DocumentRepo) ListVersions(requestID, docType string) ([]*entity.DocumentVersion, error) {
	return r.queryVersions(`
		SELECT `+documentColumns+`
		FROM document_versions WHERE request_id = $1 AND doc_type = $2
		ORDER BY version`, requestID, docType)
}

// ActiveVersion versión activa del slot, o nil.
func (r *DocumentRepo) ActiveVersion(requestID, docType string) (*entity.DocumentVersion, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM document_versions WHERE request_id = $1 AND doc_type = $2 AND active`
	var v entity.DocumentVersion
	err := r.q.QueryRow(context.Background(), query, requestID, docType).Scan(
		&v.ID, &v.RequestID, &v.DocType, &v.Version, &v.Filename, &v.StorageRef, &v.UploadedBy, &v.UploadedAt, &v.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active version: %w", err)
	}
	return &v, nil
}

// MaxVersion número de versión más alto del slot (0 si no hay ninguna).
func (r *DocumentRepo) MaxVersion(requestID, docType string) (int, error) {
	var max int
	query := `SELECT COALESCE(MAX(version), 0) FROM document_versions WHERE request_id = $1 AND doc_type = $2`
	if err := r.q.QueryRow(context.Background(), query, requestID, docType).Scan(&max); err != nil {
		return 0, fmt.Errorf("max version: %w", err)
	}
	return max, nil
}

// DeactivateAll desactiva todas las versiones del slot.
func (r *DocumentRepo) DeactivateAll(requestID, docType string) error {
	query := `UPDATE document_versions SET active = FALSE WHERE request_id = $1 AND doc_type = $2 AND active`
	if _, err := r.q.Exec(context.Background(), query, requestID, docType); err != nil {
		return fmt.Errorf("deactivate versions: %w", err)
	}
	return nil
}

// Create persiste una versión.
func (r *DocumentRepo) Create(v *entity.DocumentVersion) error {
	query := `
		INSERT INTO document_versions (id, request_id, doc_type, version, filename, storage_ref, uploaded_by, uploaded_at, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.q.Exec(context.Background(), query,
		v.ID, v.RequestID, v.DocType, v.Version, v.Filename, v.StorageRef, v.UploadedBy, v.UploadedAt, v.Active,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("versión duplicada en el slot: %w", err)
		}
		return fmt.Errorf("insert document version: %w", err)
	}
	return nil
}

// ListSlots slots de la solicitud con su historial completo.
func (r *DocumentRepo) ListSlots(requestID string) ([]*entity.DocumentSlot, error) {
	versions, err := r.queryVersions(`
		SELECT `+documentColumns+`
		FROM document_versions WHERE request_id = $1
		ORDER BY doc_type, version`, requestID)
	if err != nil {
		return nil, err
	}
	var slots []*entity.DocumentSlot
	byType := make(map[string]*entity.DocumentSlot)
	for _, v := range versions {
		slot, ok := byType[v.DocType]
		if !ok {
			slot = &entity.DocumentSlot{RequestID: requestID, DocType: v.DocType}
			byType[v.DocType] = slot
			slots = append(slots, slot)
		}
		slot.Versions = append(slot.Versions, v)
	}
	return slots, nil
}
