package repository

import "github.com/jhoicas/credifiscal-api/internal/domain/entity"

// DocumentRepository puerto de persistencia del almacén de versiones documentales.
// Invariantes: versiones estrictamente crecientes por slot, nunca reutilizadas;
// exactamente una versión activa por slot; sin operación de borrado.
type DocumentRepository interface {
	ListVersions(requestID, docType string) ([]*entity.DocumentVersion, error)
	ActiveVersion(requestID, docType string) (*entity.DocumentVersion, error)
	// MaxVersion devuelve el número de versión más alto del slot (0 si no hay).
	MaxVersion(requestID, docType string) (int, error)
	// DeactivateAll desactiva todas las versiones del slot (paso previo a activar la nueva).
	DeactivateAll(requestID, docType string) error
	Create(v *entity.DocumentVersion) error
	// ListSlots devuelve los slots de la solicitud con su historial completo.
	ListSlots(requestID string) ([]*entity.DocumentSlot, error)
}
