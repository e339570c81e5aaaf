package repository

import "github.com/jhoicas/credifiscal-api/internal/domain/entity"

// DecisionRepository puerto de persistencia del libro de decisiones.
// Invariante: a lo sumo una decisión vigente por (requestID, role); las
// reemplazadas se conservan como historial de auditoría, nunca se borran.
type DecisionRepository interface {
	// GetCurrent devuelve las decisiones vigentes de la solicitud (una por rol).
	GetCurrent(requestID string) ([]*entity.Decision, error)
	GetCurrentByRole(requestID string, role entity.OrganismRole) (*entity.Decision, error)
	// ListAll devuelve el historial completo ordenado por fecha de emisión.
	ListAll(requestID string) ([]*entity.Decision, error)
	// Supersede marca como no vigente la decisión actual del rol (si existe).
	Supersede(requestID string, role entity.OrganismRole) error
	Create(d *entity.Decision) error
}
