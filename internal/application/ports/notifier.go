package ports

import (
	"context"

	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
)

// NotificationEvent evento de cambio de estado que la capa orquestadora envía
// al feed de notificaciones en tiempo real (servicio externo).
type NotificationEvent struct {
	RequestID      string               `json:"request_id"`
	Reference      string               `json:"reference"`
	NewStatus      entity.RequestStatus `json:"new_status"`
	AffectedUserID string               `json:"affected_user_id"`
}

// Notifier despacho de notificaciones fire-and-forget: un error de publicación
// se registra pero nunca hace fallar la operación que lo originó.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, event NotificationEvent) error
}
