// Package redis adaptador hacia el feed de notificaciones en tiempo real
// (servicio externo): los eventos de cambio de estado se publican en un canal
// Pub/Sub y el servicio de entrega los consume desde allí.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/credifiscal-api/internal/application/ports"
	"github.com/jhoicas/credifiscal-api/pkg/config"
	"github.com/jhoicas/credifiscal-api/pkg/logger"
)

var _ ports.Notifier = (*Publisher)(nil)

// Publisher publica eventos de estado en un canal Redis.
type Publisher struct {
	client  *redis.Client
	channel string
	log     *logger.Logger
}

// NewPublisher conecta con Redis y verifica la conexión.
func NewPublisher(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Publisher{client: client, channel: cfg.Channel, log: log}, nil
}

// NotifyStatusChange publica el evento. Fire-and-forget para el caso de uso:
// el fallo se registra aquí y se devuelve por si el caller quiere saberlo,
// pero nunca debe hacer fallar la operación que lo originó.
func (p *Publisher) NotifyStatusChange(ctx context.Context, event ports.NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serializar evento: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.log.Warn().
			Err(err).
			Str("request_id", event.RequestID).
			Str("new_status", string(event.NewStatus)).
			Msg("no se pudo publicar la notificación")
		return err
	}
	return nil
}

// Close cierra la conexión.
func (p *Publisher) Close() error {
	return p.client.Close()
}

// NopNotifier descarta los eventos (Redis no configurado, tests).
type NopNotifier struct{}

// NotifyStatusChange no hace nada.
func (NopNotifier) NotifyStatusChange(context.Context, ports.NotificationEvent) error { return nil }
