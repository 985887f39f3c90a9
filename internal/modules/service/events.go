package service

import (
	"context"
	"time"

	"github.com/Yolxander/businki-sub003/internal/config"
	"github.com/Yolxander/businki-sub003/internal/modules/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventPublisher interface {
	PublishJSON(ctx context.Context, exchange, routingKey string, body any) error
}

// DocumentEvent is the message body of every document lifecycle event.
type DocumentEvent struct {
	Event      string    `json:"event"`
	DocumentID uuid.UUID `json:"document_id"`
	ProjectID  uuid.UUID `json:"project_id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Version    int       `json:"version"`
	IsActive   bool      `json:"is_active"`
	ActorID    uuid.UUID `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Events publishes document lifecycle events. Failures are logged, never returned.
// A nil publisher turns every call into a no-op.
type Events struct {
	pub      EventPublisher
	exchange string
	keys     config.RabbitMQRoutingKey
	log      *zap.Logger
}

func NewEvents(pub EventPublisher, cfg *config.Config, log *zap.Logger) *Events {
	return &Events{
		pub:      pub,
		exchange: cfg.RabbitMQ.ExchangeName.Document,
		keys:     cfg.RabbitMQ.RoutingKey,
		log:      log,
	}
}

func (e *Events) Created(ctx context.Context, d *model.Document, actor uuid.UUID) {
	e.emit(ctx, e.keys.DocumentCreated, d, actor)
}

func (e *Events) Generated(ctx context.Context, d *model.Document, actor uuid.UUID) {
	e.emit(ctx, e.keys.DocumentGenerated, d, actor)
}

func (e *Events) VersionCreated(ctx context.Context, d *model.Document, actor uuid.UUID) {
	e.emit(ctx, e.keys.DocumentVersionCreated, d, actor)
}

func (e *Events) Activated(ctx context.Context, d *model.Document, actor uuid.UUID) {
	e.emit(ctx, e.keys.DocumentActivated, d, actor)
}

func (e *Events) Deleted(ctx context.Context, d *model.Document, actor uuid.UUID) {
	e.emit(ctx, e.keys.DocumentDeleted, d, actor)
}

func (e *Events) emit(ctx context.Context, routingKey string, d *model.Document, actor uuid.UUID) {
	if e == nil || e.pub == nil || routingKey == "" {
		return
	}
	evt := DocumentEvent{
		Event:      routingKey,
		DocumentID: d.ID,
		ProjectID:  d.ProjectID,
		Name:       d.Name,
		Type:       d.Type,
		Version:    d.Version,
		IsActive:   d.IsActive,
		ActorID:    actor,
		OccurredAt: time.Now().UTC(),
	}
	if err := e.pub.PublishJSON(context.WithoutCancel(ctx), e.exchange, routingKey, evt); err != nil {
		e.log.Warn("publish document event",
			zap.String("routing_key", routingKey),
			zap.String("document_id", d.ID.String()),
			zap.Error(err))
	}
}
