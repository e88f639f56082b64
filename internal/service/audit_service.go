package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/events"
)

// AuditService writes domain events to the structured log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to every event type.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, t := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketAssigned,
		events.EventUserRegistered,
		events.EventUserRoleChanged,
		events.EventPasswordChanged,
	} {
		a.dispatcher.Subscribe(t, a.record)
	}
}

func (a *AuditService) record(_ context.Context, event events.Event) error {
	a.logger.Info("audit",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Int64("subject_id", event.SubjectID),
		zap.Int64("actor_id", event.Actor.UserID),
		zap.String("actor_role", string(event.Actor.Role)),
		zap.Any("payload", event.Payload),
	)
	return nil
}
