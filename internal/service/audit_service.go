package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/complyhub/compliance-service/internal/domain"
	"github.com/complyhub/compliance-service/internal/events"
	"github.com/complyhub/compliance-service/internal/repository"
)

// AuditService persists audit trail records for authentication events.
type AuditService struct {
	dispatcher events.Dispatcher
	activities repository.LoginActivityRepository
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, activities repository.LoginActivityRepository, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		activities: activities,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventLoginRecorded, a.handleLoginRecorded)
}

func (a *AuditService) handleLoginRecorded(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.LoginRecordedPayload)
	if !ok {
		return nil
	}
	if a.activities == nil {
		return nil
	}

	// Detached context: the login response has already been committed and
	// must not wait on or fail with this write.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	activity := &domain.LoginActivity{
		IdentityID: event.IdentityID,
		Email:      payload.Email,
		SourceIP:   payload.SourceIP,
		UserAgent:  payload.UserAgent,
		LoggedInAt: event.Timestamp,
	}
	if err := a.activities.Create(ctx, activity); err != nil {
		a.logger.Warn("failed to record login activity",
			zap.String("identity_id", event.IdentityID),
			zap.Error(err))
	}
	return nil
}
