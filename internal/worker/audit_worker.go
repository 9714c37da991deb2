package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-pos/internal/events"
)

// StartAuditWorker subscribes an audit logger to authentication events.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil || logger == nil {
		return
	}
	audit := logger.Named("audit")

	handler := func(_ context.Context, e events.Event) error {
		fields := []zap.Field{
			zap.String("event_id", e.ID),
			zap.String("event", string(e.Type)),
			zap.Time("at", e.Timestamp),
		}
		if e.UID != "" {
			fields = append(fields, zap.String("uid", e.UID))
		}
		if e.Role != "" {
			fields = append(fields, zap.String("role", string(e.Role)))
		}
		switch p := e.Payload.(type) {
		case events.LoggedInPayload:
			fields = append(fields, zap.String("landing", p.Landing))
		case events.LoginFailedPayload:
			fields = append(fields, zap.String("email", p.Email), zap.String("reason", p.Reason))
		}
		audit.Info("auth event", fields...)
		return nil
	}

	for _, t := range []events.EventType{
		events.EventStaffLoggedIn,
		events.EventStaffLoggedOut,
		events.EventPasswordChanged,
		events.EventLoginFailed,
	} {
		dispatcher.Subscribe(t, handler)
	}
}
