package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	appErr "github.com/samims/notifier/internal/errors"
	"github.com/samims/notifier/internal/model"
	"github.com/samims/notifier/internal/store"
	"github.com/samims/notifier/pkg/tracing"
)

// Publisher emits NotificationRequested events
type Publisher interface {
	Publish(ctx context.Context, evt model.NotificationRequested) error
}

// NotificationService is the intake side: it records requests and announces them
type NotificationService interface {
	Create(ctx context.Context, req model.CreateRequest) (*model.CreateResponse, error)
	Get(ctx context.Context, id string) (*model.Notification, error)
}

type notificationService struct {
	store     store.NotificationStorage
	publisher Publisher
	newID     func() string
	now       func() time.Time
	l         *slog.Logger
	tracer    *tracing.Tracer
}

// NewNotificationService creates a new notification service instance
func NewNotificationService(
	store store.NotificationStorage,
	publisher Publisher,
	logger *slog.Logger,
) NotificationService {
	return &notificationService{
		store:     store,
		publisher: publisher,
		newID:     func() string { return uuid.New().String() },
		now:       time.Now,
		l:         logger.With("layer", "service", "component", "notificationService"),
		tracer:    tracing.NewTracer("notification-service"),
	}
}

// Create persists a PENDING notification, then publishes its event.
// Nothing is published when the write fails.
func (s *notificationService) Create(ctx context.Context, req model.CreateRequest) (*model.CreateResponse, error) {
	ctx, span := s.tracer.StartInternalSpan(ctx, "CreateNotification",
		attribute.String(tracing.AttrNotificationChannel, string(req.Channel)))
	defer span.End()

	if err := validate(req); err != nil {
		s.l.WarnContext(ctx, "Rejected notification request", slog.Any("error", err))
		return nil, err
	}

	n := &model.Notification{
		ID:         s.newID(),
		Recipient:  req.Recipient,
		Subject:    req.Subject,
		Body:       req.Body,
		Channel:    req.Channel,
		Status:     model.StatusPending,
		RetryCount: 0,
	}
	span.SetAttributes(attribute.String(tracing.AttrNotificationID, n.ID))

	if _, err := s.store.Create(ctx, n); err != nil {
		s.l.ErrorContext(ctx, "Failed to save notification to store", slog.String("id", n.ID), slog.Any("error", err))
		s.tracer.RecordError(span, err)
		return nil, appErr.NewInternal("failed to create notification: %v", err)
	}
	s.l.InfoContext(ctx, "Notification saved", slog.String("id", n.ID), slog.String("channel", string(n.Channel)))

	// fire-and-forget: a lost event leaves the record PENDING, it is not retried here
	if err := s.publisher.Publish(ctx, model.NewNotificationRequested(n, s.now())); err != nil {
		s.l.ErrorContext(ctx, "Failed to publish notification event", slog.String("id", n.ID), slog.Any("error", err))
		s.tracer.RecordError(span, err)
	}

	return &model.CreateResponse{
		ID:      n.ID,
		Status:  n.Status,
		Message: "Notification created successfully",
	}, nil
}

func (s *notificationService) Get(ctx context.Context, id string) (*model.Notification, error) {
	n, err := s.store.Get(ctx, id)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, err
		}
		s.l.ErrorContext(ctx, "Failed to fetch notification", slog.String("id", id), slog.Any("error", err))
		return nil, appErr.NewInternal("failed to fetch notification: %v", err)
	}
	return n, nil
}

func validate(req model.CreateRequest) error {
	switch {
	case strings.TrimSpace(req.Recipient) == "":
		return appErr.NewValidation("recipient is required")
	case strings.TrimSpace(req.Subject) == "":
		return appErr.NewValidation("subject is required")
	case strings.TrimSpace(req.Body) == "":
		return appErr.NewValidation("body is required")
	case !req.Channel.Valid():
		return appErr.NewValidation("channel must be EMAIL, SMS, or PUSH, got %q", req.Channel)
	}
	return nil
}
