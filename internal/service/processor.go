package service

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	appErr "github.com/samims/notifier/internal/errors"
	"github.com/samims/notifier/internal/metrics"
	"github.com/samims/notifier/internal/model"
	"github.com/samims/notifier/internal/store"
	"github.com/samims/notifier/pkg/tracing"
)

// DeliveryProcessor drives a single notification through one delivery attempt.
//
// Process returns nil when the attempt ran (whatever its outcome) or when there was
// nothing to do: the record is terminal, already claimed by another attempt, or out of
// retries. It returns an error wrapping ErrNotFound for unknown ids, and wrapped store
// errors when the outcome could not be persisted. Send failures are never returned;
// they are recorded on the notification.
type DeliveryProcessor interface {
	Process(ctx context.Context, id string) error
}

type deliveryProcessor struct {
	store      store.NotificationStorage
	sender     Sender
	maxRetries int
	l          *slog.Logger
	tracer     *tracing.Tracer
}

// NewDeliveryProcessor creates the processor shared by the event consumer and the retry scheduler
func NewDeliveryProcessor(
	store store.NotificationStorage,
	sender Sender,
	maxRetries int,
	logger *slog.Logger,
) DeliveryProcessor {
	return &deliveryProcessor{
		store:      store,
		sender:     sender,
		maxRetries: maxRetries,
		l:          logger.With("layer", "service", "component", "deliveryProcessor"),
		tracer:     tracing.NewTracer("delivery-processor"),
	}
}

func (p *deliveryProcessor) Process(ctx context.Context, id string) error {
	ctx, span := p.tracer.StartInternalSpan(ctx, "ProcessNotification",
		attribute.String(tracing.AttrNotificationID, id))
	defer span.End()

	n, err := p.store.Get(ctx, id)
	if err != nil {
		p.tracer.RecordError(span, err)
		if appErr.IsNotFound(err) {
			p.l.WarnContext(ctx, "Notification not found", slog.String("id", id))
			metrics.DeliverySkipped.WithLabelValues("not_found").Inc()
		}
		return fmt.Errorf("process notification %s: %w", id, err)
	}
	p.tracer.AddNotificationAttributes(span, n.ID, string(n.Channel), string(n.Status), n.RetryCount)

	if !n.Status.Eligible() {
		p.l.InfoContext(ctx, "Notification not eligible for processing, skipping",
			slog.String("id", id), slog.String("status", string(n.Status)))
		metrics.DeliverySkipped.WithLabelValues("not_eligible").Inc()
		return nil
	}
	if n.RetryCount >= p.maxRetries {
		p.l.WarnContext(ctx, "Notification retry budget exhausted, skipping",
			slog.String("id", id), slog.Int("retry_count", n.RetryCount))
		metrics.DeliverySkipped.WithLabelValues("exhausted").Inc()
		return nil
	}

	// claim: only one attempt may move the record out of the state it was read in
	err = p.store.ConditionalUpdate(ctx, id, n.Observed(), model.Transition{
		Status:       model.StatusProcessing,
		RetryCount:   n.RetryCount,
		ErrorMessage: n.ErrorMessage,
	})
	if err != nil {
		if appErr.IsConflict(err) {
			p.l.InfoContext(ctx, "Another attempt is already in flight, skipping", slog.String("id", id))
			metrics.DeliverySkipped.WithLabelValues("conflict").Inc()
			return nil
		}
		p.tracer.RecordError(span, err)
		return fmt.Errorf("claim notification %s: %w", id, err)
	}

	// once claimed the attempt runs to completion even if the caller goes away
	attemptCtx := context.WithoutCancel(ctx)

	p.l.InfoContext(ctx, "Attempting to deliver notification",
		slog.String("id", id),
		slog.String("channel", string(n.Channel)),
		slog.Int("attempt", n.RetryCount+1))

	sendErr := p.sender.Send(attemptCtx, *n)
	next := p.outcome(n, sendErr)

	claimed := model.Observed{Status: model.StatusProcessing, RetryCount: n.RetryCount}
	if err := p.store.ConditionalUpdate(attemptCtx, id, claimed, next); err != nil {
		if appErr.IsConflict(err) {
			p.l.WarnContext(ctx, "Notification left processing before the outcome was recorded",
				slog.String("id", id), slog.Any("error", err))
			return nil
		}
		p.l.ErrorContext(ctx, "Failed to record delivery outcome",
			slog.String("id", id),
			slog.String("status", string(next.Status)),
			slog.Any("error", err))
		p.tracer.RecordError(span, err)
		return fmt.Errorf("record outcome of notification %s: %w", id, err)
	}

	metrics.DeliveryAttempts.WithLabelValues(string(n.Channel), string(next.Status)).Inc()
	span.SetAttributes(attribute.String(tracing.AttrNotificationStatus, string(next.Status)))

	switch next.Status {
	case model.StatusSent:
		p.l.InfoContext(ctx, "Notification delivery succeeded", slog.String("id", id))
	case model.StatusRetry:
		p.l.WarnContext(ctx, "Notification marked for retry",
			slog.String("id", id), slog.Int("retry_count", next.RetryCount), slog.Any("error", sendErr))
	case model.StatusFailed:
		p.tracer.RecordError(span, sendErr)
		p.l.ErrorContext(ctx, "Notification failed permanently",
			slog.String("id", id), slog.Int("retry_count", next.RetryCount), slog.Any("error", sendErr))
	}
	return nil
}

// outcome maps a send result onto the next persisted state
func (p *deliveryProcessor) outcome(n *model.Notification, sendErr error) model.Transition {
	if sendErr == nil {
		return model.Transition{Status: model.StatusSent, RetryCount: n.RetryCount}
	}

	msg := sendErr.Error()
	retryCount := n.RetryCount + 1
	if retryCount >= p.maxRetries {
		return model.Transition{Status: model.StatusFailed, RetryCount: retryCount, ErrorMessage: &msg}
	}
	return model.Transition{Status: model.StatusRetry, RetryCount: retryCount, ErrorMessage: &msg}
}
