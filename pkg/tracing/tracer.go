package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	AttrNotificationID      = "notification.id"
	AttrNotificationChannel = "notification.channel"
	AttrNotificationStatus  = "notification.status"
	AttrNotificationRetries = "notification.retry_count"

	AttrMessagingSystem         = "messaging.system"
	AttrMessagingDestination    = "messaging.destination"
	AttrMessagingOperation      = "messaging.operation"
	AttrMessagingKafkaPartition = "messaging.kafka.partition"
	AttrMessagingKafkaOffset    = "messaging.kafka.offset"
	AttrMessagingKafkaKey       = "messaging.kafka.message_key"
)

// Tracer wraps an OpenTelemetry tracer with span helpers for this service
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer from the globally registered provider
func NewTracer(name string) *Tracer {
	return &Tracer{tracer: otel.Tracer(name)}
}

// StartServerSpan creates a span for an inbound request
func (t *Tracer) StartServerSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.startSpan(ctx, operation, trace.SpanKindServer, attrs...)
}

// StartProducerSpan creates a span for publishing a message
func (t *Tracer) StartProducerSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.startSpan(ctx, operation, trace.SpanKindProducer, attrs...)
}

// StartConsumerSpan creates a span for handling a consumed message
func (t *Tracer) StartConsumerSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.startSpan(ctx, operation, trace.SpanKindConsumer, attrs...)
}

// StartInternalSpan creates a span for in-process work such as a delivery attempt
func (t *Tracer) StartInternalSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.startSpan(ctx, operation, trace.SpanKindInternal, attrs...)
}

func (t *Tracer) startSpan(ctx context.Context, operation string, kind trace.SpanKind, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, operation,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(kind),
	)
}

// RecordError records an error on the span
func (t *Tracer) RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// AddNotificationAttributes tags the span with the notification being worked on
func (t *Tracer) AddNotificationAttributes(span trace.Span, id, channel, status string, retryCount int) {
	span.SetAttributes(
		attribute.String(AttrNotificationID, id),
		attribute.String(AttrNotificationChannel, channel),
		attribute.String(AttrNotificationStatus, status),
		attribute.Int(AttrNotificationRetries, retryCount),
	)
}

// AddKafkaAttributes adds Kafka operation attributes
func (t *Tracer) AddKafkaAttributes(span trace.Span, topic, operation, key string, partition int32, offset int64) {
	span.SetAttributes(
		attribute.String(AttrMessagingSystem, "kafka"),
		attribute.String(AttrMessagingDestination, topic),
		attribute.String(AttrMessagingOperation, operation),
		attribute.String(AttrMessagingKafkaKey, key),
		attribute.Int64(AttrMessagingKafkaPartition, int64(partition)),
		attribute.Int64(AttrMessagingKafkaOffset, offset),
	)
}
