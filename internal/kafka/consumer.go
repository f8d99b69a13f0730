package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	appErr "github.com/samims/notifier/internal/errors"
	"github.com/samims/notifier/internal/metrics"
	"github.com/samims/notifier/internal/model"
	"github.com/samims/notifier/internal/service"
	"github.com/samims/notifier/pkg/tracing"
)

const maxBackoff = 30 * time.Second

// Consumer is responsible for handling Kafka message consumption from a topic using a consumer group.
type Consumer struct {
	topic         string
	processor     service.DeliveryProcessor
	consumerGroup sarama.ConsumerGroup
	log           *slog.Logger
	tracer        *tracing.Tracer
}

// NewKafkaConsumer constructs a new Kafka Consumer.
// It receives its consumer group via dependency injection.
func NewKafkaConsumer(
	topic string,
	consumerGroup sarama.ConsumerGroup,
	processor service.DeliveryProcessor,
	log *slog.Logger,
) *Consumer {
	return &Consumer{
		topic:         topic,
		consumerGroup: consumerGroup,
		processor:     processor,
		log:           log.With("layer", "kafka", "component", "consumer"),
		tracer:        tracing.NewTracer("notification-consumer"),
	}
}

// NewConsumerGroup builds the sarama consumer group used by the worker.
func NewConsumerGroup(brokers []string, groupID, clientID string) (sarama.ConsumerGroup, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer group: %w", err)
	}
	return group, nil
}

// Start begins the Kafka consumer loop, listening for messages on the configured topic.
// It will block until the context is canceled or the consumer group is closed.
func (c *Consumer) Start(ctx context.Context) error {
	defer func() {
		if err := c.consumerGroup.Close(); err != nil {
			c.log.Warn("Failed to close consumer group", slog.Any("error", err))
		}
	}()

	c.log.Info("Kafka consumer started", slog.String("topic", c.topic))

	backoff := 1 * time.Second
	for {
		// Consume blocks for the lifetime of one group session
		err := c.consumerGroup.Consume(ctx, []string{c.topic}, c)
		if err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return err
			}
			c.log.Error("Error consuming messages", slog.Any("error", err), slog.Duration("backoff", backoff))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}

		if ctx.Err() != nil {
			c.log.Info("Context cancelled, stopping consumer")
			return ctx.Err()
		}
		backoff = 1 * time.Second
	}
}

// Setup is called once when a new consumer session starts.
func (c *Consumer) Setup(session sarama.ConsumerGroupSession) error {
	for topic, partitions := range session.Claims() {
		c.log.Info("Partition assignment",
			slog.String("topic", topic),
			slog.Any("partitions", partitions),
		)
	}
	return nil
}

// Cleanup is called once when the consumer session ends (rebalance, shutdown, etc).
func (c *Consumer) Cleanup(_ sarama.ConsumerGroupSession) error {
	c.log.Info("Kafka session cleanup complete")
	return nil
}

// ConsumeClaim processes every message of one partition claim.
// Messages are always marked: redelivery is left to the channel, retries to the scheduler.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			c.handle(session.Context(), message)
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

// handle is the per-message failure boundary: nothing escapes it
func (c *Consumer) handle(ctx context.Context, message *sarama.ConsumerMessage) {
	ctx = tracing.ExtractTraceContext(ctx, message.Headers)
	ctx, span := c.tracer.StartConsumerSpan(ctx, "KafkaConsume")
	defer span.End()
	c.tracer.AddKafkaAttributes(span, message.Topic, "process", string(message.Key), message.Partition, message.Offset)

	log := c.log.With(
		slog.String("topic", message.Topic),
		slog.Int("partition", int(message.Partition)),
		slog.Int64("offset", message.Offset),
	)

	defer func() {
		if r := recover(); r != nil {
			metrics.ConsumedEvents.WithLabelValues("panic").Inc()
			log.ErrorContext(ctx, "Panic while processing message", slog.Any("panic", r))
			c.tracer.RecordError(span, fmt.Errorf("panic: %v", r))
		}
	}()

	log.DebugContext(ctx, "Message received")

	var evt model.NotificationRequested
	if err := json.Unmarshal(message.Value, &evt); err != nil || evt.NotificationID == "" {
		if err == nil {
			err = errors.New("missing notification_id")
		}
		metrics.ConsumedEvents.WithLabelValues("invalid").Inc()
		log.ErrorContext(ctx, "Failed to decode message", slog.Any("error", err))
		c.tracer.RecordError(span, err)
		return
	}

	if err := c.processor.Process(ctx, evt.NotificationID); err != nil {
		c.tracer.RecordError(span, err)
		if appErr.IsNotFound(err) {
			metrics.ConsumedEvents.WithLabelValues("not_found").Inc()
			log.WarnContext(ctx, "Event references unknown notification", slog.String("notification_id", evt.NotificationID))
			return
		}
		metrics.ConsumedEvents.WithLabelValues("error").Inc()
		log.ErrorContext(ctx, "Notification handling failed",
			slog.String("notification_id", evt.NotificationID),
			slog.Any("error", err))
		return
	}
	metrics.ConsumedEvents.WithLabelValues("processed").Inc()
}
