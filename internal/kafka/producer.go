package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/samims/notifier/internal/model"
	"github.com/samims/notifier/pkg/tracing"
)

// Producer publishes NotificationRequested events keyed by notification id so that
// every event of one notification lands on the same partition.
type Producer interface {
	Start(ctx context.Context)
	Publish(ctx context.Context, evt model.NotificationRequested) error
	Close(ctx context.Context)
}

type producer struct {
	asyncProducer sarama.AsyncProducer
	topic         string
	log           *slog.Logger
	wg            *sync.WaitGroup
	closeOnce     sync.Once
	tracer        *tracing.Tracer
}

// NewProducer uses DI to inject AsyncProducer, logger, topic and WaitGroup.
func NewProducer(asyncProducer sarama.AsyncProducer, topic string, log *slog.Logger, wg *sync.WaitGroup) Producer {
	if asyncProducer == nil || log == nil || wg == nil {
		panic("NewProducer: nil dependencies provided")
	}
	if topic == "" {
		panic("NewProducer: topic must not be empty")
	}
	return &producer{
		asyncProducer: asyncProducer,
		topic:         topic,
		log:           log.With("layer", "kafka", "component", "producer"),
		wg:            wg,
		tracer:        tracing.NewTracer("notification-producer"),
	}
}

// NewAsyncProducer builds the sarama producer used in production.
// Successes must be enabled because Start drains both result channels.
func NewAsyncProducer(brokers []string, clientID string) (sarama.AsyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.Partitioner = sarama.NewHashPartitioner

	p, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return p, nil
}

// Start launches background handlers for success and error channels
func (p *producer) Start(ctx context.Context) {
	p.log.Info("Starting Kafka producer handlers")
	p.wg.Add(2)
	go p.handleSuccess(ctx)
	go p.handleErrors(ctx)
}

func (p *producer) handleSuccess(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case msg, ok := <-p.asyncProducer.Successes():
			if !ok {
				p.log.Info("Kafka successes channel closed")
				return
			}
			key, _ := msg.Key.Encode()
			p.log.Debug("Message delivered",
				slog.String("topic", msg.Topic),
				slog.Int("partition", int(msg.Partition)),
				slog.Int64("offset", msg.Offset),
				slog.String("key", string(key)))
		case <-ctx.Done():
			p.log.Info("Kafka success handler stopped by context")
			return
		}
	}
}

// handleErrors logs failed deliveries; the notification stays PENDING in the store
func (p *producer) handleErrors(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case perr, ok := <-p.asyncProducer.Errors():
			if !ok {
				p.log.Info("Kafka errors channel closed")
				return
			}
			var key []byte
			if perr.Msg != nil && perr.Msg.Key != nil {
				key, _ = perr.Msg.Key.Encode()
			}
			p.log.Error("Message delivery failed",
				slog.String("topic", p.topic),
				slog.String("key", string(key)),
				slog.Any("error", perr.Err))
		case <-ctx.Done():
			p.log.Info("Kafka error handler stopped by context")
			return
		}
	}
}

// Publish queues the event on the topic with the trace context attached as headers
func (p *producer) Publish(ctx context.Context, evt model.NotificationRequested) error {
	ctx, span := p.tracer.StartProducerSpan(ctx, "KafkaPublish")
	defer span.End()

	data, err := json.Marshal(evt)
	if err != nil {
		p.tracer.RecordError(span, err)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(evt.NotificationID),
		Value:     sarama.ByteEncoder(data),
		Timestamp: time.Now(),
		Headers:   tracing.InjectTraceContext(ctx, nil),
	}

	select {
	case p.asyncProducer.Input() <- msg:
		p.log.DebugContext(ctx, "Message queued to Kafka",
			slog.String("topic", p.topic),
			slog.String("key", evt.NotificationID))
		p.tracer.AddKafkaAttributes(span, p.topic, "publish", evt.NotificationID, -1, -1)
		return nil
	case <-ctx.Done():
		p.log.WarnContext(ctx, "Publish cancelled by context",
			slog.String("notification_id", evt.NotificationID))
		p.tracer.RecordError(span, ctx.Err())
		return ctx.Err()
	}
}

// Close shuts down the producer and waits for the handlers to drain
func (p *producer) Close(_ context.Context) {
	p.closeOnce.Do(func() {
		p.log.Info("Closing Kafka producer...")
		p.asyncProducer.AsyncClose()
		p.wg.Wait()
		p.log.Info("Kafka producer closed")
	})
}
