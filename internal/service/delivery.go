package service

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	appErr "github.com/samims/notifier/internal/errors"
	"github.com/samims/notifier/internal/metrics"
	"github.com/samims/notifier/internal/model"
)

// Sender performs the actual channel delivery of a notification
type Sender interface {
	Send(ctx context.Context, n model.Notification) error
}

// FailureSimulator decides whether a simulated send fails.
type FailureSimulator interface {
	ShouldFail(n model.Notification) bool
}

// FailureFunc adapts a plain function to FailureSimulator
type FailureFunc func(n model.Notification) bool

func (f FailureFunc) ShouldFail(n model.Notification) bool {
	return f(n)
}

// randomFailure fails with a fixed probability using its own source
type randomFailure struct {
	mu   sync.Mutex
	rate float64
	rng  *rand.Rand
}

// NewRandomFailure fails a send with probability rate. rng must not be shared.
func NewRandomFailure(rate float64, rng *rand.Rand) FailureSimulator {
	return &randomFailure{rate: rate, rng: rng}
}

func (r *randomFailure) ShouldFail(model.Notification) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64() < r.rate
}

// simulatedSender stands in for a real email/SMS/push transport
type simulatedSender struct {
	duration time.Duration
	failure  FailureSimulator
	log      *slog.Logger
}

// NewSimulatedSender creates a sender that takes duration per call and fails when failure says so
func NewSimulatedSender(duration time.Duration, failure FailureSimulator, log *slog.Logger) Sender {
	return &simulatedSender{
		duration: duration,
		failure:  failure,
		log:      log.With("layer", "service", "component", "simulatedSender"),
	}
}

// Send simulates the delivery of a notification. It is not cancellable.
func (s *simulatedSender) Send(_ context.Context, n model.Notification) error {
	s.log.Info("Simulating delivery",
		slog.String("id", n.ID),
		slog.String("channel", string(n.Channel)),
		slog.String("recipient", n.Recipient))

	start := time.Now()
	time.Sleep(s.duration) // simulating network latency
	metrics.SendDuration.WithLabelValues(string(n.Channel)).Observe(time.Since(start).Seconds())

	if s.failure != nil && s.failure.ShouldFail(n) {
		return appErr.NewSendFailed("simulated %s sending failure", n.Channel)
	}
	return nil
}
