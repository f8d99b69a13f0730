package scheduler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samims/notifier/internal/metrics"
	"github.com/samims/notifier/internal/model"
	"github.com/samims/notifier/internal/service"
	"github.com/samims/notifier/internal/store"
)

// RetryScheduler periodically re-drives notifications left in RETRY.
// There is no per-notification backoff: an eligible record is attempted at most once per sweep.
type RetryScheduler struct {
	store      store.NotificationStorage
	processor  service.DeliveryProcessor
	interval   time.Duration
	maxRetries int
	workers    int
	logger     *slog.Logger
}

// NewRetryScheduler creates a scheduler; workers <= 1 processes each batch sequentially.
func NewRetryScheduler(
	store store.NotificationStorage,
	processor service.DeliveryProcessor,
	interval time.Duration,
	maxRetries int,
	workers int,
	logger *slog.Logger,
) *RetryScheduler {
	if workers < 1 {
		workers = 1
	}
	return &RetryScheduler{
		store:      store,
		processor:  processor,
		interval:   interval,
		maxRetries: maxRetries,
		workers:    workers,
		logger:     logger.With("layer", "scheduler", "component", "retryScheduler"),
	}
}

// Start runs a sweep every interval until ctx is cancelled.
func (rs *RetryScheduler) Start(ctx context.Context) error {
	rs.logger.InfoContext(ctx, "Retry scheduler started",
		slog.Duration("interval", rs.interval),
		slog.Int("workers", rs.workers))

	ticker := time.NewTicker(rs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			rs.logger.InfoContext(ctx, "Retry scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			rs.Sweep(ctx)
		}
	}
}

// Sweep attempts every RETRY notification whose scan-time count is below the cap.
// It returns the number of notifications handed to the processor.
func (rs *RetryScheduler) Sweep(ctx context.Context) int {
	start := time.Now()
	defer func() {
		metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}()

	notifs, err := rs.store.ListByStatus(ctx, model.StatusRetry)
	if err != nil {
		rs.logger.ErrorContext(ctx, "Error fetching retry notifications from store", slog.Any("error", err))
		return 0
	}

	batch := make([]string, 0, len(notifs))
	for _, n := range notifs {
		if n.RetryCount < rs.maxRetries {
			batch = append(batch, n.ID)
		}
	}
	metrics.SweepBatchSize.Set(float64(len(batch)))

	if len(batch) == 0 {
		rs.logger.DebugContext(ctx, "No notifications to retry")
		return 0
	}
	rs.logger.InfoContext(ctx, "Retrying batch of notifications", slog.Int("count", len(batch)))

	eg := errgroup.Group{}
	eg.SetLimit(rs.workers)
	for _, id := range batch {
		eg.Go(func() error {
			rs.retry(ctx, id)
			return nil
		})
	}
	_ = eg.Wait()

	return len(batch)
}

// retry absorbs every processor error so one bad record never stops the batch
func (rs *RetryScheduler) retry(ctx context.Context, id string) {
	defer func() {
		if r := recover(); r != nil {
			rs.logger.ErrorContext(ctx, "Panic while retrying notification",
				slog.String("id", id), slog.Any("panic", r))
		}
	}()

	if err := rs.processor.Process(ctx, id); err != nil {
		rs.logger.ErrorContext(ctx, "Retry of notification failed", slog.String("id", id), slog.Any("error", err))
	}
}
