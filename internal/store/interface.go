package store

import (
	"context"

	"github.com/samims/notifier/internal/model"
)

// NotificationStorage is the single source of truth for notification records.
// ConditionalUpdate is the only concurrency primitive the delivery processor relies on:
// it must apply the transition only if the stored status and retry count still equal
// expected, and report ErrConflict otherwise. UpdatedAt never moves backwards and
// CreatedAt is never rewritten.
type NotificationStorage interface {
	Create(ctx context.Context, n *model.Notification) (string, error)
	Get(ctx context.Context, id string) (*model.Notification, error)
	ConditionalUpdate(ctx context.Context, id string, expected model.Observed, t model.Transition) error
	ListByStatus(ctx context.Context, status model.Status) ([]model.Notification, error)
	Ping(ctx context.Context) error
}
