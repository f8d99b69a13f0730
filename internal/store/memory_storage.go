package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	appErr "github.com/samims/notifier/internal/errors"
	"github.com/samims/notifier/internal/model"
)

// memoryStorage is a process-local store used for local runs and tests.
// A single mutex makes every conditional update atomic.
type memoryStorage struct {
	mu    sync.RWMutex
	items map[string]model.Notification
	now   func() time.Time
}

// NewMemoryStorage returns an empty in-process NotificationStorage.
func NewMemoryStorage() NotificationStorage {
	return &memoryStorage{
		items: make(map[string]model.Notification),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *memoryStorage) Create(_ context.Context, n *model.Notification) (string, error) {
	if n == nil {
		return "", fmt.Errorf("notification cannot be nil")
	}
	if n.ID == "" {
		return "", fmt.Errorf("notification id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[n.ID]; ok {
		return "", appErr.NewConflict("notification %s already exists", n.ID)
	}
	now := s.now()
	n.CreatedAt = now
	n.UpdatedAt = now
	s.items[n.ID] = cloneNotification(*n)
	return n.ID, nil
}

func (s *memoryStorage) Get(_ context.Context, id string) (*model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.items[id]
	if !ok {
		return nil, appErr.NewNotFound("notification %s", id)
	}
	out := cloneNotification(n)
	return &out, nil
}

func (s *memoryStorage) ConditionalUpdate(_ context.Context, id string, expected model.Observed, t model.Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[id]
	if !ok {
		return appErr.NewNotFound("notification %s", id)
	}
	if n.Observed() != expected {
		return appErr.NewConflict("notification %s is %s/%d, expected %s/%d",
			id, n.Status, n.RetryCount, expected.Status, expected.RetryCount)
	}

	n.Status = t.Status
	n.RetryCount = t.RetryCount
	n.ErrorMessage = copyString(t.ErrorMessage)
	if now := s.now(); now.After(n.UpdatedAt) {
		n.UpdatedAt = now
	}
	s.items[id] = n
	return nil
}

func (s *memoryStorage) ListByStatus(_ context.Context, status model.Status) ([]model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Notification
	for _, n := range s.items {
		if n.Status == status {
			out = append(out, cloneNotification(n))
		}
	}
	return out, nil
}

func (s *memoryStorage) Ping(context.Context) error {
	return nil
}

func cloneNotification(n model.Notification) model.Notification {
	n.ErrorMessage = copyString(n.ErrorMessage)
	return n
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
