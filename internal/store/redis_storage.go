package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	appErr "github.com/samims/notifier/internal/errors"
	"github.com/samims/notifier/internal/model"
)

const (
	notificationKeyPrefix = "notification:"
	statusSetKeyPrefix    = "notifications:status:"
)

// redisStorage keeps each notification in a hash and indexes ids by status in sets.
// Conditional writes use WATCH/MULTI so a concurrent status change aborts the transaction.
type redisStorage struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisClient creates the client and checks connectivity.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// NewRedisStorage returns a NotificationStorage backed by redis.
func NewRedisStorage(client *redis.Client) NotificationStorage {
	return &redisStorage{client: client, now: func() time.Time { return time.Now().UTC() }}
}

func notificationKey(id string) string {
	return notificationKeyPrefix + id
}

func statusSetKey(status model.Status) string {
	return statusSetKeyPrefix + string(status)
}

func (s *redisStorage) Create(ctx context.Context, n *model.Notification) (string, error) {
	if n == nil {
		return "", fmt.Errorf("notification cannot be nil")
	}
	if n.ID == "" {
		return "", fmt.Errorf("notification id cannot be empty")
	}

	key := notificationKey(n.ID)
	now := s.now()

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return appErr.NewConflict("notification %s already exists", n.ID)
		}

		fields := map[string]interface{}{
			"id":          n.ID,
			"recipient":   n.Recipient,
			"subject":     n.Subject,
			"body":        n.Body,
			"channel":     string(n.Channel),
			"status":      string(n.Status),
			"retry_count": n.RetryCount,
			"created_at":  now.Format(time.RFC3339Nano),
			"updated_at":  now.Format(time.RFC3339Nano),
		}
		if n.ErrorMessage != nil {
			fields["error_message"] = *n.ErrorMessage
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fields)
			pipe.SAdd(ctx, statusSetKey(n.Status), n.ID)
			return nil
		})
		return err
	}, key)

	if err != nil {
		if appErr.IsConflict(err) {
			return "", err
		}
		if errors.Is(err, redis.TxFailedErr) {
			return "", appErr.NewConflict("notification %s was created concurrently", n.ID)
		}
		return "", fmt.Errorf("failed to create notification: %w", err)
	}

	n.CreatedAt = now
	n.UpdatedAt = now
	return n.ID, nil
}

func (s *redisStorage) Get(ctx context.Context, id string) (*model.Notification, error) {
	fields, err := s.client.HGetAll(ctx, notificationKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	if len(fields) == 0 {
		return nil, appErr.NewNotFound("notification %s", id)
	}
	return decodeNotification(fields)
}

func (s *redisStorage) ConditionalUpdate(ctx context.Context, id string, expected model.Observed, t model.Transition) error {
	key := notificationKey(id)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		vals, err := tx.HMGet(ctx, key, "status", "retry_count", "updated_at").Result()
		if err != nil {
			return err
		}
		current, ok := vals[0].(string)
		if !ok {
			return appErr.NewNotFound("notification %s", id)
		}
		retryCount, _ := vals[1].(string)
		if model.Status(current) != expected.Status || retryCount != strconv.Itoa(expected.RetryCount) {
			return appErr.NewConflict("notification %s is %s/%s, expected %s/%d",
				id, current, retryCount, expected.Status, expected.RetryCount)
		}

		updatedAt := s.now()
		if raw, ok := vals[2].(string); ok {
			if prev, err := time.Parse(time.RFC3339Nano, raw); err == nil && prev.After(updatedAt) {
				updatedAt = prev
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key,
				"status", string(t.Status),
				"retry_count", t.RetryCount,
				"updated_at", updatedAt.Format(time.RFC3339Nano),
			)
			if t.ErrorMessage != nil {
				pipe.HSet(ctx, key, "error_message", *t.ErrorMessage)
			} else {
				pipe.HDel(ctx, key, "error_message")
			}
			if t.Status != expected.Status {
				pipe.SRem(ctx, statusSetKey(expected.Status), id)
				pipe.SAdd(ctx, statusSetKey(t.Status), id)
			}
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case appErr.IsConflict(err), appErr.IsNotFound(err):
		return err
	case errors.Is(err, redis.TxFailedErr):
		return appErr.NewConflict("notification %s changed concurrently", id)
	}
	return fmt.Errorf("failed to update notification: %w", err)
}

// ListByStatus reads the status index then loads each hash in one pipeline.
// Records that moved to another status between the two reads are dropped.
func (s *redisStorage) ListByStatus(ctx context.Context, status model.Status) ([]model.Notification, error) {
	ids, err := s.client.SMembers(ctx, statusSetKey(status)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list notification ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, notificationKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}

	notifs := make([]model.Notification, 0, len(ids))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 || model.Status(fields["status"]) != status {
			continue
		}
		n, err := decodeNotification(fields)
		if err != nil {
			return nil, err
		}
		notifs = append(notifs, *n)
	}
	return notifs, nil
}

func (s *redisStorage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func decodeNotification(fields map[string]string) (*model.Notification, error) {
	retryCount, err := strconv.Atoi(fields["retry_count"])
	if err != nil {
		return nil, fmt.Errorf("invalid retry_count %q: %w", fields["retry_count"], err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, fields["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("invalid updated_at: %w", err)
	}

	n := &model.Notification{
		ID:         fields["id"],
		Recipient:  fields["recipient"],
		Subject:    fields["subject"],
		Body:       fields["body"],
		Channel:    model.Channel(fields["channel"]),
		Status:     model.Status(fields["status"]),
		RetryCount: retryCount,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
	if msg, ok := fields["error_message"]; ok {
		n.ErrorMessage = &msg
	}
	return n, nil
}
