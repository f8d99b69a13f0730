package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	appErr "github.com/samims/notifier/internal/errors"
	"github.com/samims/notifier/internal/model"
)

const notificationColumns = `id, recipient, subject, body, channel, status, retry_count, error_message, created_at, updated_at`

type sqlStorage struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLStorage returns a NotificationStorage backed by postgres or sqlite through sqlx.
func NewSQLStorage(db *sqlx.DB) NotificationStorage {
	return &sqlStorage{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts a new notification; CreatedAt and UpdatedAt are stamped here
func (s *sqlStorage) Create(ctx context.Context, n *model.Notification) (string, error) {
	if n == nil {
		return "", fmt.Errorf("notification cannot be nil")
	}
	if n.ID == "" {
		return "", fmt.Errorf("notification id cannot be empty")
	}

	now := s.now()
	query := s.db.Rebind(`INSERT INTO notifications (` + notificationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		n.ID, n.Recipient, n.Subject, n.Body, string(n.Channel), string(n.Status),
		n.RetryCount, n.ErrorMessage, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", appErr.NewConflict("notification %s already exists", n.ID)
		}
		return "", fmt.Errorf("failed to insert notification: %w", err)
	}

	n.CreatedAt = now
	n.UpdatedAt = now
	return n.ID, nil
}

// Get returns the notification or ErrNotFound
func (s *sqlStorage) Get(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	query := s.db.Rebind(`SELECT ` + notificationColumns + ` FROM notifications WHERE id = ?`)
	if err := s.db.GetContext(ctx, &n, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErr.NewNotFound("notification %s", id)
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &n, nil
}

// ConditionalUpdate writes the transition only while the row still has the expected status
// and retry count. The predicate in the WHERE clause makes the check and the write a single
// statement; the CASE keeps updated_at from moving backwards when writer clocks disagree.
func (s *sqlStorage) ConditionalUpdate(ctx context.Context, id string, expected model.Observed, t model.Transition) error {
	query := s.db.Rebind(`UPDATE notifications
		SET status = ?, retry_count = ?, error_message = ?,
			updated_at = CASE WHEN updated_at < ? THEN ? ELSE updated_at END
		WHERE id = ? AND status = ? AND retry_count = ?`)

	now := s.now()
	res, err := s.db.ExecContext(ctx, query,
		string(t.Status), t.RetryCount, t.ErrorMessage, now, now,
		id, string(expected.Status), expected.RetryCount)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 1 {
		return nil
	}

	// nothing matched: either the row is gone or another attempt moved it first
	var current struct {
		Status     string `db:"status"`
		RetryCount int    `db:"retry_count"`
	}
	err = s.db.GetContext(ctx, &current, s.db.Rebind(`SELECT status, retry_count FROM notifications WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return appErr.NewNotFound("notification %s", id)
	}
	if err != nil {
		return fmt.Errorf("failed to read notification status: %w", err)
	}
	return appErr.NewConflict("notification %s is %s/%d, expected %s/%d",
		id, current.Status, current.RetryCount, expected.Status, expected.RetryCount)
}

// ListByStatus returns a snapshot of every notification currently in status
func (s *sqlStorage) ListByStatus(ctx context.Context, status model.Status) ([]model.Notification, error) {
	var notifs []model.Notification
	query := s.db.Rebind(`SELECT ` + notificationColumns + ` FROM notifications WHERE status = ?`)
	if err := s.db.SelectContext(ctx, &notifs, query, string(status)); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifs, nil
}

func (s *sqlStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
