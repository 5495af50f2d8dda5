package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const notificationColumns = `id, recipient_id, sender_id, request_id, type, title, message, data, is_read, read_at, created_at`

type notificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*notification.Notification, error) {
	var n notification.Notification
	var dataJSON []byte
	var notifType string

	if err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&n.SenderID,
		&n.RequestID,
		&notifType,
		&n.Title,
		&n.Message,
		&dataJSON,
		&n.IsRead,
		&n.ReadAt,
		&n.CreatedAt,
	); err != nil {
		return nil, err
	}

	n.Type = notification.NotificationType(notifType)
	if dataJSON != nil {
		if err := json.Unmarshal(dataJSON, &n.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification data: %w", err)
		}
	}
	return &n, nil
}

func notificationArgs(n *notification.Notification) ([]any, error) {
	if n.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, err
		}
		n.ID = id.String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	var dataJSON []byte
	if n.Data != nil {
		var err error
		dataJSON, err = json.Marshal(n.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal notification data: %w", err)
		}
	}

	return []any{
		n.ID,
		n.RecipientID,
		n.SenderID,
		n.RequestID,
		string(n.Type),
		n.Title,
		n.Message,
		dataJSON,
		n.IsRead,
		n.CreatedAt,
	}, nil
}

// Create creates a new notification
func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	q := GetQuerier(ctx, r.db)

	args, err := notificationArgs(n)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO notifications (id, recipient_id, sender_id, request_id, type, title, message, data, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// CreateBatch inserts all notifications with one multi-row INSERT
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	const cols = 10
	valueStrings := make([]string, 0, len(notifications))
	valueArgs := make([]any, 0, len(notifications)*cols)

	for i, n := range notifications {
		args, err := notificationArgs(n)
		if err != nil {
			return err
		}

		placeholders := make([]string, cols)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", i*cols+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ", ")+")")
		valueArgs = append(valueArgs, args...)
	}

	query := fmt.Sprintf(`
		INSERT INTO notifications (id, recipient_id, sender_id, request_id, type, title, message, data, is_read, created_at)
		VALUES %s
	`, strings.Join(valueStrings, ", "))

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to batch create notifications: %w", err)
	}
	return nil
}

// GetByID retrieves a notification by ID
func (r *notificationRepository) GetByID(ctx context.Context, id string) (*notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	n, err := scanNotification(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// GetByRecipient pages through a recipient's notifications, newest first
func (r *notificationRepository) GetByRecipient(ctx context.Context, recipientID string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int, error) {
	q := GetQuerier(ctx, r.db)

	offset := (page - 1) * pageSize

	whereClause := "recipient_id = $1"
	if unreadOnly {
		whereClause += " AND is_read = false"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM notifications WHERE " + whereClause
	if err := q.QueryRow(ctx, countQuery, recipientID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE ` + whereClause + `
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := q.Query(ctx, query, recipientID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// GetUnreadCount returns the count of unread notifications for a recipient
func (r *notificationRepository) GetUnreadCount(ctx context.Context, recipientID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = false`
	if err := q.QueryRow(ctx, query, recipientID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkAsRead sets is_read; COALESCE keeps the first read_at
func (r *notificationRepository) MarkAsRead(ctx context.Context, id string, recipientID string) (*notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notifications
		SET is_read = true, read_at = COALESCE(read_at, $1)
		WHERE id = $2 AND recipient_id = $3
		RETURNING ` + notificationColumns

	n, err := scanNotification(q.QueryRow(ctx, query, time.Now().UTC(), id, recipientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return n, nil
}

// MarkAllAsRead marks all unread notifications of a recipient as read
func (r *notificationRepository) MarkAllAsRead(ctx context.Context, recipientID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notifications
		SET is_read = true, read_at = $1
		WHERE recipient_id = $2 AND is_read = false
	`

	tag, err := q.Exec(ctx, query, time.Now().UTC(), recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ============= Preferences =============

func (r *notificationRepository) GetPreferences(ctx context.Context, recipientID string) ([]*notification.NotificationPreference, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, recipient_id, notification_type, email_enabled, push_enabled, created_at, updated_at
		FROM notification_preferences
		WHERE recipient_id = $1
	`

	rows, err := q.Query(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	var prefs []*notification.NotificationPreference
	for rows.Next() {
		var p notification.NotificationPreference
		var notifType string

		if err := rows.Scan(
			&p.ID,
			&p.RecipientID,
			&notifType,
			&p.EmailEnabled,
			&p.PushEnabled,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}

		p.NotificationType = notification.NotificationType(notifType)
		prefs = append(prefs, &p)
	}

	return prefs, rows.Err()
}

// UpsertPreference creates or updates a notification preference
func (r *notificationRepository) UpsertPreference(ctx context.Context, pref *notification.NotificationPreference) error {
	q := GetQuerier(ctx, r.db)

	if pref.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		pref.ID = id.String()
	}

	query := `
		INSERT INTO notification_preferences (id, recipient_id, notification_type, email_enabled, push_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (recipient_id, notification_type)
		DO UPDATE SET email_enabled = EXCLUDED.email_enabled, push_enabled = EXCLUDED.push_enabled, updated_at = EXCLUDED.updated_at
	`

	now := time.Now().UTC()
	if _, err := q.Exec(ctx, query,
		pref.ID,
		pref.RecipientID,
		string(pref.NotificationType),
		pref.EmailEnabled,
		pref.PushEnabled,
		now,
	); err != nil {
		return fmt.Errorf("failed to upsert preference: %w", err)
	}
	return nil
}

// Channels reports the push and email flags; both default to enabled
func (r *notificationRepository) Channels(ctx context.Context, recipientID string, notifType notification.NotificationType) (bool, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT push_enabled, email_enabled
		FROM notification_preferences
		WHERE recipient_id = $1 AND notification_type = $2
	`

	var push, email bool
	err := q.QueryRow(ctx, query, recipientID, string(notifType)).Scan(&push, &email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return true, true, nil
		}
		return false, false, fmt.Errorf("failed to read notification channels: %w", err)
	}
	return push, email, nil
}
