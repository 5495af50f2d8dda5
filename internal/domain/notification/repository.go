package notification

import (
	"context"
)

// Repository defines the notification repository interface
type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	CreateBatch(ctx context.Context, notifications []*Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	GetByRecipient(ctx context.Context, recipientID string, page, pageSize int, unreadOnly bool) ([]*Notification, int, error)
	GetUnreadCount(ctx context.Context, recipientID string) (int, error)
	// MarkAsRead sets is_read once; an already read notification keeps its first read_at.
	MarkAsRead(ctx context.Context, id string, recipientID string) (*Notification, error)
	MarkAllAsRead(ctx context.Context, recipientID string) (int64, error)

	GetPreferences(ctx context.Context, recipientID string) ([]*NotificationPreference, error)
	UpsertPreference(ctx context.Context, pref *NotificationPreference) error
	// Channels returns push and email flags, defaulting to enabled when no preference exists.
	Channels(ctx context.Context, recipientID string, notifType NotificationType) (push bool, email bool, err error)
}

// Deliverer sends a stored notification through an outside channel such as email.
type Deliverer interface {
	Deliver(ctx context.Context, n *Notification) error
}
