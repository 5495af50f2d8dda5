package notification

import (
	"context"
)

// Service defines the notification service interface
type Service interface {
	// Queue notification (async processing via background workers)
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error
	QueueBulkNotification(ctx context.Context, reqs []CreateNotificationRequest) error

	GetNotifications(ctx context.Context, recipientID string, page, pageSize int, unreadOnly bool) (*NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, recipientID string) (int, error)
	MarkAsRead(ctx context.Context, recipientID string, notificationID string) (NotificationResponse, error)
	MarkAllAsRead(ctx context.Context, recipientID string) (int64, error)

	GetPreferences(ctx context.Context, recipientID string) ([]PreferenceResponse, error)
	UpdatePreference(ctx context.Context, recipientID string, req UpdatePreferenceRequest) error

	Subscribe(ctx context.Context, recipientID string) (<-chan SSEEvent, func())

	Stop()
}
