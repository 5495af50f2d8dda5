package notification

import (
	"time"
)

// NotificationType is the specific kind of approval notification.
type NotificationType string

const (
	TypeRequest     NotificationType = "REQUEST"
	TypeApproval    NotificationType = "APPROVAL"
	TypeDisapproval NotificationType = "DISAPPROVAL"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeRequest,
		TypeApproval,
		TypeDisapproval,
	}
}

func (t NotificationType) Valid() bool {
	for _, v := range AllNotificationTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// Notification is addressed to an employee and, for workflow events, points at a request.
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	RequestID   *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// NotificationPreference represents an employee's delivery choice for a notification type
type NotificationPreference struct {
	ID               string
	RecipientID      string
	NotificationType NotificationType
	EmailEnabled     bool
	PushEnabled      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
