package notification

import "errors"

var (
	ErrNotificationNotFound    = errors.New("notification not found")
	ErrUnauthorized            = errors.New("unauthorized to access this notification")
	ErrInvalidNotificationType = errors.New("invalid notification type")
	ErrQueueFull               = errors.New("notification queue is full")
)
