package notification

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/sse"
	"github.com/google/uuid"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type queued struct {
	req   notification.CreateNotificationRequest
	push  bool
	email bool
}

type service struct {
	repo      notification.Repository
	broker    sse.Broker
	deliverer notification.Deliverer
	config    Config
	now       func() time.Time

	queue    chan queued
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewNotificationService creates a new notification service with background workers.
// deliverer may be nil when no outside channel is configured.
func NewNotificationService(repo notification.Repository, broker sse.Broker, deliverer notification.Deliverer, cfg Config) notification.Service {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		repo:      repo,
		broker:    broker,
		deliverer: deliverer,
		config:    cfg,
		now:       time.Now,
		queue:     make(chan queued, cfg.QueueSize),
		stopCh:    make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("notification service started",
		"workers", cfg.WorkerCount,
		"batch_size", cfg.BatchSize,
		"flush_interval", cfg.FlushInterval)

	return s
}

func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]queued, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		notifications := make([]*notification.Notification, len(batch))
		for i, q := range batch {
			notifications[i] = s.newEntity(q.req)
		}

		if err := s.repo.CreateBatch(ctx, notifications); err != nil {
			slog.Error("notification worker: batch insert failed", "worker", id, "count", len(notifications), "error", err)
		} else {
			slog.Debug("notification worker: inserted", "worker", id, "count", len(notifications))
			for i, n := range notifications {
				s.fanOut(ctx, n, batch[i].push, batch[i].email)
			}
		}

		batch = batch[:0]
	}

	for {
		select {
		case q := <-s.queue:
			batch = append(batch, q)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			for {
				select {
				case q := <-s.queue:
					batch = append(batch, q)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (s *service) newEntity(req notification.CreateNotificationRequest) *notification.Notification {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &notification.Notification{
		ID:          id.String(),
		RecipientID: req.RecipientID,
		SenderID:    req.SenderID,
		RequestID:   req.RequestID,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		Data:        req.Data,
		IsRead:      false,
		CreatedAt:   s.now().UTC(),
	}
}

// fanOut pushes a stored notification to live subscribers and the outside channel.
// Failures are logged only.
func (s *service) fanOut(ctx context.Context, n *notification.Notification, push, email bool) {
	if push && s.broker != nil {
		payload, err := json.Marshal(notification.ToResponse(n))
		if err == nil {
			s.broker.Publish(n.RecipientID, sse.Event{
				RecipientID: n.RecipientID,
				Event:       "notification",
				Data:        payload,
			})
		}
	}
	if email && s.deliverer != nil {
		if err := s.deliverer.Deliver(ctx, n); err != nil {
			slog.Warn("notification delivery failed",
				"notification_id", n.ID,
				"recipient_id", n.RecipientID,
				"error", err)
		}
	}
}

// QueueNotification queues a notification for async processing
func (s *service) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	if !req.Type.Valid() {
		return notification.ErrInvalidNotificationType
	}

	push, email, err := s.repo.Channels(ctx, req.RecipientID, req.Type)
	if err != nil {
		return err
	}

	q := queued{req: req, push: push, email: email}
	select {
	case s.queue <- q:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		// queue full
		return s.directInsert(ctx, q)
	}
}

// QueueBulkNotification queues multiple notifications for async processing
func (s *service) QueueBulkNotification(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	for _, req := range reqs {
		if err := s.QueueNotification(ctx, req); err != nil {
			slog.Error("failed to queue notification", "recipient_id", req.RecipientID, "type", req.Type, "error", err)
		}
	}
	return nil
}

func (s *service) directInsert(ctx context.Context, q queued) error {
	n := s.newEntity(q.req)
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.fanOut(ctx, n, q.push, q.email)
	return nil
}

// GetNotifications retrieves paginated notifications for a recipient
func (s *service) GetNotifications(ctx context.Context, recipientID string, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notifications, total, err := s.repo.GetByRecipient(ctx, recipientID, page, pageSize, unreadOnly)
	if err != nil {
		return nil, err
	}

	unreadCount, err := s.repo.GetUnreadCount(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	responses := make([]notification.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = notification.ToResponse(n)
	}

	return &notification.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unreadCount,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

func (s *service) GetUnreadCount(ctx context.Context, recipientID string) (int, error) {
	return s.repo.GetUnreadCount(ctx, recipientID)
}

// MarkAsRead marks one notification read. Only its recipient may do so.
func (s *service) MarkAsRead(ctx context.Context, recipientID string, notificationID string) (notification.NotificationResponse, error) {
	existing, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return notification.NotificationResponse{}, err
	}
	if existing.RecipientID != recipientID {
		return notification.NotificationResponse{}, notification.ErrUnauthorized
	}
	if existing.IsRead {
		return notification.ToResponse(existing), nil
	}

	updated, err := s.repo.MarkAsRead(ctx, notificationID, recipientID)
	if err != nil {
		return notification.NotificationResponse{}, err
	}
	return notification.ToResponse(updated), nil
}

func (s *service) MarkAllAsRead(ctx context.Context, recipientID string) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, recipientID)
}

// GetPreferences lists every type, defaulting to enabled where nothing is stored
func (s *service) GetPreferences(ctx context.Context, recipientID string) ([]notification.PreferenceResponse, error) {
	prefs, err := s.repo.GetPreferences(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	prefMap := make(map[notification.NotificationType]*notification.NotificationPreference)
	for _, p := range prefs {
		prefMap[p.NotificationType] = p
	}

	allTypes := notification.AllNotificationTypes()
	responses := make([]notification.PreferenceResponse, len(allTypes))

	for i, t := range allTypes {
		if p, ok := prefMap[t]; ok {
			responses[i] = notification.PreferenceResponse{
				NotificationType: t,
				EmailEnabled:     p.EmailEnabled,
				PushEnabled:      p.PushEnabled,
			}
		} else {
			responses[i] = notification.PreferenceResponse{
				NotificationType: t,
				EmailEnabled:     true,
				PushEnabled:      true,
			}
		}
	}

	return responses, nil
}

func (s *service) UpdatePreference(ctx context.Context, recipientID string, req notification.UpdatePreferenceRequest) error {
	if !req.NotificationType.Valid() {
		return notification.ErrInvalidNotificationType
	}
	pref := &notification.NotificationPreference{
		RecipientID:      recipientID,
		NotificationType: req.NotificationType,
		EmailEnabled:     req.EmailEnabled,
		PushEnabled:      req.PushEnabled,
		UpdatedAt:        s.now().UTC(),
	}

	return s.repo.UpsertPreference(ctx, pref)
}

// Subscribe creates an SSE subscription for a recipient
func (s *service) Subscribe(ctx context.Context, recipientID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.broker.Subscribe(recipientID)

	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				var resp notification.NotificationResponse
				if err := json.Unmarshal(event.Data, &resp); err != nil {
					continue
				}
				select {
				case out <- notification.SSEEvent{Event: event.Event, Data: resp}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop drains the queue and waits for workers
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		slog.Info("notification service stopped")
	})
}
