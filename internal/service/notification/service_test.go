package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu       sync.Mutex
	items    map[string]*notification.Notification
	prefs    map[string]*notification.NotificationPreference
	batchErr error
}

func newMemRepo() *memRepo {
	return &memRepo{
		items: map[string]*notification.Notification{},
		prefs: map[string]*notification.NotificationPreference{},
	}
}

func (m *memRepo) Create(_ context.Context, n *notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[n.ID] = n
	return nil
}

func (m *memRepo) CreateBatch(ctx context.Context, ns []*notification.Notification) error {
	if m.batchErr != nil {
		return m.batchErr
	}
	for _, n := range ns {
		_ = m.Create(ctx, n)
	}
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*notification.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.items[id]
	if !ok {
		return nil, notification.ErrNotificationNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *memRepo) GetByRecipient(_ context.Context, recipientID string, _, _ int, unreadOnly bool) ([]*notification.Notification, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*notification.Notification
	for _, n := range m.items {
		if n.RecipientID == recipientID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (m *memRepo) GetUnreadCount(ctx context.Context, recipientID string) (int, error) {
	ns, _, _ := m.GetByRecipient(ctx, recipientID, 1, 100, true)
	return len(ns), nil
}

func (m *memRepo) MarkAsRead(_ context.Context, id, recipientID string) (*notification.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.items[id]
	if !ok || n.RecipientID != recipientID {
		return nil, notification.ErrNotificationNotFound
	}
	if !n.IsRead {
		now := time.Now()
		n.IsRead, n.ReadAt = true, &now
	}
	cp := *n
	return &cp, nil
}

func (m *memRepo) MarkAllAsRead(_ context.Context, recipientID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.items {
		if n.RecipientID == recipientID && !n.IsRead {
			now := time.Now()
			n.IsRead, n.ReadAt = true, &now
			count++
		}
	}
	return count, nil
}

func (m *memRepo) GetPreferences(_ context.Context, recipientID string) ([]*notification.NotificationPreference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*notification.NotificationPreference
	for _, p := range m.prefs {
		if p.RecipientID == recipientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memRepo) UpsertPreference(_ context.Context, p *notification.NotificationPreference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[p.RecipientID+string(p.NotificationType)] = p
	return nil
}

func (m *memRepo) Channels(_ context.Context, recipientID string, t notification.NotificationType) (bool, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.prefs[recipientID+string(t)]; ok {
		return p.PushEnabled, p.EmailEnabled, nil
	}
	return true, true, nil
}

func (m *memRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

type recordingDeliverer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (d *recordingDeliverer) Deliver(_ context.Context, n *notification.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, n.ID)
	return d.err
}

func request(recipient string, t notification.NotificationType) notification.CreateNotificationRequest {
	return notification.CreateNotificationRequest{RecipientID: recipient, Type: t, Title: "t", Message: "m"}
}

func TestQueueNotification_FlushesOnStop(t *testing.T) {
	repo := newMemRepo()
	hub := sse.NewHub()
	deliverer := &recordingDeliverer{}
	svc := NewNotificationService(repo, hub, deliverer, Config{FlushInterval: time.Hour, WorkerCount: 1})

	events, cleanup := hub.Subscribe("emp-1")
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, svc.QueueNotification(ctx, request("emp-1", notification.TypeApproval)))
	require.NoError(t, svc.QueueNotification(ctx, request("emp-2", notification.TypeRequest)))

	svc.Stop()

	assert.Equal(t, 2, repo.count())
	assert.Len(t, deliverer.sent, 2)

	select {
	case ev := <-events:
		assert.Equal(t, "notification", ev.Event)
		assert.Contains(t, string(ev.Data), `"type":"APPROVAL"`)
	default:
		t.Fatal("expected an SSE event for emp-1")
	}
}

func TestQueueNotification_RespectsPreferences(t *testing.T) {
	repo := newMemRepo()
	deliverer := &recordingDeliverer{}
	svc := NewNotificationService(repo, sse.NewHub(), deliverer, Config{FlushInterval: time.Hour, WorkerCount: 1})

	ctx := context.Background()
	require.NoError(t, svc.UpdatePreference(ctx, "emp-1", notification.UpdatePreferenceRequest{
		NotificationType: notification.TypeDisapproval,
		EmailEnabled:     false,
		PushEnabled:      true,
	}))
	require.NoError(t, svc.QueueNotification(ctx, request("emp-1", notification.TypeDisapproval)))
	svc.Stop()

	assert.Equal(t, 1, repo.count(), "notification is stored regardless of channel preferences")
	assert.Empty(t, deliverer.sent)
}

func TestQueueNotification_DeliveryFailureIsSwallowed(t *testing.T) {
	repo := newMemRepo()
	deliverer := &recordingDeliverer{err: errors.New("ses down")}
	svc := NewNotificationService(repo, sse.NewHub(), deliverer, Config{FlushInterval: time.Hour, WorkerCount: 1})

	require.NoError(t, svc.QueueNotification(context.Background(), request("emp-1", notification.TypeRequest)))
	svc.Stop()

	assert.Equal(t, 1, repo.count())
}

func TestQueueNotification_RejectsUnknownType(t *testing.T) {
	svc := NewNotificationService(newMemRepo(), sse.NewHub(), nil, Config{WorkerCount: 1})
	defer svc.Stop()

	err := svc.QueueNotification(context.Background(), request("emp-1", "REMINDER"))
	assert.ErrorIs(t, err, notification.ErrInvalidNotificationType)
}

func TestQueueNotification_DirectInsertWhenQueueFull(t *testing.T) {
	repo := newMemRepo()
	svc := NewNotificationService(repo, sse.NewHub(), nil, Config{QueueSize: 1, WorkerCount: 1, BatchSize: 1000, FlushInterval: time.Hour})

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, svc.QueueNotification(ctx, request("emp-1", notification.TypeRequest)))
	}
	svc.Stop()

	assert.Equal(t, 5, repo.count())
}

func TestMarkAsRead(t *testing.T) {
	repo := newMemRepo()
	svc := NewNotificationService(repo, sse.NewHub(), nil, Config{WorkerCount: 1})
	defer svc.Stop()

	ctx := context.Background()
	n := &notification.Notification{ID: "n-1", RecipientID: "emp-1", Type: notification.TypeApproval}
	require.NoError(t, repo.Create(ctx, n))

	_, err := svc.MarkAsRead(ctx, "emp-2", "n-1")
	assert.ErrorIs(t, err, notification.ErrUnauthorized)

	first, err := svc.MarkAsRead(ctx, "emp-1", "n-1")
	require.NoError(t, err)
	assert.True(t, first.IsRead)
	require.NotNil(t, first.ReadAt)

	second, err := svc.MarkAsRead(ctx, "emp-1", "n-1")
	require.NoError(t, err)
	assert.Equal(t, first.ReadAt, second.ReadAt, "read_at is kept from the first read")

	_, err = svc.MarkAsRead(ctx, "emp-1", "missing")
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)
}

func TestMarkAllAsRead(t *testing.T) {
	repo := newMemRepo()
	svc := NewNotificationService(repo, sse.NewHub(), nil, Config{WorkerCount: 1})
	defer svc.Stop()

	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, &notification.Notification{ID: id, RecipientID: "emp-1", Type: notification.TypeRequest}))
	}
	require.NoError(t, repo.Create(ctx, &notification.Notification{ID: "d", RecipientID: "emp-2", Type: notification.TypeRequest}))

	updated, err := svc.MarkAllAsRead(ctx, "emp-1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, updated)

	count, err := svc.GetUnreadCount(ctx, "emp-2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetPreferencesDefaults(t *testing.T) {
	svc := NewNotificationService(newMemRepo(), sse.NewHub(), nil, Config{WorkerCount: 1})
	defer svc.Stop()

	prefs, err := svc.GetPreferences(context.Background(), "emp-1")
	require.NoError(t, err)
	require.Len(t, prefs, 3)
	for _, p := range prefs {
		assert.True(t, p.EmailEnabled)
		assert.True(t, p.PushEnabled)
	}
}
