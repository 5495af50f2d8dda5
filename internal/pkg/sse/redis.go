package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const DefaultChannel = "timesheet:sse"

// RedisBridge relays events through Redis pub/sub so every API instance reaches its own
// local subscribers.
type RedisBridge struct {
	rdb     goredis.UniversalClient
	channel string
	local   *Hub

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRedisClient connects and pings, mirroring the way the API checks Postgres on startup.
func NewRedisClient(addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

// NewRedisBridge starts the relay goroutine. Call Close to stop it.
func NewRedisBridge(rdb goredis.UniversalClient, channel string, local *Hub) *RedisBridge {
	if channel == "" {
		channel = DefaultChannel
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &RedisBridge{rdb: rdb, channel: channel, local: local, cancel: cancel}

	pubsub := rdb.Subscribe(ctx, channel)
	b.wg.Add(1)
	go b.relay(ctx, pubsub)

	slog.Info("SSE redis bridge started", "channel", channel)
	return b
}

func (b *RedisBridge) relay(ctx context.Context, pubsub *goredis.PubSub) {
	defer b.wg.Done()
	defer pubsub.Close()

	msgs := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				slog.Warn("SSE redis bridge: dropping malformed event", "error", err)
				continue
			}
			b.local.Publish(ev.RecipientID, ev)
		}
	}
}

// Publish sends the event to Redis; on failure it still reaches local subscribers.
func (b *RedisBridge) Publish(recipientID string, event Event) {
	event.RecipientID = recipientID
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("SSE redis bridge: marshal event", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		slog.Warn("SSE redis bridge: publish failed, delivering locally", "error", err)
		b.local.Publish(recipientID, event)
	}
}

func (b *RedisBridge) Subscribe(recipientID string) (chan Event, func()) {
	return b.local.Subscribe(recipientID)
}

func (b *RedisBridge) Close() error {
	b.cancel()
	b.wg.Wait()
	return nil
}
