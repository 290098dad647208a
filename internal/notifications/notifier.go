// Package notifications carries unread events between devices over Redis
// pub/sub and applies them to the local counter store.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"islandmarket/internal/counters"
	"islandmarket/internal/models"
	"islandmarket/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Unread event operations.
const (
	OpIncrement = "increment"
	OpClear     = "clear"
	OpSet       = "set"
)

// UnreadEvent is the payload published on a user's unread channel.
type UnreadEvent struct {
	Kind  string `json:"kind"`
	Op    string `json:"op"`
	Value int    `json:"value,omitempty"`
}

// Apply mutates the matching counter of store.
func (ev UnreadEvent) Apply(store *counters.Store) error {
	c, ok := store.Counter(ev.Kind)
	if !ok {
		return models.NewValidationError(fmt.Sprintf("unknown counter %q", ev.Kind))
	}
	switch ev.Op {
	case OpIncrement:
		c.Increment()
	case OpClear:
		c.Clear()
	case OpSet:
		c.Set(ev.Value)
	default:
		return models.NewValidationError(fmt.Sprintf("unknown counter operation %q", ev.Op))
	}
	return nil
}

// UnreadChannel derives the Redis channel name for a user's unread events.
func UnreadChannel(userID string) string {
	return "unread:user:" + userID
}

// Notifier publishes and subscribes to unread events in Redis.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier. A nil client turns every call into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUnread sends an unread event to a user's channel.
func (n *Notifier) PublishUnread(ctx context.Context, userID string, ev UnreadEvent) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	ctx, span := observability.StartRedisSpan(ctx, "publish")
	err = n.rdb.Publish(ctx, UnreadChannel(userID), payload).Err()
	observability.EndSpan(span, err)
	return err
}

// StartUnreadSubscriber subscribes to a user's unread channel and applies
// each event to store until ctx is done. It returns once the subscription
// is confirmed by Redis.
func (n *Notifier) StartUnreadSubscriber(ctx context.Context, userID string, store *counters.Store) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, UnreadChannel(userID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", UnreadChannel(userID), err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handleMessage(ctx, store, msg.Payload)
			}
		}
	}()

	return nil
}

func handleMessage(ctx context.Context, store *counters.Store, payload string) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic in unread subscriber", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	var ev UnreadEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		slog.WarnContext(ctx, "dropping malformed unread event", "payload", payload, "err", err)
		return
	}
	if err := ev.Apply(store); err != nil {
		slog.WarnContext(ctx, "dropping unread event", "kind", ev.Kind, "op", ev.Op, "err", err)
		return
	}
	observability.UnreadEventsTotal.WithLabelValues(ev.Kind, ev.Op).Inc()
}
