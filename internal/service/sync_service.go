// Package service wires the unread counters to the backend mirror, the Redis
// query cache and the cross-device unread channel.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"islandmarket/internal/cache"
	"islandmarket/internal/chatformat"
	"islandmarket/internal/counters"
	"islandmarket/internal/models"
	"islandmarket/internal/notifications"
	"islandmarket/internal/observability"
	"islandmarket/internal/repository"

	"github.com/redis/go-redis/v9"
)

const serviceName = "SyncService"

// ErrNoRepository is returned by operations that need the backend mirror when none is configured.
var ErrNoRepository = errors.New("backend mirror database is not configured")

// SyncService applies read and receive events to the counter store.
type SyncService struct {
	store    *counters.Store
	repo     repository.UnreadRepository
	rdb      *redis.Client
	notifier *notifications.Notifier

	// chatUnread holds the unread messages received per user and chat
	// since the last read of that chat.
	mu         sync.Mutex
	chatUnread map[chatKey]int
}

type chatKey struct {
	userID string
	chatID string
}

// NewSyncService returns a new SyncService. repo and rdb may be nil.
func NewSyncService(
	store *counters.Store,
	repo repository.UnreadRepository,
	rdb *redis.Client,
	notifier *notifications.Notifier,
) *SyncService {
	if notifier == nil {
		notifier = notifications.NewNotifier(rdb)
	}
	return &SyncService{
		store:      store,
		repo:       repo,
		rdb:        rdb,
		notifier:   notifier,
		chatUnread: make(map[chatKey]int),
	}
}

// Store returns the counter store the service mutates.
func (s *SyncService) Store() *counters.Store {
	return s.store
}

// MarkNotificationsRead clears the notification and noti counters, drops the
// cached notification list and tells the user's other devices.
func (s *SyncService) MarkNotificationsRead(ctx context.Context, userID string) error {
	if userID == "" {
		return models.NewValidationError("user id is required")
	}
	ctx, span := observability.StartServiceSpan(ctx, serviceName, "MarkNotificationsRead")
	defer observability.EndSpan(span, nil)
	observability.LogServiceCall(ctx, serviceName, "MarkNotificationsRead", map[string]interface{}{"user_id": userID})

	s.store.Notification.Clear()
	s.store.Noti.Clear()

	if err := cache.InvalidateNotifications(ctx, s.rdb, userID); err != nil {
		slog.WarnContext(ctx, "failed to invalidate notification cache", "user_id", userID, "err", err)
	}
	s.publish(ctx, userID,
		notifications.UnreadEvent{Kind: counters.NameNotification, Op: notifications.OpClear},
		notifications.UnreadEvent{Kind: counters.NameNoti, Op: notifications.OpClear},
	)
	return nil
}

// MarkChatRead removes chatID's unread messages from the chat counter, drops
// the cached history of chatID and sends the new count to the user's other
// devices. Unread messages in other chats stay counted.
func (s *SyncService) MarkChatRead(ctx context.Context, userID, chatID string) error {
	if userID == "" || chatID == "" {
		return models.NewValidationError("user id and chat id are required")
	}
	ctx, span := observability.StartServiceSpan(ctx, serviceName, "MarkChatRead")
	defer observability.EndSpan(span, nil)
	observability.LogServiceCall(ctx, serviceName, "MarkChatRead", map[string]interface{}{
		"user_id": userID,
		"chat_id": chatID,
	})

	key := chatKey{userID: userID, chatID: chatID}
	s.mu.Lock()
	received := s.chatUnread[key]
	delete(s.chatUnread, key)
	s.mu.Unlock()

	if remaining, err := s.unreadOutside(ctx, userID, chatID); err == nil {
		s.store.Chat.Set(remaining)
	} else {
		if !errors.Is(err, ErrNoRepository) {
			slog.WarnContext(ctx, "failed to recount unread chat messages", "user_id", userID, "chat_id", chatID, "err", err)
		}
		s.store.Chat.Add(-received)
	}

	if err := cache.InvalidateChat(ctx, s.rdb, userID, chatID); err != nil {
		slog.WarnContext(ctx, "failed to invalidate chat cache", "user_id", userID, "chat_id", chatID, "err", err)
	}
	s.publish(ctx, userID, notifications.UnreadEvent{
		Kind:  counters.NameChat,
		Op:    notifications.OpSet,
		Value: s.store.Chat.Value(),
	})
	return nil
}

// unreadOutside counts the user's unread chat messages in every chat but chatID.
func (s *SyncService) unreadOutside(ctx context.Context, userID, chatID string) (int, error) {
	if s.repo == nil {
		return 0, ErrNoRepository
	}
	total, err := s.repo.CountUnreadChatMessages(ctx, userID)
	if err != nil {
		return 0, err
	}
	msgs, err := s.repo.ListChatMessages(ctx, chatID)
	if err != nil {
		return 0, err
	}
	return max(total-chatformat.UnreadFor(msgs, userID), 0), nil
}

// ReceiveNotification records a notification that arrived for userID.
// Notifications addressed to someone else, or already read, are ignored.
func (s *SyncService) ReceiveNotification(ctx context.Context, userID string, n models.Notification) bool {
	if n.ReceiverID != userID || n.IsRead {
		return false
	}
	s.store.Notification.Increment()
	s.store.Noti.Increment()
	slog.DebugContext(ctx, "notification received", "id", n.ID, "type", n.Type)
	return true
}

// ReceiveChatMessage records a message of chatID that arrived for userID.
// Messages the user sent, or has already read, leave the counter alone.
func (s *SyncService) ReceiveChatMessage(ctx context.Context, userID, chatID string, msg models.ChatMessage) bool {
	if msg.ReceiverID != userID || msg.ReadBy(userID) {
		return false
	}
	s.mu.Lock()
	s.chatUnread[chatKey{userID: userID, chatID: chatID}]++
	s.mu.Unlock()

	s.store.Chat.Increment()
	slog.DebugContext(ctx, "chat message received", "id", msg.ID, "chat_id", chatID, "kind", msg.Kind.String())
	return true
}

// Rehydrate sets the counters from the backend mirror, as on relaunch.
func (s *SyncService) Rehydrate(ctx context.Context, userID string) (snap counters.Snapshot, err error) {
	if s.repo == nil {
		return counters.Snapshot{}, ErrNoRepository
	}
	ctx, span := observability.StartServiceSpan(ctx, serviceName, "Rehydrate")
	defer func() { observability.EndSpan(span, err) }()
	observability.LogServiceCall(ctx, serviceName, "Rehydrate", map[string]interface{}{"user_id": userID})

	notis, err := s.repo.CountUnreadNotifications(ctx, userID)
	if err != nil {
		observability.LogServiceError(ctx, serviceName, "Rehydrate", err)
		return counters.Snapshot{}, models.NewInternalError(err)
	}
	chats, err := s.repo.CountUnreadChatMessages(ctx, userID)
	if err != nil {
		observability.LogServiceError(ctx, serviceName, "Rehydrate", err)
		return counters.Snapshot{}, models.NewInternalError(err)
	}

	s.mu.Lock()
	for key := range s.chatUnread {
		if key.userID == userID {
			delete(s.chatUnread, key)
		}
	}
	s.mu.Unlock()

	s.store.Notification.Set(notis)
	s.store.Noti.Set(notis)
	s.store.Chat.Set(chats)
	return s.store.Snapshot(), nil
}

// ChatHistory returns the display list of chatID as seen by recipientID.
func (s *SyncService) ChatHistory(ctx context.Context, chatID, recipientID string) (out []models.DisplayMessage, err error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}
	ctx, span := observability.StartServiceSpan(ctx, serviceName, "ChatHistory")
	defer func() { observability.EndSpan(span, err) }()

	msgs, err := s.repo.ListChatMessages(ctx, chatID)
	if err != nil {
		observability.LogServiceError(ctx, serviceName, "ChatHistory", err)
		return nil, models.NewInternalError(err)
	}
	if len(msgs) == 0 {
		return nil, models.NewNotFoundError("Chat", chatID)
	}
	return chatformat.FormatDisplayMessages(msgs, recipientID), nil
}

// Watch applies unread events published by the user's other devices until ctx is done.
func (s *SyncService) Watch(ctx context.Context, userID string) error {
	return s.notifier.StartUnreadSubscriber(ctx, userID, s.store)
}

func (s *SyncService) publish(ctx context.Context, userID string, events ...notifications.UnreadEvent) {
	for _, ev := range events {
		if err := s.notifier.PublishUnread(ctx, userID, ev); err != nil {
			slog.WarnContext(ctx, "failed to publish unread event",
				"user_id", userID, "kind", ev.Kind, "op", ev.Op, "err", err)
		}
	}
}
