package cache

import (
	"context"
	"fmt"

	"islandmarket/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	NotificationsKeyPrefix = "notifications:%s"
	ChatListKeyPrefix      = "chats:%s"
	ChatMessagesKeyPrefix  = "chat:%s:messages"
	UnreadCountsKeyPrefix  = "unread:%s"
)

func NotificationsKey(userID string) string {
	return fmt.Sprintf(NotificationsKeyPrefix, userID)
}

func ChatListKey(userID string) string {
	return fmt.Sprintf(ChatListKeyPrefix, userID)
}

func ChatMessagesKey(chatID string) string {
	return fmt.Sprintf(ChatMessagesKeyPrefix, chatID)
}

func UnreadCountsKey(userID string) string {
	return fmt.Sprintf(UnreadCountsKeyPrefix, userID)
}

// Invalidate deletes keys so the next query refetches from the backend.
// A nil client is a no-op.
func Invalidate(ctx context.Context, rdb *redis.Client, keys ...string) error {
	if rdb == nil || len(keys) == 0 {
		return nil
	}
	ctx, span := observability.StartRedisSpan(ctx, "del")
	err := rdb.Del(ctx, keys...).Err()
	observability.EndSpan(span, err)
	return err
}

// InvalidateNotifications drops the cached notification list and unread counts of a user.
func InvalidateNotifications(ctx context.Context, rdb *redis.Client, userID string) error {
	return Invalidate(ctx, rdb, NotificationsKey(userID), UnreadCountsKey(userID))
}

// InvalidateChat drops the cached message history of a chat and the user's chat list.
func InvalidateChat(ctx context.Context, rdb *redis.Client, userID, chatID string) error {
	return Invalidate(ctx, rdb, ChatMessagesKey(chatID), ChatListKey(userID), UnreadCountsKey(userID))
}
