package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"islandmarket/internal/cache"
	"islandmarket/internal/counters"
	"islandmarket/internal/database"
	"islandmarket/internal/models"
	"islandmarket/internal/notifications"
	"islandmarket/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func receiveEvents(t *testing.T, sub *redis.PubSub, n int) []notifications.UnreadEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var out []notifications.UnreadEvent
	for len(out) < n {
		msg, err := sub.ReceiveMessage(ctx)
		require.NoError(t, err)
		var ev notifications.UnreadEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		out = append(out, ev)
	}
	return out
}

func TestSyncService_MarkNotificationsRead(t *testing.T) {
	mr, rdb := setupRedis(t)
	ctx := context.Background()
	store := counters.NewStore()
	store.Notification.Set(4)
	store.Noti.Set(4)
	store.Chat.Set(2)

	require.NoError(t, mr.Set(cache.NotificationsKey("u1"), "[]"))
	require.NoError(t, mr.Set(cache.UnreadCountsKey("u1"), "{}"))

	sub := rdb.Subscribe(ctx, notifications.UnreadChannel("u1"))
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	svc := NewSyncService(store, nil, rdb, nil)
	require.NoError(t, svc.MarkNotificationsRead(ctx, "u1"))

	assert.Equal(t, counters.Snapshot{Chat: 2}, store.Snapshot())
	assert.False(t, mr.Exists(cache.NotificationsKey("u1")))
	assert.False(t, mr.Exists(cache.UnreadCountsKey("u1")))

	events := receiveEvents(t, sub, 2)
	assert.ElementsMatch(t, []notifications.UnreadEvent{
		{Kind: counters.NameNotification, Op: notifications.OpClear},
		{Kind: counters.NameNoti, Op: notifications.OpClear},
	}, events)
}

func TestSyncService_MarkChatRead(t *testing.T) {
	mr, rdb := setupRedis(t)
	ctx := context.Background()
	store := counters.NewStore()
	store.Notification.Set(1)

	require.NoError(t, mr.Set(cache.ChatMessagesKey("c1"), "[]"))
	require.NoError(t, mr.Set(cache.ChatMessagesKey("c2"), "[]"))

	sub := rdb.Subscribe(ctx, notifications.UnreadChannel("u1"))
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	svc := NewSyncService(store, nil, rdb, nil)
	svc.ReceiveChatMessage(ctx, "u1", "c1", models.ChatMessage{ID: "m1", SenderID: "u2", ReceiverID: "u1"})
	svc.ReceiveChatMessage(ctx, "u1", "c1", models.ChatMessage{ID: "m2", SenderID: "u2", ReceiverID: "u1"})
	svc.ReceiveChatMessage(ctx, "u1", "c2", models.ChatMessage{ID: "m3", SenderID: "u3", ReceiverID: "u1"})
	require.Equal(t, 3, store.Chat.Value())

	require.NoError(t, svc.MarkChatRead(ctx, "u1", "c1"))

	assert.Equal(t, 1, store.Chat.Value())
	assert.Equal(t, 1, store.Notification.Value())
	assert.False(t, mr.Exists(cache.ChatMessagesKey("c1")))
	assert.True(t, mr.Exists(cache.ChatMessagesKey("c2")))
	assert.Equal(t, []notifications.UnreadEvent{
		{Kind: counters.NameChat, Op: notifications.OpSet, Value: 1},
	}, receiveEvents(t, sub, 1))

	require.NoError(t, svc.MarkChatRead(ctx, "u1", "c1"))
	assert.Equal(t, 1, store.Chat.Value())
}

func TestSyncService_MarkChatReadKeepsOtherChats(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()
	require.NoError(t, db.Create(&[]models.ChatMessageRecord{
		{ID: "a1", ChatID: "A", SenderID: "u2", ReceiverID: "me", Body: "hi", CreatedAt: now},
		{ID: "b1", ChatID: "B", SenderID: "u3", ReceiverID: "me", Body: "yo", CreatedAt: now},
	}).Error)

	store := counters.NewStore()
	svc := NewSyncService(store, repository.NewUnreadRepository(db), nil, nil)
	ctx := context.Background()

	_, err := svc.Rehydrate(ctx, "me")
	require.NoError(t, err)
	require.Equal(t, 2, store.Chat.Value())

	require.NoError(t, svc.MarkChatRead(ctx, "me", "A"))
	assert.Equal(t, 1, store.Chat.Value())

	require.NoError(t, db.Create(&models.ChatMessageRead{MessageID: "a1", UserID: "me"}).Error)
	require.NoError(t, svc.MarkChatRead(ctx, "me", "B"))
	assert.Equal(t, 0, store.Chat.Value())
}

type listFailingRepo struct {
	repository.UnreadRepository
}

func (listFailingRepo) CountUnreadChatMessages(context.Context, string) (int, error) {
	return 5, nil
}

func (listFailingRepo) ListChatMessages(context.Context, string) ([]models.ChatMessage, error) {
	return nil, errors.New("connection refused")
}

func TestSyncService_MarkChatReadFallsBackToReceived(t *testing.T) {
	store := counters.NewStore()
	svc := NewSyncService(store, listFailingRepo{}, nil, nil)
	ctx := context.Background()

	store.Chat.Set(4)
	svc.ReceiveChatMessage(ctx, "u1", "c1", models.ChatMessage{ID: "m1", SenderID: "u2", ReceiverID: "u1"})

	require.NoError(t, svc.MarkChatRead(ctx, "u1", "c1"))
	assert.Equal(t, 4, store.Chat.Value())
}

func TestSyncService_MarkReadValidation(t *testing.T) {
	svc := NewSyncService(counters.NewStore(), nil, nil, nil)

	err := svc.MarkNotificationsRead(context.Background(), "")
	assert.True(t, models.HasCode(err, models.CodeValidation))

	err = svc.MarkChatRead(context.Background(), "u1", "")
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestSyncService_MarkReadWithoutRedis(t *testing.T) {
	store := counters.NewStore()
	store.Notification.Set(2)
	svc := NewSyncService(store, nil, nil, nil)

	require.NoError(t, svc.MarkNotificationsRead(context.Background(), "u1"))
	assert.Equal(t, 0, store.Notification.Value())
}

func TestSyncService_Receive(t *testing.T) {
	store := counters.NewStore()
	svc := NewSyncService(store, nil, nil, nil)
	ctx := context.Background()

	assert.True(t, svc.ReceiveNotification(ctx, "u1", models.Notification{ID: "n1", Type: "comment", ReceiverID: "u1"}))
	assert.True(t, svc.ReceiveNotification(ctx, "u1", models.Notification{ID: "n2", Type: "comment", ReceiverID: "u1"}))
	assert.False(t, svc.ReceiveNotification(ctx, "u1", models.Notification{ID: "n3", Type: "comment", ReceiverID: "u2"}))
	assert.False(t, svc.ReceiveNotification(ctx, "u1", models.Notification{ID: "n4", Type: "comment", ReceiverID: "u1", IsRead: true}))

	assert.True(t, svc.ReceiveChatMessage(ctx, "u1", "c1", models.ChatMessage{ID: "m1", SenderID: "u2", ReceiverID: "u1"}))
	assert.False(t, svc.ReceiveChatMessage(ctx, "u1", "c1", models.ChatMessage{ID: "m2", SenderID: "u1", ReceiverID: "u2"}))
	assert.False(t, svc.ReceiveChatMessage(ctx, "u1", "c1", models.ChatMessage{ID: "m3", SenderID: "u2", ReceiverID: "u1", IsReadBy: []string{"u1"}}))

	assert.Equal(t, counters.Snapshot{Notification: 2, Chat: 1, Noti: 2}, store.Snapshot())
}

func TestSyncService_Rehydrate(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()
	require.NoError(t, db.Create(&[]models.NotificationRecord{
		{ID: "n1", Type: "comment", ReceiverID: "u1", CreatedAt: now},
		{ID: "n2", Type: "trade", ReceiverID: "u1", CreatedAt: now},
		{ID: "n3", Type: "trade", ReceiverID: "u1", IsRead: true, CreatedAt: now},
	}).Error)
	require.NoError(t, db.Create(&[]models.ChatMessageRecord{
		{ID: "m1", ChatID: "c1", SenderID: "u2", ReceiverID: "u1", Body: "hi", CreatedAt: now},
		{ID: "m2", ChatID: "c1", SenderID: "u2", ReceiverID: "u1", Body: "there", CreatedAt: now},
	}).Error)
	require.NoError(t, db.Create(&models.ChatMessageRead{MessageID: "m1", UserID: "u1"}).Error)

	store := counters.NewStore()
	store.Chat.Set(9)
	svc := NewSyncService(store, repository.NewUnreadRepository(db), nil, nil)

	snap, err := svc.Rehydrate(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, counters.Snapshot{Notification: 2, Chat: 1, Noti: 2}, snap)
	assert.Equal(t, snap, store.Snapshot())
}

func TestSyncService_RehydrateWithoutRepository(t *testing.T) {
	svc := NewSyncService(counters.NewStore(), nil, nil, nil)
	_, err := svc.Rehydrate(context.Background(), "u1")
	assert.True(t, errors.Is(err, ErrNoRepository))
}

type failingRepo struct {
	repository.UnreadRepository
}

func (failingRepo) CountUnreadNotifications(context.Context, string) (int, error) {
	return 0, errors.New("connection refused")
}

func TestSyncService_RehydrateRepositoryError(t *testing.T) {
	store := counters.NewStore()
	store.Notification.Set(3)
	svc := NewSyncService(store, failingRepo{}, nil, nil)

	_, err := svc.Rehydrate(context.Background(), "u1")
	assert.True(t, models.HasCode(err, models.CodeInternal))
	assert.Equal(t, 3, store.Notification.Value())
}

func TestSyncService_ChatHistory(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&[]models.ChatMessageRecord{
		{ID: "m1", ChatID: "c1", SenderID: "u1", ReceiverID: "u2", Body: "first", CreatedAt: base},
		{ID: "m2", ChatID: "c1", SenderID: "system", ReceiverID: "u2", Body: "review left", Review: true, CreatedAt: base.Add(time.Minute)},
	}).Error)
	require.NoError(t, db.Create(&models.ChatMessageRead{MessageID: "m1", UserID: "u2"}).Error)

	svc := NewSyncService(counters.NewStore(), repository.NewUnreadRepository(db), nil, nil)

	out, err := svc.ChatHistory(context.Background(), "c1", "u2")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "m2", out[0].ID)
	assert.True(t, out[0].Review)
	assert.False(t, out[0].ReceivedByRecipient)
	assert.Equal(t, "m1", out[1].ID)
	assert.True(t, out[1].ReceivedByRecipient)

	_, err = svc.ChatHistory(context.Background(), "missing", "u2")
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestSyncService_WatchAppliesRemoteEvents(t *testing.T) {
	_, rdb := setupRedis(t)
	store := counters.NewStore()
	svc := NewSyncService(store, nil, rdb, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, svc.Watch(ctx, "u1"))

	other := notifications.NewNotifier(rdb)
	require.NoError(t, other.PublishUnread(context.Background(), "u1",
		notifications.UnreadEvent{Kind: counters.NameNotification, Op: notifications.OpSet, Value: 7}))

	assert.Eventually(t, func() bool {
		return store.Notification.Value() == 7
	}, time.Second, 10*time.Millisecond)
}
