// Package repository reads unread state from the backend's SQL mirror.
package repository

import (
	"context"

	"islandmarket/internal/models"
	"islandmarket/internal/observability"

	"gorm.io/gorm"
)

// UnreadRepository counts and lists unread items for a user.
type UnreadRepository interface {
	CountUnreadNotifications(ctx context.Context, userID string) (int, error)
	CountUnreadChatMessages(ctx context.Context, userID string) (int, error)
	ListChatMessages(ctx context.Context, chatID string) ([]models.ChatMessage, error)
}

type gormUnreadRepository struct {
	db *gorm.DB
}

// NewUnreadRepository returns a gorm-backed UnreadRepository.
func NewUnreadRepository(db *gorm.DB) UnreadRepository {
	return &gormUnreadRepository{db: db}
}

func (r *gormUnreadRepository) CountUnreadNotifications(ctx context.Context, userID string) (n int, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "CountUnreadNotifications", "notifications")
	defer func() { observability.EndSpan(span, err) }()

	var count int64
	err = r.db.WithContext(ctx).
		Model(&models.NotificationRecord{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return int(count), err
}

func (r *gormUnreadRepository) CountUnreadChatMessages(ctx context.Context, userID string) (n int, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "CountUnreadChatMessages", "chat_messages")
	defer func() { observability.EndSpan(span, err) }()

	var count int64
	err = r.db.WithContext(ctx).
		Model(&models.ChatMessageRecord{}).
		Where("receiver_id = ?", userID).
		Where("NOT EXISTS (SELECT 1 FROM chat_message_reads r WHERE r.message_id = chat_messages.id AND r.user_id = ?)", userID).
		Count(&count).Error
	return int(count), err
}

// ListChatMessages returns a chat's messages oldest first.
func (r *gormUnreadRepository) ListChatMessages(ctx context.Context, chatID string) (msgs []models.ChatMessage, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "ListChatMessages", "chat_messages")
	defer func() { observability.EndSpan(span, err) }()

	var records []models.ChatMessageRecord
	err = r.db.WithContext(ctx).
		Preload("Reads").
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	msgs = make([]models.ChatMessage, 0, len(records))
	for _, rec := range records {
		msgs = append(msgs, rec.ToChatMessage())
	}
	return msgs, nil
}
