package models

import "time"

// NotificationRecord is a row of the backend's mirrored notifications table.
type NotificationRecord struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	Type       string    `gorm:"not null" json:"type"`
	Title      string    `json:"title"`
	Body       string    `gorm:"type:text" json:"body"`
	SenderID   string    `gorm:"index" json:"senderId"`
	ReceiverID string    `gorm:"not null;index" json:"receiverId"`
	IsRead     bool      `gorm:"default:false;index" json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName pins the table name used by the backend mirror.
func (NotificationRecord) TableName() string { return "notifications" }

// ChatMessageRecord is a row of the backend's mirrored chat messages table.
type ChatMessageRecord struct {
	ID         string            `gorm:"primaryKey" json:"id"`
	ChatID     string            `gorm:"not null;index" json:"chatId"`
	SenderID   string            `gorm:"not null" json:"senderId"`
	ReceiverID string            `gorm:"not null;index" json:"receiverId"`
	Body       string            `gorm:"type:text;not null" json:"body"`
	System     bool              `gorm:"default:false" json:"system"`
	Review     bool              `gorm:"default:false" json:"review"`
	CreatedAt  time.Time         `gorm:"index" json:"createdAt"`
	Reads      []ChatMessageRead `gorm:"foreignKey:MessageID" json:"-"`
}

// TableName pins the table name used by the backend mirror.
func (ChatMessageRecord) TableName() string { return "chat_messages" }

// ChatMessageRead is one entry of a message's read-by set.
type ChatMessageRead struct {
	MessageID string `gorm:"primaryKey" json:"messageId"`
	UserID    string `gorm:"primaryKey" json:"userId"`
}

// TableName pins the table name used by the backend mirror.
func (ChatMessageRead) TableName() string { return "chat_message_reads" }

// ToChatMessage converts the row into the stored chat message shape.
func (r ChatMessageRecord) ToChatMessage() ChatMessage {
	readBy := make([]string, 0, len(r.Reads))
	for _, read := range r.Reads {
		readBy = append(readBy, read.UserID)
	}
	kind := MessagePlain
	switch {
	case r.System:
		kind = MessageSystem
	case r.Review:
		kind = MessageReview
	}
	return ChatMessage{
		ID:         r.ID,
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		Body:       r.Body,
		CreatedAt:  r.CreatedAt.UTC(),
		IsReadBy:   readBy,
		Kind:       kind,
	}
}
