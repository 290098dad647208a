package models

import "time"

// SystemReader is the read-by marker written on system messages.
const SystemReader = "system"

// MessageKind is the explicit variant of a chat message.
type MessageKind int

const (
	MessagePlain MessageKind = iota
	MessageSystem
	MessageReview
)

func (k MessageKind) String() string {
	switch k {
	case MessageSystem:
		return "system"
	case MessageReview:
		return "review"
	}
	return "plain"
}

// ChatMessage is a stored chat message.
type ChatMessage struct {
	ID         string      `mapstructure:"id" json:"id"`
	SenderID   string      `mapstructure:"senderId" json:"senderId"`
	ReceiverID string      `mapstructure:"receiverId" json:"receiverId"`
	Body       string      `mapstructure:"body" json:"body"`
	CreatedAt  time.Time   `mapstructure:"createdAt" json:"createdAt"`
	IsReadBy   []string    `mapstructure:"isReadBy" json:"isReadBy"`
	Kind       MessageKind `mapstructure:"-" json:"-"`
}

// ReadBy reports whether participantID has acknowledged the message.
func (m ChatMessage) ReadBy(participantID string) bool {
	for _, id := range m.IsReadBy {
		if id == participantID {
			return true
		}
	}
	return false
}

// DisplayUser identifies the author of a display message. Name and Avatar
// are filled only when the caller supplies profiles.
type DisplayUser struct {
	ID     string `json:"_id"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// DisplayMessage is a chat message shaped for the chat list widget.
type DisplayMessage struct {
	ID                  string      `json:"_id"`
	Text                string      `json:"text"`
	CreatedAt           time.Time   `json:"createdAt"`
	User                DisplayUser `json:"user"`
	ReceivedByRecipient bool        `json:"received"`
	System              bool        `json:"system,omitempty"`
	Review              bool        `json:"review,omitempty"`
}
