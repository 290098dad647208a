// Package chatformat turns stored chat messages into the list shown by the chat widget.
package chatformat

import "islandmarket/internal/models"

// FormatDisplayMessages converts messages stored oldest first into display
// messages ordered newest first. ReceivedByRecipient is set when recipientID
// is non-empty and appears in the message's read-by set; with an empty
// recipientID it is always false.
func FormatDisplayMessages(messages []models.ChatMessage, recipientID string) []models.DisplayMessage {
	out := make([]models.DisplayMessage, len(messages))
	for i, msg := range messages {
		out[len(messages)-1-i] = toDisplay(msg, recipientID)
	}
	return out
}

func toDisplay(msg models.ChatMessage, recipientID string) models.DisplayMessage {
	return models.DisplayMessage{
		ID:                  msg.ID,
		Text:                msg.Body,
		CreatedAt:           msg.CreatedAt,
		User:                models.DisplayUser{ID: msg.SenderID},
		ReceivedByRecipient: recipientID != "" && msg.ReadBy(recipientID),
		System:              msg.Kind == models.MessageSystem,
		Review:              msg.Kind == models.MessageReview,
	}
}

// UnreadFor counts the messages addressed to participantID that it has not read yet.
func UnreadFor(messages []models.ChatMessage, participantID string) int {
	n := 0
	for _, msg := range messages {
		if msg.ReceiverID == participantID && !msg.ReadBy(participantID) {
			n++
		}
	}
	return n
}
