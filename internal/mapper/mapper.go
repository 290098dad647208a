// Package mapper projects raw backend documents into UI view models.
//
// Every listed field is required. A missing field or a value of the wrong
// type is reported as a MappingError instead of producing a partial model.
package mapper

import (
	"context"
	"fmt"

	"islandmarket/internal/guards"
	"islandmarket/internal/models"
	"islandmarket/internal/observability"

	"github.com/go-viper/mapstructure/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Document kinds, used in errors and metrics.
const (
	KindPost         = "post"
	KindComment      = "comment"
	KindChatMessage  = "chat message"
	KindNotification = "notification"
)

var (
	postFields         = []string{"id", "type", "title", "body", "cart", "images", "creatorId", "createdAt", "commentCount"}
	commentFields      = []string{"id", "body", "creatorId", "createdAt"}
	chatMessageFields  = []string{"id", "senderId", "receiverId", "body", "createdAt", "isReadBy"}
	notificationFields = []string{"id", "type", "title", "body", "senderId", "receiverId", "createdAt", "isRead"}
)

// ToPost maps a post document.
func ToPost(doc models.Document) (models.Post, error) {
	var post models.Post
	if err := decode(KindPost, doc, postFields, &post); err != nil {
		return models.Post{}, err
	}
	images, err := toImages(doc["images"])
	if err != nil {
		return models.Post{}, fail(KindPost, models.NewMappingTypeError(KindPost, err))
	}
	post.Images = images
	return post, nil
}

// ToComment maps a comment document.
func ToComment(doc models.Document) (models.Comment, error) {
	var comment models.Comment
	if err := decode(KindComment, doc, commentFields, &comment); err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

// ToChatMessage maps a stored chat message and resolves its variant.
func ToChatMessage(ctx context.Context, doc models.Document) (models.ChatMessage, error) {
	var msg models.ChatMessage
	if err := decode(KindChatMessage, doc, chatMessageFields, &msg); err != nil {
		return models.ChatMessage{}, err
	}
	msg.Kind = guards.ClassifyMessage(ctx, doc)
	return msg, nil
}

// ToNotification maps a notification document.
func ToNotification(doc models.Document) (models.Notification, error) {
	var n models.Notification
	if err := decode(KindNotification, doc, notificationFields, &n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// ToPosts maps a batch of post documents, stopping at the first failure.
func ToPosts(docs []models.Document) ([]models.Post, error) {
	out := make([]models.Post, 0, len(docs))
	for i, doc := range docs {
		post, err := ToPost(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		out = append(out, post)
	}
	return out, nil
}

// ToChatMessages maps a batch of chat documents, preserving order and
// stopping at the first failure.
func ToChatMessages(ctx context.Context, docs []models.Document) ([]models.ChatMessage, error) {
	out := make([]models.ChatMessage, 0, len(docs))
	for i, doc := range docs {
		msg, err := ToChatMessage(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		out = append(out, msg)
	}
	return out, nil
}

func decode(kind string, doc models.Document, required []string, out any) error {
	for _, field := range required {
		if !doc.Has(field) {
			return fail(kind, models.NewMappingError(kind, field))
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(timestampHook, wholeNumberHook),
		Result:     out,
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := dec.Decode(map[string]any(doc)); err != nil {
		return fail(kind, models.NewMappingTypeError(kind, err))
	}
	return nil
}

func toImages(raw any) ([]models.Image, error) {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case bson.A:
		items = v
	case []map[string]any:
		for _, m := range v {
			items = append(items, m)
		}
	default:
		return nil, fmt.Errorf("images is %T, want a list", raw)
	}

	images := make([]models.Image, 0, len(items))
	for i, item := range items {
		img, err := guards.ParseImage(item)
		if err != nil {
			return nil, fmt.Errorf("images[%d]: %w", i, err)
		}
		images = append(images, img)
	}
	return images, nil
}

func fail(kind string, err *models.AppError) error {
	observability.MappingFailures.WithLabelValues(kind).Inc()
	return err
}
