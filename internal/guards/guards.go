// Package guards discriminates image and chat message variants that the
// backend distinguishes only by field presence.
package guards

import (
	"context"
	"errors"

	"islandmarket/internal/models"
	"islandmarket/internal/observability"
)

// ErrUnknownImage is returned by ParseImage for values matching neither image shape.
var ErrUnknownImage = errors.New("value is neither a local nor an uploaded image")

// IsLocalImage reports whether v is a local image: it carries an assetId.
func IsLocalImage(v any) bool {
	doc, ok := models.AsDocument(v)
	if !ok {
		return false
	}
	_, has := doc["assetId"]
	return has
}

// IsUploadedImage reports whether v is an uploaded image: no assetId and a string uri.
func IsUploadedImage(v any) bool {
	doc, ok := models.AsDocument(v)
	if !ok {
		return false
	}
	if _, has := doc["assetId"]; has {
		return false
	}
	_, isString := doc.String("uri")
	return isString
}

// ParseImage resolves the image variant once and returns the tagged value.
func ParseImage(v any) (models.Image, error) {
	doc, _ := models.AsDocument(v)
	switch {
	case IsLocalImage(v):
		assetID, ok := doc.String("assetId")
		if !ok {
			return models.Image{}, ErrUnknownImage
		}
		uri, _ := doc.String("uri")
		return models.Image{Kind: models.ImageLocal, AssetID: assetID, URI: uri}, nil
	case IsUploadedImage(v):
		uri, _ := doc.String("uri")
		return models.Image{Kind: models.ImageUploaded, URI: uri}, nil
	}
	return models.Image{}, ErrUnknownImage
}

// IsSystemMessage reports whether the chat document carries system: true.
func IsSystemMessage(doc models.Document) bool {
	return doc.Bool("system")
}

// IsReviewMessage reports whether the chat document carries review: true.
func IsReviewMessage(doc models.Document) bool {
	return doc.Bool("review")
}

// ResolveMessageKind returns the chat variant of doc. When both markers are
// set it still resolves to MessageSystem but also returns a
// GuardAmbiguityError so callers can decide whether to surface it.
func ResolveMessageKind(doc models.Document) (models.MessageKind, error) {
	system := IsSystemMessage(doc)
	review := IsReviewMessage(doc)
	switch {
	case system && review:
		id, _ := doc.String("id")
		return models.MessageSystem, models.NewGuardAmbiguityError(id)
	case system:
		return models.MessageSystem, nil
	case review:
		return models.MessageReview, nil
	}
	return models.MessagePlain, nil
}

// ClassifyMessage returns the chat variant of doc using the precedence
// system > review > plain. Ambiguous documents are logged, never rejected.
func ClassifyMessage(ctx context.Context, doc models.Document) models.MessageKind {
	kind, err := ResolveMessageKind(doc)
	if err != nil {
		observability.LogGuardAmbiguity(ctx, err, kind.String())
	}
	return kind
}
