package server

import (
	"context"

	"islandmarket/internal/chatformat"
	"islandmarket/internal/featureflags"
	"islandmarket/internal/mapper"
	"islandmarket/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SanitizeRequest is the body of POST /api/v1/sanitize.
type SanitizeRequest struct {
	Text string `json:"text" validate:"max=10000"`
}

// FormatChatRequest is the body of POST /api/v1/chat/format. Messages are
// raw backend documents, oldest first. When Users is present every author
// gets a name and avatar, falling back to the default profile.
type FormatChatRequest struct {
	Messages    []models.Document           `json:"messages" validate:"max=500"`
	RecipientID string                      `json:"recipientId"`
	Users       map[string]*models.UserInfo `json:"users"`
}

// ResolveProfilesRequest is the body of POST /api/v1/profiles/resolve.
// Profiles holds the ones the shell could load; the rest are unavailable.
type ResolveProfilesRequest struct {
	IDs      []string                              `json:"ids" validate:"required,max=500"`
	Profiles map[string]*models.UserInfoWithCounts `json:"profiles"`
}

// MapPostsRequest is the body of POST /api/v1/posts/map.
type MapPostsRequest struct {
	Documents []models.Document `json:"documents" validate:"max=500"`
}

// SanitizeText masks flagged spans of the submitted text.
func (s *Server) SanitizeText(c *fiber.Ctx) error {
	var req SanitizeRequest
	if err := parseBody(c, &req); err != nil {
		return respondWithError(c, err)
	}
	out, err := s.sanitizer.Sanitize(c.UserContext(), req.Text)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(fiber.Map{"text": out})
}

// FormatChat maps raw chat documents and returns them as the chat widget list.
func (s *Server) FormatChat(c *fiber.Ctx) error {
	var req FormatChatRequest
	if err := parseBody(c, &req); err != nil {
		return respondWithError(c, err)
	}
	msgs, err := mapper.ToChatMessages(c.UserContext(), req.Messages)
	if err != nil {
		return respondWithError(c, err)
	}
	out := chatformat.FormatDisplayMessages(msgs, req.RecipientID)
	if req.Users != nil {
		for i := range out {
			info := models.UserInfoOrDefault(req.Users[out[i].User.ID])
			out[i].User.Name = info.DisplayName
			out[i].User.Avatar = info.PhotoURL
		}
	}
	if err := s.maskDisplay(c.UserContext(), req.RecipientID, out); err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(out)
}

// GetChatHistory returns a chat's stored history from the backend mirror.
func (s *Server) GetChatHistory(c *fiber.Ctx) error {
	recipientID := c.Query("recipientId")
	out, err := s.syncService.ChatHistory(c.UserContext(), c.Params("chatId"), recipientID)
	if err != nil {
		return respondWithError(c, err)
	}
	if err := s.maskDisplay(c.UserContext(), recipientID, out); err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(out)
}

// MapPosts maps raw post documents into post view models.
func (s *Server) MapPosts(c *fiber.Ctx) error {
	var req MapPostsRequest
	if err := parseBody(c, &req); err != nil {
		return respondWithError(c, err)
	}
	posts, err := mapper.ToPosts(req.Documents)
	if err != nil {
		return respondWithError(c, err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return c.JSON(posts)
}

// ResolveProfiles returns a profile for every requested id, substituting the
// default profile for unavailable ones.
func (s *Server) ResolveProfiles(c *fiber.Ctx) error {
	var req ResolveProfilesRequest
	if err := parseBody(c, &req); err != nil {
		return respondWithError(c, err)
	}
	out := make(map[string]models.UserInfoWithCounts, len(req.IDs))
	for _, id := range req.IDs {
		out[id] = models.UserInfoWithCountsOrDefault(req.Profiles[id])
	}
	return c.JSON(out)
}

// maskDisplay sanitizes message text in place when the viewer is in the
// sanitize_display rollout.
func (s *Server) maskDisplay(ctx context.Context, viewerID string, msgs []models.DisplayMessage) error {
	if !s.featureFlags.Enabled(featureflags.SanitizeDisplay, viewerID) {
		return nil
	}
	for i := range msgs {
		text, err := s.sanitizer.Sanitize(ctx, msgs[i].Text)
		if err != nil {
			return err
		}
		msgs[i].Text = text
	}
	return nil
}

// GetFeatureFlags returns the evaluated flags for a user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID, err := userParam(c)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(s.featureFlags.Snapshot(userID))
}
