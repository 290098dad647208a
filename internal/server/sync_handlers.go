package server

import (
	"islandmarket/internal/mapper"
	"islandmarket/internal/models"

	"github.com/gofiber/fiber/v2"
)

// MarkNotificationsRead clears the user's notification badges.
func (s *Server) MarkNotificationsRead(c *fiber.Ctx) error {
	userID, err := userParam(c)
	if err != nil {
		return respondWithError(c, err)
	}
	if err := s.syncService.MarkNotificationsRead(c.UserContext(), userID); err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(s.store.Snapshot())
}

// MarkChatRead clears the chat badge after the user opened a chat.
func (s *Server) MarkChatRead(c *fiber.Ctx) error {
	userID, err := userParam(c)
	if err != nil {
		return respondWithError(c, err)
	}
	if err := s.syncService.MarkChatRead(c.UserContext(), userID, c.Params("chatId")); err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(s.store.Snapshot())
}

// Rehydrate reloads the counters from the backend mirror.
func (s *Server) Rehydrate(c *fiber.Ctx) error {
	userID, err := userParam(c)
	if err != nil {
		return respondWithError(c, err)
	}
	snap, err := s.syncService.Rehydrate(c.UserContext(), userID)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(snap)
}

// ReceiveNotification counts a notification document pushed to the user.
func (s *Server) ReceiveNotification(c *fiber.Ctx) error {
	userID, err := userParam(c)
	if err != nil {
		return respondWithError(c, err)
	}
	doc, err := parseDocument(c)
	if err != nil {
		return respondWithError(c, err)
	}
	n, err := mapper.ToNotification(doc)
	if err != nil {
		return respondWithError(c, err)
	}
	counted := s.syncService.ReceiveNotification(c.UserContext(), userID, n)
	return c.JSON(fiber.Map{"counted": counted, "counters": s.store.Snapshot()})
}

// ReceiveChatMessage counts a chat message document pushed to the user.
func (s *Server) ReceiveChatMessage(c *fiber.Ctx) error {
	userID, err := userParam(c)
	if err != nil {
		return respondWithError(c, err)
	}
	doc, err := parseDocument(c)
	if err != nil {
		return respondWithError(c, err)
	}
	msg, err := mapper.ToChatMessage(c.UserContext(), doc)
	if err != nil {
		return respondWithError(c, err)
	}
	counted := s.syncService.ReceiveChatMessage(c.UserContext(), userID, c.Params("chatId"), msg)
	return c.JSON(fiber.Map{"counted": counted, "counters": s.store.Snapshot()})
}

// parseDocument decodes the request body as one raw backend document.
func parseDocument(c *fiber.Ctx) (models.Document, error) {
	var doc models.Document
	if err := c.BodyParser(&doc); err != nil || doc == nil {
		return nil, models.NewValidationError("Invalid request body")
	}
	return doc, nil
}
