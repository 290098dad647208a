package server

import (
	"islandmarket/internal/counters"
	"islandmarket/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SetCounterRequest is the body of PUT /api/v1/counters/:name.
type SetCounterRequest struct {
	Value *int `json:"value" validate:"required"`
}

// GetCounters returns every unread counter.
func (s *Server) GetCounters(c *fiber.Ctx) error {
	return c.JSON(s.store.Snapshot())
}

// IncrementCounter adds one to the named counter.
func (s *Server) IncrementCounter(c *fiber.Ctx) error {
	ctr, err := s.counterParam(c)
	if err != nil {
		return respondWithError(c, err)
	}
	ctr.Increment()
	return c.JSON(s.store.Snapshot())
}

// ClearCounter resets the named counter to zero.
func (s *Server) ClearCounter(c *fiber.Ctx) error {
	ctr, err := s.counterParam(c)
	if err != nil {
		return respondWithError(c, err)
	}
	ctr.Clear()
	return c.JSON(s.store.Snapshot())
}

// SetCounter overwrites the named counter. Negative values are stored as zero.
func (s *Server) SetCounter(c *fiber.Ctx) error {
	ctr, err := s.counterParam(c)
	if err != nil {
		return respondWithError(c, err)
	}
	var req SetCounterRequest
	if err := parseBody(c, &req); err != nil {
		return respondWithError(c, err)
	}
	ctr.Set(*req.Value)
	return c.JSON(s.store.Snapshot())
}

func (s *Server) counterParam(c *fiber.Ctx) (*counters.Counter, error) {
	name := c.Params("name")
	ctr, ok := s.store.Counter(name)
	if !ok {
		return nil, models.NewNotFoundError("Counter", name)
	}
	return ctr, nil
}
