package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether a backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service and database status.
type HealthHandler struct {
	db        Pinger
	events    bool
	recommend bool
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, eventsEnabled, recommendationsEnabled bool) *HealthHandler {
	return &HealthHandler{db: db, events: eventsEnabled, recommend: recommendationsEnabled}
}

// RegisterRoutes registers the health route.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth always answers 200; the body carries component status.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	databaseAlive := h.db != nil && h.db.Ping(c.UserContext()) == nil

	status := "healthy"
	if !databaseAlive {
		status = "degraded"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":          status,
		"time":            time.Now().Format(time.RFC3339),
		"database_status": databaseAlive,
		"events":          h.events,
		"recommendations": h.recommend,
	})
}
