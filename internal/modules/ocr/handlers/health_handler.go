package handlers

import (
	"context"
	"time"

	"github.com/MuhamadAgungGumelar/ocr-api/internal/core/jobs"
	"github.com/gofiber/fiber/v2"
)

// Pinger checks database connectivity
type Pinger interface {
	PingContext(ctx context.Context) error
}

// QueueStats reports deferred write counters
type QueueStats interface {
	Stats() jobs.JobStats
}

type HealthHandler struct {
	db              Pinger
	queue           QueueStats
	engineName      string
	storageProvider string
}

// NewHealthHandler creates a health handler. db and queue may be nil.
func NewHealthHandler(db Pinger, queue QueueStats, engineName, storageProvider string) *HealthHandler {
	return &HealthHandler{
		db:              db,
		queue:           queue,
		engineName:      engineName,
		storageProvider: storageProvider,
	}
}

// GetRoot godoc
// @Summary Welcome message
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *HealthHandler) GetRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Welcome to the OCR API",
	})
}

// GetHealth godoc
// @Summary Service health check
// @Description Check if API is alive, plus database, OCR engine and storage information
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	status := "ok"
	database := "not configured"

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		database = "ok"
		if err := h.db.PingContext(ctx); err != nil {
			status = "degraded"
			database = err.Error()
		}
	}

	body := fiber.Map{
		"status":     status,
		"service":    "ocr-api",
		"ocr_engine": h.engineName,
		"storage":    h.storageProvider,
		"database":   database,
	}
	if h.queue != nil {
		body["persistence_queue"] = h.queue.Stats()
	}

	if status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(body)
	}
	return c.JSON(body)
}
