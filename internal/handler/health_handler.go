package handler

import (
	"context"

	"go-inventory-pos/internal/cache"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CacheStatus is what the health check reads from the report cache
type CacheStatus interface {
	Ping(ctx context.Context) error
	GetStats() cache.StatsSnapshot
}

type ClientCounter interface {
	ClientCount() int
}

type HealthHandler struct {
	db      *gorm.DB
	cache   CacheStatus // nil when the report cache is disabled
	clients ClientCounter
}

func NewHealthHandler(db *gorm.DB, reportCache CacheStatus, clients ClientCounter) *HealthHandler {
	return &HealthHandler{db: db, cache: reportCache, clients: clients}
}

// Check answers 503 only when the database is down; a broken cache degrades but still serves
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx := c.UserContext()
	status := "ok"
	code := fiber.StatusOK

	database := "ok"
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		database = "unavailable"
		status = "unavailable"
		code = fiber.StatusServiceUnavailable
	}

	reportCache := fiber.Map{"enabled": h.cache != nil}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			reportCache["status"] = "unavailable"
			if code == fiber.StatusOK {
				status = "degraded"
			}
		} else {
			reportCache["status"] = "ok"
		}
		reportCache["stats"] = h.cache.GetStats()
	}

	body := fiber.Map{
		"status":   status,
		"database": database,
		"cache":    reportCache,
	}
	if h.clients != nil {
		body["websocket_clients"] = h.clients.ClientCount()
	}
	return c.Status(code).JSON(body)
}
