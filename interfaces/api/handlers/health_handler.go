package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck คืน nil เมื่อ dependency พร้อมใช้งาน
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	appName string
	version string
	checks  map[string]HealthCheck
}

func NewHealthHandler(appName, version string) *HealthHandler {
	return &HealthHandler{
		appName: appName,
		version: version,
		checks:  make(map[string]HealthCheck),
	}
}

// AddCheck ลงทะเบียน dependency (database, redis, nats)
func (h *HealthHandler) AddCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// Health GET /health - 503 ถ้ามี dependency ใดล่ม
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "ok"
	deps := make(fiber.Map, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status = "degraded"
			continue
		}
		deps[name] = "ok"
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":       status,
		"service":      h.appName,
		"dependencies": deps,
	})
}

// Root GET /
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Welcome to " + h.appName,
		"version": h.version,
		"docs":    "/api/v1",
		"health":  "/health",
	})
}
