package routes

import (
	"github.com/gofiber/fiber/v2"

	"task-tracker/interfaces/api/handlers"
	websocketHandler "task-tracker/interfaces/api/websocket"
)

// Middlewares ที่ route ต้องใช้ สร้างโดย container
type Middlewares struct {
	Protected fiber.Handler
	RateLimit fiber.Handler
}

func SetupRoutes(app *fiber.App, h *handlers.Handlers, mw Middlewares, ws *websocketHandler.WebSocketHandler) {
	// Setup health and root routes
	SetupHealthRoutes(app, h)

	// API version group
	api := app.Group("/api/v1")

	SetupAuthRoutes(api, h, mw)
	SetupTaskRoutes(api, h, mw)

	// WebSocket อยู่นอก /api (ต้องใช้ app)
	if ws != nil {
		SetupWebSocketRoutes(app, ws, mw)
	}
}
