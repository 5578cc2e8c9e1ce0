package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"task-tracker/interfaces/api/middleware"
	websocketHandler "task-tracker/interfaces/api/websocket"
)

func SetupWebSocketRoutes(app *fiber.App, wsHandler *websocketHandler.WebSocketHandler, mw Middlewares) {
	// browser ส่ง token ผ่าน ?token= แทน header
	app.Use("/ws", wsHandler.WebSocketUpgrade, middleware.QueryToken(), mw.Protected)
	app.Get("/ws/tasks", websocket.New(wsHandler.HandleWebSocket))
}
