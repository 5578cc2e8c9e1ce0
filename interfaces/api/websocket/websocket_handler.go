package websocket

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	websocketManager "task-tracker/infrastructure/websocket"
	"task-tracker/pkg/logger"
	"task-tracker/pkg/utils"
)

type WebSocketHandler struct {
	manager *websocketManager.WebSocketManager
}

func NewWebSocketHandler(manager *websocketManager.WebSocketManager) *WebSocketHandler {
	return &WebSocketHandler{manager: manager}
}

func (h *WebSocketHandler) WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleWebSocket ผูก connection กับ user จาก Protected middleware
// แล้วอ่านข้อความจนกว่า client จะปิด
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	user, ok := c.Locals("user").(*utils.UserContext)
	if !ok || user == nil {
		_ = c.WriteJSON(websocketManager.Message{Type: "error", Data: "unauthorized"})
		_ = c.Close()
		return
	}

	h.manager.RegisterClient(c, user.ID)
	defer h.manager.UnregisterClient(c)

	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			logger.Debug("WebSocket read ended", "user_id", user.ID, "error", err)
			break
		}

		h.manager.HandleClientMessage(c, message)
	}
}
