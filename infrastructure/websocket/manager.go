package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"task-tracker/pkg/logger"
)

// Conn คือส่วนของ *websocket.Conn ที่ manager ใช้
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Client struct {
	Conn   Conn
	UserID uuid.UUID
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// BroadcastMessage - Conn มาก่อน UserID, ทั้งคู่ nil = ทุก client
type BroadcastMessage struct {
	Message Message
	UserID  *uuid.UUID
	Conn    Conn
}

// WebSocketManager ถือ connection ของทุก user
// user หนึ่งคนเปิดได้หลาย connection (หลาย tab) ทุก connection ได้ event เหมือนกัน
type WebSocketManager struct {
	clients         map[Conn]Client
	userConnections map[uuid.UUID]map[Conn]bool
	register        chan Client
	unregister      chan Conn
	broadcast       chan BroadcastMessage
	done            chan struct{}
	mutex           sync.RWMutex
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:         make(map[Conn]Client),
		userConnections: make(map[uuid.UUID]map[Conn]bool),
		register:        make(chan Client),
		unregister:      make(chan Conn),
		broadcast:       make(chan BroadcastMessage, 256),
		done:            make(chan struct{}),
	}
}

// Run วน loop จนกว่า ctx จะถูก cancel แล้วปิดทุก connection
func (m *WebSocketManager) Run(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return

		case client := <-m.register:
			m.mutex.Lock()
			m.clients[client.Conn] = client
			if m.userConnections[client.UserID] == nil {
				m.userConnections[client.UserID] = make(map[Conn]bool)
			}
			m.userConnections[client.UserID][client.Conn] = true
			m.mutex.Unlock()

			logger.Info("WebSocket client connected", "user_id", client.UserID)

		case conn := <-m.unregister:
			m.removeClient(conn)

		case message := <-m.broadcast:
			m.deliver(message)
		}
	}
}

func (m *WebSocketManager) deliver(message BroadcastMessage) {
	m.mutex.RLock()
	var targets []Conn
	if message.Conn != nil {
		if _, ok := m.clients[message.Conn]; ok {
			targets = append(targets, message.Conn)
		}
	} else if message.UserID != nil {
		for conn := range m.userConnections[*message.UserID] {
			targets = append(targets, conn)
		}
	} else {
		for conn := range m.clients {
			targets = append(targets, conn)
		}
	}
	m.mutex.RUnlock()

	for _, conn := range targets {
		if err := conn.WriteJSON(message.Message); err != nil {
			logger.Warn("WebSocket write failed, dropping client", "error", err)
			m.removeClient(conn)
		}
	}
}

func (m *WebSocketManager) removeClient(conn Conn) {
	m.mutex.Lock()
	client, ok := m.clients[conn]
	if ok {
		delete(m.clients, conn)
		if conns := m.userConnections[client.UserID]; conns != nil {
			delete(conns, conn)
			if len(conns) == 0 {
				delete(m.userConnections, client.UserID)
			}
		}
	}
	m.mutex.Unlock()

	if ok {
		_ = conn.Close()
		logger.Info("WebSocket client disconnected", "user_id", client.UserID)
	}
}

func (m *WebSocketManager) closeAll() {
	m.mutex.Lock()
	conns := make([]Conn, 0, len(m.clients))
	for conn := range m.clients {
		conns = append(conns, conn)
	}
	m.clients = make(map[Conn]Client)
	m.userConnections = make(map[uuid.UUID]map[Conn]bool)
	m.mutex.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}

// RegisterClient blocks จนกว่า Run จะรับ หรือ manager หยุดแล้ว
func (m *WebSocketManager) RegisterClient(conn Conn, userID uuid.UUID) {
	select {
	case m.register <- Client{Conn: conn, UserID: userID}:
	case <-m.done:
		_ = conn.Close()
	}
}

func (m *WebSocketManager) UnregisterClient(conn Conn) {
	select {
	case m.unregister <- conn:
	case <-m.done:
	}
}

func (m *WebSocketManager) BroadcastToUser(userID uuid.UUID, messageType string, data interface{}) {
	m.enqueue(BroadcastMessage{
		Message: Message{Type: messageType, Data: data},
		UserID:  &userID,
	})
}

func (m *WebSocketManager) BroadcastToAll(messageType string, data interface{}) {
	m.enqueue(BroadcastMessage{
		Message: Message{Type: messageType, Data: data},
	})
}

func (m *WebSocketManager) enqueue(msg BroadcastMessage) {
	select {
	case m.broadcast <- msg:
	case <-m.done:
	}
}

func (m *WebSocketManager) GetUserClients(userID uuid.UUID) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.userConnections[userID])
}

func (m *WebSocketManager) GetTotalClients() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// HandleClientMessage ตอบข้อความจาก client (ตอนนี้มีแค่ ping)
// คำตอบส่งผ่าน Run เพื่อให้มีผู้เขียน connection แค่ goroutine เดียว
func (m *WebSocketManager) HandleClientMessage(conn Conn, data []byte) {
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		logger.Debug("WebSocket: ignoring malformed message", "error", err)
		return
	}

	switch message.Type {
	case "ping":
		m.enqueue(BroadcastMessage{Message: Message{Type: "pong", Data: "pong"}, Conn: conn})
	default:
		logger.Debug("WebSocket: unknown message type", "type", message.Type)
	}
}
