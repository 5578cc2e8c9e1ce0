package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"task-tracker/domain/ports"
	"task-tracker/pkg/logger"
)

// TaskEventPayload คือ data ที่ frontend ได้รับใน message "task:<type>"
type TaskEventPayload struct {
	TaskID     string    `json:"taskId"`
	Title      string    `json:"title,omitempty"`
	Status     string    `json:"status,omitempty"`
	Priority   string    `json:"priority,omitempty"`
	DueDate    string    `json:"dueDate,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// TaskEventBroadcaster ส่ง task event ไปยัง connection ของเจ้าของ task
// ใช้ได้สองแบบ: เป็น TaskEventPublisher โดยตรง (ไม่มี NATS)
// หรือ Start กับ subscriber เพื่อรับ event จาก broker
type TaskEventBroadcaster struct {
	manager    *WebSocketManager
	subscriber ports.TaskEventSubscriber
	running    bool
	runningMu  sync.Mutex
	cancelCtx  context.CancelFunc
}

var _ ports.TaskEventPublisher = (*TaskEventBroadcaster)(nil)

func NewTaskEventBroadcaster(manager *WebSocketManager) *TaskEventBroadcaster {
	return &TaskEventBroadcaster{manager: manager}
}

// PublishTaskEvent broadcast ไปยัง user เจ้าของ task
func (b *TaskEventBroadcaster) PublishTaskEvent(ctx context.Context, event *ports.TaskEvent) error {
	b.handleTaskEvent(event)
	return nil
}

// Start subscribe ผ่าน interface แล้ว broadcast ทุก event ที่ได้รับ
func (b *TaskEventBroadcaster) Start(subscriber ports.TaskEventSubscriber) error {
	b.runningMu.Lock()
	defer b.runningMu.Unlock()
	if b.running {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := subscriber.Subscribe(ctx, b.handleTaskEvent); err != nil {
		cancel()
		return err
	}
	b.subscriber = subscriber
	b.cancelCtx = cancel
	b.running = true

	logger.Info("Task event broadcaster started")
	return nil
}

func (b *TaskEventBroadcaster) Stop() {
	b.runningMu.Lock()
	defer b.runningMu.Unlock()
	if !b.running {
		return
	}
	b.running = false

	if b.cancelCtx != nil {
		b.cancelCtx()
	}
	if err := b.subscriber.Unsubscribe(); err != nil {
		logger.Warn("Failed to unsubscribe task events", "error", err)
	}
	logger.Info("Task event broadcaster stopped")
}

func (b *TaskEventBroadcaster) handleTaskEvent(event *ports.TaskEvent) {
	if event == nil || event.TaskID == "" {
		logger.Warn("Invalid task event received")
		return
	}
	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		logger.Warn("Task event with invalid user_id", "user_id", event.UserID, "error", err)
		return
	}

	b.manager.BroadcastToUser(userID, "task:"+string(event.Type), TaskEventPayload{
		TaskID:     event.TaskID,
		Title:      event.Title,
		Status:     event.Status,
		Priority:   event.Priority,
		DueDate:    event.DueDate,
		OccurredAt: event.OccurredAt,
	})

	logger.Debug("Task event broadcasted",
		"type", event.Type,
		"task_id", event.TaskID,
		"user_id", event.UserID,
	)
}
