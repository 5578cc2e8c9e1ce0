package ports

import (
	"context"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════════
// Task Event Port - แจ้งการเปลี่ยนแปลงของ task ไปยัง subscriber (websocket, NATS)
// ═══════════════════════════════════════════════════════════════════════════════

type TaskEventType string

const (
	TaskEventCreated TaskEventType = "created"
	TaskEventUpdated TaskEventType = "updated"
	TaskEventDeleted TaskEventType = "deleted"
	TaskEventUrgent  TaskEventType = "urgent"
)

// TaskEvent - Plain struct (ไม่มี NATS dependency)
type TaskEvent struct {
	Type       TaskEventType
	TaskID     string
	UserID     string
	Title      string
	Status     string
	Priority   string
	DueDate    string // YYYY-MM-DD, empty when unset
	OccurredAt time.Time
}

// TaskEventPublisher ส่ง event หลัง mutation สำเร็จ
// ผู้เรียก log error เอง ไม่ทำให้ mutation ล้มเหลว
type TaskEventPublisher interface {
	PublishTaskEvent(ctx context.Context, event *TaskEvent) error
}

type TaskEventHandler func(event *TaskEvent)

// TaskEventSubscriber รับ event จาก broker (เช่น NATS) เพื่อส่งต่อให้ websocket
type TaskEventSubscriber interface {
	Subscribe(ctx context.Context, handler TaskEventHandler) error
	Unsubscribe() error
}
