package messaging

import (
	"context"
	"time"

	"task-tracker/domain/ports"
	natspkg "task-tracker/infrastructure/nats"
	"task-tracker/pkg/logger"
)

// NATSTaskEventSubscriber implements TaskEventSubscriber using NATS Pub/Sub
type NATSTaskEventSubscriber struct {
	subscriber *natspkg.Subscriber
	cancel     context.CancelFunc
}

// NewNATSTaskEventSubscriber สร้าง TaskEventSubscriber adapter สำหรับ NATS
func NewNATSTaskEventSubscriber(subscriber *natspkg.Subscriber) ports.TaskEventSubscriber {
	return &NATSTaskEventSubscriber{
		subscriber: subscriber,
	}
}

// Subscribe เริ่ม listen task events
func (s *NATSTaskEventSubscriber) Subscribe(ctx context.Context, handler ports.TaskEventHandler) error {
	_, s.cancel = context.WithCancel(ctx)

	s.subscriber.OnTaskEvent(func(msg *natspkg.TaskEventMessage) {
		if msg == nil || msg.UserID == "" {
			logger.Warn("Received task event without user_id")
			return
		}
		handler(FromTaskEventMessage(msg))
	})

	if !s.subscriber.IsRunning() {
		return s.subscriber.Start()
	}
	return nil
}

// Unsubscribe หยุด listen
func (s *NATSTaskEventSubscriber) Unsubscribe() error {
	if s.cancel != nil {
		s.cancel()
	}
	return s.subscriber.Stop()
}

// FromTaskEventMessage แปลง wire type กลับเป็น port type
func FromTaskEventMessage(msg *natspkg.TaskEventMessage) *ports.TaskEvent {
	return &ports.TaskEvent{
		Type:       ports.TaskEventType(msg.Type),
		TaskID:     msg.TaskID,
		UserID:     msg.UserID,
		Title:      msg.Title,
		Status:     msg.Status,
		Priority:   msg.Priority,
		DueDate:    msg.DueDate,
		OccurredAt: time.UnixMilli(msg.OccurredAt).UTC(),
	}
}
