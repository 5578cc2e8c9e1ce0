package messaging

import (
	"context"
	"fmt"

	"task-tracker/domain/ports"
	natspkg "task-tracker/infrastructure/nats"
)

// NATSTaskEventPublisher implements TaskEventPublisher using JetStream
type NATSTaskEventPublisher struct {
	publisher *natspkg.Publisher
}

// NewNATSTaskEventPublisher สร้าง TaskEventPublisher adapter สำหรับ NATS
func NewNATSTaskEventPublisher(publisher *natspkg.Publisher) ports.TaskEventPublisher {
	return &NATSTaskEventPublisher{
		publisher: publisher,
	}
}

func (p *NATSTaskEventPublisher) PublishTaskEvent(ctx context.Context, event *ports.TaskEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	return p.publisher.PublishTaskEvent(ctx, ToTaskEventMessage(event))
}

// ToTaskEventMessage แปลง port type เป็น wire type
func ToTaskEventMessage(event *ports.TaskEvent) *natspkg.TaskEventMessage {
	return &natspkg.TaskEventMessage{
		Type:       string(event.Type),
		TaskID:     event.TaskID,
		UserID:     event.UserID,
		Title:      event.Title,
		Status:     event.Status,
		Priority:   event.Priority,
		DueDate:    event.DueDate,
		OccurredAt: event.OccurredAt.UnixMilli(),
	}
}
