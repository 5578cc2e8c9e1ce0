package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"task-tracker/pkg/logger"
)

// Publisher publishes task events to JetStream
type Publisher struct {
	client *Client
}

// NewPublisher สร้าง Publisher ใหม่
func NewPublisher(client *Client) *Publisher {
	return &Publisher{
		client: client,
	}
}

// PublishTaskEvent ส่ง event ไปยัง JetStream ที่ subject tasks.{type}.{user_id}
func (p *Publisher) PublishTaskEvent(ctx context.Context, msg *TaskEventMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal task event: %w", err)
	}

	subject := TaskSubject(msg.Type, msg.UserID)
	ack, err := p.client.js.Publish(ctx, subject, data)
	if err != nil {
		return fmt.Errorf("failed to publish task event: %w", err)
	}

	logger.DebugContext(ctx, "Task event published to JetStream",
		"subject", subject,
		"task_id", msg.TaskID,
		"stream", ack.Stream,
		"sequence", ack.Sequence,
	)
	return nil
}
