package nats

import "fmt"

// Stream and subject names
const (
	StreamName = "TASK_EVENTS"

	// tasks.{type}.{user_id}
	SubjectTaskEvents = "tasks"
	SubjectAllTasks   = SubjectTaskEvents + ".>"
)

// TaskSubject คืน subject ของ event ชนิด eventType สำหรับ userID
func TaskSubject(eventType, userID string) string {
	return fmt.Sprintf("%s.%s.%s", SubjectTaskEvents, eventType, userID)
}

// ═══════════════════════════════════════════════════════════════════════════════
// TaskEventMessage - API → subscribers (via JetStream + Pub/Sub)
// ═══════════════════════════════════════════════════════════════════════════════
type TaskEventMessage struct {
	Type       string `json:"type"` // created, updated, deleted, urgent
	TaskID     string `json:"task_id"`
	UserID     string `json:"user_id"`
	Title      string `json:"title,omitempty"`
	Status     string `json:"status,omitempty"`
	Priority   string `json:"priority,omitempty"`
	DueDate    string `json:"due_date,omitempty"` // YYYY-MM-DD
	OccurredAt int64  `json:"occurred_at"`        // unix millis
}

// ═══════════════════════════════════════════════════════════════════════════════
// JetStream Status - สำหรับ health endpoint
// ═══════════════════════════════════════════════════════════════════════════════
type StreamInfo struct {
	Name     string `json:"name"`      // TASK_EVENTS
	Messages uint64 `json:"messages"`  // จำนวน events ที่เก็บอยู่
	Bytes    uint64 `json:"bytes"`     // ขนาด data ทั้งหมด
	FirstSeq uint64 `json:"first_seq"` // Sequence แรก
	LastSeq  uint64 `json:"last_seq"`  // Sequence ล่าสุด
}
