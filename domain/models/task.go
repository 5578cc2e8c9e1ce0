package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// ParseTaskStatus รับค่าแบบไม่สนตัวพิมพ์ เช่น "done" -> DONE
func ParseTaskStatus(s string) (TaskStatus, bool) {
	status := TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
	return status, status.IsValid()
}

func ParseTaskPriority(s string) (TaskPriority, bool) {
	priority := TaskPriority(strings.ToUpper(strings.TrimSpace(s)))
	return priority, priority.IsValid()
}

const (
	TitleMaxLength       = 200
	DescriptionMaxLength = 1000
)

// Task is owned by exactly one user. DueDate is a calendar date stored as
// midnight UTC.
type Task struct {
	ID          uuid.UUID    `gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID    `gorm:"type:uuid;not null;index;uniqueIndex:uq_tasks_owner_seq,priority:1"`
	Title       string       `gorm:"size:200;not null"`
	Description *string      `gorm:"size:1000"`
	Status      TaskStatus   `gorm:"size:20;not null;default:'TODO'"`
	Priority    TaskPriority `gorm:"size:20;not null;default:'MEDIUM'"`
	DueDate     *time.Time
	CreatedAt   time.Time        `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime:false"`
	ChangeLog   []ChangeLogEntry `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`

	// Seq orders an owner's tasks by insertion in SQL stores.
	Seq int64 `gorm:"not null;default:0;uniqueIndex:uq_tasks_owner_seq,priority:2"`
}

func (Task) TableName() string {
	return "tasks"
}

func (t *Task) IsDone() bool {
	return t.Status == TaskStatusDone
}

// Clone returns a deep copy so callers can never mutate stored state.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	if t.ChangeLog != nil {
		c.ChangeLog = make([]ChangeLogEntry, len(t.ChangeLog))
		for i := range t.ChangeLog {
			c.ChangeLog[i] = t.ChangeLog[i].Clone()
		}
	}
	return &c
}

// ChangeLogEntry records a title/description edit made while the task was DONE.
type ChangeLogEntry struct {
	ID                  uint      `gorm:"primaryKey;autoIncrement"`
	TaskID              uuid.UUID `gorm:"type:uuid;not null;index"`
	Timestamp           time.Time `gorm:"not null"`
	PreviousTitle       string    `gorm:"size:200"`
	NewTitle            string    `gorm:"size:200"`
	PreviousDescription *string   `gorm:"size:1000"`
	NewDescription      *string   `gorm:"size:1000"`
}

func (ChangeLogEntry) TableName() string {
	return "task_change_logs"
}

func (e ChangeLogEntry) Clone() ChangeLogEntry {
	c := e
	if e.PreviousDescription != nil {
		d := *e.PreviousDescription
		c.PreviousDescription = &d
	}
	if e.NewDescription != nil {
		d := *e.NewDescription
		c.NewDescription = &d
	}
	return c
}
