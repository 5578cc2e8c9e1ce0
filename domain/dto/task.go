package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Status      string  `json:"status" validate:"omitempty,taskstatus"`
	Priority    string  `json:"priority" validate:"omitempty,taskpriority"`
	DueDate     *string `json:"dueDate" validate:"omitempty,date,notpast"`
}

// Normalize trims text fields and upper-cases enums before validation.
func (r *CreateTaskRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = trimPtr(r.Description)
	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
	r.Priority = strings.ToUpper(strings.TrimSpace(r.Priority))
}

// UpdateTaskRequest uses pointers so an absent field differs from an empty one.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Status      *string `json:"status" validate:"omitempty,taskstatus"`
	Priority    *string `json:"priority" validate:"omitempty,taskpriority"`
	DueDate     *string `json:"dueDate" validate:"omitempty,date,notpast"`
}

func (r *UpdateTaskRequest) Normalize() {
	r.Title = trimPtr(r.Title)
	r.Description = trimPtr(r.Description)
	r.Status = upperPtr(r.Status)
	r.Priority = upperPtr(r.Priority)
}

func (r *UpdateTaskRequest) HasChanges() bool {
	return r.Title != nil || r.Description != nil || r.Status != nil || r.Priority != nil || r.DueDate != nil
}

// TaskFilterRequest holds the raw list query. Status and Priority are comma
// separated and matched case-insensitively.
type TaskFilterRequest struct {
	Status   string `query:"status"`
	Priority string `query:"priority"`
	Search   string `query:"search" validate:"max=100"`
}

type TaskResponse struct {
	ID          uuid.UUID                `json:"id"`
	UserID      uuid.UUID                `json:"userId"`
	Title       string                   `json:"title"`
	Description *string                  `json:"description,omitempty"`
	Status      string                   `json:"status"`
	Priority    string                   `json:"priority"`
	DueDate     *string                  `json:"dueDate,omitempty"`
	IsUrgent    bool                     `json:"isUrgent"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
	ChangeLog   []ChangeLogEntryResponse `json:"changeLog"`
}

type ChangeLogEntryResponse struct {
	Timestamp           time.Time `json:"timestamp"`
	PreviousTitle       string    `json:"previousTitle"`
	NewTitle            string    `json:"newTitle"`
	PreviousDescription *string   `json:"previousDescription,omitempty"`
	NewDescription      *string   `json:"newDescription,omitempty"`
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func upperPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToUpper(strings.TrimSpace(*s))
	return &v
}
