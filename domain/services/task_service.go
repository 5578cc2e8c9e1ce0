package services

import (
	"context"

	"github.com/google/uuid"

	"task-tracker/domain/models"
	"task-tracker/domain/taskrules"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type ListQuery struct {
	Filter taskrules.Filter
	Page   int
	Limit  int
}

// TaskPage is one page of a filtered, urgency-sorted list. PageSize is the
// number of items on this page, TotalPages is ceil(Total/Limit).
type TaskPage struct {
	Items      []*models.Task
	Total      int64
	Page       int
	Limit      int
	PageSize   int
	TotalPages int
}

type TaskService interface {
	// CreateTask stores draft for ownerID. Status defaults to TODO and
	// priority to MEDIUM.
	CreateTask(ctx context.Context, ownerID uuid.UUID, draft *models.Task) (*models.Task, error)
	ListTasks(ctx context.Context, ownerID uuid.UUID, query ListQuery) (*TaskPage, error)
	GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*models.Task, error)
	UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, patch taskrules.Patch) (*models.Task, error)
	DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error
	// UrgentTasks returns the owner's urgent tasks, most pressing first.
	UrgentTasks(ctx context.Context, ownerID uuid.UUID) ([]*models.Task, error)
}
