package repositories

import (
	"context"

	"github.com/google/uuid"

	"task-tracker/domain/models"
)

// TaskMutation edits a private copy of the stored task. Returning an error
// aborts the update and nothing is written.
type TaskMutation func(task *models.Task) error

// TaskRepository is the owner-scoped task store. A task owned by someone else
// is reported exactly like a missing one (apperror.ErrTaskNotFound). Returned
// tasks are copies; changing them never changes the store.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	FindAll(ctx context.Context, ownerID uuid.UUID) ([]*models.Task, error)
	FindOne(ctx context.Context, id, ownerID uuid.UUID) (*models.Task, error)
	// Update runs mutate and commits its result atomically with respect to
	// every other call on the same task.
	Update(ctx context.Context, id, ownerID uuid.UUID, mutate TaskMutation) (*models.Task, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error)
	// ListOwners returns every user id that owns at least one task.
	ListOwners(ctx context.Context) ([]uuid.UUID, error)
}
