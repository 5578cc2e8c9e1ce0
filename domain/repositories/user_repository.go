package repositories

import (
	"context"

	"github.com/google/uuid"

	"task-tracker/domain/models"
)

type UserRepository interface {
	// Create fails with apperror.ErrEmailTaken when the email is in use.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
