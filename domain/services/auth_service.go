package services

import (
	"context"

	"github.com/google/uuid"

	"task-tracker/domain/dto"
	"task-tracker/domain/models"
)

type AuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (string, *models.User, error)
	Login(ctx context.Context, req *dto.LoginRequest) (string, *models.User, error)
	// Authenticate verifies token and that its user still exists.
	Authenticate(ctx context.Context, token string) (*models.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GenerateJWT(user *models.User) (string, error)
}
