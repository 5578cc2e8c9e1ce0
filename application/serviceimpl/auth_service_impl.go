package serviceimpl

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"task-tracker/domain/apperror"
	"task-tracker/domain/dto"
	"task-tracker/domain/models"
	"task-tracker/domain/repositories"
	"task-tracker/domain/services"
	"task-tracker/pkg/logger"
	"task-tracker/pkg/utils"
)

type AuthServiceImpl struct {
	userRepo     repositories.UserRepository
	jwtSecret    string
	jwtExpiresIn time.Duration
	bcryptCost   int
}

func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, jwtExpiresIn time.Duration) services.AuthService {
	return &AuthServiceImpl{
		userRepo:     userRepo,
		jwtSecret:    jwtSecret,
		jwtExpiresIn: jwtExpiresIn,
		bcryptCost:   bcrypt.DefaultCost,
	}
}

// NewAuthServiceWithCost ใช้ใน test (bcrypt.MinCost เร็วกว่ามาก)
func NewAuthServiceWithCost(userRepo repositories.UserRepository, jwtSecret string, jwtExpiresIn time.Duration, cost int) services.AuthService {
	return &AuthServiceImpl{
		userRepo:     userRepo,
		jwtSecret:    jwtSecret,
		jwtExpiresIn: jwtExpiresIn,
		bcryptCost:   cost,
	}
}

func (s *AuthServiceImpl) Signup(ctx context.Context, req *dto.SignupRequest) (string, *models.User, error) {
	req.Normalize()

	existingUser, _ := s.userRepo.GetByEmail(ctx, req.Email)
	if existingUser != nil {
		logger.WarnContext(ctx, "Email already exists", "email", req.Email)
		return "", nil, apperror.ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to hash password", "error", err)
		return "", nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        uuid.New(),
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashedPassword),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if !errors.Is(err, apperror.ErrEmailTaken) {
			logger.ErrorContext(ctx, "Failed to create user", "error", err)
		}
		return "", nil, err
	}

	token, err := s.GenerateJWT(user)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to generate JWT", "user_id", user.ID, "error", err)
		return "", nil, err
	}

	logger.InfoContext(ctx, "User signed up", "user_id", user.ID, "email", user.Email)
	return token, user, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (string, *models.User, error) {
	req.Normalize()

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		logger.WarnContext(ctx, "Login failed - email not found", "email", req.Email)
		return "", nil, apperror.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.WarnContext(ctx, "Login failed - invalid password", "user_id", user.ID)
		return "", nil, apperror.ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(user)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to generate JWT", "user_id", user.ID, "error", err)
		return "", nil, err
	}

	logger.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return token, user, nil
}

func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := utils.ValidateTokenStringToUUID(token, s.jwtSecret)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrUserNotFound) {
			return nil, apperror.ErrTokenUserGone
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *AuthServiceImpl) GenerateJWT(user *models.User) (string, error) {
	return utils.GenerateToken(user.ID, user.Email, s.jwtSecret, s.jwtExpiresIn, time.Now())
}
