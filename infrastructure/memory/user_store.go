package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"task-tracker/domain/apperror"
	"task-tracker/domain/models"
	"task-tracker/domain/repositories"
)

type UserStore struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*models.User
	byEmail map[string]uuid.UUID
}

func NewUserStore() *UserStore {
	return &UserStore{
		users:   make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

var _ repositories.UserRepository = (*UserStore)(nil)

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	email := strings.ToLower(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[email]; taken {
		return apperror.ErrEmailTaken
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.users[user.ID] = user.Clone()
	s.byEmail[email] = user.ID
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	return user.Clone(), nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	return s.users[id].Clone(), nil
}
