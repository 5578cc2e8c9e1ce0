// Package memory holds the default process-local stores. Data lives only as
// long as the process.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"task-tracker/domain/apperror"
	"task-tracker/domain/models"
	"task-tracker/domain/repositories"
)

// TaskStore keeps tasks in a map keyed by id plus a per-owner slice of ids in
// insertion order. One RWMutex guards both.
type TaskStore struct {
	mu      sync.RWMutex
	tasks   map[uuid.UUID]*models.Task
	byOwner map[uuid.UUID][]uuid.UUID
}

func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks:   make(map[uuid.UUID]*models.Task),
		byOwner: make(map[uuid.UUID][]uuid.UUID),
	}
}

var _ repositories.TaskRepository = (*TaskStore)(nil)

// Create assigns an id when the task has none.
func (s *TaskStore) Create(ctx context.Context, task *models.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[task.ID] = task.Clone()
	s.byOwner[task.UserID] = append(s.byOwner[task.UserID], task.ID)
	return nil
}

func (s *TaskStore) FindAll(ctx context.Context, ownerID uuid.UUID) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byOwner[ownerID]
	out := make([]*models.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.tasks[id].Clone())
	}
	return out, nil
}

func (s *TaskStore) FindOne(ctx context.Context, id, ownerID uuid.UUID) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, err := s.lookup(id, ownerID)
	if err != nil {
		return nil, err
	}
	return task.Clone(), nil
}

// Update holds the write lock across read, mutate and commit, so concurrent
// updates of one task are serialized and each sees the previous result.
func (s *TaskStore) Update(ctx context.Context, id, ownerID uuid.UUID, mutate repositories.TaskMutation) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.lookup(id, ownerID)
	if err != nil {
		return nil, err
	}

	draft := current.Clone()
	if err := mutate(draft); err != nil {
		return nil, err
	}

	// id and owner never change
	draft.ID = current.ID
	draft.UserID = current.UserID
	s.tasks[id] = draft
	return draft.Clone(), nil
}

func (s *TaskStore) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(id, ownerID); err != nil {
		return false, nil
	}

	delete(s.tasks, id)
	ids := s.byOwner[ownerID]
	for i, existing := range ids {
		if existing == id {
			s.byOwner[ownerID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(s.byOwner[ownerID]) == 0 {
		delete(s.byOwner, ownerID)
	}
	return true, nil
}

func (s *TaskStore) ListOwners(ctx context.Context) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owners := make([]uuid.UUID, 0, len(s.byOwner))
	for owner := range s.byOwner {
		owners = append(owners, owner)
	}
	return owners, nil
}

// lookup must be called with the lock held.
func (s *TaskStore) lookup(id, ownerID uuid.UUID) (*models.Task, error) {
	task, ok := s.tasks[id]
	if !ok || task.UserID != ownerID {
		return nil, apperror.ErrTaskNotFound
	}
	return task, nil
}
