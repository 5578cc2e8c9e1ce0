package persistence

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"task-tracker/domain/apperror"
	"task-tracker/domain/models"
	"task-tracker/domain/taskrules"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := NewDatabase(DatabaseConfig{
		Driver:     DriverSQLite,
		SQLitePath: ":memory:",
		LogLevel:   gormlogger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func seedTask(t *testing.T, repo *TaskRepositoryImpl, owner uuid.UUID, title string, status models.TaskStatus) *models.Task {
	t.Helper()
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	task := &models.Task{
		UserID:    owner,
		Title:     title,
		Status:    status,
		Priority:  models.TaskPriorityHigh,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(context.Background(), task))
	return task
}

func TestTaskRepository_FindAllKeepsInsertionOrder(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t)).(*TaskRepositoryImpl)
	owner, other := uuid.New(), uuid.New()

	seedTask(t, repo, owner, "first", models.TaskStatusTodo)
	seedTask(t, repo, other, "foreign", models.TaskStatusTodo)
	seedTask(t, repo, owner, "second", models.TaskStatusTodo)
	seedTask(t, repo, owner, "third", models.TaskStatusTodo)

	tasks, err := repo.FindAll(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{tasks[0].Title, tasks[1].Title, tasks[2].Title})
}

func TestTaskRepository_ConcurrentCreateAssignsDistinctSeq(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(setupTestDB(t)).(*TaskRepositoryImpl)
	owner := uuid.New()
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.Create(ctx, &models.Task{
				UserID:    owner,
				Title:     fmt.Sprintf("task %02d", i),
				Status:    models.TaskStatusTodo,
				Priority:  models.TaskPriorityLow,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	tasks, err := repo.FindAll(ctx, owner)
	require.NoError(t, err)
	require.Len(t, tasks, n)
	for i, task := range tasks {
		assert.Equal(t, int64(i+1), task.Seq, "seq must be contiguous in listing order")
	}
}

func TestTaskRepository_OwnerSeqIsUnique(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db).(*TaskRepositoryImpl)
	owner := uuid.New()
	first := seedTask(t, repo, owner, "first", models.TaskStatusTodo)

	dup := first.Clone()
	dup.ID = uuid.New()
	dup.ChangeLog = nil
	assert.Error(t, db.Create(dup).Error, "second row with the same owner and seq must be rejected")

	// another owner may reuse the number
	other := first.Clone()
	other.ID = uuid.New()
	other.UserID = uuid.New()
	other.ChangeLog = nil
	assert.NoError(t, db.Create(other).Error)
}

func TestTaskRepository_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(setupTestDB(t)).(*TaskRepositoryImpl)
	owner := uuid.New()
	task := seedTask(t, repo, owner, "mine", models.TaskStatusTodo)

	_, err := repo.FindOne(ctx, task.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrTaskNotFound)

	deleted, err := repo.Delete(ctx, task.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, deleted)

	found, err := repo.FindOne(ctx, task.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "mine", found.Title)
}

func TestTaskRepository_UpdatePersistsChangeLog(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(setupTestDB(t)).(*TaskRepositoryImpl)
	owner := uuid.New()
	task := seedTask(t, repo, owner, "done task", models.TaskStatusDone)
	now := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

	title := "renamed"
	updated, err := repo.Update(ctx, task.ID, owner, func(current *models.Task) error {
		return taskrules.Apply(current, taskrules.Patch{Title: &title}, now)
	})
	require.NoError(t, err)
	require.Len(t, updated.ChangeLog, 1)

	description := "added later"
	_, err = repo.Update(ctx, task.ID, owner, func(current *models.Task) error {
		return taskrules.Apply(current, taskrules.Patch{Description: &description}, now)
	})
	require.NoError(t, err)

	found, err := repo.FindOne(ctx, task.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "renamed", found.Title)
	require.NotNil(t, found.Description)
	assert.Equal(t, "added later", *found.Description)
	require.Len(t, found.ChangeLog, 2)
	assert.Equal(t, "done task", found.ChangeLog[0].PreviousTitle)
	assert.Equal(t, "renamed", found.ChangeLog[0].NewTitle)
	assert.Nil(t, found.ChangeLog[1].PreviousDescription)
	assert.True(t, found.UpdatedAt.After(now))
}

func TestTaskRepository_RejectedUpdateWritesNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(setupTestDB(t)).(*TaskRepositoryImpl)
	owner := uuid.New()
	task := seedTask(t, repo, owner, "locked", models.TaskStatusDone)

	low := models.TaskPriorityLow
	title := "sneaky"
	_, err := repo.Update(ctx, task.ID, owner, func(current *models.Task) error {
		return taskrules.Apply(current, taskrules.Patch{Title: &title, Priority: &low}, time.Now())
	})
	assert.ErrorIs(t, err, apperror.ErrPolicyViolation)

	found, err := repo.FindOne(ctx, task.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "locked", found.Title)
	assert.Equal(t, models.TaskPriorityHigh, found.Priority)
	assert.Empty(t, found.ChangeLog)
}

func TestTaskRepository_DeleteRemovesChangeLog(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewTaskRepository(db).(*TaskRepositoryImpl)
	owner := uuid.New()
	task := seedTask(t, repo, owner, "done", models.TaskStatusDone)

	title := "edited"
	_, err := repo.Update(ctx, task.ID, owner, func(current *models.Task) error {
		return taskrules.Apply(current, taskrules.Patch{Title: &title}, time.Now())
	})
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, task.ID, owner)
	require.NoError(t, err)
	assert.True(t, deleted)

	var remaining int64
	require.NoError(t, db.Model(&models.ChangeLogEntry{}).Count(&remaining).Error)
	assert.Zero(t, remaining)

	owners, err := repo.ListOwners(ctx)
	require.NoError(t, err)
	assert.Empty(t, owners)
}

func TestUserRepository_EmailUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(setupTestDB(t))

	require.NoError(t, repo.Create(ctx, &models.User{Email: "Bob@Example.com", Password: "x"}))
	err := repo.Create(ctx, &models.User{Email: "bob@example.com", Password: "y"})
	assert.ErrorIs(t, err, apperror.ErrEmailTaken)

	user, err := repo.GetByEmail(ctx, "BOB@example.com")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", user.Email)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrUserNotFound)
}
