package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"task-tracker/domain/apperror"
	"task-tracker/domain/models"
	"task-tracker/domain/repositories"
)

type TaskRepositoryImpl struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) repositories.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func changeLogOrder(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *models.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOwnerSeq(tx, task.UserID); err != nil {
			return err
		}

		var maxSeq int64
		err := tx.Model(&models.Task{}).
			Where("user_id = ?", task.UserID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&maxSeq).Error
		if err != nil {
			return err
		}

		row := task.Clone()
		row.Seq = maxSeq + 1
		if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
			return err
		}
		task.Seq = row.Seq
		return nil
	})
}

// lockOwnerSeq กัน Create ของ owner เดียวกันอ่าน MAX(seq) ซ้อนกันบน postgres
// lock ปล่อยเองตอน transaction จบ; sqlite เขียนทีละ connection อยู่แล้ว
func lockOwnerSeq(tx *gorm.DB, ownerID uuid.UUID) error {
	if tx.Dialector.Name() != DriverPostgres {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", ownerID.String()).Error
}

func (r *TaskRepositoryImpl) FindAll(ctx context.Context, ownerID uuid.UUID) ([]*models.Task, error) {
	tasks := make([]*models.Task, 0)
	err := r.db.WithContext(ctx).
		Preload("ChangeLog", changeLogOrder).
		Where("user_id = ?", ownerID).
		Order("seq ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepositoryImpl) FindOne(ctx context.Context, id, ownerID uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Preload("ChangeLog", changeLogOrder).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update locks the row (SELECT ... FOR UPDATE; SQLite ignores the clause and
// relies on its single writer) for the whole read-mutate-write span.
func (r *TaskRepositoryImpl) Update(ctx context.Context, id, ownerID uuid.UUID, mutate repositories.TaskMutation) (*models.Task, error) {
	var updated *models.Task

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Task
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", id, ownerID).
			First(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrTaskNotFound
		}
		if err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Order("id ASC").Find(&current.ChangeLog).Error; err != nil {
			return err
		}

		draft := current.Clone()
		if err := mutate(draft); err != nil {
			return err
		}
		draft.ID = current.ID
		draft.UserID = current.UserID

		err = tx.Model(&models.Task{}).Where("id = ?", id).Updates(map[string]interface{}{
			"title":       draft.Title,
			"description": draft.Description,
			"status":      draft.Status,
			"priority":    draft.Priority,
			"due_date":    draft.DueDate,
			"updated_at":  draft.UpdatedAt,
		}).Error
		if err != nil {
			return err
		}

		// the change log is append-only: only entries past the stored ones are new
		if len(draft.ChangeLog) > len(current.ChangeLog) {
			added := draft.ChangeLog[len(current.ChangeLog):]
			for i := range added {
				added[i].ID = 0
				added[i].TaskID = id
			}
			if err := tx.Create(&added).Error; err != nil {
				return err
			}
		}

		updated = draft
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	deleted := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Task{}).Where("id = ? AND user_id = ?", id, ownerID).Count(&count).Error
		if err != nil || count == 0 {
			return err
		}

		if err := tx.Where("task_id = ?", id).Delete(&models.ChangeLogEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}

func (r *TaskRepositoryImpl) ListOwners(ctx context.Context) ([]uuid.UUID, error) {
	var owners []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Task{}).Distinct("user_id").Pluck("user_id", &owners).Error
	return owners, err
}
