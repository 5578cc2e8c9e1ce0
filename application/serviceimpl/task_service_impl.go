package serviceimpl

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"task-tracker/domain/apperror"
	"task-tracker/domain/models"
	"task-tracker/domain/ports"
	"task-tracker/domain/repositories"
	"task-tracker/domain/services"
	"task-tracker/domain/taskrules"
	"task-tracker/pkg/logger"
)

type TaskServiceImpl struct {
	taskRepo  repositories.TaskRepository
	publisher ports.TaskEventPublisher
	location  *time.Location
	now       func() time.Time
}

// NewTaskService - loc คือ time zone ที่ใช้ตัดสินว่า "วันนี้" (urgency)
// now = nil ใช้ time.Now
func NewTaskService(taskRepo repositories.TaskRepository, publisher ports.TaskEventPublisher, loc *time.Location, now func() time.Time) services.TaskService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &TaskServiceImpl{
		taskRepo:  taskRepo,
		publisher: publisher,
		location:  loc,
		now:       now,
	}
}

func (s *TaskServiceImpl) today() time.Time {
	return s.now().In(s.location)
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, ownerID uuid.UUID, draft *models.Task) (*models.Task, error) {
	ctx = ownerContext(ctx, ownerID)
	if draft == nil {
		return nil, apperror.Validation("Task is required")
	}

	task := &models.Task{
		ID:       uuid.New(),
		UserID:   ownerID,
		Title:    strings.TrimSpace(draft.Title),
		Status:   draft.Status,
		Priority: draft.Priority,
	}
	if draft.Description != nil {
		d := strings.TrimSpace(*draft.Description)
		task.Description = &d
	}
	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}
	if draft.DueDate != nil {
		due := models.DateOf(draft.DueDate.UTC())
		task.DueDate = &due
	}

	if err := taskrules.ValidateTitle(task.Title); err != nil {
		return nil, err
	}
	if err := taskrules.ValidateDescription(task.Description); err != nil {
		return nil, err
	}
	if !task.Status.IsValid() {
		return nil, apperror.Validation("Status must be one of: TODO, IN_PROGRESS, DONE")
	}
	if !task.Priority.IsValid() {
		return nil, apperror.Validation("Priority must be one of: LOW, MEDIUM, HIGH")
	}

	stamp := taskrules.Timestamp(s.now())
	task.CreatedAt = stamp
	task.UpdatedAt = stamp

	if err := s.taskRepo.Create(ctx, task); err != nil {
		logger.ErrorContext(ctx, "Failed to create task", "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "Task created", "task_id", task.ID)
	s.publish(ctx, ports.TaskEventCreated, task)

	return task, nil
}

func (s *TaskServiceImpl) ListTasks(ctx context.Context, ownerID uuid.UUID, query services.ListQuery) (*services.TaskPage, error) {
	ctx = ownerContext(ctx, ownerID)
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = services.DefaultPageSize
	}
	if limit > services.MaxPageSize {
		limit = services.MaxPageSize
	}

	tasks, err := s.taskRepo.FindAll(ctx, ownerID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list tasks", "error", err)
		return nil, err
	}

	filtered := taskrules.ApplyFilter(tasks, query.Filter)
	sorted := taskrules.SortByUrgency(filtered, s.today())

	total := len(sorted)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	items := sorted[start:end]

	return &services.TaskPage{
		Items:      items,
		Total:      int64(total),
		Page:       page,
		Limit:      limit,
		PageSize:   len(items),
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

func (s *TaskServiceImpl) GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*models.Task, error) {
	return s.taskRepo.FindOne(ctx, taskID, ownerID)
}

func (s *TaskServiceImpl) UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, patch taskrules.Patch) (*models.Task, error) {
	ctx = ownerContext(ctx, ownerID)
	if patch.IsEmpty() {
		return nil, apperror.Validation("At least one field must be provided for update")
	}
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		patch.Title = &t
	}
	if patch.Description != nil {
		d := strings.TrimSpace(*patch.Description)
		patch.Description = &d
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.taskRepo.Update(ctx, taskID, ownerID, func(task *models.Task) error {
		return taskrules.Apply(task, patch, s.now())
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindPolicyViolation {
			logger.WarnContext(ctx, "Task update rejected by DONE policy", "task_id", taskID)
		}
		return nil, err
	}

	logger.InfoContext(ctx, "Task updated", "task_id", taskID)
	s.publish(ctx, ports.TaskEventUpdated, updated)

	return updated, nil
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error {
	ctx = ownerContext(ctx, ownerID)
	deleted, err := s.taskRepo.Delete(ctx, taskID, ownerID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to delete task", "task_id", taskID, "error", err)
		return err
	}
	if !deleted {
		return apperror.ErrTaskNotFound
	}

	logger.InfoContext(ctx, "Task deleted", "task_id", taskID)
	s.publish(ctx, ports.TaskEventDeleted, &models.Task{ID: taskID, UserID: ownerID})

	return nil
}

func (s *TaskServiceImpl) UrgentTasks(ctx context.Context, ownerID uuid.UUID) ([]*models.Task, error) {
	tasks, err := s.taskRepo.FindAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return taskrules.Urgent(tasks, s.today()), nil
}

// ownerContext ใส่ owner ลง log context เมื่อยังไม่มี (job/test ที่ไม่ผ่าน Protected)
func ownerContext(ctx context.Context, ownerID uuid.UUID) context.Context {
	if logger.GetUserID(ctx) != "" {
		return ctx
	}
	return logger.ContextWithUserID(ctx, ownerID.String())
}

// publish ไม่ทำให้ mutation ล้มเหลว แค่ log
func (s *TaskServiceImpl) publish(ctx context.Context, eventType ports.TaskEventType, task *models.Task) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTaskEvent(ctx, newTaskEvent(eventType, task, s.now())); err != nil {
		logger.WarnContext(ctx, "Failed to publish task event", "type", eventType, "task_id", task.ID, "error", err)
	}
}

func newTaskEvent(eventType ports.TaskEventType, task *models.Task, at time.Time) *ports.TaskEvent {
	event := &ports.TaskEvent{
		Type:       eventType,
		TaskID:     task.ID.String(),
		UserID:     task.UserID.String(),
		Title:      task.Title,
		Status:     string(task.Status),
		Priority:   string(task.Priority),
		OccurredAt: at.UTC(),
	}
	if task.DueDate != nil {
		event.DueDate = models.FormatDate(task.DueDate.UTC())
	}
	return event
}
