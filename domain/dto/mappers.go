package dto

import (
	"strings"
	"time"

	"task-tracker/domain/apperror"
	"task-tracker/domain/models"
	"task-tracker/domain/taskrules"
)

func UserToUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// TaskToTaskResponse renders a task; now decides the isUrgent flag.
func TaskToTaskResponse(task *models.Task, now time.Time) *TaskResponse {
	if task == nil {
		return nil
	}
	resp := &TaskResponse{
		ID:          task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		IsUrgent:    taskrules.IsUrgent(task, now),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		ChangeLog:   make([]ChangeLogEntryResponse, 0, len(task.ChangeLog)),
	}
	if task.DueDate != nil {
		due := models.FormatDate(task.DueDate.UTC())
		resp.DueDate = &due
	}
	for _, entry := range task.ChangeLog {
		resp.ChangeLog = append(resp.ChangeLog, ChangeLogEntryResponse{
			Timestamp:           entry.Timestamp,
			PreviousTitle:       entry.PreviousTitle,
			NewTitle:            entry.NewTitle,
			PreviousDescription: entry.PreviousDescription,
			NewDescription:      entry.NewDescription,
		})
	}
	return resp
}

func TasksToTaskResponses(tasks []*models.Task, now time.Time) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, *TaskToTaskResponse(task, now))
	}
	return out
}

// CreateTaskRequestToTask builds an unsaved task. Owner, id and timestamps
// are left for the service.
func CreateTaskRequestToTask(req *CreateTaskRequest) (*models.Task, error) {
	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Priority:    models.TaskPriority(req.Priority),
	}
	if req.DueDate != nil {
		due, err := models.ParseDate(*req.DueDate)
		if err != nil {
			return nil, apperror.Validation("Due date must be in YYYY-MM-DD format")
		}
		task.DueDate = &due
	}
	return task, nil
}

func UpdateTaskRequestToPatch(req *UpdateTaskRequest) (taskrules.Patch, error) {
	patch := taskrules.Patch{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status, ok := models.ParseTaskStatus(*req.Status)
		if !ok {
			return taskrules.Patch{}, apperror.Validation("Status must be one of: TODO, IN_PROGRESS, DONE")
		}
		patch.Status = &status
	}
	if req.Priority != nil {
		priority, ok := models.ParseTaskPriority(*req.Priority)
		if !ok {
			return taskrules.Patch{}, apperror.Validation("Priority must be one of: LOW, MEDIUM, HIGH")
		}
		patch.Priority = &priority
	}
	if req.DueDate != nil {
		due, err := models.ParseDate(*req.DueDate)
		if err != nil {
			return taskrules.Patch{}, apperror.Validation("Due date must be in YYYY-MM-DD format")
		}
		patch.DueDate = &due
	}
	return patch, nil
}

// ToFilter splits the comma lists and rejects unknown enum values.
func (r *TaskFilterRequest) ToFilter() (taskrules.Filter, error) {
	var f taskrules.Filter
	for _, raw := range splitList(r.Status) {
		status, ok := models.ParseTaskStatus(raw)
		if !ok {
			return taskrules.Filter{}, apperror.Validation("Invalid status value. Must be one of: TODO, IN_PROGRESS, DONE")
		}
		f.Statuses = append(f.Statuses, status)
	}
	for _, raw := range splitList(r.Priority) {
		priority, ok := models.ParseTaskPriority(raw)
		if !ok {
			return taskrules.Filter{}, apperror.Validation("Invalid priority value. Must be one of: LOW, MEDIUM, HIGH")
		}
		f.Priorities = append(f.Priorities, priority)
	}
	f.Search = strings.TrimSpace(r.Search)
	return f, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
