// Package taskrules holds the pure task rules: list filtering, urgency
// ordering and the DONE-state update policy. Nothing here touches storage.
package taskrules

import (
	"slices"
	"strings"

	"task-tracker/domain/models"
)

// Filter narrows a task list. Empty axes do not restrict; axes combine with
// AND, values inside one axis with OR.
type Filter struct {
	Statuses   []models.TaskStatus
	Priorities []models.TaskPriority
	Search     string
}

func (f Filter) IsEmpty() bool {
	return len(f.Statuses) == 0 && len(f.Priorities) == 0 && f.Search == ""
}

func (f Filter) Matches(task *models.Task) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, task.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !slices.Contains(f.Priorities, task.Priority) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if strings.Contains(strings.ToLower(task.Title), needle) {
			return true
		}
		if task.Description == nil {
			return false
		}
		return strings.Contains(strings.ToLower(*task.Description), needle)
	}
	return true
}

// ApplyFilter keeps the matching tasks in their input order.
func ApplyFilter(tasks []*models.Task, f Filter) []*models.Task {
	if f.IsEmpty() {
		return tasks
	}
	out := make([]*models.Task, 0, len(tasks))
	for _, task := range tasks {
		if f.Matches(task) {
			out = append(out, task)
		}
	}
	return out
}
