package taskrules

import (
	"slices"
	"time"

	"task-tracker/domain/models"
)

// UrgentWithinDays is the inclusive look-ahead, counted from today.
const UrgentWithinDays = 7

// IsUrgent reports whether task is HIGH priority with a due date in
// [today, today+7] by calendar day. now is read in its own location.
func IsUrgent(task *models.Task, now time.Time) bool {
	if task.Priority != models.TaskPriorityHigh || task.DueDate == nil {
		return false
	}
	today := models.DateOf(now)
	due := models.DateOf(task.DueDate.UTC())
	return !due.Before(today) && !due.After(today.AddDate(0, 0, UrgentWithinDays))
}

// SortByUrgency moves urgent tasks to the front ordered by due date; ties and
// the remaining tasks keep their input order. The input slice is untouched.
func SortByUrgency(tasks []*models.Task, now time.Time) []*models.Task {
	urgent := make([]*models.Task, 0)
	normal := make([]*models.Task, 0, len(tasks))
	for _, task := range tasks {
		if IsUrgent(task, now) {
			urgent = append(urgent, task)
		} else {
			normal = append(normal, task)
		}
	}

	slices.SortStableFunc(urgent, func(a, b *models.Task) int {
		return models.DateOf(a.DueDate.UTC()).Compare(models.DateOf(b.DueDate.UTC()))
	})

	return append(urgent, normal...)
}

// Urgent returns only the urgent tasks, ordered as SortByUrgency would.
func Urgent(tasks []*models.Task, now time.Time) []*models.Task {
	sorted := SortByUrgency(tasks, now)
	n := 0
	for n < len(sorted) && IsUrgent(sorted[n], now) {
		n++
	}
	return sorted[:n]
}
