package taskrules

import (
	"time"

	"task-tracker/domain/apperror"
	"task-tracker/domain/models"
)

// Patch is an update command. A nil field is absent and keeps its value.
type Patch struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	DueDate     *time.Time
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil && p.DueDate == nil
}

// Presence decides, not value: re-sending the same priority still counts.
func (p Patch) touchesLockedFields() bool {
	return p.Priority != nil || p.DueDate != nil
}

func (p Patch) touchesText() bool {
	return p.Title != nil || p.Description != nil
}

// Decision is the outcome of the update policy for one patch.
type Decision struct {
	Allowed bool
	Err     error
	Entry   *models.ChangeLogEntry
}

// Decide gates patch on the task's current status.
//
//	TODO / IN_PROGRESS: allow everything, never log.
//	DONE: reject priority/dueDate; log title/description edits.
func Decide(current *models.Task, patch Patch, now time.Time) Decision {
	if !current.IsDone() {
		return Decision{Allowed: true}
	}

	if patch.touchesLockedFields() {
		return Decision{Allowed: false, Err: apperror.ErrPolicyViolation}
	}

	if !patch.touchesText() {
		return Decision{Allowed: true}
	}

	newTitle := current.Title
	if patch.Title != nil {
		newTitle = *patch.Title
	}
	newDescription := current.Description
	if patch.Description != nil {
		newDescription = patch.Description
	}

	entry := models.ChangeLogEntry{
		TaskID:              current.ID,
		Timestamp:           now,
		PreviousTitle:       current.Title,
		NewTitle:            newTitle,
		PreviousDescription: current.Description,
		NewDescription:      newDescription,
	}
	entry = entry.Clone()
	return Decision{Allowed: true, Entry: &entry}
}

// ApplyTo copies the present fields onto task. It does not consult the policy.
func (p Patch) ApplyTo(task *models.Task) {
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Description != nil {
		d := *p.Description
		task.Description = &d
	}
	if p.Status != nil {
		task.Status = *p.Status
	}
	if p.Priority != nil {
		task.Priority = *p.Priority
	}
	if p.DueDate != nil {
		due := models.DateOf(p.DueDate.UTC())
		task.DueDate = &due
	}
}

// Apply runs Decide and, when allowed, updates task in place: fields, change
// log and UpdatedAt. On rejection task is left exactly as it was.
func Apply(task *models.Task, patch Patch, now time.Time) error {
	decision := Decide(task, patch, now)
	if !decision.Allowed {
		return decision.Err
	}

	stamp := NextUpdatedAt(task.UpdatedAt, now)
	patch.ApplyTo(task)
	if decision.Entry != nil {
		decision.Entry.Timestamp = stamp
		task.ChangeLog = append(task.ChangeLog, *decision.Entry)
	}
	task.UpdatedAt = stamp
	return nil
}

// Timestamp normalizes a clock reading to what every store can round-trip.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// NextUpdatedAt returns a stamp strictly after prev.
func NextUpdatedAt(prev, now time.Time) time.Time {
	stamp := Timestamp(now)
	if !stamp.After(prev) {
		stamp = Timestamp(prev).Add(time.Microsecond)
	}
	return stamp
}
