package services

import "context"

// ReminderService scans every owner for urgent tasks and announces them.
type ReminderService interface {
	RunOnce(ctx context.Context) (int, error)
}
