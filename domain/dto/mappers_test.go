package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"task-tracker/domain/models"
)

func TestTaskToTaskResponseChangeLog(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	base := func() *models.Task {
		return &models.Task{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			Title:     "Write report",
			Status:    models.TaskStatusDone,
			Priority:  models.TaskPriorityLow,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	tests := []struct {
		name    string
		entries []models.ChangeLogEntry
		want    string
	}{
		{"nil change log renders empty array", nil, `"changeLog":[]`},
		{"empty change log renders empty array", []models.ChangeLogEntry{}, `"changeLog":[]`},
		{"entries are rendered", []models.ChangeLogEntry{{Timestamp: now, PreviousTitle: "a", NewTitle: "b"}}, `"previousTitle":"a"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := base()
			task.ChangeLog = tt.entries

			resp := TaskToTaskResponse(task, now)
			if resp.ChangeLog == nil {
				t.Fatal("ChangeLog = nil, want non-nil slice")
			}
			if len(resp.ChangeLog) != len(tt.entries) {
				t.Fatalf("len(ChangeLog) = %d, want %d", len(resp.ChangeLog), len(tt.entries))
			}

			raw, err := json.Marshal(resp)
			if err != nil {
				t.Fatalf("json.Marshal: %v", err)
			}
			if !strings.Contains(string(raw), tt.want) {
				t.Errorf("json %s does not contain %s", raw, tt.want)
			}
		})
	}
}
