package serviceimpl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/domain/models"
	"task-tracker/domain/ports"
	"task-tracker/domain/taskrules"
	"task-tracker/infrastructure/memory"
	"task-tracker/pkg/logger"
	"task-tracker/pkg/scheduler"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// records returns every logged line whose msg is in msgs
func (b *syncBuffer) records(t *testing.T, msgs ...string) []string {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []string
	for _, line := range strings.Split(strings.TrimSpace(b.buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec struct {
			Msg string `json:"msg"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		for _, m := range msgs {
			if rec.Msg == m {
				out = append(out, line)
			}
		}
	}
	return out
}

func captureLogs(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return buf
}

func assertSingleUserID(t *testing.T, lines []string, owner uuid.UUID) {
	t.Helper()
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, `"user_id":`), "line: %s", line)
		assert.Contains(t, line, `"user_id":"`+owner.String()+`"`)
	}
}

type failingNotifier struct{}

func (failingNotifier) SendUrgentDigest(ctx context.Context, digest *ports.UrgentDigest) error {
	return errors.New("telegram: 502")
}

func (failingNotifier) IsEnabled() bool { return true }

func TestTaskService_LogsOwnerOnce(t *testing.T) {
	owner := uuid.New()
	tests := []struct {
		name string
		ctx  context.Context
	}{
		{"owner already in context", logger.ContextWithUserID(context.Background(), owner.String())},
		{"owner missing from context", context.Background()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			svc, _, _ := newTestTaskService(t)

			task, err := svc.CreateTask(tt.ctx, owner, &models.Task{Title: "Ship it", Status: models.TaskStatusDone})
			require.NoError(t, err)
			title := "Shipped"
			_, err = svc.UpdateTask(tt.ctx, owner, task.ID, taskrules.Patch{Title: &title})
			require.NoError(t, err)
			priority := models.TaskPriorityHigh
			_, err = svc.UpdateTask(tt.ctx, owner, task.ID, taskrules.Patch{Priority: &priority})
			require.Error(t, err)
			require.NoError(t, svc.DeleteTask(tt.ctx, owner, task.ID))

			lines := buf.records(t, "Task created", "Task updated", "Task update rejected by DONE policy", "Task deleted")
			require.Len(t, lines, 4)
			assertSingleUserID(t, lines, owner)
		})
	}
}

func TestReminder_LogsOwnerOnce(t *testing.T) {
	ctx := context.Background()
	tasks := memory.NewTaskStore()
	taskSvc := NewTaskService(tasks, nil, time.UTC, frozenClock)
	owner := uuid.New()

	_, err := taskSvc.CreateTask(ctx, owner, &models.Task{Title: "today", Priority: models.TaskPriorityHigh, DueDate: dateIn(0)})
	require.NoError(t, err)

	buf := captureLogs(t)
	svc := NewReminderService(ReminderConfig{Concurrency: 1}, tasks, memory.NewUserStore(), taskSvc,
		&recordingPublisher{}, failingNotifier{}, scheduler.NewEventScheduler(time.UTC))
	_, err = svc.RunOnce(ctx)
	require.NoError(t, err)

	lines := buf.records(t, "Failed to send urgent digest")
	require.Len(t, lines, 1)
	assertSingleUserID(t, lines, owner)
}
