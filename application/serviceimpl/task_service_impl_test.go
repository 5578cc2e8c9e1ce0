package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/domain/apperror"
	"task-tracker/domain/models"
	"task-tracker/domain/ports"
	"task-tracker/domain/services"
	"task-tracker/domain/taskrules"
	"task-tracker/infrastructure/memory"
)

var fixedNow = time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*ports.TaskEvent
	err    error
}

func (p *recordingPublisher) PublishTaskEvent(ctx context.Context, event *ports.TaskEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []ports.TaskEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ports.TaskEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// frozenClock คืนเวลาเดิมทุกครั้ง เพื่อพิสูจน์ว่า UpdatedAt ยังเพิ่มขึ้น
func frozenClock() time.Time { return fixedNow }

func newTestTaskService(t *testing.T) (services.TaskService, *memory.TaskStore, *recordingPublisher) {
	t.Helper()
	store := memory.NewTaskStore()
	pub := &recordingPublisher{}
	return NewTaskService(store, pub, time.UTC, frozenClock), store, pub
}

func strPtr(s string) *string { return &s }

func dateIn(days int) *time.Time {
	d := models.DateOf(fixedNow).AddDate(0, 0, days)
	return &d
}

func priorityPtr(p models.TaskPriority) *models.TaskPriority { return &p }
func statusPtr(s models.TaskStatus) *models.TaskStatus       { return &s }

func TestCreateTask_Defaults(t *testing.T) {
	svc, _, pub := newTestTaskService(t)
	owner := uuid.New()

	task, err := svc.CreateTask(context.Background(), owner, &models.Task{
		Title:       "  Buy milk  ",
		Description: strPtr(" 2 litres "),
		UserID:      uuid.New(), // ถูกแทนด้วย owner เสมอ
	})
	require.NoError(t, err)

	assert.Equal(t, owner, task.UserID)
	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "2 litres", *task.Description)
	assert.Equal(t, models.TaskStatusTodo, task.Status)
	assert.Equal(t, models.TaskPriorityMedium, task.Priority)
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
	assert.Empty(t, task.ChangeLog)
	assert.Equal(t, []ports.TaskEventType{ports.TaskEventCreated}, pub.types())
}

func TestCreateTask_Validation(t *testing.T) {
	svc, _, _ := newTestTaskService(t)
	owner := uuid.New()

	long := make([]rune, models.TitleMaxLength+1)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name  string
		draft *models.Task
	}{
		{"blank title", &models.Task{Title: "   "}},
		{"long title", &models.Task{Title: string(long)}},
		{"bad status", &models.Task{Title: "x", Status: "LATER"}},
		{"bad priority", &models.Task{Title: "x", Priority: "URGENT"}},
		{"nil draft", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTask(context.Background(), owner, tt.draft)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		})
	}
}

func TestListTasks_Pagination(t *testing.T) {
	svc, _, _ := newTestTaskService(t)
	ctx := context.Background()
	owner := uuid.New()
	for i := 0; i < 25; i++ {
		_, err := svc.CreateTask(ctx, owner, &models.Task{Title: fmt.Sprintf("task %02d", i)})
		require.NoError(t, err)
	}

	page, err := svc.ListTasks(ctx, owner, services.ListQuery{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 5, page.PageSize)
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, "task 20", page.Items[0].Title)

	beyond, err := svc.ListTasks(ctx, owner, services.ListQuery{Page: 9, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 3, beyond.TotalPages)

	defaults, err := svc.ListTasks(ctx, owner, services.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, defaults.Page)
	assert.Equal(t, services.DefaultPageSize, defaults.Limit)
	assert.Len(t, defaults.Items, 10)

	capped, err := svc.ListTasks(ctx, owner, services.ListQuery{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, services.MaxPageSize, capped.Limit)
	assert.Equal(t, 1, capped.TotalPages)
}

func TestListTasks_EmptyStore(t *testing.T) {
	svc, _, _ := newTestTaskService(t)

	page, err := svc.ListTasks(context.Background(), uuid.New(), services.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(0), page.Total)
	assert.Equal(t, 0, page.TotalPages)
}

func TestListTasks_FilterThenUrgencyOrder(t *testing.T) {
	svc, _, _ := newTestTaskService(t)
	ctx := context.Background()
	owner := uuid.New()

	mk := func(title string, p models.TaskPriority, due *time.Time) {
		_, err := svc.CreateTask(ctx, owner, &models.Task{Title: title, Priority: p, DueDate: due})
		require.NoError(t, err)
	}
	mk("low no due", models.TaskPriorityLow, nil)
	mk("high in ten", models.TaskPriorityHigh, dateIn(10))
	mk("high today", models.TaskPriorityHigh, dateIn(0))
	mk("high in three", models.TaskPriorityHigh, dateIn(3))

	page, err := svc.ListTasks(ctx, owner, services.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"high today", "high in three", "low no due", "high in ten"}, titlesOf(page.Items))

	high, err := svc.ListTasks(ctx, owner, services.ListQuery{
		Filter: taskrules.Filter{Priorities: []models.TaskPriority{models.TaskPriorityHigh}, Search: "IN"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"high in three", "high in ten"}, titlesOf(high.Items))
	assert.Equal(t, int64(2), high.Total)
}

func TestListTasks_OwnerScoped(t *testing.T) {
	svc, _, _ := newTestTaskService(t)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	_, err := svc.CreateTask(ctx, alice, &models.Task{Title: "alice task"})
	require.NoError(t, err)
	bobTask, err := svc.CreateTask(ctx, bob, &models.Task{Title: "bob task"})
	require.NoError(t, err)

	page, err := svc.ListTasks(ctx, alice, services.ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, alice, page.Items[0].UserID)

	_, err = svc.GetTask(ctx, alice, bobTask.ID)
	assert.ErrorIs(t, err, apperror.ErrTaskNotFound)
	_, err = svc.UpdateTask(ctx, alice, bobTask.ID, taskrules.Patch{Title: strPtr("mine now")})
	assert.ErrorIs(t, err, apperror.ErrTaskNotFound)
	assert.ErrorIs(t, svc.DeleteTask(ctx, alice, bobTask.ID), apperror.ErrTaskNotFound)

	still, err := svc.GetTask(ctx, bob, bobTask.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob task", still.Title)
}

func TestUpdateTask_UpdatedAtStrictlyIncreases(t *testing.T) {
	svc, _, _ := newTestTaskService(t)
	ctx := context.Background()
	owner := uuid.New()

	task, err := svc.CreateTask(ctx, owner, &models.Task{Title: "a"})
	require.NoError(t, err)

	prev := task.UpdatedAt
	for i := 0; i < 5; i++ {
		updated, err := svc.UpdateTask(ctx, owner, task.ID, taskrules.Patch{Title: strPtr(fmt.Sprintf("a%d", i))})
		require.NoError(t, err)
		assert.True(t, updated.UpdatedAt.After(prev), "update %d did not advance UpdatedAt", i)
		assert.Equal(t, task.CreatedAt, updated.CreatedAt)
		prev = updated.UpdatedAt
	}
}

func TestUpdateTask_EmptyPatchRejected(t *testing.T) {
	svc, _, _ := newTestTaskService(t)
	ctx := context.Background()
	owner := uuid.New()
	task, err := svc.CreateTask(ctx, owner, &models.Task{Title: "a"})
	require.NoError(t, err)

	_, err = svc.UpdateTask(ctx, owner, task.ID, taskrules.Patch{})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.UpdateTask(ctx, owner, task.ID, taskrules.Patch{Title: strPtr("  ")})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestUpdateTask_DonePolicyRejectsWholePatch(t *testing.T) {
	svc, store, _ := newTestTaskService(t)
	ctx := context.Background()
	owner := uuid.New()

	task, err := svc.CreateTask(ctx, owner, &models.Task{Title: "X", Priority: models.TaskPriorityHigh, DueDate: dateIn(3)})
	require.NoError(t, err)
	_, err = svc.UpdateTask(ctx, owner, task.ID, taskrules.Patch{Status: statusPtr(models.TaskStatusDone)})
	require.NoError(t, err)

	before, err := store.FindOne(ctx, task.ID, owner)
	require.NoError(t, err)

	patches := []taskrules.Patch{
		{Priority: priorityPtr(models.TaskPriorityLow)},
		{Priority: priorityPtr(models.TaskPriorityHigh)},
		{DueDate: dateIn(5)},
		{Title: strPtr("new"), Priority: priorityPtr(models.TaskPriorityLow)},
	}
	for _, patch := range patches {
		_, err := svc.UpdateTask(ctx, owner, task.ID, patch)
		assert.ErrorIs(t, err, apperror.ErrPolicyViolation)
	}

	after, err := store.FindOne(ctx, task.ID, owner)
	require.NoError(t, err)
	assert.True(t, reflect.DeepEqual(before, after), "rejected updates changed the task")
}

func TestUpdateTask_DoneDescriptionEditIsLogged(t *testing.T) {
	svc, _, _ := newTestTaskService(t)
	ctx := context.Background()
	owner := uuid.New()

	task, err := svc.CreateTask(ctx, owner, &models.Task{Title: "X", Description: strPtr("old")})
	require.NoError(t, err)

	// edits before DONE and the transition into DONE are not logged
	_, err = svc.UpdateTask(ctx, owner, task.ID, taskrules.Patch{Title: strPtr("X")})
	require.NoError(t, err)
	done, err := svc.UpdateTask(ctx, owner, task.ID, taskrules.Patch{Status: statusPtr(models.TaskStatusDone)})
	require.NoError(t, err)
	assert.Empty(t, done.ChangeLog)

	updated, err := svc.UpdateTask(ctx, owner, task.ID, taskrules.Patch{Description: strPtr("new")})
	require.NoError(t, err)
	require.Len(t, updated.ChangeLog, 1)

	entry := updated.ChangeLog[0]
	assert.Equal(t, entry.PreviousTitle, entry.NewTitle)
	assert.Equal(t, "X", entry.NewTitle)
	assert.Equal(t, "old", *entry.PreviousDescription)
	assert.Equal(t, "new", *entry.NewDescription)
	assert.Equal(t, updated.UpdatedAt, entry.Timestamp)
}

func TestDeleteTask(t *testing.T) {
	svc, _, pub := newTestTaskService(t)
	ctx := context.Background()
	owner := uuid.New()

	task, err := svc.CreateTask(ctx, owner, &models.Task{Title: "a"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(ctx, owner, task.ID))
	assert.ErrorIs(t, svc.DeleteTask(ctx, owner, task.ID), apperror.ErrTaskNotFound)
	_, err = svc.GetTask(ctx, owner, task.ID)
	assert.ErrorIs(t, err, apperror.ErrTaskNotFound)

	assert.Equal(t, []ports.TaskEventType{ports.TaskEventCreated, ports.TaskEventDeleted}, pub.types())
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	store := memory.NewTaskStore()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewTaskService(store, pub, time.UTC, frozenClock)

	task, err := svc.CreateTask(context.Background(), uuid.New(), &models.Task{Title: "a"})
	require.NoError(t, err)
	assert.NotNil(t, task)
}

func TestUrgentTasks_UsesConfiguredTimezone(t *testing.T) {
	// 2024-03-10 15:30 UTC เป็น 2024-03-11 แล้วใน Asia/Bangkok (UTC+7)
	loc := time.FixedZone("ICT", 7*60*60)
	store := memory.NewTaskStore()
	svc := NewTaskService(store, nil, loc, frozenClock)
	ctx := context.Background()
	owner := uuid.New()

	_, err := svc.CreateTask(ctx, owner, &models.Task{Title: "due utc today", Priority: models.TaskPriorityHigh, DueDate: dateIn(0)})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, owner, &models.Task{Title: "due in 8", Priority: models.TaskPriorityHigh, DueDate: dateIn(8)})
	require.NoError(t, err)

	urgent, err := svc.UrgentTasks(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"due in 8"}, titlesOf(urgent))
}

func TestEndToEndFlow(t *testing.T) {
	svc, _, _ := newTestTaskService(t)
	ctx := context.Background()
	owner := uuid.New()

	a, err := svc.CreateTask(ctx, owner, &models.Task{Title: "X", Priority: models.TaskPriorityHigh, DueDate: dateIn(3)})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, owner, &models.Task{Title: "Y"})
	require.NoError(t, err)

	page, err := svc.ListTasks(ctx, owner, services.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, titlesOf(page.Items))

	_, err = svc.UpdateTask(ctx, owner, a.ID, taskrules.Patch{Status: statusPtr(models.TaskStatusDone)})
	require.NoError(t, err)
	doneA, err := svc.GetTask(ctx, owner, a.ID)
	require.NoError(t, err)

	_, err = svc.UpdateTask(ctx, owner, a.ID, taskrules.Patch{DueDate: dateIn(5)})
	assert.ErrorIs(t, err, apperror.ErrPolicyViolation)
	unchanged, err := svc.GetTask(ctx, owner, a.ID)
	require.NoError(t, err)
	assert.Equal(t, doneA, unchanged)

	updated, err := svc.UpdateTask(ctx, owner, a.ID, taskrules.Patch{Description: strPtr("done notes")})
	require.NoError(t, err)
	assert.Len(t, updated.ChangeLog, 1)
}

func titlesOf(tasks []*models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Title)
	}
	return out
}
