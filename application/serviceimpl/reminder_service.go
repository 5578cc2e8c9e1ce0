package serviceimpl

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"task-tracker/domain/models"
	"task-tracker/domain/ports"
	"task-tracker/domain/repositories"
	"task-tracker/domain/services"
	"task-tracker/pkg/logger"
	"task-tracker/pkg/scheduler"
)

const ReminderJobID = "urgent_reminder"

// ReminderConfig การตั้งค่าสำหรับ urgent reminder
type ReminderConfig struct {
	Cron        string // default: ทุกวัน 08:00 ตาม time zone ของ scheduler
	Concurrency int    // จำนวน user ที่ scan พร้อมกัน (default: 4)
}

// ReminderService หา urgent tasks ของทุก user แล้วส่ง event "urgent"
// และสรุปผ่าน notifier (ถ้าเปิดใช้งาน)
type ReminderService struct {
	config      ReminderConfig
	taskRepo    repositories.TaskRepository
	userRepo    repositories.UserRepository
	taskService services.TaskService
	publisher   ports.TaskEventPublisher
	notifier    ports.NotifierPort
	scheduler   scheduler.EventScheduler
	now         func() time.Time
}

var _ services.ReminderService = (*ReminderService)(nil)

// NewReminderService สร้าง service ใหม่ notifier เป็น nil ได้
func NewReminderService(
	config ReminderConfig,
	taskRepo repositories.TaskRepository,
	userRepo repositories.UserRepository,
	taskService services.TaskService,
	publisher ports.TaskEventPublisher,
	notifier ports.NotifierPort,
	eventScheduler scheduler.EventScheduler,
) *ReminderService {
	service := &ReminderService{
		config:      config,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		taskService: taskService,
		publisher:   publisher,
		notifier:    notifier,
		scheduler:   eventScheduler,
		now:         time.Now,
	}

	if service.config.Cron == "" {
		service.config.Cron = "0 8 * * *"
	}
	if service.config.Concurrency <= 0 {
		service.config.Concurrency = 4
	}

	return service
}

// RegisterReminderJob ลงทะเบียน reminder job กับ scheduler
func (s *ReminderService) RegisterReminderJob() error {
	if err := scheduler.ValidateCronExpression(s.config.Cron); err != nil {
		return err
	}
	return s.scheduler.AddJob(ReminderJobID, s.config.Cron, func() {
		ctx := logger.ContextWithRequestID(context.Background(), "job-"+uuid.NewString())
		if _, err := s.RunOnce(ctx); err != nil {
			logger.ErrorContext(ctx, "Urgent reminder run failed", "error", err)
		}
	})
}

// RunOnce scan ทุก owner คืนจำนวน urgent task ที่แจ้งไป
// error ของ user คนใดคนหนึ่งไม่หยุด user อื่น
func (s *ReminderService) RunOnce(ctx context.Context) (int, error) {
	owners, err := s.taskRepo.ListOwners(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list task owners", "error", err)
		return 0, err
	}

	var announced atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)

	for _, ownerID := range owners {
		ownerID := ownerID
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			n := s.remindOwner(gctx, ownerID)
			announced.Add(int64(n))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(announced.Load()), err
	}

	total := int(announced.Load())
	if total > 0 {
		logger.InfoContext(ctx, "Urgent reminder completed",
			"owners", len(owners),
			"urgent_tasks", total,
		)
	}
	return total, nil
}

func (s *ReminderService) remindOwner(ctx context.Context, ownerID uuid.UUID) int {
	ctx = ownerContext(ctx, ownerID)
	urgent, err := s.taskService.UrgentTasks(ctx, ownerID)
	if err != nil {
		logger.WarnContext(ctx, "Failed to load urgent tasks", "error", err)
		return 0
	}
	if len(urgent) == 0 {
		return 0
	}

	now := s.now()
	if s.publisher != nil {
		for _, task := range urgent {
			if err := s.publisher.PublishTaskEvent(ctx, newTaskEvent(ports.TaskEventUrgent, task, now)); err != nil {
				logger.WarnContext(ctx, "Failed to publish urgent event", "task_id", task.ID, "error", err)
			}
		}
	}

	if s.notifier != nil && s.notifier.IsEnabled() {
		if err := s.notifier.SendUrgentDigest(ctx, s.buildDigest(ctx, ownerID, urgent)); err != nil {
			logger.WarnContext(ctx, "Failed to send urgent digest", "error", err)
		}
	}

	return len(urgent)
}

func (s *ReminderService) buildDigest(ctx context.Context, ownerID uuid.UUID, urgent []*models.Task) *ports.UrgentDigest {
	digest := &ports.UrgentDigest{UserID: ownerID.String()}
	if s.userRepo != nil {
		if user, err := s.userRepo.GetByID(ctx, ownerID); err == nil {
			digest.Email = user.Email
		}
	}
	for _, task := range urgent {
		item := ports.UrgentDigestItem{Title: task.Title}
		if task.DueDate != nil {
			item.DueDate = models.FormatDate(task.DueDate.UTC())
		}
		digest.Tasks = append(digest.Tasks, item)
	}
	return digest
}
