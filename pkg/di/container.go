package di

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"task-tracker/application/serviceimpl"
	"task-tracker/domain/ports"
	"task-tracker/domain/repositories"
	"task-tracker/domain/services"
	"task-tracker/infrastructure/memory"
	"task-tracker/infrastructure/messaging"
	natspkg "task-tracker/infrastructure/nats"
	"task-tracker/infrastructure/persistence"
	redispkg "task-tracker/infrastructure/redis"
	"task-tracker/infrastructure/telegram"
	"task-tracker/infrastructure/websocket"
	"task-tracker/interfaces/api/handlers"
	"task-tracker/interfaces/api/middleware"
	"task-tracker/interfaces/api/routes"
	websocketHandler "task-tracker/interfaces/api/websocket"
	"task-tracker/pkg/config"
	"task-tracker/pkg/logger"
	"task-tracker/pkg/scheduler"
	"task-tracker/pkg/utils"
)

const Version = "1.0.0"

type Container struct {
	// Configuration
	Config   *config.Config
	Location *time.Location

	// Infrastructure
	DB             *gorm.DB         // nil เมื่อใช้ memory store
	RedisClient    *redispkg.Client // rate limiting (optional)
	NATSClient     *natspkg.Client  // task events (optional)
	NATSSubscriber *natspkg.Subscriber
	EventScheduler scheduler.EventScheduler

	// Repositories
	UserRepository repositories.UserRepository
	TaskRepository repositories.TaskRepository

	// Services
	AuthService     services.AuthService
	TaskService     services.TaskService
	ReminderService *serviceimpl.ReminderService

	// Messaging Ports
	TaskEventPublisher  ports.TaskEventPublisher
	TaskEventSubscriber ports.TaskEventSubscriber
	RateLimiter         ports.RateLimiter
	Notifier            ports.NotifierPort

	// WebSocket & Broadcasting
	WebSocketManager     *websocket.WebSocketManager
	TaskEventBroadcaster *websocket.TaskEventBroadcaster
	stopWebSocket        context.CancelFunc

	HealthHandler *handlers.HealthHandler
}

func NewContainer() *Container {
	return &Container{}
}

func (c *Container) Initialize() error {
	if err := c.initConfig(); err != nil {
		return err
	}

	if err := c.initLogger(); err != nil {
		return err
	}

	if err := c.initStore(); err != nil {
		return err
	}

	c.initRateLimiter()
	c.initWebSocket()
	c.initMessaging()
	c.initServices()

	if err := c.initScheduler(); err != nil {
		return err
	}

	c.initHealthChecks()
	return nil
}

func (c *Container) initConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	c.Location = loc
	utils.SetValidationLocation(loc)
	return nil
}

func (c *Container) initLogger() error {
	logConfig := logger.Config{
		Level:      c.Config.Log.Level,
		Format:     c.Config.Log.Format,
		Output:     c.Config.Log.Output,
		FilePath:   c.Config.Log.FilePath,
		MaxSize:    c.Config.Log.MaxSize,
		MaxBackups: c.Config.Log.MaxBackups,
		MaxAge:     c.Config.Log.MaxAge,
		Compress:   c.Config.Log.Compress,
	}

	if err := logger.Init(logConfig); err != nil {
		return err
	}

	logger.Info("Logger initialized",
		"level", c.Config.Log.Level,
		"format", c.Config.Log.Format,
		"output", c.Config.Log.Output,
		"timezone", c.Location.String(),
	)
	return nil
}

// initStore เลือก repository ตาม STORE_DRIVER
func (c *Container) initStore() error {
	if c.Config.Store.Driver == "memory" {
		c.TaskRepository = memory.NewTaskStore()
		c.UserRepository = memory.NewUserStore()
		logger.Info("In-memory store initialized (data is lost on restart)")
		return nil
	}

	dbConfig := persistence.DatabaseConfig{
		Driver:     c.Config.Store.Driver,
		Host:       c.Config.Database.Host,
		Port:       c.Config.Database.Port,
		User:       c.Config.Database.User,
		Password:   c.Config.Database.Password,
		DBName:     c.Config.Database.DBName,
		SSLMode:    c.Config.Database.SSLMode,
		SQLitePath: c.Config.Store.SQLitePath,
	}

	db, err := persistence.NewDatabase(dbConfig)
	if err != nil {
		return err
	}
	c.DB = db
	logger.Info("Database connected", "driver", dbConfig.Driver, "db", dbConfig.DBName)

	if err := persistence.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("Database migrated")

	c.TaskRepository = persistence.NewTaskRepository(db)
	c.UserRepository = persistence.NewUserRepository(db)
	return nil
}

// initRateLimiter - ไม่มี Redis = ไม่จำกัด request
func (c *Container) initRateLimiter() {
	if c.Config.Redis.URL == "" {
		logger.Info("Rate limiting disabled (REDIS_URL not configured)")
		return
	}

	redisClient, err := redispkg.NewClient(&c.Config.Redis)
	if err != nil {
		logger.Warn("Redis client initialization failed (rate limiting disabled)", "error", err)
		return
	}
	c.RedisClient = redisClient
	c.RateLimiter = redispkg.NewSlidingWindowLimiter(
		redisClient,
		c.Config.RateLimit.Requests,
		c.Config.RateLimit.Window,
		"ratelimit:",
	)
	logger.Info("Rate limiter initialized",
		"requests", c.Config.RateLimit.Requests,
		"window", c.Config.RateLimit.Window.String(),
	)
}

func (c *Container) initWebSocket() {
	ctx, cancel := context.WithCancel(context.Background())
	c.stopWebSocket = cancel

	c.WebSocketManager = websocket.NewWebSocketManager()
	go c.WebSocketManager.Run(ctx)

	c.TaskEventBroadcaster = websocket.NewTaskEventBroadcaster(c.WebSocketManager)
	logger.Info("WebSocket manager started")
}

// initMessaging - มี NATS: service → NATS → subscriber → websocket
// ไม่มี NATS: service → websocket โดยตรง
func (c *Container) initMessaging() {
	c.TaskEventPublisher = c.TaskEventBroadcaster

	if c.Config.NATS.URL == "" {
		logger.Info("NATS disabled, task events go straight to WebSocket clients")
		return
	}

	natsClient, err := natspkg.NewClient(natspkg.ClientConfig{URL: c.Config.NATS.URL})
	if err != nil {
		logger.Warn("NATS client initialization failed, falling back to direct delivery", "error", err)
		return
	}
	c.NATSClient = natsClient
	c.NATSSubscriber = natspkg.NewSubscriber(natsClient.Conn())

	c.routeTaskEvents(
		messaging.NewNATSTaskEventPublisher(natspkg.NewPublisher(natsClient)),
		messaging.NewNATSTaskEventSubscriber(c.NATSSubscriber),
	)
}

// routeTaskEvents สลับ publisher ไป NATS หลัง broadcaster subscribe สำเร็จเท่านั้น
// subscribe ไม่ได้ = ส่งตรงเข้า websocket ต่อ ไม่งั้น event หายเงียบ
func (c *Container) routeTaskEvents(publisher ports.TaskEventPublisher, subscriber ports.TaskEventSubscriber) {
	if err := c.TaskEventBroadcaster.Start(subscriber); err != nil {
		c.TaskEventPublisher = c.TaskEventBroadcaster
		logger.Warn("Failed to start task event broadcaster, falling back to direct delivery", "error", err)
		return
	}
	c.TaskEventPublisher = publisher
	c.TaskEventSubscriber = subscriber
	logger.Info("Messaging ports initialized (NATS → WebSocket)")
}

func (c *Container) initServices() {
	c.TaskService = serviceimpl.NewTaskService(c.TaskRepository, c.TaskEventPublisher, c.Location, nil)
	c.AuthService = serviceimpl.NewAuthService(c.UserRepository, c.Config.JWT.Secret, c.Config.JWT.ExpiresIn)

	c.Notifier = telegram.NewTelegramNotifier(c.Config.Telegram.BotToken, c.Config.Telegram.ChatID)
	if !c.Notifier.IsEnabled() {
		logger.Info("Telegram notifier disabled (TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID not configured)")
	}

	logger.Info("Services initialized")
}

func (c *Container) initScheduler() error {
	c.EventScheduler = scheduler.NewEventScheduler(c.Location)

	c.ReminderService = serviceimpl.NewReminderService(
		serviceimpl.ReminderConfig{
			Cron:        c.Config.Reminder.Cron,
			Concurrency: c.Config.Reminder.Concurrency,
		},
		c.TaskRepository,
		c.UserRepository,
		c.TaskService,
		c.TaskEventPublisher,
		c.Notifier,
		c.EventScheduler,
	)

	if c.Config.Reminder.Enabled {
		if err := c.ReminderService.RegisterReminderJob(); err != nil {
			return fmt.Errorf("failed to register reminder job: %w", err)
		}
		logger.Info("Urgent reminder job registered", "cron", c.Config.Reminder.Cron)
	}

	c.EventScheduler.Start()
	logger.Info("Event scheduler started")
	return nil
}

func (c *Container) initHealthChecks() {
	c.HealthHandler = handlers.NewHealthHandler(c.Config.App.Name, Version)

	if c.DB != nil {
		c.HealthHandler.AddCheck("database", func(ctx context.Context) error {
			sqlDB, err := c.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
	}
	if c.RedisClient != nil {
		c.HealthHandler.AddCheck("redis", c.RedisClient.Ping)
	}
	if c.NATSClient != nil {
		c.HealthHandler.AddCheck("nats", func(ctx context.Context) error {
			return c.NATSClient.Ping()
		})
	}
}

// SetupRoutes ผูก handler และ middleware เข้ากับ app
func (c *Container) SetupRoutes(app *fiber.App) {
	h := handlers.NewHandlers(&handlers.Services{
		AuthService: c.AuthService,
		TaskService: c.TaskService,
		Location:    c.Location,
	}, c.HealthHandler)

	routes.SetupRoutes(app, h, routes.Middlewares{
		Protected: middleware.Protected(c.AuthService),
		RateLimit: middleware.RateLimit(c.RateLimiter),
	}, websocketHandler.NewWebSocketHandler(c.WebSocketManager))
}

func (c *Container) Cleanup() error {
	logger.Info("Starting cleanup...")

	// Stop scheduler
	if c.EventScheduler != nil && c.EventScheduler.IsRunning() {
		c.EventScheduler.Stop()
		logger.Info("Event scheduler stopped")
	}

	// Stop task event broadcaster (unsubscribes from NATS)
	if c.TaskEventBroadcaster != nil {
		c.TaskEventBroadcaster.Stop()
	}

	// Close NATS connection
	if c.NATSClient != nil {
		if err := c.NATSClient.Close(); err != nil {
			logger.Warn("Failed to close NATS connection", "error", err)
		} else {
			logger.Info("NATS connection closed")
		}
	}

	// Close WebSocket clients
	if c.stopWebSocket != nil {
		c.stopWebSocket()
		logger.Info("WebSocket manager stopped")
	}

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			logger.Warn("Failed to close Redis connection", "error", err)
		} else {
			logger.Info("Redis connection closed")
		}
	}

	// Close database connection
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Warn("Failed to close database connection", "error", err)
			} else {
				logger.Info("Database connection closed")
			}
		}
	}

	logger.Info("Cleanup completed")
	return nil
}

func (c *Container) GetConfig() *config.Config {
	return c.Config
}
