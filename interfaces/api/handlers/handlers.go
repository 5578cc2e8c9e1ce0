package handlers

import (
	"time"

	"task-tracker/domain/services"
)

// Services contains all the services needed for handlers
type Services struct {
	AuthService services.AuthService
	TaskService services.TaskService
	Location    *time.Location   // time zone ของ "วันนี้"
	Now         func() time.Time // nil = time.Now
}

// Handlers contains all HTTP handlers
type Handlers struct {
	AuthHandler   *AuthHandler
	TaskHandler   *TaskHandler
	HealthHandler *HealthHandler
}

// NewHandlers creates a new instance of Handlers with all dependencies
func NewHandlers(services *Services, health *HealthHandler) *Handlers {
	taskHandler := NewTaskHandler(services.TaskService, services.Location)
	if services.Now != nil {
		taskHandler.now = services.Now
	}

	return &Handlers{
		AuthHandler:   NewAuthHandler(services.AuthService),
		TaskHandler:   taskHandler,
		HealthHandler: health,
	}
}
