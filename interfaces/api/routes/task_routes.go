package routes

import (
	"github.com/gofiber/fiber/v2"

	"task-tracker/interfaces/api/handlers"
)

func SetupTaskRoutes(api fiber.Router, h *handlers.Handlers, mw Middlewares) {
	tasks := api.Group("/tasks")
	tasks.Use(mw.Protected, mw.RateLimit)

	tasks.Post("/", h.TaskHandler.CreateTask)
	tasks.Get("/", h.TaskHandler.ListTasks)
	tasks.Get("/urgent", h.TaskHandler.UrgentTasks)
	tasks.Get("/:id", h.TaskHandler.GetTask)
	tasks.Put("/:id", h.TaskHandler.UpdateTask)
	tasks.Delete("/:id", h.TaskHandler.DeleteTask)
}
