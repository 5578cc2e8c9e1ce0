package routes

import (
	"github.com/gofiber/fiber/v2"

	"task-tracker/interfaces/api/handlers"
)

func SetupAuthRoutes(api fiber.Router, h *handlers.Handlers, mw Middlewares) {
	auth := api.Group("/auth")

	// rate limit ต่อ IP ก่อน login
	auth.Post("/signup", mw.RateLimit, h.AuthHandler.Signup)
	auth.Post("/login", mw.RateLimit, h.AuthHandler.Login)

	// Protected routes - require authentication
	auth.Get("/me", mw.Protected, h.AuthHandler.Me)
}
