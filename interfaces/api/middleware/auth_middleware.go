package middleware

import (
	"github.com/gofiber/fiber/v2"

	"task-tracker/domain/services"
	"task-tracker/pkg/logger"
	"task-tracker/pkg/utils"
)

// Protected ตรวจ Bearer token แล้วเช็คว่า user ยังมีอยู่จริง
// ผ่านแล้วจะมี *utils.UserContext ใน locals และ user_id ใน log context
func Protected(authService services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.UnauthorizedResponse(c, "Authentication required. Please provide a valid Bearer token.")
		}

		token := utils.ExtractTokenFromHeader(authHeader)
		if token == "" {
			return utils.UnauthorizedResponse(c, "Authentication required. Please provide a valid Bearer token.")
		}

		user, err := authService.Authenticate(ctx, token)
		if err != nil {
			logger.WarnContext(ctx, "Token validation failed", "error", err)
			return utils.AppErrorResponse(c, err)
		}

		utils.SetUserInContext(c, &utils.UserContext{ID: user.ID, Email: user.Email})
		c.SetUserContext(logger.ContextWithUserID(ctx, user.ID.String()))

		return c.Next()
	}
}

// QueryToken ย้าย ?token= ไปเป็น Authorization header
// browser WebSocket API ส่ง header เองไม่ได้
func QueryToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			if token := c.Query("token"); token != "" {
				c.Request().Header.Set("Authorization", "Bearer "+token)
			}
		}
		return c.Next()
	}
}
