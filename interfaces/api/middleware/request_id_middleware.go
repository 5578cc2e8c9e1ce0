package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"task-tracker/pkg/logger"
)

const (
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLength = 64
)

// RequestIDMiddleware ผูก request ID เข้ากับ log ของทุก request
// ค่าจาก client ใช้ได้เฉพาะเมื่อผ่าน validRequestID ไม่งั้นสร้าง uuid ใหม่
func RequestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDHeader, requestID)
		c.SetUserContext(logger.ContextWithRequestID(c.Context(), requestID))

		return c.Next()
	}
}

// validRequestID กัน header ยาวเกิน/มีอักขระแปลกๆ หลุดเข้า log
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		ch := id[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-', ch == '_', ch == '.':
		default:
			return false
		}
	}
	return true
}
