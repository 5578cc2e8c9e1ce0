package utils

import (
	"github.com/gofiber/fiber/v2"

	"task-tracker/domain/apperror"
)

// ========== Response Structures ==========

type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

type PaginatedResponse struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Meta    Meta       `json:"meta"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Meta - pageSize คือจำนวน item ที่ส่งกลับจริงในหน้านี้
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// ========== Error Code Constants ==========

const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodePolicy        = "POLICY_VIOLATION"
	ErrCodeRateLimited   = "RATE_LIMITED"
)

// ========== Success Responses ==========

func SuccessResponse(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Data:    data,
	})
}

func CreatedResponse(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Data:    data,
	})
}

func NoContentResponse(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func PaginatedSuccessResponse(c *fiber.Ctx, data any, meta Meta) error {
	return c.Status(fiber.StatusOK).JSON(PaginatedResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// ========== Error Responses ==========

func ErrorResponse(c *fiber.Ctx, statusCode int, code, message string, details any) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func ValidationErrorResponse(c *fiber.Ctx, details any) error {
	return ErrorResponse(
		c,
		fiber.StatusBadRequest,
		ErrCodeValidation,
		"Validation failed",
		details,
	)
}

func BadRequestResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(
		c,
		fiber.StatusBadRequest,
		ErrCodeBadRequest,
		message,
		nil,
	)
}

func UnauthorizedResponse(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Unauthorized"
	}
	return ErrorResponse(
		c,
		fiber.StatusUnauthorized,
		ErrCodeUnauthorized,
		message,
		nil,
	)
}

func InternalServerErrorResponse(c *fiber.Ctx) error {
	return ErrorResponse(
		c,
		fiber.StatusInternalServerError,
		ErrCodeInternalError,
		"Internal server error",
		nil,
	)
}

func TooManyRequestsResponse(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Too many requests"
	}
	return ErrorResponse(
		c,
		fiber.StatusTooManyRequests,
		ErrCodeRateLimited,
		message,
		nil,
	)
}

// StatusForError แปลง apperror.Kind เป็น HTTP status และ error code
func StatusForError(err error) (int, string) {
	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		return fiber.StatusNotFound, ErrCodeNotFound
	case apperror.KindPolicyViolation:
		return fiber.StatusBadRequest, ErrCodePolicy
	case apperror.KindValidation:
		return fiber.StatusBadRequest, ErrCodeValidation
	case apperror.KindConflict:
		return fiber.StatusConflict, ErrCodeConflict
	case apperror.KindUnauthorized:
		return fiber.StatusUnauthorized, ErrCodeUnauthorized
	default:
		return fiber.StatusInternalServerError, ErrCodeInternalError
	}
}

// AppErrorResponse ส่ง error ของ service กลับในรูป envelope
// error ที่ไม่รู้จักจะไม่เปิดเผยข้อความภายใน
func AppErrorResponse(c *fiber.Ctx, err error) error {
	status, code := StatusForError(err)
	if status == fiber.StatusInternalServerError {
		return InternalServerErrorResponse(c)
	}
	return ErrorResponse(c, status, code, err.Error(), nil)
}
