package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"task-tracker/domain/dto"
	"task-tracker/domain/services"
	"task-tracker/pkg/logger"
	"task-tracker/pkg/utils"
)

type TaskHandler struct {
	taskService services.TaskService
	location    *time.Location
	now         func() time.Time
}

// NewTaskHandler - loc ใช้คำนวณ isUrgent ใน response ให้ตรงกับการเรียงของ service
func NewTaskHandler(taskService services.TaskService, loc *time.Location) *TaskHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TaskHandler{
		taskService: taskService,
		location:    loc,
		now:         time.Now,
	}
}

func (h *TaskHandler) today() time.Time {
	return h.now().In(h.location)
}

// CreateTask POST /api/v1/tasks
func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		logger.WarnContext(ctx, "Unauthorized access attempt")
		return utils.UnauthorizedResponse(c, "")
	}

	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}
	req.Normalize()

	if err := utils.ValidateStruct(&req); err != nil {
		errors := utils.GetValidationErrors(err)
		logger.WarnContext(ctx, "Validation failed", "errors", errors)
		return utils.ValidationErrorResponse(c, errors)
	}

	draft, err := dto.CreateTaskRequestToTask(&req)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	task, err := h.taskService.CreateTask(ctx, user.ID, draft)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.CreatedResponse(c, dto.TaskToTaskResponse(task, h.today()))
}

// ListTasks GET /api/v1/tasks?status=&priority=&search=&page=&limit=
func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		logger.WarnContext(ctx, "Unauthorized access attempt")
		return utils.UnauthorizedResponse(c, "")
	}

	pageStr := c.Query("page", "1")
	limitStr := c.Query("limit", strconv.Itoa(services.DefaultPageSize))

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		logger.WarnContext(ctx, "Invalid page parameter", "page", pageStr)
		return utils.ValidationErrorResponse(c, map[string]string{"page": "Page must be greater than 0"})
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 || limit > services.MaxPageSize {
		logger.WarnContext(ctx, "Invalid limit parameter", "limit", limitStr)
		return utils.ValidationErrorResponse(c, map[string]string{"limit": "Limit must be between 1 and 100"})
	}

	var filterReq dto.TaskFilterRequest
	if err := c.QueryParser(&filterReq); err != nil {
		return utils.BadRequestResponse(c, "Invalid query parameters")
	}
	if err := utils.ValidateStruct(&filterReq); err != nil {
		return utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
	}
	filter, err := filterReq.ToFilter()
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	result, err := h.taskService.ListTasks(ctx, user.ID, services.ListQuery{
		Filter: filter,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.PaginatedSuccessResponse(c, dto.TasksToTaskResponses(result.Items, h.today()), utils.Meta{
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

// GetTask GET /api/v1/tasks/:id
func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return invalidTaskID(c)
	}

	task, err := h.taskService.GetTask(ctx, user.ID, taskID)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, dto.TaskToTaskResponse(task, h.today()))
}

// UpdateTask PUT /api/v1/tasks/:id
func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return invalidTaskID(c)
	}

	var req dto.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}
	req.Normalize()

	if !req.HasChanges() {
		return utils.ValidationErrorResponse(c, map[string]string{"_": "At least one field must be provided for update"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		errors := utils.GetValidationErrors(err)
		logger.WarnContext(ctx, "Validation failed", "errors", errors)
		return utils.ValidationErrorResponse(c, errors)
	}

	patch, err := dto.UpdateTaskRequestToPatch(&req)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	task, err := h.taskService.UpdateTask(ctx, user.ID, taskID, patch)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, dto.TaskToTaskResponse(task, h.today()))
}

// DeleteTask DELETE /api/v1/tasks/:id
func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return invalidTaskID(c)
	}

	if err := h.taskService.DeleteTask(ctx, user.ID, taskID); err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.NoContentResponse(c)
}

// UrgentTasks GET /api/v1/tasks/urgent
func (h *TaskHandler) UrgentTasks(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	tasks, err := h.taskService.UrgentTasks(ctx, user.ID)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, dto.TasksToTaskResponses(tasks, h.today()))
}

func parseTaskID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

func invalidTaskID(c *fiber.Ctx) error {
	logger.WarnContext(c.UserContext(), "Invalid task ID", "task_id", c.Params("id"))
	return utils.ValidationErrorResponse(c, map[string]string{"id": "Task ID must be a valid UUID"})
}
