package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/JaggerH/CopyWriter/internal/core/ports"
	"github.com/JaggerH/CopyWriter/internal/core/services"
	"github.com/JaggerH/CopyWriter/internal/domain"
	"github.com/JaggerH/CopyWriter/internal/infrastructure/logger"
	"github.com/JaggerH/CopyWriter/internal/transport/http/dto"
)

type TaskHandler struct {
	service ports.TaskService
	logger  *logger.Logger
}

func NewTaskHandler(service ports.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{service: service, logger: logger}
}

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("task_create_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
		})
	}

	if errs := req.Validate(); len(errs) > 0 {
		h.logger.Warnw("task_create_validation_failed", "details", errs)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Details: errs,
		})
	}

	input := ports.CreateTaskInput{
		URL:           req.URL,
		Title:         req.Title,
		Quality:       req.Quality,
		WithWatermark: req.WithWatermark,
		Notification:  req.Notification,
	}

	h.logger.Infow("task_create_request", "url", req.URL, "title", req.Title)
	task, err := h.service.CreateTask(c.Context(), input)
	if err != nil {
		if err == services.ErrTaskEmptyURL || err == services.ErrTaskInvalidInput {
			h.logger.Warnw("task_create_bad_request", "error", err)
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: err.Error(),
			})
		}
		var detectErr *domain.DetectionError
		if errors.As(err, &detectErr) {
			h.logger.Warnw("task_create_detection_failed",
				"url", req.URL, "kind", detectErr.Kind, "error", detectErr.Err)
			return c.Status(detectionStatus(detectErr.Kind)).JSON(dto.ErrorResponse{
				Error: detectErr.Error(),
			})
		}
		h.logger.Errorw("task_create_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
		})
	}

	h.logger.Infow("task_create_success", "task_id", task.TaskID, "platform", task.Platform)
	return c.Status(fiber.StatusCreated).JSON(dto.CreateTaskResponse{
		TaskID:  task.TaskID,
		Status:  string(task.Status),
		Message: "任务已创建",
		Title:   task.Title,
	})
}

func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	taskID := c.Params("id")

	task, err := h.service.GetTask(c.Context(), taskID)
	if err != nil {
		if err == services.ErrTaskNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: "task not found",
			})
		}
		h.logger.Errorw("task_get_failed", "task_id", taskID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
		})
	}

	return c.JSON(dto.TaskToDetail(task))
}

func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "50"))

	result, err := h.service.ListTasks(c.Context(), page, pageSize)
	if err != nil {
		h.logger.Errorw("tasks_list_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
		})
	}

	return c.JSON(dto.TasksToList(result))
}

func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	taskID := c.Params("id")

	if err := h.service.DeleteTask(c.Context(), taskID); err != nil {
		if err == services.ErrTaskNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: "task not found",
			})
		}
		h.logger.Errorw("task_delete_failed", "task_id", taskID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
		})
	}

	h.logger.Infow("task_delete_success", "task_id", taskID)
	return c.JSON(fiber.Map{"message": "任务已删除", "task_id": taskID})
}

func (h *TaskHandler) ClearCompleted(c *fiber.Ctx) error {
	count, err := h.service.ClearCompleted(c.Context())
	if err != nil {
		h.logger.Errorw("tasks_clear_completed_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
		})
	}

	h.logger.Infow("tasks_clear_completed_success", "deleted", count)
	return c.JSON(dto.ClearCompletedResponse{DeletedCount: count})
}
