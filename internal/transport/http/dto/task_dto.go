package dto

import (
	"strings"
	"time"

	"github.com/JaggerH/CopyWriter/internal/core/ports"
	"github.com/JaggerH/CopyWriter/internal/domain"
)

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type CreateTaskRequest struct {
	URL           string                     `json:"url" validate:"required"`
	Title         string                     `json:"title,omitempty"`
	Quality       string                     `json:"quality,omitempty"`
	WithWatermark bool                       `json:"with_watermark,omitempty"`
	Notification  *domain.NotificationConfig `json:"notification,omitempty"`
}

func (r *CreateTaskRequest) Validate() []string {
	var errors []string

	if strings.TrimSpace(r.URL) == "" {
		errors = append(errors, "url is required")
	}

	if r.Notification != nil {
		switch r.Notification.CallbackType {
		case domain.CallbackTelegram:
			if r.Notification.ChatID == "" {
				errors = append(errors, "notification.chat_id is required for telegram callbacks")
			}
		case domain.CallbackWecom, domain.CallbackNotion:
			// accepted; provider availability is checked at delivery time
		default:
			errors = append(errors, "notification.callback_type is not supported")
		}
	}

	return errors
}

type CreateTaskResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Title   string `json:"title"`
}

type TaskListItem struct {
	TaskID      string    `json:"task_id"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	Progress    int       `json:"progress"`
	Platform    string    `json:"platform"`
	ContentType string    `json:"content_type"`
	CreatedTime time.Time `json:"created_time"`
}

type TaskListResponse struct {
	Tasks    []TaskListItem `json:"tasks"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

type TaskDetailResponse struct {
	TaskID      string             `json:"task_id"`
	Title       string             `json:"title"`
	Status      string             `json:"status"`
	CurrentStep string             `json:"current_step"`
	Progress    int                `json:"progress"`
	URL         string             `json:"url"`
	Platform    string             `json:"platform"`
	ContentType string             `json:"content_type"`
	CreatedTime time.Time          `json:"created_time"`
	UpdatedTime time.Time          `json:"updated_time"`
	Result      *domain.TaskResult `json:"result,omitempty"`
	Error       string             `json:"error,omitempty"`
}

type DetectTypeResponse struct {
	Platform    string `json:"platform"`
	ContentType string `json:"content_type"`
	AwemeType   int    `json:"aweme_type"`
	CleanURL    string `json:"clean_url"`
	Title       string `json:"title"`
}

type ClearCompletedResponse struct {
	DeletedCount int `json:"deleted_count"`
}

func TaskToDetail(task *domain.Task) TaskDetailResponse {
	return TaskDetailResponse{
		TaskID:      task.TaskID,
		Title:       task.Title,
		Status:      string(task.Status),
		CurrentStep: task.CurrentStep,
		Progress:    task.Progress,
		URL:         task.URL,
		Platform:    string(task.Platform),
		ContentType: string(task.ContentType),
		CreatedTime: task.CreatedAt,
		UpdatedTime: task.UpdatedAt,
		Result:      task.Result,
		Error:       task.Error,
	}
}

func TasksToList(page *ports.TaskPage) TaskListResponse {
	items := make([]TaskListItem, 0, len(page.Tasks))
	for _, task := range page.Tasks {
		items = append(items, TaskListItem{
			TaskID:      task.TaskID,
			Title:       task.Title,
			Status:      string(task.Status),
			Progress:    task.Progress,
			Platform:    string(task.Platform),
			ContentType: string(task.ContentType),
			CreatedTime: task.CreatedAt,
		})
	}
	return TaskListResponse{
		Tasks:    items,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}
}

func DetectionToResponse(detection *ports.Detection) DetectTypeResponse {
	return DetectTypeResponse{
		Platform:    string(detection.Platform),
		ContentType: string(detection.ContentType),
		AwemeType:   detection.AwemeType,
		CleanURL:    detection.CleanURL,
		Title:       detection.Title,
	}
}
