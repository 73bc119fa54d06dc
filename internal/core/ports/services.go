package ports

import (
	"context"

	"github.com/JaggerH/CopyWriter/internal/domain"
)

type CreateTaskInput struct {
	URL           string
	Title         string
	Quality       string
	WithWatermark bool
	Notification  *domain.NotificationConfig
}

type TaskPage struct {
	Tasks    []domain.Task
	Total    int64
	Page     int
	PageSize int
}

type TaskService interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error)
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)
	ListTasks(ctx context.Context, page, pageSize int) (*TaskPage, error)
	DeleteTask(ctx context.Context, taskID string) error
	ClearCompleted(ctx context.Context) (int, error)
}

// Detection is the classification of a URL before any task exists.
type Detection struct {
	Platform    domain.Platform
	ContentType domain.ContentType
	AwemeType   int
	CleanURL    string
	Title       string
}

type ContentDetector interface {
	Detect(ctx context.Context, rawURL string) (*Detection, error)
}

// Notifier fans a task event out to live subscribers and, when cfg is set,
// to the matching external delivery channel. Best effort: it never fails the
// caller.
type Notifier interface {
	Notify(event, taskID string, data map[string]interface{}, cfg *domain.NotificationConfig)
}
