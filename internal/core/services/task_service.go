package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/JaggerH/CopyWriter/internal/core/ports"
	"github.com/JaggerH/CopyWriter/internal/domain"
	"github.com/JaggerH/CopyWriter/internal/infrastructure/logger"
)

const (
	defaultPageSize = 50
	defaultQuality  = "4"
)

// TaskService owns the task lifecycle: creation (including classification),
// queries, deletion. The pipeline itself runs in a goroutine spawned here
// and is never awaited.
type TaskService struct {
	repo     ports.TaskRepository
	detector ports.ContentDetector
	executor *PipelineExecutor
	notifier ports.Notifier
	log      *logger.Logger
}

type TaskServiceConfig struct {
	Repo     ports.TaskRepository
	Detector ports.ContentDetector
	Executor *PipelineExecutor
	Notifier ports.Notifier
	Logger   *logger.Logger
}

func NewTaskService(cfg TaskServiceConfig) *TaskService {
	return &TaskService{
		repo:     cfg.Repo,
		detector: cfg.Detector,
		executor: cfg.Executor,
		notifier: cfg.Notifier,
		log:      cfg.Logger,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, error) {
	if input.URL == "" {
		return nil, ErrTaskEmptyURL
	}

	detection, err := s.detector.Detect(ctx, input.URL)
	if err != nil {
		// No task exists yet; classification failures surface to the caller.
		return nil, err
	}

	title := input.Title
	if title == "" {
		title = detection.Title
	}
	quality := input.Quality
	if quality == "" {
		quality = defaultQuality
	}

	now := time.Now()
	task := &domain.Task{
		TaskID:        uuid.New().String(),
		CreatedAt:     now,
		UpdatedAt:     now,
		Status:        domain.StatusQueued,
		CurrentStep:   "initialized",
		Progress:      0,
		Title:         title,
		URL:           detection.CleanURL,
		Platform:      detection.Platform,
		ContentType:   detection.ContentType,
		Quality:       quality,
		WithWatermark: input.WithWatermark,
		Notification:  input.Notification,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.log.Infow("task_created",
		"task_id", task.TaskID,
		"platform", task.Platform,
		"content_type", task.ContentType,
		"url", task.URL,
	)

	s.notifier.Notify(domain.EventTaskCreated, task.TaskID, map[string]interface{}{
		"task_id":      task.TaskID,
		"title":        task.Title,
		"status":       string(task.Status),
		"progress":     task.Progress,
		"url":          task.URL,
		"created_time": task.CreatedAt.Format(time.RFC3339),
	}, task.Notification)

	// Detached run; creation returns with the task still queued.
	run := *task
	go s.executor.Run(context.Background(), &run)

	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, page, pageSize int) (*ports.TaskPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	return &ports.TaskPage{
		Tasks:    tasks,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID string) error {
	exists, err := s.repo.Exists(ctx, taskID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrTaskNotFound
	}

	if err := s.repo.Delete(ctx, taskID); err != nil {
		return err
	}

	s.notifier.Notify(domain.EventTaskDeleted, taskID, map[string]interface{}{"task_id": taskID}, nil)
	return nil
}

func (s *TaskService) ClearCompleted(ctx context.Context) (int, error) {
	completed, err := s.repo.ListByStatus(ctx, domain.StatusCompleted)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, task := range completed {
		if err := s.repo.Delete(ctx, task.TaskID); err != nil {
			s.log.Errorw("task_clear_delete_failed", "task_id", task.TaskID, "error", err)
			continue
		}
		s.notifier.Notify(domain.EventTaskDeleted, task.TaskID, map[string]interface{}{"task_id": task.TaskID}, nil)
		deleted++
	}

	s.log.Infow("tasks_cleared", "deleted", deleted)
	return deleted, nil
}
