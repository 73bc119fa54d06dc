package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JaggerH/CopyWriter/internal/core/ports"
	"github.com/JaggerH/CopyWriter/internal/core/services"
	"github.com/JaggerH/CopyWriter/internal/domain"
	"github.com/JaggerH/CopyWriter/internal/infrastructure/logger"
)

func newTaskService(h *harness) *services.TaskService {
	detector := services.NewDetectorService(h.downloader, logger.NewNop())
	return services.NewTaskService(services.TaskServiceConfig{
		Repo:     h.repo,
		Detector: detector,
		Executor: h.executor,
		Notifier: h.notifier,
		Logger:   logger.NewNop(),
	})
}

func waitTerminal(t *testing.T, h *harness, taskID string) domain.Task {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("task %s never reached a terminal state", taskID)
		case <-time.After(5 * time.Millisecond):
		}
		task, err := h.repo.GetByID(context.Background(), taskID)
		if err != nil {
			continue
		}
		if task.Status.Terminal() {
			return *task
		}
	}
}

func TestCreateTaskReturnsQueuedImmediately(t *testing.T) {
	h := newHarness(t)
	h.downloader.classification = &ports.Classification{
		Platform:    domain.PlatformDouyin,
		ContentType: domain.ContentVideo,
		Title:       "千盘试炼17",
	}
	h.writeArtifact(t, "douyin/clip.mp4")
	h.downloader.result = &ports.DownloadResult{
		DataType: domain.ContentVideo,
		FilePath: "./downloads/douyin/clip.mp4",
	}
	svc := newTaskService(h)

	task, err := svc.CreateTask(context.Background(), ports.CreateTaskInput{
		URL: "https://v.douyin.com/ZvKW-34Weos/",
	})
	if err != nil {
		t.Fatal(err)
	}
	if task.Status != domain.StatusQueued {
		t.Errorf("status at creation = %s, want queued", task.Status)
	}
	if task.TaskID == "" {
		t.Error("empty task id")
	}
	if task.Title != "千盘试炼17" {
		t.Errorf("title = %q", task.Title)
	}
	if task.Platform != domain.PlatformDouyin || task.ContentType != domain.ContentVideo {
		t.Errorf("classification not applied: %s/%s", task.Platform, task.ContentType)
	}

	final := waitTerminal(t, h, task.TaskID)
	if final.Status != domain.StatusCompleted {
		t.Errorf("pipeline ended %s: %s", final.Status, final.Error)
	}

	if n := len(h.notifier.byEvent(domain.EventTaskCreated)); n != 1 {
		t.Errorf("task_created events = %d", n)
	}
}

func TestCreateTaskDetectionErrorCreatesNothing(t *testing.T) {
	h := newHarness(t)
	h.downloader.classifyErr = domain.NewDetectionError(domain.DetectTimeout, errors.New("deadline exceeded"))
	svc := newTaskService(h)

	_, err := svc.CreateTask(context.Background(), ports.CreateTaskInput{
		URL: "https://v.douyin.com/ZvKW-34Weos/",
	})

	var detErr *domain.DetectionError
	if !errors.As(err, &detErr) || detErr.Kind != domain.DetectTimeout {
		t.Fatalf("err = %v", err)
	}
	if total, _ := h.repo.Count(context.Background()); total != 0 {
		t.Errorf("task created despite detection failure, count = %d", total)
	}
	if len(h.notifier.events) != 0 {
		t.Errorf("events emitted despite detection failure: %v", h.notifier.events)
	}
}

func TestCreateTaskRejectsEmptyURL(t *testing.T) {
	h := newHarness(t)
	svc := newTaskService(h)

	_, err := svc.CreateTask(context.Background(), ports.CreateTaskInput{})
	if !errors.Is(err, services.ErrTaskEmptyURL) {
		t.Fatalf("err = %v", err)
	}
}

func TestCreateTaskWithoutNotificationConfig(t *testing.T) {
	h := newHarness(t)
	h.downloader.classification = &ports.Classification{
		Platform:    domain.PlatformDouyin,
		ContentType: domain.ContentVideo,
	}
	h.writeArtifact(t, "douyin/clip.mp4")
	h.downloader.result = &ports.DownloadResult{
		DataType: domain.ContentVideo,
		FilePath: "./downloads/douyin/clip.mp4",
	}
	svc := newTaskService(h)

	task, err := svc.CreateTask(context.Background(), ports.CreateTaskInput{
		URL: "https://v.douyin.com/ZvKW-34Weos/",
	})
	if err != nil {
		t.Fatal(err)
	}
	waitTerminal(t, h, task.TaskID)

	// every transition still reaches live subscribers, with no channel config attached
	h.notifier.mu.Lock()
	defer h.notifier.mu.Unlock()
	if len(h.notifier.events) < 3 {
		t.Fatalf("only %d events emitted", len(h.notifier.events))
	}
	for _, e := range h.notifier.events {
		if e.cfg != nil {
			t.Errorf("event %s carried a channel config", e.event)
		}
	}
}

func TestGetTaskNotFound(t *testing.T) {
	h := newHarness(t)
	svc := newTaskService(h)

	if _, err := svc.GetTask(context.Background(), "missing"); !errors.Is(err, services.ErrTaskNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestDeleteTask(t *testing.T) {
	h := newHarness(t)
	h.seedTask(t, domain.ContentVideo)
	svc := newTaskService(h)

	if err := svc.DeleteTask(context.Background(), "task-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetTask(context.Background(), "task-1"); !errors.Is(err, services.ErrTaskNotFound) {
		t.Errorf("deleted task still found: %v", err)
	}
	if err := svc.DeleteTask(context.Background(), "task-1"); !errors.Is(err, services.ErrTaskNotFound) {
		t.Errorf("second delete = %v, want not found", err)
	}
	if n := len(h.notifier.byEvent(domain.EventTaskDeleted)); n != 1 {
		t.Errorf("task_deleted events = %d", n)
	}
}

func TestClearCompleted(t *testing.T) {
	h := newHarness(t)
	svc := newTaskService(h)

	for i, status := range []domain.TaskStatus{domain.StatusCompleted, domain.StatusFailed, domain.StatusCompleted} {
		task := &domain.Task{TaskID: string(rune('a' + i)), Status: status, URL: "u"}
		if err := h.repo.Create(context.Background(), task); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := svc.ClearCompleted(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	// failed tasks stay queryable until deleted explicitly
	remaining, _ := h.repo.Count(context.Background())
	if remaining != 1 {
		t.Errorf("remaining = %d, want 1", remaining)
	}
}

func TestListTasksPagination(t *testing.T) {
	h := newHarness(t)
	svc := newTaskService(h)

	for i := 0; i < 5; i++ {
		task := &domain.Task{TaskID: string(rune('a' + i)), Status: domain.StatusQueued, URL: "u"}
		if err := h.repo.Create(context.Background(), task); err != nil {
			t.Fatal(err)
		}
	}

	page, err := svc.ListTasks(context.Background(), 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 5 || page.Page != 2 || page.PageSize != 2 {
		t.Errorf("page meta = %+v", page)
	}
	if len(page.Tasks) != 2 {
		t.Errorf("page size = %d, want 2", len(page.Tasks))
	}

	// out-of-range pages are empty, not errors
	last, err := svc.ListTasks(context.Background(), 9, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(last.Tasks) != 0 {
		t.Errorf("overflow page returned %d tasks", len(last.Tasks))
	}
}
