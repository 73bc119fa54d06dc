package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/JaggerH/CopyWriter/internal/core/ports"
	"github.com/JaggerH/CopyWriter/internal/core/services"
	"github.com/JaggerH/CopyWriter/internal/domain"
	"github.com/JaggerH/CopyWriter/internal/infrastructure/logger"
	"github.com/JaggerH/CopyWriter/internal/transport/http/dto"
)

type fakeTaskService struct {
	createErr    error
	created      *domain.Task
	tasks        map[string]*domain.Task
	deleted      []string
	clearedCount int
}

func (f *fakeTaskService) CreateTask(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeTaskService) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	task, ok := f.tasks[taskID]
	if !ok {
		return nil, services.ErrTaskNotFound
	}
	return task, nil
}

func (f *fakeTaskService) ListTasks(ctx context.Context, page, pageSize int) (*ports.TaskPage, error) {
	all := make([]domain.Task, 0, len(f.tasks))
	for _, task := range f.tasks {
		all = append(all, *task)
	}
	return &ports.TaskPage{Tasks: all, Total: int64(len(all)), Page: page, PageSize: pageSize}, nil
}

func (f *fakeTaskService) DeleteTask(ctx context.Context, taskID string) error {
	if _, ok := f.tasks[taskID]; !ok {
		return services.ErrTaskNotFound
	}
	delete(f.tasks, taskID)
	f.deleted = append(f.deleted, taskID)
	return nil
}

func (f *fakeTaskService) ClearCompleted(ctx context.Context) (int, error) {
	return f.clearedCount, nil
}

func newTestApp(svc ports.TaskService) *fiber.App {
	log := logger.NewNop()
	handler := NewTaskHandler(svc, log)

	app := fiber.New()
	api := app.Group("/api/v1")
	tasks := api.Group("/tasks")
	tasks.Post("/", handler.CreateTask)
	tasks.Get("/", handler.ListTasks)
	tasks.Delete("/completed", handler.ClearCompleted)
	tasks.Get("/:id", handler.GetTask)
	tasks.Delete("/:id", handler.DeleteTask)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	resp.Body.Close()
	return resp, raw
}

func TestCreateTaskReturnsCreated(t *testing.T) {
	svc := &fakeTaskService{created: &domain.Task{
		TaskID: "abc-123",
		Status: domain.StatusQueued,
		Title:  "抖音 - 千盘试炼17",
	}}
	app := newTestApp(svc)

	resp, raw := doJSON(t, app, http.MethodPost, "/api/v1/tasks/", map[string]interface{}{
		"url": "https://v.douyin.com/ZvKW-34Weos/",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", resp.StatusCode, raw)
	}

	var body dto.CreateTaskResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.TaskID != "abc-123" {
		t.Errorf("task_id = %q", body.TaskID)
	}
	if body.Status != "queued" {
		t.Errorf("status = %q, want queued", body.Status)
	}
}

func TestCreateTaskRejectsMissingURL(t *testing.T) {
	app := newTestApp(&fakeTaskService{})

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/tasks/", map[string]interface{}{})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCreateTaskDetectionErrorStatuses(t *testing.T) {
	cases := []struct {
		kind domain.DetectionErrorKind
		want int
	}{
		{domain.DetectTimeout, fiber.StatusGatewayTimeout},
		{domain.DetectUnreachable, fiber.StatusServiceUnavailable},
		{domain.DetectUpstreamRejected, fiber.StatusBadGateway},
		{domain.DetectUnknown, fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			svc := &fakeTaskService{
				createErr: domain.NewDetectionError(tc.kind, errors.New("boom")),
			}
			app := newTestApp(svc)

			resp, raw := doJSON(t, app, http.MethodPost, "/api/v1/tasks/", map[string]interface{}{
				"url": "https://v.douyin.com/whatever/",
			})
			if resp.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tc.want, raw)
			}
		})
	}
}

func TestGetTaskNotFound(t *testing.T) {
	app := newTestApp(&fakeTaskService{tasks: map[string]*domain.Task{}})

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/tasks/missing", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestDeleteCompletedIsNotATaskID(t *testing.T) {
	// The /tasks/completed route must win over /tasks/:id.
	svc := &fakeTaskService{tasks: map[string]*domain.Task{}, clearedCount: 3}
	app := newTestApp(svc)

	resp, raw := doJSON(t, app, http.MethodDelete, "/api/v1/tasks/completed", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, raw)
	}

	var body dto.ClearCompletedResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.DeletedCount != 3 {
		t.Errorf("deleted_count = %d, want 3", body.DeletedCount)
	}
	if len(svc.deleted) != 0 {
		t.Errorf("DeleteTask was called with %v", svc.deleted)
	}
}

func TestDeleteTaskRemoves(t *testing.T) {
	svc := &fakeTaskService{tasks: map[string]*domain.Task{
		"abc-123": {TaskID: "abc-123"},
	}}
	app := newTestApp(svc)

	resp, _ := doJSON(t, app, http.MethodDelete, "/api/v1/tasks/abc-123", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/tasks/abc-123", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", resp.StatusCode)
	}
}

func TestListTasks(t *testing.T) {
	svc := &fakeTaskService{tasks: map[string]*domain.Task{}}
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("task-%d", i)
		svc.tasks[id] = &domain.Task{TaskID: id, Status: domain.StatusCompleted}
	}
	app := newTestApp(svc)

	resp, raw := doJSON(t, app, http.MethodGet, "/api/v1/tasks/?page=1&page_size=10", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body dto.TaskListResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Total != 3 || len(body.Tasks) != 3 {
		t.Errorf("total = %d, tasks = %d, want 3 each", body.Total, len(body.Tasks))
	}
	if body.Page != 1 || body.PageSize != 10 {
		t.Errorf("page = %d size = %d", body.Page, body.PageSize)
	}
}
