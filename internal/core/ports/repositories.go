package ports

import (
	"context"

	"github.com/JaggerH/CopyWriter/internal/domain"
)

// TaskRepository is the durable task record store. Field updates are
// last-write-wins per field; each task is mutated by a single pipeline
// goroutine, so no cross-field atomicity is required.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, taskID string) (*domain.Task, error)
	// List returns tasks ordered newest-first.
	List(ctx context.Context, offset, limit int) ([]domain.Task, error)
	Count(ctx context.Context) (int64, error)
	ListByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.Task, error)
	// UpdateFields upserts the given columns and refreshes updated_at.
	UpdateFields(ctx context.Context, taskID string, fields map[string]interface{}) error
	Delete(ctx context.Context, taskID string) error
	Exists(ctx context.Context, taskID string) (bool, error)
}
