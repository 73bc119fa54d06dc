package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/JaggerH/CopyWriter/internal/core/ports"
	"github.com/JaggerH/CopyWriter/internal/domain"
	"github.com/JaggerH/CopyWriter/internal/infrastructure/logger"
)

type taskRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepository(database *gorm.DB, log *logger.Logger) ports.TaskRepository {
	return &taskRepository{db: database, log: log}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		r.log.Errorw("task_repo_create_failed", "task_id", task.TaskID, "error", err)
		return err
	}
	r.log.Infow("task_repo_create_ok", "task_id", task.TaskID, "url", task.URL)
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, taskID string) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).First(&task).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Errorw("task_repo_get_failed", "task_id", taskID, "error", err)
		}
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, offset, limit int) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&tasks).Error; err != nil {
		r.log.Errorw("task_repo_list_failed", "error", err)
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Task{}).Count(&total).Error; err != nil {
		r.log.Errorw("task_repo_count_failed", "error", err)
		return 0, err
	}
	return total, nil
}

func (r *taskRepository) ListByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		r.log.Errorw("task_repo_list_by_status_failed", "status", status, "error", err)
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) UpdateFields(ctx context.Context, taskID string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("task_id = ?", taskID).
		Updates(fields)
	if res.Error != nil {
		r.log.Errorw("task_repo_update_failed", "task_id", taskID, "error", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, taskID string) error {
	// Record and its created_at index entry live in one row; the delete is
	// atomic by construction.
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Delete(&domain.Task{}).Error; err != nil {
		r.log.Errorw("task_repo_delete_failed", "task_id", taskID, "error", err)
		return err
	}
	r.log.Infow("task_repo_delete_ok", "task_id", taskID)
	return nil
}

func (r *taskRepository) Exists(ctx context.Context, taskID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("task_id = ?", taskID).
		Count(&count).Error; err != nil {
		r.log.Errorw("task_repo_exists_failed", "task_id", taskID, "error", err)
		return false, err
	}
	return count > 0, nil
}
