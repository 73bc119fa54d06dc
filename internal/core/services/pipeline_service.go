package services

import (
	"context"
	"fmt"
	"time"

	"github.com/JaggerH/CopyWriter/internal/core/ports"
	"github.com/JaggerH/CopyWriter/internal/domain"
	"github.com/JaggerH/CopyWriter/internal/infrastructure/logger"
	"github.com/JaggerH/CopyWriter/internal/mediapath"
)

// Stage progress checkpoints. Video tasks walk all four; image tasks jump
// from the download checkpoint straight to completion.
const (
	progressDownloading      = 20
	progressConverting       = 50
	progressTranscribing     = 80
	progressImageDownloading = 50
	progressDone             = 100
)

// PipelineExecutor runs the staged processing sequence for one task. Each
// Run is a detached goroutine keyed only by the task id; no state is shared
// between runs.
type PipelineExecutor struct {
	repo        ports.TaskRepository
	downloader  ports.MediaDownloader
	converter   ports.AudioConverter
	transcriber ports.Transcriber
	notifier    ports.Notifier
	paths       *mediapath.Translator
	log         *logger.Logger
}

type PipelineExecutorConfig struct {
	Repo        ports.TaskRepository
	Downloader  ports.MediaDownloader
	Converter   ports.AudioConverter
	Transcriber ports.Transcriber
	Notifier    ports.Notifier
	Paths       *mediapath.Translator
	Logger      *logger.Logger
}

func NewPipelineExecutor(cfg PipelineExecutorConfig) *PipelineExecutor {
	return &PipelineExecutor{
		repo:        cfg.Repo,
		downloader:  cfg.Downloader,
		converter:   cfg.Converter,
		transcriber: cfg.Transcriber,
		notifier:    cfg.Notifier,
		paths:       cfg.Paths,
		log:         cfg.Logger,
	}
}

// Run drives the task to a terminal state. It never returns an error: stage
// failures land on the task record and are broadcast as task_failed.
func (e *PipelineExecutor) Run(ctx context.Context, task *domain.Task) {
	var err error
	switch task.ContentType {
	case domain.ContentImage:
		err = e.runImage(ctx, task)
	default:
		err = e.runVideo(ctx, task)
	}

	if err != nil {
		e.fail(ctx, task, err)
		return
	}
	e.log.Infow("pipeline_completed", "task_id", task.TaskID, "content_type", task.ContentType)
}

func (e *PipelineExecutor) runVideo(ctx context.Context, task *domain.Task) error {
	if err := e.advance(ctx, task, domain.StatusDownloading, "下载视频", progressDownloading); err != nil {
		return err
	}
	download, err := e.downloader.Download(ctx, task.URL, task.WithWatermark)
	if err != nil {
		return fmt.Errorf("视频下载失败: %w", err)
	}

	videoPath, err := e.paths.Resolve(download.FilePath)
	if err != nil {
		return fmt.Errorf("视频下载失败: %w", err)
	}

	e.maybeUpdateTitle(ctx, task, download.Title)

	if err := e.advance(ctx, task, domain.StatusConverting, "转换音频格式", progressConverting); err != nil {
		return err
	}
	audioPath := e.paths.AudioPath(task.TaskID)
	if err := e.converter.Convert(ctx, videoPath, audioPath, task.Quality); err != nil {
		return fmt.Errorf("音频转换失败: %w", err)
	}

	if err := e.advance(ctx, task, domain.StatusTranscribing, "语音识别", progressTranscribing); err != nil {
		return err
	}
	transcript, err := e.transcriber.Transcribe(ctx, audioPath, e.paths.TextPath(task.TaskID))
	if err != nil {
		return fmt.Errorf("语音识别失败: %w", err)
	}

	textFile := transcript.TextFile
	if textFile == "" {
		textFile = e.paths.TextPath(task.TaskID)
	}
	result := domain.VideoResult(videoPath, audioPath, textFile, transcript.Text, download.Platform, download.MediaID)
	return e.complete(ctx, task, result)
}

func (e *PipelineExecutor) runImage(ctx context.Context, task *domain.Task) error {
	if err := e.advance(ctx, task, domain.StatusDownloading, "下载图片", progressImageDownloading); err != nil {
		return err
	}
	download, err := e.downloader.Download(ctx, task.URL, task.WithWatermark)
	if err != nil {
		return fmt.Errorf("图片下载失败: %w", err)
	}
	if download.DataType != domain.ContentImage {
		return fmt.Errorf("URL不是图片类型，而是: %s", download.DataType)
	}

	images := e.paths.ResolveAll(download.ImageFiles)
	if len(images) == 0 {
		return fmt.Errorf("图片下载失败: 共享存储中没有图片文件")
	}

	e.maybeUpdateTitle(ctx, task, download.Title)

	result := domain.ImageResult(images, download.Platform, download.MediaID)
	return e.complete(ctx, task, result)
}

// advance moves the task to the next stage: store first, then notify.
// A store failure aborts the run; stale state must never be processed as if
// it were persisted.
func (e *PipelineExecutor) advance(ctx context.Context, task *domain.Task, status domain.TaskStatus, step string, progress int) error {
	task.Status = status
	task.CurrentStep = step
	task.Progress = progress

	if err := e.repo.UpdateFields(ctx, task.TaskID, map[string]interface{}{
		"status":       status,
		"current_step": step,
		"progress":     progress,
	}); err != nil {
		e.log.Errorw("pipeline_store_update_failed", "task_id", task.TaskID, "status", status, "error", err)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.notifier.Notify(domain.EventTaskUpdate, task.TaskID, e.snapshot(task), task.Notification)
	return nil
}

// maybeUpdateTitle overwrites the provisional title once the collaborator
// reports the real one, with a dedicated notification.
func (e *PipelineExecutor) maybeUpdateTitle(ctx context.Context, task *domain.Task, title string) {
	if title == "" || title == task.Title {
		return
	}

	if err := e.repo.UpdateFields(ctx, task.TaskID, map[string]interface{}{"title": title}); err != nil {
		e.log.Errorw("pipeline_title_update_failed", "task_id", task.TaskID, "error", err)
		return
	}
	task.Title = title

	e.notifier.Notify(domain.EventTaskTitleUpdated, task.TaskID, map[string]interface{}{
		"task_id":      task.TaskID,
		"new_title":    title,
		"updated_time": time.Now().Format(time.RFC3339),
	}, task.Notification)
}

func (e *PipelineExecutor) complete(ctx context.Context, task *domain.Task, result *domain.TaskResult) error {
	task.Status = domain.StatusCompleted
	task.CurrentStep = "finished"
	task.Progress = progressDone
	task.Result = result

	if err := e.repo.UpdateFields(ctx, task.TaskID, map[string]interface{}{
		"status":       domain.StatusCompleted,
		"current_step": "finished",
		"progress":     progressDone,
		"result":       result,
	}); err != nil {
		e.log.Errorw("pipeline_store_complete_failed", "task_id", task.TaskID, "error", err)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	data := e.snapshot(task)
	data["result"] = result
	e.notifier.Notify(domain.EventTaskCompleted, task.TaskID, data, task.Notification)
	return nil
}

func (e *PipelineExecutor) fail(ctx context.Context, task *domain.Task, cause error) {
	e.log.Errorw("pipeline_failed", "task_id", task.TaskID, "error", cause)

	task.Status = domain.StatusFailed
	task.CurrentStep = "error"
	task.Error = cause.Error()

	if err := e.repo.UpdateFields(ctx, task.TaskID, map[string]interface{}{
		"status":       domain.StatusFailed,
		"current_step": "error",
		"error":        cause.Error(),
	}); err != nil {
		e.log.Errorw("pipeline_store_fail_failed", "task_id", task.TaskID, "error", err)
	}

	data := e.snapshot(task)
	data["error"] = cause.Error()
	e.notifier.Notify(domain.EventTaskFailed, task.TaskID, data, task.Notification)
}

func (e *PipelineExecutor) snapshot(task *domain.Task) map[string]interface{} {
	return map[string]interface{}{
		"task_id":      task.TaskID,
		"status":       string(task.Status),
		"current_step": task.CurrentStep,
		"progress":     task.Progress,
		"title":        task.Title,
		"url":          task.URL,
		"updated_time": time.Now().Format(time.RFC3339),
	}
}
