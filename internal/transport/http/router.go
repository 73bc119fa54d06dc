package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/JaggerH/CopyWriter/internal/config"
	"github.com/JaggerH/CopyWriter/internal/core/services"
	"github.com/JaggerH/CopyWriter/internal/infrastructure/collab"
	"github.com/JaggerH/CopyWriter/internal/infrastructure/db"
	"github.com/JaggerH/CopyWriter/internal/infrastructure/logger"
	"github.com/JaggerH/CopyWriter/internal/mediapath"
	"github.com/JaggerH/CopyWriter/internal/notify"
	"github.com/JaggerH/CopyWriter/internal/transport/http/handlers"
)

type RouterConfig struct {
	DB     *gorm.DB
	Logger *logger.Logger
	Config *config.Config
}

func SetupRoutes(app *fiber.App, cfg RouterConfig) {
	// Initialize repositories
	taskRepo := db.NewTaskRepository(cfg.DB, cfg.Logger)

	// Initialize collaborator clients
	downloader := collab.NewDownloaderClient(collab.DownloaderClientConfig{
		BaseURL:         cfg.Config.Services.VideoServiceURL,
		ClassifyTimeout: cfg.Config.Services.DetectTimeout,
		DownloadTimeout: cfg.Config.Services.DownloadTimeout,
		Logger:          cfg.Logger,
	})
	asr := collab.NewASRClient(collab.ASRClientConfig{
		BaseURL: cfg.Config.Services.ASRServiceURL,
		Timeout: cfg.Config.Services.ASRTimeout,
		Logger:  cfg.Logger,
	})
	converter := collab.NewFFmpegConverter(cfg.Config.Services.ConvertTimeout, cfg.Logger)
	paths := mediapath.NewTranslator(cfg.Config.Media.LocalRoot, cfg.Config.Media.DownloaderRoots)

	// Initialize notification fan-out
	hub := notify.NewHub(cfg.Logger)
	dispatcher := notify.NewDispatcher(hub, cfg.Logger)
	if cfg.Config.Services.CallbackBaseURL != "" {
		dispatcher.RegisterProvider(notify.NewCallbackProvider(
			cfg.Config.Services.CallbackBaseURL,
			cfg.Config.Services.CallbackTimeout,
			cfg.Logger,
		))
	}

	// Initialize services
	detector := services.NewDetectorService(downloader, cfg.Logger)
	executor := services.NewPipelineExecutor(services.PipelineExecutorConfig{
		Repo:        taskRepo,
		Downloader:  downloader,
		Converter:   converter,
		Transcriber: asr,
		Notifier:    dispatcher,
		Paths:       paths,
		Logger:      cfg.Logger,
	})
	taskService := services.NewTaskService(services.TaskServiceConfig{
		Repo:     taskRepo,
		Detector: detector,
		Executor: executor,
		Notifier: dispatcher,
		Logger:   cfg.Logger,
	})

	// Initialize handlers
	taskHandler := handlers.NewTaskHandler(taskService, cfg.Logger)
	detectHandler := handlers.NewDetectHandler(detector, cfg.Logger)
	healthHandler := handlers.NewHealthHandler(downloader, asr, converter, hub, cfg.Logger)
	wsHandler := handlers.NewWSHandler(hub, cfg.Logger)

	app.Get("/health", healthHandler.Health)

	// Live task updates
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws/tasks", websocket.New(wsHandler.Handle))

	// API v1 routes
	api := app.Group("/api/v1")

	api.Get("/detect", detectHandler.DetectType)

	tasks := api.Group("/tasks")
	tasks.Post("/", taskHandler.CreateTask)
	tasks.Get("/", taskHandler.ListTasks)
	// Must be registered before /:id so "completed" is not taken as a task id
	tasks.Delete("/completed", taskHandler.ClearCompleted)
	tasks.Get("/:id", taskHandler.GetTask)
	tasks.Delete("/:id", taskHandler.DeleteTask)
}
