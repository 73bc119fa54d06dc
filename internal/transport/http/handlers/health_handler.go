package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/JaggerH/CopyWriter/internal/infrastructure/logger"
	"github.com/JaggerH/CopyWriter/internal/notify"
)

type healthProber interface {
	Health(ctx context.Context) error
}

type versionProber interface {
	Version(ctx context.Context) (string, error)
}

type HealthHandler struct {
	downloader healthProber
	asr        healthProber
	converter  versionProber
	hub        *notify.Hub
	logger     *logger.Logger
}

func NewHealthHandler(downloader, asr healthProber, converter versionProber, hub *notify.Hub, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		downloader: downloader,
		asr:        asr,
		converter:  converter,
		hub:        hub,
		logger:     logger,
	}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	status := "ok"
	components := fiber.Map{}

	if err := h.downloader.Health(ctx); err != nil {
		status = "degraded"
		components["video_service"] = err.Error()
	} else {
		components["video_service"] = "ok"
	}

	if err := h.asr.Health(ctx); err != nil {
		status = "degraded"
		components["asr_service"] = err.Error()
	} else {
		components["asr_service"] = "ok"
	}

	if version, err := h.converter.Version(ctx); err != nil {
		status = "degraded"
		components["ffmpeg"] = err.Error()
	} else {
		components["ffmpeg"] = version
	}

	if status != "ok" {
		h.logger.Warnw("health_degraded", "components", components)
	}

	return c.JSON(fiber.Map{
		"status":            status,
		"components":        components,
		"websocket_clients": h.hub.Count(),
	})
}
