package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/JaggerH/CopyWriter/internal/core/ports"
	"github.com/JaggerH/CopyWriter/internal/domain"
	"github.com/JaggerH/CopyWriter/internal/infrastructure/logger"
	"github.com/JaggerH/CopyWriter/internal/transport/http/dto"
)

type DetectHandler struct {
	detector ports.ContentDetector
	logger   *logger.Logger
}

func NewDetectHandler(detector ports.ContentDetector, logger *logger.Logger) *DetectHandler {
	return &DetectHandler{detector: detector, logger: logger}
}

// DetectType classifies a URL without creating a task.
func (h *DetectHandler) DetectType(c *fiber.Ctx) error {
	rawURL := c.Query("url")
	if rawURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "url query parameter is required",
		})
	}

	detection, err := h.detector.Detect(c.Context(), rawURL)
	if err != nil {
		var detectErr *domain.DetectionError
		if errors.As(err, &detectErr) {
			h.logger.Warnw("detect_type_failed",
				"url", rawURL, "kind", detectErr.Kind, "error", detectErr.Err)
			return c.Status(detectionStatus(detectErr.Kind)).JSON(dto.ErrorResponse{
				Error: detectErr.Error(),
			})
		}
		h.logger.Errorw("detect_type_failed", "url", rawURL, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
		})
	}

	return c.JSON(dto.DetectionToResponse(detection))
}

// detectionStatus maps a classification failure to the HTTP status the
// gateway reports upstream.
func detectionStatus(kind domain.DetectionErrorKind) int {
	switch kind {
	case domain.DetectTimeout:
		return fiber.StatusGatewayTimeout
	case domain.DetectUnreachable:
		return fiber.StatusServiceUnavailable
	case domain.DetectUpstreamRejected:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
