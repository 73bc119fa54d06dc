package services

import (
	"context"

	"github.com/JaggerH/CopyWriter/internal/core/ports"
	"github.com/JaggerH/CopyWriter/internal/infrastructure/logger"
	"github.com/JaggerH/CopyWriter/internal/linkparse"
)

// DetectorService classifies a URL's platform and content kind before any
// task exists. It normalizes share text first, then asks the download
// collaborator for a minimal classification.
type DetectorService struct {
	downloader ports.MediaDownloader
	log        *logger.Logger
}

func NewDetectorService(downloader ports.MediaDownloader, log *logger.Logger) *DetectorService {
	return &DetectorService{downloader: downloader, log: log}
}

func (s *DetectorService) Detect(ctx context.Context, rawURL string) (*ports.Detection, error) {
	cleanURL := linkparse.CanonicalURL(rawURL)
	s.log.Infow("content_detect_request", "clean_url", cleanURL)

	classification, err := s.downloader.Classify(ctx, cleanURL)
	if err != nil {
		s.log.Errorw("content_detect_failed", "clean_url", cleanURL, "error", err)
		return nil, err
	}

	title := classification.Title
	if title == "" {
		title = fallbackTitle(rawURL, cleanURL)
	}

	s.log.Infow("content_detect_ok",
		"platform", classification.Platform,
		"content_type", classification.ContentType,
		"aweme_type", classification.AwemeType,
		"title", title,
	)

	return &ports.Detection{
		Platform:    classification.Platform,
		ContentType: classification.ContentType,
		AwemeType:   classification.AwemeType,
		CleanURL:    cleanURL,
		Title:       title,
	}, nil
}

// fallbackTitle derives a display title when the collaborator reported none.
func fallbackTitle(rawURL, cleanURL string) string {
	title := linkparse.GenerateTitle(rawURL)
	if title != "视频任务" {
		return title
	}
	return "视频任务 - " + lastChars(cleanURL, 12)
}

func lastChars(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
