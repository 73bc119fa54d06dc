package ports

import (
	"context"

	"github.com/JaggerH/CopyWriter/internal/domain"
)

// Classification is the download collaborator's minimal description of a URL.
type Classification struct {
	Platform    domain.Platform
	ContentType domain.ContentType
	AwemeType   int
	Title       string
}

// DownloadResult reports artifact locations in the collaborator's own path
// namespace. Callers translate them before touching the filesystem.
type DownloadResult struct {
	DataType   domain.ContentType
	FilePath   string
	FileName   string
	ImageFiles []string
	Platform   domain.Platform
	MediaID    string
	Title      string
	Cached     bool
}

// MediaDownloader is the download collaborator (video-service).
type MediaDownloader interface {
	Classify(ctx context.Context, url string) (*Classification, error)
	Download(ctx context.Context, url string, withWatermark bool) (*DownloadResult, error)
}

// AudioConverter extracts an audio track into outputPath.
type AudioConverter interface {
	Convert(ctx context.Context, videoPath, outputPath, quality string) error
}

type Transcript struct {
	Text     string
	TextFile string
}

// Transcriber is the speech recognition collaborator (asr-service).
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, outputPath string) (*Transcript, error)
}
