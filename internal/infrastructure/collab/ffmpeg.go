package collab

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/JaggerH/CopyWriter/internal/infrastructure/logger"
)

// FFmpegConverter extracts an mp3 track with the local ffmpeg binary.
type FFmpegConverter struct {
	timeout time.Duration
	log     *logger.Logger
}

func NewFFmpegConverter(timeout time.Duration, log *logger.Logger) *FFmpegConverter {
	return &FFmpegConverter{timeout: timeout, log: log}
}

func (f *FFmpegConverter) Convert(ctx context.Context, videoPath, outputPath, quality string) error {
	if quality == "" {
		quality = "4"
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("转换失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	args := []string{
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", quality,
		"-y",
		outputPath,
	}
	f.log.Infow("ffmpeg_convert", "video_path", videoPath, "output_path", outputPath, "quality", quality)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("转换超时")
		}
		return fmt.Errorf("转换失败: %s", tailLines(stderr.String(), 3))
	}

	// ffmpeg can exit zero without producing output on some malformed inputs.
	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("转换完成但输出文件未生成")
	}

	return nil
}

// Version reports the installed ffmpeg version line, for health checks.
func (f *FFmpegConverter) Version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "ffmpeg", "-version").Output()
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return line, nil
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
