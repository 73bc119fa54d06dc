package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/JaggerH/CopyWriter/internal/core/ports"
	"github.com/JaggerH/CopyWriter/internal/domain"
	"github.com/JaggerH/CopyWriter/internal/infrastructure/logger"
)

// DownloaderClient talks to the video-service collaborator over HTTP. One
// shared client with per-call timeouts via context.
type DownloaderClient struct {
	baseURL         string
	classifyTimeout time.Duration
	downloadTimeout time.Duration
	client          *http.Client
	log             *logger.Logger
}

type DownloaderClientConfig struct {
	BaseURL         string
	ClassifyTimeout time.Duration
	DownloadTimeout time.Duration
	Logger          *logger.Logger
}

func NewDownloaderClient(cfg DownloaderClientConfig) *DownloaderClient {
	return &DownloaderClient{
		baseURL:         cfg.BaseURL,
		classifyTimeout: cfg.ClassifyTimeout,
		downloadTimeout: cfg.DownloadTimeout,
		client:          &http.Client{},
		log:             cfg.Logger,
	}
}

type downloaderEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Platform  string `json:"platform"`
		Type      string `json:"type"`
		AwemeType int    `json:"aweme_type"`
		Desc      string `json:"desc"`
	} `json:"data"`

	DataType   string   `json:"data_type"`
	FilePath   string   `json:"file_path"`
	FileName   string   `json:"file_name"`
	ImageFiles []string `json:"image_files"`
	Platform   string   `json:"platform"`
	VideoID    string   `json:"video_id"`
	VideoTitle string   `json:"video_title"`
	Cached     bool     `json:"cached"`
}

func (c *DownloaderClient) Classify(ctx context.Context, mediaURL string) (*ports.Classification, error) {
	ctx, cancel := context.WithTimeout(ctx, c.classifyTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("url", mediaURL)
	q.Set("minimal", "true")

	var env downloaderEnvelope
	if err := c.getJSON(ctx, "/api/hybrid/video_data", q, &env); err != nil {
		return nil, classifyTransportErr(err)
	}
	if !env.Success {
		return nil, domain.NewDetectionError(domain.DetectUpstreamRejected,
			fmt.Errorf("视频服务返回失败: %s", env.Message))
	}

	return &ports.Classification{
		Platform:    parsePlatform(env.Data.Platform),
		ContentType: parseContentType(env.Data.Type),
		AwemeType:   env.Data.AwemeType,
		Title:       env.Data.Desc,
	}, nil
}

func (c *DownloaderClient) Download(ctx context.Context, mediaURL string, withWatermark bool) (*ports.DownloadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("url", mediaURL)
	q.Set("prefix", "true")
	q.Set("with_watermark", strconv.FormatBool(withWatermark))

	var env downloaderEnvelope
	if err := c.getJSON(ctx, "/api/download_info", q, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("视频服务返回失败: %s", env.Message)
	}

	c.log.Infow("downloader_response",
		"url", mediaURL,
		"data_type", env.DataType,
		"file_path", env.FilePath,
		"cached", env.Cached,
	)

	return &ports.DownloadResult{
		DataType:   parseContentType(env.DataType),
		FilePath:   env.FilePath,
		FileName:   env.FileName,
		ImageFiles: env.ImageFiles,
		Platform:   parsePlatform(env.Platform),
		MediaID:    env.VideoID,
		Title:      env.VideoTitle,
		Cached:     env.Cached,
	}, nil
}

func (c *DownloaderClient) getJSON(ctx context.Context, path string, q url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &upstreamError{status: resp.StatusCode, body: string(body)}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// Health probes the collaborator's health endpoint.
func (c *DownloaderClient) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: HTTP %d", resp.StatusCode)
	}
	return nil
}

type upstreamError struct {
	status int
	body   string
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("下载失败: HTTP %d: %s", e.status, e.body)
}

func classifyTransportErr(err error) error {
	var upErr *upstreamError
	if errors.As(err, &upErr) {
		return domain.NewDetectionError(domain.DetectUpstreamRejected, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewDetectionError(domain.DetectTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.NewDetectionError(domain.DetectTimeout, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return domain.NewDetectionError(domain.DetectUnreachable, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return domain.NewDetectionError(domain.DetectUnreachable, err)
	}
	return domain.NewDetectionError(domain.DetectUnknown, err)
}

func parsePlatform(s string) domain.Platform {
	switch s {
	case "douyin":
		return domain.PlatformDouyin
	case "tiktok":
		return domain.PlatformTikTok
	case "bilibili":
		return domain.PlatformBilibili
	case "youtube":
		return domain.PlatformYouTube
	case "xiaohongshu":
		return domain.PlatformXiaohongshu
	case "kuaishou":
		return domain.PlatformKuaishou
	default:
		return domain.PlatformUnknown
	}
}

func parseContentType(s string) domain.ContentType {
	if s == "image" {
		return domain.ContentImage
	}
	return domain.ContentVideo
}
