package collab

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JaggerH/CopyWriter/internal/domain"
	"github.com/JaggerH/CopyWriter/internal/infrastructure/logger"
)

func newTestClient(baseURL string) *DownloaderClient {
	return NewDownloaderClient(DownloaderClientConfig{
		BaseURL:         baseURL,
		ClassifyTimeout: 2 * time.Second,
		DownloadTimeout: 2 * time.Second,
		Logger:          logger.NewNop(),
	})
}

func TestClassifyParsesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/hybrid/video_data" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("minimal"); got != "true" {
			t.Errorf("minimal = %q, want true", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"data": {"platform": "douyin", "type": "video", "aweme_type": 0, "desc": "千盘试炼17"}
		}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Classify(context.Background(), "https://v.douyin.com/ZvKW-34Weos/")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Platform != domain.PlatformDouyin {
		t.Errorf("platform = %q", got.Platform)
	}
	if got.ContentType != domain.ContentVideo {
		t.Errorf("content type = %q", got.ContentType)
	}
	if got.Title != "千盘试炼17" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestClassifyUpstreamRejection(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"http error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unsupported url", http.StatusBadRequest)
		},
		"success false": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"success": false, "message": "解析失败"}`))
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			_, err := newTestClient(srv.URL).Classify(context.Background(), "https://example.com/x")
			var detectErr *domain.DetectionError
			if !errors.As(err, &detectErr) {
				t.Fatalf("err = %v, want DetectionError", err)
			}
			if detectErr.Kind != domain.DetectUpstreamRejected {
				t.Errorf("kind = %q, want upstream_rejected", detectErr.Kind)
			}
		})
	}
}

func TestClassifyUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	_, err := newTestClient(srv.URL).Classify(context.Background(), "https://example.com/x")
	var detectErr *domain.DetectionError
	if !errors.As(err, &detectErr) {
		t.Fatalf("err = %v, want DetectionError", err)
	}
	if detectErr.Kind != domain.DetectUnreachable {
		t.Errorf("kind = %q, want unreachable", detectErr.Kind)
	}
}

func TestClassifyTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := NewDownloaderClient(DownloaderClientConfig{
		BaseURL:         srv.URL,
		ClassifyTimeout: 50 * time.Millisecond,
		DownloadTimeout: time.Second,
		Logger:          logger.NewNop(),
	})

	_, err := client.Classify(context.Background(), "https://example.com/x")
	var detectErr *domain.DetectionError
	if !errors.As(err, &detectErr) {
		t.Fatalf("err = %v, want DetectionError", err)
	}
	if detectErr.Kind != domain.DetectTimeout {
		t.Errorf("kind = %q, want timeout", detectErr.Kind)
	}
}

func TestDownloadParsesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/download_info" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("with_watermark"); got != "false" {
			t.Errorf("with_watermark = %q, want false", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"data_type": "video",
			"file_path": "./downloads/douyin/abc.mp4",
			"file_name": "abc.mp4",
			"platform": "douyin",
			"video_id": "ZvKW-34Weos",
			"video_title": "千盘试炼17",
			"cached": true
		}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Download(context.Background(), "https://v.douyin.com/ZvKW-34Weos/", false)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if got.DataType != domain.ContentVideo {
		t.Errorf("data type = %q", got.DataType)
	}
	if got.FilePath != "./downloads/douyin/abc.mp4" {
		t.Errorf("file path = %q", got.FilePath)
	}
	if got.MediaID != "ZvKW-34Weos" || got.Title != "千盘试炼17" {
		t.Errorf("id = %q title = %q", got.MediaID, got.Title)
	}
	if !got.Cached {
		t.Error("cached = false, want true")
	}
}

func TestDownloadFailureSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": false, "message": "下载器内部错误"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Download(context.Background(), "https://example.com/x", false)
	if err == nil {
		t.Fatal("expected error")
	}
}
