package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/JaggerH/CopyWriter/internal/core/ports"
	"github.com/JaggerH/CopyWriter/internal/infrastructure/logger"
)

// ASRClient talks to the speech recognition collaborator.
type ASRClient struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	log     *logger.Logger
}

type ASRClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Logger  *logger.Logger
}

func NewASRClient(cfg ASRClientConfig) *ASRClient {
	return &ASRClient{
		baseURL: cfg.BaseURL,
		timeout: cfg.Timeout,
		client:  &http.Client{},
		log:     cfg.Logger,
	}
}

type transcribeRequest struct {
	AudioPath  string `json:"audio_path"`
	OutputPath string `json:"output_path"`
}

type transcribeResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Text       string `json:"text"`
	OutputPath string `json:"output_path"`
}

func (c *ASRClient) Transcribe(ctx context.Context, audioPath, outputPath string) (*ports.Transcript, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(transcribeRequest{AudioPath: audioPath, OutputPath: outputPath})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe-path", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("识别失败: %s", string(text))
	}

	var out transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("识别失败: %s", out.Message)
	}

	c.log.Infow("asr_transcribe_ok", "audio_path", audioPath, "text_len", len(out.Text))

	return &ports.Transcript{Text: out.Text, TextFile: out.OutputPath}, nil
}

// Health probes the collaborator's health endpoint.
func (c *ASRClient) Health(ctx context.Context) error {
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
