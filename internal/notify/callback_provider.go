package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JaggerH/CopyWriter/internal/domain"
	"github.com/JaggerH/CopyWriter/internal/infrastructure/logger"
)

// Per-event callback endpoints on the receiving bot service.
var callbackEndpoints = map[string]string{
	domain.EventTaskCreated:      "/api/callback/task_created",
	domain.EventTaskUpdate:       "/api/callback/task_update",
	domain.EventTaskCompleted:    "/api/callback/task_completed",
	domain.EventTaskFailed:       "/api/callback/task_failed",
	domain.EventTaskTitleUpdated: "/api/callback/task_title_updated",
}

// CallbackProvider delivers notifications as HTTP POSTs to a bot service
// (the telegram channel). Delivery is best effort; the receiver is trusted
// to render the user-facing message.
type CallbackProvider struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

func NewCallbackProvider(baseURL string, timeout time.Duration, log *logger.Logger) *CallbackProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CallbackProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (p *CallbackProvider) Kind() domain.CallbackType {
	return domain.CallbackTelegram
}

type callbackBody struct {
	ChatID      string                 `json:"chat_id"`
	UserID      string                 `json:"user_id,omitempty"`
	MessageID   string                 `json:"message_id,omitempty"`
	MessageType string                 `json:"message_type"`
	TaskID      string                 `json:"task_id"`
	TaskData    map[string]interface{} `json:"task_data"`
}

func (p *CallbackProvider) Deliver(ctx context.Context, msg Message) (bool, error) {
	if msg.Config.ChatID == "" {
		return false, fmt.Errorf("callback: missing chat_id for task %s", msg.TaskID)
	}

	endpoint, ok := callbackEndpoints[msg.Event]
	if !ok {
		endpoint = "/api/callback"
	}

	body, err := json.Marshal(callbackBody{
		ChatID:      msg.Config.ChatID,
		UserID:      msg.Config.UserID,
		MessageID:   msg.Config.MessageID,
		MessageType: msg.Event,
		TaskID:      msg.TaskID,
		TaskData:    msg.Data,
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("callback: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("callback: HTTP %d from %s", resp.StatusCode, endpoint)
	}

	p.log.Infow("callback_delivered", "task_id", msg.TaskID, "event", msg.Event, "endpoint", endpoint)
	return true, nil
}
