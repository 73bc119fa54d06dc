package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type TaskStatus string

const (
	StatusQueued       TaskStatus = "queued"
	StatusDownloading  TaskStatus = "downloading"
	StatusConverting   TaskStatus = "converting"
	StatusTranscribing TaskStatus = "transcribing"
	StatusCompleted    TaskStatus = "completed"
	StatusFailed       TaskStatus = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type Platform string

const (
	PlatformDouyin      Platform = "douyin"
	PlatformTikTok      Platform = "tiktok"
	PlatformBilibili    Platform = "bilibili"
	PlatformYouTube     Platform = "youtube"
	PlatformXiaohongshu Platform = "xiaohongshu"
	PlatformKuaishou    Platform = "kuaishou"
	PlatformUnknown     Platform = "unknown"
)

type ContentType string

const (
	ContentVideo ContentType = "video"
	ContentImage ContentType = "image"
)

type CallbackType string

const (
	CallbackTelegram CallbackType = "telegram"
	CallbackWecom    CallbackType = "wecom"
	CallbackNotion   CallbackType = "notion"
)

// NotificationConfig describes the one external delivery channel a task may
// carry. Set at creation, never mutated afterwards.
type NotificationConfig struct {
	CallbackType CallbackType `json:"callback_type"`
	ChatID       string       `json:"chat_id,omitempty"`
	UserID       string       `json:"user_id,omitempty"`
	MessageID    string       `json:"message_id,omitempty"`
}

func (c NotificationConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *NotificationConfig) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan NotificationConfig: invalid type")
	}
	return json.Unmarshal(bytes, c)
}

// TaskResult is a tagged union keyed by DataType. Video tasks populate the
// video/audio/text fields, image tasks populate the image list.
type TaskResult struct {
	DataType ContentType `json:"data_type"`

	VideoFile string `json:"video_file,omitempty"`
	AudioFile string `json:"audio_file,omitempty"`
	TextFile  string `json:"text_file,omitempty"`
	Text      string `json:"text,omitempty"`

	ImageFiles []string `json:"image_files,omitempty"`
	ImageCount int      `json:"image_count,omitempty"`

	Platform Platform `json:"platform,omitempty"`
	MediaID  string   `json:"media_id,omitempty"`
}

func VideoResult(videoFile, audioFile, textFile, text string, platform Platform, mediaID string) *TaskResult {
	return &TaskResult{
		DataType:  ContentVideo,
		VideoFile: videoFile,
		AudioFile: audioFile,
		TextFile:  textFile,
		Text:      text,
		Platform:  platform,
		MediaID:   mediaID,
	}
}

func ImageResult(imageFiles []string, platform Platform, mediaID string) *TaskResult {
	return &TaskResult{
		DataType:   ContentImage,
		ImageFiles: imageFiles,
		ImageCount: len(imageFiles),
		Platform:   platform,
		MediaID:    mediaID,
	}
}

func (r TaskResult) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *TaskResult) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan TaskResult: invalid type")
	}
	return json.Unmarshal(bytes, r)
}

type Task struct {
	TaskID    string    `gorm:"primaryKey;size:36" json:"task_id"`
	CreatedAt time.Time `gorm:"index:idx_tasks_created_at,sort:desc" json:"created_time"`
	UpdatedAt time.Time `json:"updated_time"`

	Status      TaskStatus  `gorm:"size:20;not null" json:"status"`
	CurrentStep string      `gorm:"size:64" json:"current_step"`
	Progress    int         `gorm:"not null;default:0" json:"progress"`
	Title       string      `gorm:"size:512" json:"title"`
	URL         string      `gorm:"size:2048;not null" json:"url"`
	Platform    Platform    `gorm:"size:20" json:"platform"`
	ContentType ContentType `gorm:"size:10" json:"content_type"`

	Quality       string `gorm:"size:8" json:"quality"`
	WithWatermark bool   `json:"with_watermark"`

	Notification *NotificationConfig `gorm:"type:jsonb" json:"notification,omitempty"`
	Result       *TaskResult         `gorm:"type:jsonb" json:"result,omitempty"`
	Error        string              `gorm:"type:text" json:"error,omitempty"`
}
