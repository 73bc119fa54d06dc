package notify

import (
	"context"

	"github.com/JaggerH/CopyWriter/internal/domain"
)

// Message is one notification bound for an external delivery channel.
type Message struct {
	Event  string
	TaskID string
	Data   map[string]interface{}
	Config domain.NotificationConfig
}

// Provider delivers a notification over one channel kind. New channels are
// added by implementing this interface and registering the provider with the
// dispatcher; the pipeline never changes.
type Provider interface {
	Kind() domain.CallbackType
	Deliver(ctx context.Context, msg Message) (bool, error)
}
