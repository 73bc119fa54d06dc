package notify

import (
	"context"

	"github.com/JaggerH/CopyWriter/internal/domain"
	"github.com/JaggerH/CopyWriter/internal/infrastructure/logger"
)

// Dispatcher fans every task event out to the live subscriber hub and, when
// a task carries a notification config, to the matching registered provider.
// Delivery is at-most-once: provider failures are logged and dropped, never
// retried, and never surface to the pipeline.
type Dispatcher struct {
	hub       *Hub
	providers map[domain.CallbackType]Provider
	log       *logger.Logger
}

func NewDispatcher(hub *Hub, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		hub:       hub,
		providers: make(map[domain.CallbackType]Provider),
		log:       log,
	}
}

// RegisterProvider makes a delivery channel available by its kind tag.
func (d *Dispatcher) RegisterProvider(p Provider) {
	d.providers[p.Kind()] = p
	d.log.Infow("notify_provider_registered", "kind", p.Kind())
}

// Notify broadcasts the event to live subscribers and forwards it to the
// configured external channel when one is set.
func (d *Dispatcher) Notify(event, taskID string, data map[string]interface{}, cfg *domain.NotificationConfig) {
	d.hub.Broadcast(BroadcastMessage{
		Type:   event,
		TaskID: taskID,
		Data:   data,
	})

	if cfg == nil {
		return
	}

	provider, ok := d.providers[cfg.CallbackType]
	if !ok {
		d.log.Warnw("notify_provider_missing", "kind", cfg.CallbackType, "task_id", taskID, "event", event)
		return
	}

	delivered, err := provider.Deliver(context.Background(), Message{
		Event:  event,
		TaskID: taskID,
		Data:   data,
		Config: *cfg,
	})
	if err != nil {
		d.log.Errorw("notify_delivery_failed", "kind", cfg.CallbackType, "task_id", taskID, "event", event, "error", err)
		return
	}
	if !delivered {
		d.log.Warnw("notify_delivery_rejected", "kind", cfg.CallbackType, "task_id", taskID, "event", event)
	}
}
