package service

import (
	"context"
	"time"

	"github.com/juanCamilo2002/gamer-buy-api/internal/events"
	"github.com/juanCamilo2002/gamer-buy-api/internal/logging"
)

// publish sends a domain event after the state change has committed.
// Delivery is best effort: failures are logged and never fail the request.
func publish(ctx context.Context, p events.Publisher, topic, key, typ string, payload map[string]any) {
	if p == nil {
		return
	}
	event := map[string]any{"type": typ, "at": time.Now().UTC()}
	for k, v := range payload {
		event[k] = v
	}
	if err := p.Publish(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "type", typ, "error", err)
	}
}
