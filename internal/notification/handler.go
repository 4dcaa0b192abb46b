// Package notification consumes order confirmed events published after an
// order is committed.
package notification

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/joao-fontenele/orderflow-placement/internal/domain"
)

type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle processes one message. Undecodable messages are logged and skipped
// so they cannot block the partition.
func (h *Handler) Handle(ctx context.Context, key string, payload []byte) error {
	var event domain.OrderConfirmedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.ErrorContext(ctx, "discarding undecodable order confirmed event", "error", err, "key", key)
		return nil
	}

	if event.OrderID == "" {
		h.logger.ErrorContext(ctx, "discarding order confirmed event without order id", "key", key)
		return nil
	}

	if key != "" && key != event.OrderID {
		h.logger.WarnContext(ctx, "message key does not match order id", "key", key, "order_id", event.OrderID)
	}

	h.logger.InfoContext(ctx, "received notification for order", "order_id", event.OrderID)
	return nil
}
