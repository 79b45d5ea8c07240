package eventbus

import (
	"context"
	"log/slog"
)

// Stream names and the subjects they cover.
const (
	GroupStream   = "group"
	SessionStream = "session"
	SyncStream    = "sync"
)

// InitializeStreams creates the JetStream streams the service publishes to.
// Idempotent; safe to call on every startup.
func InitializeStreams(ctx context.Context, bus EventBus, logger *slog.Logger) error {
	streams := map[string][]string{
		GroupStream:   {"group.>"},
		SessionStream: {"session.>"},
		SyncStream:    {"sync.>"},
	}

	for name, subjects := range streams {
		if err := bus.EnsureStream(ctx, name, subjects...); err != nil {
			logger.Error("Failed to ensure JetStream stream",
				slog.String("stream", name),
				slog.Any("error", err),
			)
			return err
		}
	}
	return nil
}
