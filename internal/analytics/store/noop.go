package store

import (
	"context"

	"github.com/serroba/gistcdn/internal/analytics"
	"go.uber.org/zap"
)

// Noop is an analytics.Store that only logs the events it receives.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveLinkCreated(_ context.Context, event *analytics.LinkCreatedEvent) error {
	n.logger.Info("link created",
		zap.String("code", event.Code),
		zap.String("longUrl", event.LongURL),
		zap.Bool("custom", event.Custom),
		zap.Time("createdAt", event.CreatedAt),
	)

	return nil
}

func (n *Noop) SaveLinkResolved(_ context.Context, event *analytics.LinkResolvedEvent) error {
	n.logger.Info("link resolved",
		zap.String("code", event.Code),
		zap.String("outcome", event.Outcome),
		zap.Time("resolvedAt", event.ResolvedAt),
		zap.String("referrer", event.Referrer),
	)

	return nil
}

func (n *Noop) SaveFileUploaded(_ context.Context, event *analytics.FileUploadedEvent) error {
	n.logger.Info("file uploaded",
		zap.String("name", event.Name),
		zap.Int("size", event.Size),
		zap.String("contentType", event.ContentType),
		zap.Time("uploadedAt", event.UploadedAt),
	)

	return nil
}

var _ analytics.Store = (*Noop)(nil)
