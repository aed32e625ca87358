package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/serroba/gistcdn/internal/analytics"
	"github.com/serroba/gistcdn/internal/shortener"
	"go.uber.org/zap"
)

// Shorten stores a long URL under a custom or generated code.
func (h *Handler) Shorten(ctx context.Context, req *ShortenRequest) (*URLResponse, error) {
	longURL := strings.TrimSpace(req.Body.LongURL)
	if longURL == "" {
		return nil, badRequest(MsgURLRequired)
	}

	link, err := h.links.Shorten(ctx, longURL, shortener.Code(req.Body.CustomCode))
	if err != nil {
		if errors.Is(err, shortener.ErrCodeInUse) {
			return nil, badRequest(MsgCodeInUse)
		}

		h.logger.Error("failed to shorten url",
			zap.String("custom_code", req.Body.CustomCode),
			zap.Error(err),
		)

		return nil, internalError(MsgShortenError)
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkCreatedEvent{
		Code:      string(link.Code),
		LongURL:   link.LongURL,
		Custom:    link.Custom,
		CreatedAt: link.CreatedAt,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	}

	if err := h.events.LinkCreated(ctx, event); err != nil {
		h.logger.Error("failed to publish analytics event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	resp := &URLResponse{}
	resp.Body.URL = h.publicURL(string(link.Code))

	return resp, nil
}
