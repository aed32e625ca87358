package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/gistcdn/internal/analytics"
	"github.com/serroba/gistcdn/internal/cdn"
	"github.com/serroba/gistcdn/internal/shortener"
	"go.uber.org/zap"
)

// Resolve redirects to a mapped long URL, otherwise streams the stored file
// of the same name, otherwise renders the not-found page.
func (h *Handler) Resolve(ctx context.Context, req *ResolveRequest) (*huma.StreamResponse, error) {
	result := h.links.Lookup(ctx, shortener.Code(req.Code))

	switch result.Kind {
	case shortener.Found:
		h.publishResolved(ctx, req.Code, analytics.OutcomeRedirect)

		return redirect(result.URL), nil
	case shortener.LookupFailed:
		h.logger.Warn("link lookup failed",
			zap.String("code", req.Code),
			zap.Bool("strict", h.strictLookup),
			zap.Error(result.Err),
		)

		if h.strictLookup {
			h.publishResolved(ctx, req.Code, analytics.OutcomeFailed)

			return nil, badGateway(MsgResolveFailure)
		}
	case shortener.NotMapped:
	}

	obj, err := h.files.Open(ctx, req.Code)
	if err == nil {
		h.publishResolved(ctx, req.Code, analytics.OutcomeFile)

		return stream(obj, h.logger), nil
	}

	if !errors.Is(err, cdn.ErrNotFound) {
		h.logger.Warn("file lookup failed", zap.String("code", req.Code), zap.Error(err))
	}

	h.publishResolved(ctx, req.Code, analytics.OutcomeNotFound)

	body, err := render(h.pages.notFound, pageData{Domain: h.domain, Code: req.Code})
	if err != nil {
		h.logger.Error("failed to render not found page", zap.Error(err))

		body = []byte("Not Found")
	}

	return notFound(body), nil
}

func (h *Handler) publishResolved(ctx context.Context, code, outcome string) {
	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkResolvedEvent{
		Code:       code,
		Outcome:    outcome,
		ResolvedAt: time.Now(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	}

	if err := h.events.LinkResolved(ctx, event); err != nil {
		h.logger.Error("failed to publish access event",
			zap.String("code", code),
			zap.Error(err),
		)
	}
}

func redirect(location string) *huma.StreamResponse {
	return &huma.StreamResponse{
		Body: func(ctx huma.Context) {
			ctx.SetHeader("Location", location)
			ctx.SetStatus(http.StatusFound)
		},
	}
}

func stream(obj *cdn.Object, logger *zap.Logger) *huma.StreamResponse {
	return &huma.StreamResponse{
		Body: func(ctx huma.Context) {
			defer obj.Body.Close()

			if obj.ContentType != "" {
				ctx.SetHeader("Content-Type", obj.ContentType)
			}

			if obj.ContentLength >= 0 {
				ctx.SetHeader("Content-Length", strconv.FormatInt(obj.ContentLength, 10))
			}

			ctx.SetStatus(http.StatusOK)

			if _, err := io.Copy(ctx.BodyWriter(), obj.Body); err != nil {
				logger.Warn("file stream interrupted", zap.Error(err))
			}
		},
	}
}

func notFound(body []byte) *huma.StreamResponse {
	return &huma.StreamResponse{
		Body: func(ctx huma.Context) {
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			ctx.SetStatus(http.StatusNotFound)
			_, _ = ctx.BodyWriter().Write(body)
		},
	}
}
