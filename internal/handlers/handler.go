package handlers

import (
	"strings"

	"github.com/serroba/gistcdn/internal/analytics"
	"github.com/serroba/gistcdn/internal/cdn"
	"github.com/serroba/gistcdn/internal/messaging"
	"github.com/serroba/gistcdn/internal/shortener"
	"go.uber.org/zap"
)

// Events holds the typed publishers used for analytics.
type Events struct {
	LinkCreated  messaging.Publish[analytics.LinkCreatedEvent]
	LinkResolved messaging.Publish[analytics.LinkResolvedEvent]
	FileUploaded messaging.Publish[analytics.FileUploadedEvent]
}

// Handler serves uploads, short links and code resolution.
type Handler struct {
	links        *shortener.Service
	files        *cdn.Service
	domain       string
	strictLookup bool
	events       Events
	pages        *pages
	logger       *zap.Logger
}

// NewHandler creates a handler. Returned URLs are domain + "/" + name.
// With strictLookup a failing link store yields 502 instead of falling
// through to the file lookup.
func NewHandler(
	links *shortener.Service,
	files *cdn.Service,
	domain string,
	strictLookup bool,
	events Events,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		links:        links,
		files:        files,
		domain:       strings.TrimSuffix(domain, "/"),
		strictLookup: strictLookup,
		events:       events,
		pages:        mustParsePages(),
		logger:       logger,
	}
}

func (h *Handler) publicURL(name string) string {
	return h.domain + "/" + name
}
