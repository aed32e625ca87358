package analytics

import "time"

const (
	TopicLinkCreated  = "link.created"
	TopicLinkResolved = "link.resolved"
	TopicFileUploaded = "file.uploaded"
)

// Resolution outcomes reported in LinkResolvedEvent.
const (
	OutcomeRedirect = "redirect"
	OutcomeFile     = "file"
	OutcomeNotFound = "not_found"
	OutcomeFailed   = "failed"
)

// LinkCreatedEvent is emitted when a short link is stored.
type LinkCreatedEvent struct {
	Code      string    `json:"code"`
	LongURL   string    `json:"longUrl"`
	Custom    bool      `json:"custom"`
	CreatedAt time.Time `json:"createdAt"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
}

// LinkResolvedEvent is emitted for every GET /{code}.
type LinkResolvedEvent struct {
	Code       string    `json:"code"`
	Outcome    string    `json:"outcome"`
	ResolvedAt time.Time `json:"resolvedAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	Referrer   string    `json:"referrer"`
}

// FileUploadedEvent is emitted when a file lands in the content store.
type FileUploadedEvent struct {
	Name        string    `json:"name"`
	Size        int       `json:"size"`
	ContentType string    `json:"contentType"`
	UploadedAt  time.Time `json:"uploadedAt"`
	ClientIP    string    `json:"clientIp"`
	UserAgent   string    `json:"userAgent"`
}
