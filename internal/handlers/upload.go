package handlers

import (
	"context"
	"io"

	"github.com/serroba/gistcdn/internal/analytics"
	"go.uber.org/zap"
)

// Upload stores the multipart "file" field in the content store.
func (h *Handler) Upload(ctx context.Context, req *UploadRequest) (*URLResponse, error) {
	form := req.RawBody.Data()
	if form == nil || !form.File.IsSet || form.File.Size == 0 {
		return nil, badRequest(MsgUploadFailed)
	}
	defer form.File.Close()

	data, err := io.ReadAll(form.File)
	if err != nil {
		h.logger.Warn("failed to read upload", zap.String("filename", form.File.Filename), zap.Error(err))

		return nil, badRequest(MsgUploadFailed)
	}

	if len(data) == 0 {
		return nil, badRequest(MsgUploadFailed)
	}

	stored, err := h.files.Upload(ctx, form.File.Filename, data)
	if err != nil {
		h.logger.Error("failed to upload file",
			zap.String("filename", form.File.Filename),
			zap.Int("size", len(data)),
			zap.Error(err),
		)

		return nil, internalError(MsgUploadError)
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.FileUploadedEvent{
		Name:        stored.Name,
		Size:        stored.Size,
		ContentType: form.File.ContentType,
		UploadedAt:  stored.UploadedAt,
		ClientIP:    meta.ClientIP,
		UserAgent:   meta.UserAgent,
	}

	if err := h.events.FileUploaded(ctx, event); err != nil {
		h.logger.Error("failed to publish upload event",
			zap.String("name", event.Name),
			zap.Error(err),
		)
	}

	resp := &URLResponse{}
	resp.Body.URL = h.publicURL(stored.Name)

	return resp, nil
}
