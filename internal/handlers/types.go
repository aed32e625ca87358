package handlers

import "github.com/danielgtaylor/huma/v2"

// ShortenRequest is the request body for creating a short link.
type ShortenRequest struct {
	Body struct {
		LongURL    string `doc:"The URL to shorten"               example:"https://example.com/very/long/path" json:"longUrl"              required:"false"`
		CustomCode string `doc:"Optional code to use as-is"       example:"abcd"                               json:"customCode,omitempty" required:"false"`
	}
}

// URLResponse carries the public URL of a created link or uploaded file.
type URLResponse struct {
	Body struct {
		URL string `doc:"The public URL" example:"https://cdn.example.com/abcd" json:"url"`
	}
}

// UploadForm is the multipart form accepted by POST /upload.
type UploadForm struct {
	File huma.FormFile `contentType:"*/*" form:"file" required:"false"`
}

// UploadRequest wraps the multipart upload.
type UploadRequest struct {
	RawBody huma.MultipartFormFiles[UploadForm]
}

// ResolveRequest identifies a short link or uploaded file.
type ResolveRequest struct {
	Code string `doc:"Short code or file name" example:"abcd" path:"code"`
}

// PageResponse is a rendered HTML page.
type PageResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}
