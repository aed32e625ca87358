package handlers

import (
	"bytes"
	"context"
	"embed"
	"html/template"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages struct {
	index    *template.Template
	notFound *template.Template
}

func mustParsePages() *pages {
	return &pages{
		index:    template.Must(template.ParseFS(templateFS, "templates/index.html")),
		notFound: template.Must(template.ParseFS(templateFS, "templates/404.html")),
	}
}

type pageData struct {
	Domain string
	Code   string
}

func render(tmpl *template.Template, data pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Index renders the landing page.
func (h *Handler) Index(_ context.Context, _ *struct{}) (*PageResponse, error) {
	body, err := render(h.pages.index, pageData{Domain: h.domain})
	if err != nil {
		h.logger.Error("failed to render landing page", zap.Error(err))

		return nil, internalError("Failed to render page.")
	}

	return &PageResponse{ContentType: "text/html; charset=utf-8", Body: body}, nil
}
