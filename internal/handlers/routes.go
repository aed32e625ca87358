package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/gistcdn/internal/ratelimit"
)

// RegisterRoutes registers upload, shorten and resolve operations with
// their rate limit configuration.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "index",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Landing page",
		Tags:        []string{"Pages"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeRead},
		},
	}, h.Index)

	huma.Register(api, huma.Operation{
		OperationID:   "upload-file",
		Method:        http.MethodPost,
		Path:          "/upload",
		Summary:       "Upload a file",
		Description:   "Stores the file under a random code that keeps the original extension and returns its public URL.",
		Tags:          []string{"Files"},
		DefaultStatus: http.StatusOK,
		Errors:        []int{http.StatusBadRequest, http.StatusInternalServerError},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 10},
					{Window: time.Hour, Max: 60},
				},
			},
		},
	}, h.Upload)

	huma.Register(api, huma.Operation{
		OperationID:   "shorten-url",
		Method:        http.MethodPost,
		Path:          "/shorten",
		Summary:       "Create short URL",
		Description:   "Stores the URL under the custom code if given, otherwise under a random 4 character code.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusOK,
		Errors:        []int{http.StatusBadRequest, http.StatusInternalServerError},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeWrite},
		},
	}, h.Shorten)

	huma.Register(api, huma.Operation{
		OperationID: "resolve-code",
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Follow a short link or download a file",
		Description: "Redirects (302) when the code is a short link, otherwise streams the stored file of that name, otherwise renders a 404 page.",
		Tags:        []string{"URLs", "Files"},
		Errors:      []int{http.StatusNotFound, http.StatusBadGateway},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 1000},
				},
			},
		},
	}, h.Resolve)
}
