package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/gistcdn/internal/middleware"
	"github.com/serroba/gistcdn/internal/ratelimit"
	"github.com/serroba/gistcdn/internal/store"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type failingStore struct{}

func (failingStore) Record(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 0, errors.New("store down")
}

func newLimitedAPI(t *testing.T, rlStore ratelimit.Store, policy *ratelimit.Policy) (*chi.Mux, huma.API) {
	t.Helper()

	router, api := newTestAPI(t)
	limiter := ratelimit.NewPolicyLimiter(rlStore, policy)
	api.UseMiddleware(middleware.PolicyRateLimiter(api, limiter, ratelimit.NewOperationScopeResolver(), zap.NewNop()))

	return router, api
}

func TestPolicyRateLimiter(t *testing.T) {
	policy := ratelimit.NewPolicyBuilder().
		AddLimit(ratelimit.ScopeGlobal, 100, time.Minute).
		AddLimit(ratelimit.ScopeWrite, 2, time.Minute).
		Build()

	t.Run("limits write scope per client", func(t *testing.T) {
		router, api := newLimitedAPI(t, store.NewRateLimitMemoryStore(), policy)
		huma.Post(api, "/write", okHandler)

		alice := map[string]string{"X-Forwarded-For": "10.0.0.1", "User-Agent": "a"}
		bob := map[string]string{"X-Forwarded-For": "10.0.0.2", "User-Agent": "b"}

		assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/write", alice).Code)
		assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/write", alice).Code)

		w := serve(router, http.MethodPost, "/write", alice)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "write scope")

		assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/write", bob).Code)
	})

	t.Run("reads are not counted against writes", func(t *testing.T) {
		router, api := newLimitedAPI(t, store.NewRateLimitMemoryStore(), policy)
		huma.Get(api, "/read", okHandler)

		for range 5 {
			assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/read", nil).Code)
		}
	})

	t.Run("endpoint limits replace policy", func(t *testing.T) {
		router, api := newLimitedAPI(t, store.NewRateLimitMemoryStore(), policy)
		huma.Register(api, huma.Operation{
			OperationID: "custom",
			Method:      http.MethodGet,
			Path:        "/custom/{id}",
			Metadata: map[string]any{
				ratelimit.MetadataKey: ratelimit.EndpointConfig{
					Limits: []ratelimit.LimitConfig{{Window: time.Minute, Max: 1}},
				},
			},
		}, func(ctx context.Context, _ *struct {
			ID string `path:"id"`
		}) (*testOutput, error) {
			return okHandler(ctx, nil)
		})

		assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/custom/a", nil).Code)
		assert.Equal(t, http.StatusTooManyRequests, serve(router, http.MethodGet, "/custom/b", nil).Code)
	})

	t.Run("disabled endpoint skips limiter", func(t *testing.T) {
		router, api := newLimitedAPI(t, failingStore{}, policy)
		huma.Register(api, huma.Operation{
			OperationID: "open",
			Method:      http.MethodPost,
			Path:        "/open",
			Metadata: map[string]any{
				ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
			},
		}, okHandler)

		assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/open", nil).Code)
	})

	t.Run("store failure is a server error", func(t *testing.T) {
		router, api := newLimitedAPI(t, failingStore{}, policy)
		huma.Get(api, "/read", okHandler)

		assert.Equal(t, http.StatusInternalServerError, serve(router, http.MethodGet, "/read", nil).Code)
	})
}
