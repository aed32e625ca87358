package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
)

type testOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

func okHandler(_ context.Context, _ *struct{}) (*testOutput, error) {
	out := &testOutput{}
	out.Body.Message = "ok"

	return out, nil
}

func newTestAPI(t *testing.T) (*chi.Mux, huma.API) {
	t.Helper()

	router := chi.NewMux()

	return router, humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
}

func serve(router http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}
