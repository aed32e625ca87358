package githost_test

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-github/v62/github"
	"github.com/serroba/gistcdn/internal/githost"
	"github.com/stretchr/testify/require"
)

// fakeGitHub serves the subset of the GitHub API used by githost.
type fakeGitHub struct {
	files     map[string]string // gist file name -> content
	gistErr   int
	edits     []map[string]map[string]string
	puts      []contentPut
	putStatus int
	raw       map[string]rawFile // path below the raw base URL
	repoErr   int
}

type contentPut struct {
	Path    string
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
}

type rawFile struct {
	contentType string
	body        string
}

func (f *fakeGitHub) routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/gists/{id}", func(w http.ResponseWriter, _ *http.Request) {
		if f.gistErr != 0 {
			http.Error(w, `{"message":"boom"}`, f.gistErr)

			return
		}

		files := map[string]map[string]string{}
		for name, content := range f.files {
			files[name] = map[string]string{"filename": name, "content": content}
		}

		_ = json.NewEncoder(w).Encode(map[string]any{"id": "g1", "files": files})
	})

	r.Patch("/gists/{id}", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Files map[string]map[string]string `json:"files"`
		}

		_ = json.NewDecoder(req.Body).Decode(&body)
		f.edits = append(f.edits, body.Files)

		_ = json.NewEncoder(w).Encode(map[string]any{"id": "g1"})
	})

	r.Put("/repos/{owner}/{repo}/contents/*", func(w http.ResponseWriter, req *http.Request) {
		var put contentPut

		_ = json.NewDecoder(req.Body).Decode(&put)
		put.Path = chi.URLParam(req, "owner") + "/" + chi.URLParam(req, "repo") + "/" + chi.URLParam(req, "*")
		f.puts = append(f.puts, put)

		if f.putStatus != 0 {
			http.Error(w, `{"message":"nope"}`, f.putStatus)

			return
		}

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"content":{"name":"x"}}`))
	})

	r.Get("/repos/{owner}/{repo}", func(w http.ResponseWriter, req *http.Request) {
		if f.repoErr != 0 {
			http.Error(w, `{"message":"Not Found"}`, f.repoErr)

			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":      chi.URLParam(req, "repo"),
			"full_name": chi.URLParam(req, "owner") + "/" + chi.URLParam(req, "repo"),
		})
	})

	r.Get("/raw/*", func(w http.ResponseWriter, req *http.Request) {
		file, ok := f.raw[chi.URLParam(req, "*")]
		if !ok {
			http.NotFound(w, req)

			return
		}

		w.Header().Set("Content-Type", file.contentType)
		_, _ = w.Write([]byte(file.body))
	})

	return r
}

func newTestClient(t *testing.T, fake *fakeGitHub) (*github.Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(fake.routes())
	t.Cleanup(srv.Close)

	client := githost.NewClient("test-token", srv.Client())

	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)

	client.BaseURL = base

	return client, srv
}

func decodeBase64(t *testing.T, s string) string {
	t.Helper()

	b, err := base64.StdEncoding.DecodeString(s)
	require.NoError(t, err)

	return string(b)
}
