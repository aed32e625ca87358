package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/gistcdn/internal/analytics"
	"github.com/serroba/gistcdn/internal/cdn"
	"github.com/serroba/gistcdn/internal/handlers"
	"github.com/serroba/gistcdn/internal/messaging"
	"github.com/serroba/gistcdn/internal/shortener"
	"github.com/serroba/gistcdn/internal/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testDomain = "https://cdn.example.com"

var errUpstream = errors.New("upstream unavailable")

func init() {
	huma.NewError = handlers.NewError
}

// noopPublish returns a publish function that always succeeds.
func noopPublish[T any]() messaging.Publish[T] {
	return func(_ context.Context, _ *T) error { return nil }
}

// recordPublish appends every event it receives to sink.
func recordPublish[T any](sink *[]T) messaging.Publish[T] {
	return func(_ context.Context, event *T) error {
		*sink = append(*sink, *event)

		return nil
	}
}

func noopEvents() handlers.Events {
	return handlers.Events{
		LinkCreated:  noopPublish[analytics.LinkCreatedEvent](),
		LinkResolved: noopPublish[analytics.LinkResolvedEvent](),
		FileUploaded: noopPublish[analytics.FileUploadedEvent](),
	}
}

// memoryDocument is a store.Document held in memory.
type memoryDocument struct {
	links   map[string]string
	loadErr error
	saveErr error
	saves   int
}

func (d *memoryDocument) Load(_ context.Context) (map[string]string, error) {
	if d.loadErr != nil {
		return nil, d.loadErr
	}

	out := make(map[string]string, len(d.links))
	for k, v := range d.links {
		out[k] = v
	}

	return out, nil
}

func (d *memoryDocument) Save(_ context.Context, links map[string]string) error {
	if d.saveErr != nil {
		return d.saveErr
	}

	d.saves++
	d.links = links

	return nil
}

type storedObject struct {
	body        string
	contentType string
}

// memoryContents is a cdn.ContentStore held in memory.
type memoryContents struct {
	objects  map[string]storedObject
	putErr   error
	fetchErr error
}

func newMemoryContents() *memoryContents {
	return &memoryContents{objects: make(map[string]storedObject)}
}

func (c *memoryContents) Put(_ context.Context, name string, data []byte, _ string) error {
	if c.putErr != nil {
		return c.putErr
	}

	c.objects[name] = storedObject{body: string(data), contentType: "application/octet-stream"}

	return nil
}

func (c *memoryContents) Fetch(_ context.Context, name string) (*cdn.Object, error) {
	if c.fetchErr != nil {
		return nil, c.fetchErr
	}

	obj, ok := c.objects[name]
	if !ok {
		return nil, cdn.ErrNotFound
	}

	return &cdn.Object{
		Body:          io.NopCloser(strings.NewReader(obj.body)),
		ContentType:   obj.contentType,
		ContentLength: int64(len(obj.body)),
	}, nil
}

type testEnv struct {
	router   *chi.Mux
	doc      *memoryDocument
	contents *memoryContents
}

type envOption func(*envConfig)

type envConfig struct {
	strict bool
	gen    shortener.CodeGenerator
	events handlers.Events
}

func withStrictLookup() envOption {
	return func(c *envConfig) { c.strict = true }
}

func withGenerator(gen shortener.CodeGenerator) envOption {
	return func(c *envConfig) { c.gen = gen }
}

func withEvents(events handlers.Events) envOption {
	return func(c *envConfig) { c.events = events }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	gen, err := shortener.NewCodeGenerator(shortener.DefaultCodeLength)
	require.NoError(t, err)

	cfg := &envConfig{gen: gen, events: noopEvents()}
	for _, opt := range opts {
		opt(cfg)
	}

	doc := &memoryDocument{links: map[string]string{}}
	contents := newMemoryContents()

	links := shortener.NewService(store.NewDocumentStore(doc), cfg.gen, shortener.DefaultMaxAttempts)
	files := cdn.NewService(contents, cfg.gen)
	h := handlers.NewHandler(links, files, testDomain, cfg.strict, cfg.events, zap.NewNop())

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	handlers.RegisterRoutes(api, h)

	return &testEnv{router: router, doc: doc, contents: contents}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	return w
}

func (e *testEnv) shorten(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/shorten", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	return e.do(req)
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) upload(t *testing.T, field, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("other", "value"))
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return e.do(req)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())

	return body
}
