package githost

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v62/github"
	"github.com/serroba/gistcdn/internal/cdn"
)

// ContentConfig locates the repository used as file hosting.
type ContentConfig struct {
	Owner      string
	Repo       string
	Branch     string
	RawBaseURL string
}

// ContentStore implements cdn.ContentStore with the repository contents API
// for writes and the raw file host for reads.
type ContentStore struct {
	client     *github.Client
	httpClient *http.Client
	cfg        ContentConfig
}

// NewContentStore creates a content store. Empty Branch means "main",
// empty RawBaseURL means DefaultRawBaseURL.
func NewContentStore(client *github.Client, httpClient *http.Client, cfg ContentConfig) *ContentStore {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if cfg.Branch == "" {
		cfg.Branch = "main"
	}

	if cfg.RawBaseURL == "" {
		cfg.RawBaseURL = DefaultRawBaseURL
	}

	cfg.RawBaseURL = strings.TrimSuffix(cfg.RawBaseURL, "/")

	return &ContentStore{
		client:     client,
		httpClient: httpClient,
		cfg:        cfg,
	}
}

// Put creates name in the repository. go-github base64-encodes data.
func (s *ContentStore) Put(ctx context.Context, name string, data []byte, message string) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: data,
		Branch:  github.String(s.cfg.Branch),
	}

	if _, _, err := s.client.Repositories.CreateFile(ctx, s.cfg.Owner, s.cfg.Repo, name, opts); err != nil {
		return fmt.Errorf("create %s/%s/%s: %w", s.cfg.Owner, s.cfg.Repo, name, err)
	}

	return nil
}

// Fetch opens the raw file. Any non-200 answer other than 404 is an error.
func (s *ContentStore) Fetch(ctx context.Context, name string) (*cdn.Object, error) {
	rawURL := fmt.Sprintf("%s/%s/%s/%s/%s",
		s.cfg.RawBaseURL, s.cfg.Owner, s.cfg.Repo, s.cfg.Branch, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return &cdn.Object{
			Body:          resp.Body,
			ContentType:   resp.Header.Get("Content-Type"),
			ContentLength: resp.ContentLength,
		}, nil
	case http.StatusNotFound:
		_ = resp.Body.Close()

		return nil, cdn.ErrNotFound
	default:
		_ = resp.Body.Close()

		return nil, fmt.Errorf("fetch %s: unexpected status %d", name, resp.StatusCode)
	}
}

// Ping checks that the content repository is reachable with the configured token.
func (s *ContentStore) Ping(ctx context.Context) error {
	if _, _, err := s.client.Repositories.Get(ctx, s.cfg.Owner, s.cfg.Repo); err != nil {
		return fmt.Errorf("get repository %s/%s: %w", s.cfg.Owner, s.cfg.Repo, err)
	}

	return nil
}

var _ cdn.ContentStore = (*ContentStore)(nil)
