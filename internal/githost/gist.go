package githost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/go-github/v62/github"
	"github.com/serroba/gistcdn/internal/store"
)

var ErrNoGistFile = errors.New("gist has no files")

// GistDocument is a link document stored as one JSON file inside a gist.
type GistDocument struct {
	client   *github.Client
	gistID   string
	fileName string

	mu       sync.Mutex
	resolved string // file name picked by the last Load
}

// NewGistDocument creates a document over gistID. An empty fileName selects
// the gist's first file in lexical order.
func NewGistDocument(client *github.Client, gistID, fileName string) *GistDocument {
	return &GistDocument{
		client:   client,
		gistID:   gistID,
		fileName: fileName,
	}
}

// Load fetches the gist and decodes the link mapping. Empty content is an empty mapping.
func (g *GistDocument) Load(ctx context.Context) (map[string]string, error) {
	gist, _, err := g.client.Gists.Get(ctx, g.gistID)
	if err != nil {
		return nil, fmt.Errorf("get gist %s: %w", g.gistID, err)
	}

	file, err := g.pickFile(gist.Files)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.resolved = file.GetFilename()
	g.mu.Unlock()

	links := make(map[string]string)

	content := file.GetContent()
	if strings.TrimSpace(content) == "" {
		return links, nil
	}

	if err := json.Unmarshal([]byte(content), &links); err != nil {
		return nil, fmt.Errorf("decode gist %s: %w", g.gistID, err)
	}

	return links, nil
}

// Save replaces the gist file content with links, indented by two spaces.
func (g *GistDocument) Save(ctx context.Context, links map[string]string) error {
	name, err := g.targetFile(ctx)
	if err != nil {
		return err
	}

	body, err := json.MarshalIndent(links, "", "  ")
	if err != nil {
		return fmt.Errorf("encode links: %w", err)
	}

	update := &github.Gist{
		Files: map[github.GistFilename]github.GistFile{
			github.GistFilename(name): {Content: github.String(string(body))},
		},
	}

	if _, _, err := g.client.Gists.Edit(ctx, g.gistID, update); err != nil {
		return fmt.Errorf("edit gist %s: %w", g.gistID, err)
	}

	return nil
}

func (g *GistDocument) targetFile(ctx context.Context) (string, error) {
	if g.fileName != "" {
		return g.fileName, nil
	}

	g.mu.Lock()
	name := g.resolved
	g.mu.Unlock()

	if name != "" {
		return name, nil
	}

	if _, err := g.Load(ctx); err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	return g.resolved, nil
}

func (g *GistDocument) pickFile(files map[github.GistFilename]github.GistFile) (github.GistFile, error) {
	if g.fileName != "" {
		file, ok := files[github.GistFilename(g.fileName)]
		if !ok {
			return github.GistFile{}, fmt.Errorf("gist %s has no file %q", g.gistID, g.fileName)
		}

		if file.Filename == nil {
			file.Filename = github.String(g.fileName)
		}

		return file, nil
	}

	if len(files) == 0 {
		return github.GistFile{}, ErrNoGistFile
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, string(name))
	}

	slices.Sort(names)

	file := files[github.GistFilename(names[0])]
	if file.Filename == nil {
		file.Filename = github.String(names[0])
	}

	return file, nil
}

var _ store.Document = (*GistDocument)(nil)
