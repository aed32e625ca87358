package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/serroba/gistcdn/internal/shortener"
)

// Document is a remotely stored JSON object mapping short codes to long URLs.
// It is always read and written whole.
type Document interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, links map[string]string) error
}

// DocumentStore implements shortener.Repository on top of a single Document.
//
// Reserve is a read-modify-write of the whole document. The mutex only
// serialises writers inside this process; two instances sharing a document
// can still lose each other's insertions.
type DocumentStore struct {
	doc Document
	mu  sync.Mutex
}

// NewDocumentStore creates a link store backed by doc.
func NewDocumentStore(doc Document) *DocumentStore {
	return &DocumentStore{doc: doc}
}

func (d *DocumentStore) Get(ctx context.Context, code shortener.Code) (string, error) {
	links, err := d.doc.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load link document: %w", err)
	}

	url := links[string(code)]
	if url == "" {
		return "", shortener.ErrNotFound
	}

	return url, nil
}

func (d *DocumentStore) Reserve(ctx context.Context, link *shortener.ShortLink) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	links, err := d.doc.Load(ctx)
	if err != nil {
		return fmt.Errorf("load link document: %w", err)
	}

	if links[string(link.Code)] != "" {
		return shortener.ErrCodeInUse
	}

	if links == nil {
		links = make(map[string]string, 1)
	}

	links[string(link.Code)] = link.LongURL

	if err := d.doc.Save(ctx, links); err != nil {
		return fmt.Errorf("save link document: %w", err)
	}

	return nil
}

// Ping checks that the document can be read.
func (d *DocumentStore) Ping(ctx context.Context) error {
	_, err := d.doc.Load(ctx)

	return err
}

var _ shortener.Repository = (*DocumentStore)(nil)
