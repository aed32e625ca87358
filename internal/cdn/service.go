package cdn

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/serroba/gistcdn/internal/shortener"
)

// StoredFile describes a file accepted by Upload.
type StoredFile struct {
	Name       string
	Size       int
	UploadedAt time.Time
}

// Service names uploads and hands them to a ContentStore.
type Service struct {
	store    ContentStore
	generate shortener.CodeGenerator
}

// NewService creates an upload service.
func NewService(store ContentStore, generate shortener.CodeGenerator) *Service {
	return &Service{
		store:    store,
		generate: generate,
	}
}

// Upload stores data as <code><ext>, where ext is taken from originalName.
// Name collisions with earlier uploads are not checked.
func (s *Service) Upload(ctx context.Context, originalName string, data []byte) (*StoredFile, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	name := s.generate() + filepath.Ext(originalName)

	if err := s.store.Put(ctx, name, data, "upload: "+name); err != nil {
		return nil, fmt.Errorf("store %s: %w", name, err)
	}

	return &StoredFile{
		Name:       name,
		Size:       len(data),
		UploadedAt: time.Now(),
	}, nil
}

// Open fetches a stored file by name.
func (s *Service) Open(ctx context.Context, name string) (*Object, error) {
	return s.store.Fetch(ctx, name)
}
