package shortener

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultMaxAttempts bounds how many generated codes Shorten tries.
const DefaultMaxAttempts = 10

var (
	ErrEmptyURL           = errors.New("long url is required")
	ErrCodeSpaceExhausted = errors.New("no free short code found")
)

// Service creates and resolves short links.
type Service struct {
	repo        Repository
	generate    CodeGenerator
	maxAttempts int
}

// NewService creates a service. A non-positive maxAttempts means DefaultMaxAttempts.
func NewService(repo Repository, generate CodeGenerator, maxAttempts int) *Service {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	return &Service{
		repo:        repo,
		generate:    generate,
		maxAttempts: maxAttempts,
	}
}

// Shorten reserves customCode for longURL, or a generated code when
// customCode is empty. A taken custom code yields ErrCodeInUse.
func (s *Service) Shorten(ctx context.Context, longURL string, customCode Code) (*ShortLink, error) {
	if longURL == "" {
		return nil, ErrEmptyURL
	}

	if customCode != "" {
		link := &ShortLink{
			Code:      customCode,
			LongURL:   longURL,
			Custom:    true,
			CreatedAt: time.Now(),
		}

		if err := s.repo.Reserve(ctx, link); err != nil {
			return nil, err
		}

		return link, nil
	}

	for range s.maxAttempts {
		link := &ShortLink{
			Code:      Code(s.generate()),
			LongURL:   longURL,
			CreatedAt: time.Now(),
		}

		err := s.repo.Reserve(ctx, link)
		if err == nil {
			return link, nil
		}

		if !errors.Is(err, ErrCodeInUse) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrCodeSpaceExhausted, s.maxAttempts)
}
