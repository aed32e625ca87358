package shortener

import (
	"context"
	"errors"
)

// LookupKind tags the outcome of a Lookup.
type LookupKind int

const (
	NotMapped LookupKind = iota
	Found
	LookupFailed
)

func (k LookupKind) String() string {
	switch k {
	case Found:
		return "found"
	case LookupFailed:
		return "lookup_failed"
	default:
		return "not_mapped"
	}
}

// LookupResult is the outcome of resolving a code against the link store.
// URL is set only for Found, Err only for LookupFailed.
type LookupResult struct {
	Kind LookupKind
	URL  string
	Err  error
}

// Lookup resolves code without deciding what a store failure means;
// the caller chooses between degrading and surfacing it.
func (s *Service) Lookup(ctx context.Context, code Code) LookupResult {
	url, err := s.repo.Get(ctx, code)
	if err == nil {
		return LookupResult{Kind: Found, URL: url}
	}

	if errors.Is(err, ErrNotFound) {
		return LookupResult{Kind: NotMapped}
	}

	return LookupResult{Kind: LookupFailed, Err: err}
}
