package shortener

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("short code not found")
	ErrCodeInUse = errors.New("short code already in use")
)

// Repository stores the code -> long URL mapping.
type Repository interface {
	// Get returns the long URL for code, or ErrNotFound.
	Get(ctx context.Context, code Code) (string, error)

	// Reserve stores link only if its code is not yet taken and returns
	// ErrCodeInUse otherwise. Whether the check and the write are atomic
	// depends on the backend.
	Reserve(ctx context.Context, link *ShortLink) error
}
