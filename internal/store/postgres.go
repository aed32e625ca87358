package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/gistcdn/internal/shortener"
)

const schema = `
	CREATE TABLE IF NOT EXISTS links (
		code       TEXT PRIMARY KEY,
		long_url   TEXT NOT NULL,
		custom     BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed link store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the links table if it does not exist.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schema)

	return err
}

func (p *PostgresStore) Get(ctx context.Context, code shortener.Code) (string, error) {
	var url string

	err := p.pool.QueryRow(ctx, `SELECT long_url FROM links WHERE code = $1`, string(code)).Scan(&url)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shortener.ErrNotFound
		}

		return "", err
	}

	return url, nil
}

func (p *PostgresStore) Reserve(ctx context.Context, link *shortener.ShortLink) error {
	query := `
		INSERT INTO links (code, long_url, custom, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO NOTHING
	`

	tag, err := p.pool.Exec(ctx, query,
		string(link.Code),
		link.LongURL,
		link.Custom,
		link.CreatedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrCodeInUse
	}

	return nil
}

var _ shortener.Repository = (*PostgresStore)(nil)
