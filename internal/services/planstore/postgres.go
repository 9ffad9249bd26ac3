package planstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS plan_documents (
    id TEXT PRIMARY KEY,
    body JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresBackend keeps plan documents in a JSONB column
type PostgresBackend struct {
	pool *pgxpool.Pool
	id   string
}

// NewPostgres connects to dbURL and ensures the table exists
func NewPostgres(ctx context.Context, dbURL, docID string) (*PostgresBackend, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	config.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create plan table: %w", err)
	}
	return &PostgresBackend{pool: pool, id: docID}, nil
}

func (b *PostgresBackend) Name() string { return "postgres" }

func (b *PostgresBackend) Load(ctx context.Context) ([]byte, error) {
	var body []byte
	err := b.pool.QueryRow(ctx, `SELECT body::text FROM plan_documents WHERE id = $1`, b.id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select plan: %w", err)
	}
	return body, nil
}

func (b *PostgresBackend) Save(ctx context.Context, data []byte) error {
	_, err := b.pool.Exec(ctx, `
		INSERT INTO plan_documents (id, body, updated_at) VALUES ($1, $2::jsonb, $3)
		ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		b.id, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert plan: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}
