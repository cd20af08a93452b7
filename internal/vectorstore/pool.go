package vectorstore

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/rag"
)

// NewPool connects to Postgres for the pgvector backend.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, rag.ConfigErrorf("parse db config: %v", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, rag.ConfigErrorf("connect to db: %v", err)
	}

	return pool, nil
}
