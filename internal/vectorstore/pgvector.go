package vectorstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/rag"
)

// PgVectorStore keeps one vector_record table keyed (namespace, id).
// Similarity is cosine: pgvector's <=> distance converted to a
// higher-is-better score with 1 - distance.
type PgVectorStore struct {
	db  *pgxpool.Pool
	dim int
	log *slog.Logger
}

func NewPgVectorStore(db *pgxpool.Pool, dim int, log *slog.Logger) *PgVectorStore {
	return &PgVectorStore{db: db, dim: dim, log: log.With("component", "pgvector")}
}

// EnsureSchema creates the extension and table if missing. Run by the
// indexing binary before the first upsert.
func (s *PgVectorStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return &rag.ProviderError{Provider: "pgvector", Op: "ensure schema", Err: err}
	}
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS vector_record (
			namespace text NOT NULL,
			id        text NOT NULL,
			embedding vector(%d) NOT NULL,
			metadata  jsonb NOT NULL DEFAULT '{}',
			PRIMARY KEY (namespace, id)
		)
	`, s.dim)
	if _, err := s.db.Exec(ctx, ddl); err != nil {
		return &rag.ProviderError{Provider: "pgvector", Op: "ensure schema", Err: err}
	}
	return nil
}

func (s *PgVectorStore) Search(ctx context.Context, vector []float32, namespace string, topK int, filter map[string]any) ([]rag.Match, error) {
	if topK < 1 {
		return nil, &rag.ValidationError{Msg: "top_k must be >= 1"}
	}
	if len(vector) != s.dim {
		return nil, &rag.DimensionMismatchError{Want: s.dim, Got: len(vector)}
	}

	query := `
		SELECT id, metadata, 1 - (embedding <=> $2) AS score
		FROM vector_record
		WHERE namespace = $1
	`
	args := []any{namespace, pgvector.NewVector(vector)}
	if len(filter) > 0 {
		query += ` AND metadata @> $3`
		args = append(args, filter)
	}
	query += fmt.Sprintf(` ORDER BY embedding <=> $2 LIMIT %d`, topK)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, &rag.ProviderError{Provider: "pgvector", Op: "search", Err: err}
	}
	defer rows.Close()

	var matches []rag.Match
	for rows.Next() {
		var (
			id       string
			metadata map[string]any
			score    float64
		)
		if err := rows.Scan(&id, &metadata, &score); err != nil {
			return nil, &rag.ProviderError{Provider: "pgvector", Op: "search", Err: err}
		}
		matches = append(matches, rag.Match{ID: id, Score: float32(score), Metadata: metadata})
	}
	if err := rows.Err(); err != nil {
		return nil, &rag.ProviderError{Provider: "pgvector", Op: "search", Err: err}
	}
	return matches, nil
}

func (s *PgVectorStore) Upsert(ctx context.Context, records []rag.VectorRecord, namespace string) (*rag.UpsertResult, error) {
	for _, r := range records {
		if len(r.Values) != s.dim {
			return nil, &rag.DimensionMismatchError{Want: s.dim, Got: len(r.Values)}
		}
	}

	for _, r := range records {
		_, err := s.db.Exec(ctx, `
			INSERT INTO vector_record (namespace, id, embedding, metadata)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (namespace, id)
			DO UPDATE SET embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata
		`, namespace, r.ID, pgvector.NewVector(r.Values), r.Metadata)
		if err != nil {
			return nil, &rag.ProviderError{Provider: "pgvector", Op: "upsert", Err: err}
		}
	}

	return &rag.UpsertResult{UpsertedCount: len(records), Namespace: namespace}, nil
}

func (s *PgVectorStore) DeleteNamespace(ctx context.Context, namespace string) bool {
	if _, err := s.db.Exec(ctx, `DELETE FROM vector_record WHERE namespace = $1`, namespace); err != nil {
		s.log.Error("delete namespace failed", "namespace", namespace, "error", err)
		return false
	}
	return true
}

func (s *PgVectorStore) Stats(ctx context.Context) (*rag.IndexStats, error) {
	rows, err := s.db.Query(ctx, `SELECT namespace, count(*) FROM vector_record GROUP BY namespace`)
	if err != nil {
		return nil, &rag.ProviderError{Provider: "pgvector", Op: "stats", Err: err}
	}
	defer rows.Close()

	stats := &rag.IndexStats{Namespaces: make(map[string]rag.NamespaceStats)}
	for rows.Next() {
		var (
			ns    string
			count int
		)
		if err := rows.Scan(&ns, &count); err != nil {
			return nil, &rag.ProviderError{Provider: "pgvector", Op: "stats", Err: err}
		}
		stats.Namespaces[ns] = rag.NamespaceStats{VectorCount: count}
		stats.TotalVectorCount += count
	}
	if err := rows.Err(); err != nil {
		return nil, &rag.ProviderError{Provider: "pgvector", Op: "stats", Err: err}
	}
	return stats, nil
}

var _ rag.VectorStore = (*PgVectorStore)(nil)
