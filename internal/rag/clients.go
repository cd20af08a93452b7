package rag

import "context"

// EmbeddingsClient converts text into fixed-dimension vectors.
type EmbeddingsClient interface {
	// EmbedQuery embeds a single text.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments embeds a batch of texts, preserving input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the provider's vector dimension, probed once
	// with a canary embedding and cached for the client's lifetime.
	Dimension(ctx context.Context) (int, error)
}

// VectorStore is a namespace-partitioned nearest-neighbor index.
// Every call is scoped to exactly one namespace; reads and writes
// never cross namespaces.
type VectorStore interface {
	// Search returns up to topK matches ordered by descending
	// similarity. topK must be >= 1. A query vector whose dimension
	// disagrees with the store fails with DimensionMismatchError.
	Search(ctx context.Context, vector []float32, namespace string, topK int, filter map[string]any) ([]Match, error)

	// Upsert writes records into the namespace, idempotent per ID.
	Upsert(ctx context.Context, records []VectorRecord, namespace string) (*UpsertResult, error)

	// DeleteNamespace removes every record in the namespace. Failure
	// is reported as false and logged, never as a fatal error.
	DeleteNamespace(ctx context.Context, namespace string) bool

	// Stats returns store-wide counts. Eventually consistent: callers
	// needing a fresh read must wait a settling interval first.
	Stats(ctx context.Context) (*IndexStats, error)
}

// LLMClient produces natural-language text, optionally grounded on
// retrieved context.
type LLMClient interface {
	// Generate runs a plain completion.
	Generate(ctx context.Context, prompt string, temperature float32, maxTokens int, stop []string) (string, error)

	// GenerateWithContext builds a single prompt from the enumerated
	// context chunks and answers the question from them. An empty
	// systemPrompt selects the default grounding instruction.
	GenerateWithContext(ctx context.Context, question string, chunks []string, systemPrompt string, temperature float32) (*Generation, error)

	// ModelName returns the provider's model identifier.
	ModelName() string
}
