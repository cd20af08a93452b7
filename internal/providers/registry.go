// Package providers resolves configured provider kinds into concrete
// clients, once, at startup. Adding a backend means adding a kind
// constant and a case here; call sites depend only on the interfaces.
package providers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/config"
	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/llm"
	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/rag"
	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/vectorstore"
)

type VectorStoreKind string

const (
	VectorStorePinecone VectorStoreKind = "pinecone"
	VectorStorePgvector VectorStoreKind = "pgvector"
	VectorStoreMemory   VectorStoreKind = "memory"
)

type EmbeddingsKind string

const (
	EmbeddingsBedrock EmbeddingsKind = "bedrock"
	EmbeddingsGemini  EmbeddingsKind = "gemini"
)

type LLMKind string

const (
	LLMBedrock LLMKind = "bedrock"
	LLMGemini  LLMKind = "gemini"
)

// Components holds the resolved provider set for one deployment.
type Components struct {
	Store      rag.VectorStore
	Embeddings rag.EmbeddingsClient
	LLM        rag.LLMClient

	// Pg is set when the pgvector backend is active, for schema setup.
	Pg *vectorstore.PgVectorStore
}

// Build resolves each configured kind into a client and verifies the
// embedding dimension against the store configuration. Any failure
// here is fatal; the process must not start serving on a broken
// provider set.
func Build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Components, error) {
	c := &Components{}

	var bedrockClient *llm.BedrockClient
	var geminiClient *llm.GeminiClient

	bedrock := func() (*llm.BedrockClient, error) {
		if bedrockClient != nil {
			return bedrockClient, nil
		}
		var err error
		bedrockClient, err = llm.NewBedrockClient(ctx, cfg.AWSRegion, cfg.BedrockEmbeddingModel, cfg.BedrockLLMModel, cfg.EmbeddingDimension)
		return bedrockClient, err
	}
	gemini := func() (*llm.GeminiClient, error) {
		if geminiClient != nil {
			return geminiClient, nil
		}
		var err error
		geminiClient, err = llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiEmbeddingModel, cfg.GeminiChatModel, cfg.EmbeddingDimension)
		return geminiClient, err
	}

	switch VectorStoreKind(strings.ToLower(cfg.VectorStoreType)) {
	case VectorStorePinecone:
		store, err := vectorstore.NewPineconeStore(ctx, cfg.PineconeAPIKey, cfg.PineconeIndexName, cfg.EmbeddingDimension, log)
		if err != nil {
			return nil, err
		}
		c.Store = store
	case VectorStorePgvector:
		pool, err := vectorstore.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		c.Pg = vectorstore.NewPgVectorStore(pool, cfg.EmbeddingDimension, log)
		c.Store = c.Pg
	case VectorStoreMemory:
		c.Store = vectorstore.NewMemoryStore(cfg.EmbeddingDimension, log)
	default:
		return nil, rag.ConfigErrorf("unsupported vector store type: %s", cfg.VectorStoreType)
	}

	switch EmbeddingsKind(strings.ToLower(cfg.EmbeddingsType)) {
	case EmbeddingsBedrock:
		client, err := bedrock()
		if err != nil {
			return nil, err
		}
		c.Embeddings = client
	case EmbeddingsGemini:
		client, err := gemini()
		if err != nil {
			return nil, err
		}
		c.Embeddings = client
	default:
		return nil, rag.ConfigErrorf("unsupported embeddings type: %s", cfg.EmbeddingsType)
	}

	switch LLMKind(strings.ToLower(cfg.LLMType)) {
	case LLMBedrock:
		client, err := bedrock()
		if err != nil {
			return nil, err
		}
		c.LLM = client
	case LLMGemini:
		client, err := gemini()
		if err != nil {
			return nil, err
		}
		c.LLM = client
	default:
		return nil, rag.ConfigErrorf("unsupported llm type: %s", cfg.LLMType)
	}

	dim, err := c.Embeddings.Dimension(ctx)
	if err != nil {
		return nil, rag.ConfigErrorf("probe embedding dimension: %v", err)
	}
	if dim != cfg.EmbeddingDimension {
		return nil, rag.ConfigErrorf("embedding dimension %d does not match configured dimension %d", dim, cfg.EmbeddingDimension)
	}

	log.Info("providers resolved",
		"vector_store", cfg.VectorStoreType,
		"embeddings", cfg.EmbeddingsType,
		"llm", cfg.LLMType,
		"dimension", dim,
	)
	return c, nil
}

// Pipeline assembles the query pipeline from the resolved components.
func (c *Components) Pipeline(cfg *config.Config, log *slog.Logger) *rag.Pipeline {
	return rag.NewPipeline(c.Store, c.Embeddings, c.LLM, cfg.Countries, cfg.TopKResults, log)
}
