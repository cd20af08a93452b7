package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "pinecone", cfg.VectorStoreType)
	assert.Equal(t, "bedrock", cfg.EmbeddingsType)
	assert.Equal(t, "bedrock", cfg.LLMType)
	assert.Equal(t, "amazon.titan-embed-text-v2:0", cfg.BedrockEmbeddingModel)
	assert.Equal(t, "anthropic.claude-3-5-sonnet-20240620-v1:0", cfg.BedrockLLMModel)
	assert.Equal(t, "eu-central-1", cfg.AWSRegion)
	assert.Equal(t, 1024, cfg.EmbeddingDimension)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 5, cfg.TopKResults)
	assert.Equal(t, []string{"spain", "poland", "colombia", "italy", "georgia"}, cfg.Countries)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VECTOR_STORE_TYPE", "pgvector")
	t.Setenv("EMBEDDING_DIMENSION", "768")
	t.Setenv("COUNTRIES", "Spain, Italy")

	cfg := Load()

	assert.Equal(t, "pgvector", cfg.VectorStoreType)
	assert.Equal(t, 768, cfg.EmbeddingDimension)
	assert.Equal(t, []string{"spain", "italy"}, cfg.Countries)
}

func TestInvalidIntFallsBack(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "not-a-number")

	cfg := Load()
	assert.Equal(t, 1000, cfg.ChunkSize)
}
