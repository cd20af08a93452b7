package vectorstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/logger"
	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/rag"
)

func newTestStore(t *testing.T, dim int) *MemoryStore {
	t.Helper()
	return NewMemoryStore(dim, logger.New(logger.WithWriter(io.Discard)))
}

func record(id string, values []float32, country string) rag.VectorRecord {
	return rag.VectorRecord{
		ID:     id,
		Values: values,
		Metadata: map[string]any{
			"text":        "text for " + id,
			"country":     country,
			"source_file": id + ".pdf",
			"page":        1,
		},
	}
}

func TestSearchOrderingAndTopK(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 2)

	_, err := store.Upsert(ctx, []rag.VectorRecord{
		record("a", []float32{1, 0}, "spain"),
		record("b", []float32{0.9, 0.1}, "spain"),
		record("c", []float32{0, 1}, "spain"),
	}, "spain")
	require.NoError(t, err)

	matches, err := store.Search(ctx, []float32{1, 0}, "spain", 2, nil)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "a", matches[0].ID)
	assert.Equal(t, "b", matches[1].ID)
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
}

func TestSearchSelfSimilarityIsHighest(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 3)

	target := []float32{0.2, 0.7, 0.1}
	_, err := store.Upsert(ctx, []rag.VectorRecord{
		record("x", target, "spain"),
		record("y", []float32{0.9, 0.1, 0.3}, "spain"),
		record("z", []float32{0.1, 0.1, 0.9}, "spain"),
	}, "spain")
	require.NoError(t, err)

	matches, err := store.Search(ctx, target, "spain", 3, nil)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "x", matches[0].ID)
}

func TestUpsertIdempotentPerID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 2)

	_, err := store.Upsert(ctx, []rag.VectorRecord{record("dup", []float32{1, 0}, "spain")}, "spain")
	require.NoError(t, err)
	_, err = store.Upsert(ctx, []rag.VectorRecord{record("dup", []float32{0, 1}, "spain")}, "spain")
	require.NoError(t, err)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalVectorCount)
	assert.Equal(t, 1, stats.Namespaces["spain"].VectorCount)

	// Latest write wins.
	matches, err := store.Search(ctx, []float32{0, 1}, "spain", 1, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 1.0, float64(matches[0].Score), 1e-6)
}

func TestNamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 2)

	_, err := store.Upsert(ctx, []rag.VectorRecord{record("s", []float32{1, 0}, "spain")}, "spain")
	require.NoError(t, err)
	_, err = store.Upsert(ctx, []rag.VectorRecord{record("p", []float32{1, 0}, "poland")}, "poland")
	require.NoError(t, err)

	matches, err := store.Search(ctx, []float32{1, 0}, "spain", 10, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "s", matches[0].ID)
}

func TestSearchDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 3)

	_, err := store.Search(ctx, []float32{1, 0}, "spain", 5, nil)
	require.Error(t, err)

	var dimErr *rag.DimensionMismatchError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 3, dimErr.Want)
	assert.Equal(t, 2, dimErr.Got)
}

func TestSearchRejectsBadTopK(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 2)

	_, err := store.Search(ctx, []float32{1, 0}, "spain", 0, nil)
	var valErr *rag.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestSearchMetadataFilter(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 2)

	recA := record("a", []float32{1, 0}, "spain")
	recB := record("b", []float32{1, 0}, "spain")
	recB.Metadata["source_file"] = "other.pdf"
	_, err := store.Upsert(ctx, []rag.VectorRecord{recA, recB}, "spain")
	require.NoError(t, err)

	matches, err := store.Search(ctx, []float32{1, 0}, "spain", 10, map[string]any{"source_file": "a.pdf"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].ID)
}

func TestDeleteNamespace(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 2)

	_, err := store.Upsert(ctx, []rag.VectorRecord{record("s", []float32{1, 0}, "spain")}, "spain")
	require.NoError(t, err)

	assert.True(t, store.DeleteNamespace(ctx, "spain"))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalVectorCount)
	assert.NotContains(t, stats.Namespaces, "spain")
}

func TestUpsertDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 2)

	_, err := store.Upsert(ctx, []rag.VectorRecord{record("bad", []float32{1, 0, 0}, "spain")}, "spain")
	var dimErr *rag.DimensionMismatchError
	require.ErrorAs(t, err, &dimErr)
}
