package ingest

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/logger"
	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/vectorstore"
)

const testDim = 8

type stubEmbedder struct {
	calls int
}

func (e *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	vec := make([]float32, testDim)
	for i := 0; i < testDim; i++ {
		h := fnv.New32a()
		fmt.Fprintf(h, "%d:%s", i, text)
		vec[i] = float32(h.Sum32()%1000)/1000 + 0.001
	}
	return vec, nil
}

func (e *stubEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		vec, err := e.EmbedQuery(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

func (e *stubEmbedder) Dimension(ctx context.Context) (int, error) { return testDim, nil }

func writeCountryDoc(t *testing.T, dataDir, country, name, content string) {
	t.Helper()
	dir := filepath.Join(dataDir, country)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestBuilder(store *vectorstore.MemoryStore, emb *stubEmbedder, dataDir string, countries []string, opts ...Option) *Builder {
	log := logger.New(logger.WithWriter(io.Discard))
	base := []Option{WithBatchDelay(0), WithSettleDelay(0)}
	return NewBuilder(store, emb, dataDir, countries, 100, 20, log, append(base, opts...)...)
}

func TestRunIndexesCountry(t *testing.T) {
	dataDir := t.TempDir()
	writeCountryDoc(t, dataDir, "spain", "labor_law.txt", strings.Repeat("Probation period rules. ", 20))

	store := vectorstore.NewMemoryStore(testDim, logger.New(logger.WithWriter(io.Discard)))
	emb := &stubEmbedder{}
	report := newTestBuilder(store, emb, dataDir, []string{"spain"}).Run(context.Background())

	assert.Greater(t, report.Indexed["spain"], 0)
	assert.Empty(t, report.Failed)
	assert.Empty(t, report.Missing)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.Indexed["spain"], stats.Namespaces["spain"].VectorCount)
}

func TestRunAssignsSequentialIDs(t *testing.T) {
	dataDir := t.TempDir()
	writeCountryDoc(t, dataDir, "spain", "doc.txt", strings.Repeat("Employment contract terms. ", 30))

	store := vectorstore.NewMemoryStore(testDim, logger.New(logger.WithWriter(io.Discard)))
	emb := &stubEmbedder{}
	report := newTestBuilder(store, emb, dataDir, []string{"spain"}, WithBatchSize(2)).Run(context.Background())
	require.Greater(t, report.Indexed["spain"], 1)

	// Every record is retrievable and carries the country_offset id scheme.
	query, err := emb.EmbedQuery(context.Background(), "contract")
	require.NoError(t, err)
	matches, err := store.Search(context.Background(), query, "spain", report.Indexed["spain"], nil)
	require.NoError(t, err)
	require.Len(t, matches, report.Indexed["spain"])

	seen := make(map[string]bool)
	for _, m := range matches {
		seen[m.ID] = true
	}
	for i := 0; i < report.Indexed["spain"]; i++ {
		assert.True(t, seen[fmt.Sprintf("spain_%d", i)], "missing id spain_%d", i)
	}
}

func TestRunChunkMetadata(t *testing.T) {
	dataDir := t.TempDir()
	writeCountryDoc(t, dataDir, "italy", "contratti.txt", "Il periodo di prova dura sei mesi.")

	store := vectorstore.NewMemoryStore(testDim, logger.New(logger.WithWriter(io.Discard)))
	emb := &stubEmbedder{}
	newTestBuilder(store, emb, dataDir, []string{"italy"}).Run(context.Background())

	query, err := emb.EmbedQuery(context.Background(), "prova")
	require.NoError(t, err)
	matches, err := store.Search(context.Background(), query, "italy", 1, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	assert.Equal(t, "italy", matches[0].Metadata["country"])
	assert.Equal(t, "contratti.txt", matches[0].Metadata["source_file"])
	assert.Equal(t, 1, matches[0].Metadata["page"])
	assert.Equal(t, "Il periodo di prova dura sei mesi.", matches[0].Metadata["text"])
}

func TestRunIndexesMultibyteCorpus(t *testing.T) {
	dataDir := t.TempDir()
	// Long enough to span several chunks of Georgian 3-byte-per-rune text.
	writeCountryDoc(t, dataDir, "georgia", "labor_code.txt", strings.Repeat("შრომის კოდექსი არეგულირებს შრომით ურთიერთობებს. ", 60))

	store := vectorstore.NewMemoryStore(testDim, logger.New(logger.WithWriter(io.Discard)))
	emb := &stubEmbedder{}
	report := newTestBuilder(store, emb, dataDir, []string{"georgia"}).Run(context.Background())

	require.Empty(t, report.Failed)
	require.Greater(t, report.Indexed["georgia"], 1)

	query, err := emb.EmbedQuery(context.Background(), "კოდექსი")
	require.NoError(t, err)
	matches, err := store.Search(context.Background(), query, "georgia", report.Indexed["georgia"], nil)
	require.NoError(t, err)
	require.Len(t, matches, report.Indexed["georgia"])

	for _, m := range matches {
		text, ok := m.Metadata["text"].(string)
		require.True(t, ok)
		assert.True(t, utf8.ValidString(text), "chunk %s contains invalid UTF-8", m.ID)
	}
}

func TestRunSkipsMissingCountryDir(t *testing.T) {
	dataDir := t.TempDir()
	writeCountryDoc(t, dataDir, "spain", "doc.txt", "Spanish employment law text.")
	writeCountryDoc(t, dataDir, "poland", "doc.txt", "Polish employment law text.")
	// no directory for georgia

	store := vectorstore.NewMemoryStore(testDim, logger.New(logger.WithWriter(io.Discard)))
	report := newTestBuilder(store, &stubEmbedder{}, dataDir, []string{"spain", "georgia", "poland"}).Run(context.Background())

	// The missing country is skipped, not fatal; the others still index.
	assert.Empty(t, report.Failed)
	assert.Greater(t, report.Indexed["spain"], 0)
	assert.Greater(t, report.Indexed["poland"], 0)
	assert.Equal(t, 0, report.Indexed["georgia"])
	assert.Equal(t, []string{"georgia"}, report.Missing)
}

func TestRunIgnoresUnsupportedFiles(t *testing.T) {
	dataDir := t.TempDir()
	writeCountryDoc(t, dataDir, "spain", "notes.csv", "a,b,c")

	store := vectorstore.NewMemoryStore(testDim, logger.New(logger.WithWriter(io.Discard)))
	report := newTestBuilder(store, &stubEmbedder{}, dataDir, []string{"spain"}).Run(context.Background())

	assert.Equal(t, 0, report.Indexed["spain"])
	assert.Equal(t, []string{"spain"}, report.Missing)
}

func TestRunRebuildClearsNamespace(t *testing.T) {
	dataDir := t.TempDir()
	writeCountryDoc(t, dataDir, "spain", "doc.txt", "Current employment law text.")

	store := vectorstore.NewMemoryStore(testDim, logger.New(logger.WithWriter(io.Discard)))
	emb := &stubEmbedder{}

	first := newTestBuilder(store, emb, dataDir, []string{"spain"}).Run(context.Background())
	require.Greater(t, first.Indexed["spain"], 0)

	second := newTestBuilder(store, emb, dataDir, []string{"spain"}, WithRebuild(true)).Run(context.Background())

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second.Indexed["spain"], stats.Namespaces["spain"].VectorCount)
}

func TestRunIdempotentIDsAcrossReruns(t *testing.T) {
	dataDir := t.TempDir()
	writeCountryDoc(t, dataDir, "spain", "doc.txt", "Stable corpus, stable ids.")

	store := vectorstore.NewMemoryStore(testDim, logger.New(logger.WithWriter(io.Discard)))
	emb := &stubEmbedder{}

	newTestBuilder(store, emb, dataDir, []string{"spain"}).Run(context.Background())
	statsFirst, err := store.Stats(context.Background())
	require.NoError(t, err)

	// Re-running over the same corpus overwrites records, no duplication.
	newTestBuilder(store, emb, dataDir, []string{"spain"}).Run(context.Background())
	statsSecond, err := store.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, statsFirst.TotalVectorCount, statsSecond.TotalVectorCount)
}
