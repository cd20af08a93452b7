package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/rag"
)

// DefaultBatchSize is how many chunks are upserted per store call.
const DefaultBatchSize = 100

// DefaultBatchDelay is the pause between batches, a crude but
// effective rate-limit guard against the embedding provider.
const DefaultBatchDelay = 500 * time.Millisecond

// DefaultSettleDelay is how long to wait after the last upsert before
// trusting store stats; the store's counts are eventually consistent.
const DefaultSettleDelay = 10 * time.Second

// Builder runs the offline indexing pipeline: one namespace per
// country, processed strictly sequentially. A failure in one country
// never aborts the rest of the run.
type Builder struct {
	store      rag.VectorStore
	embeddings rag.EmbeddingsClient

	dataDir      string
	countries    []string
	chunkSize    int
	chunkOverlap int
	batchSize    int
	batchDelay   time.Duration
	settleDelay  time.Duration
	rebuild      bool

	log *slog.Logger
}

// Option configures a Builder created with NewBuilder.
type Option func(*Builder)

// WithBatchSize sets the upsert batch size.
func WithBatchSize(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// WithBatchDelay sets the pause between batches.
func WithBatchDelay(d time.Duration) Option {
	return func(b *Builder) {
		if d >= 0 {
			b.batchDelay = d
		}
	}
}

// WithSettleDelay sets the wait before the final stats read.
func WithSettleDelay(d time.Duration) Option {
	return func(b *Builder) {
		if d >= 0 {
			b.settleDelay = d
		}
	}
}

// WithRebuild deletes each country's namespace before re-indexing it.
func WithRebuild(rebuild bool) Option {
	return func(b *Builder) {
		b.rebuild = rebuild
	}
}

func NewBuilder(store rag.VectorStore, embeddings rag.EmbeddingsClient, dataDir string, countries []string, chunkSize, chunkOverlap int, log *slog.Logger, opts ...Option) *Builder {
	b := &Builder{
		store:        store,
		embeddings:   embeddings,
		dataDir:      dataDir,
		countries:    countries,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		batchSize:    DefaultBatchSize,
		batchDelay:   DefaultBatchDelay,
		settleDelay:  DefaultSettleDelay,
		log:          log.With("component", "indexbuilder"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Report summarizes one indexing run.
type Report struct {
	Elapsed time.Duration
	// Indexed maps country to the number of chunks upserted. Skipped
	// countries (no documents) appear with a zero count; failed ones
	// are absent and listed in Failed.
	Indexed map[string]int
	Failed  []string
	// Missing lists expected countries whose namespace did not show up
	// in the final stats read.
	Missing []string
}

// Run processes every configured country, then verifies namespace
// coverage against store stats. Partial failures are reported, never
// fatal.
func (b *Builder) Run(ctx context.Context) *Report {
	start := time.Now()
	report := &Report{Indexed: make(map[string]int)}

	for _, country := range b.countries {
		if b.rebuild {
			if !b.store.DeleteNamespace(ctx, country) {
				b.log.Warn("could not clear namespace before rebuild", "country", country)
			}
		}

		count, err := b.processCountry(ctx, country)
		if err != nil {
			b.log.Error("country indexing failed", "country", country, "error", err)
			report.Failed = append(report.Failed, country)
			continue
		}
		report.Indexed[country] = count
	}

	b.verifyCoverage(ctx, report)

	report.Elapsed = time.Since(start)
	b.log.Info("indexing run finished",
		"elapsed", report.Elapsed.Round(time.Millisecond),
		"indexed", report.Indexed,
		"failed", report.Failed,
		"missing", report.Missing,
	)
	return report
}

func (b *Builder) processCountry(ctx context.Context, country string) (int, error) {
	dir := filepath.Join(b.dataDir, country)

	files, err := discoverDocuments(dir)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		b.log.Warn("no documents found, skipping country", "country", country, "dir", dir)
		return 0, nil
	}

	b.log.Info("processing country", "country", country, "files", len(files))

	var chunks []rag.Chunk
	for _, path := range files {
		doc, err := LoadDocument(path)
		if err != nil {
			return 0, err
		}
		n := 0
		for _, page := range doc.Pages {
			for _, text := range Split(page.Text, b.chunkSize, b.chunkOverlap) {
				chunks = append(chunks, rag.Chunk{
					Text:       text,
					Country:    country,
					SourceFile: doc.SourceFile,
					Page:       page.Number,
				})
				n++
			}
		}
		b.log.Info("document split", "file", doc.SourceFile, "chunks", n)
	}

	if err := b.upsertChunks(ctx, chunks, country); err != nil {
		return 0, err
	}

	b.log.Info("country indexed", "country", country, "chunks", len(chunks))
	return len(chunks), nil
}

// upsertChunks embeds and writes chunks in batches. Vector IDs are
// "<country>_<global offset>", unique within the namespace by
// construction and stable across re-runs over the same corpus.
func (b *Builder) upsertChunks(ctx context.Context, chunks []rag.Chunk, country string) error {
	totalBatches := (len(chunks) + b.batchSize - 1) / b.batchSize

	for i := 0; i < len(chunks); i += b.batchSize {
		end := i + b.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]
		batchNum := i/b.batchSize + 1

		texts := make([]string, len(batch))
		for j, c := range batch {
			texts[j] = c.Text
		}

		vectors, err := b.embeddings.EmbedDocuments(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch %d/%d: %w", batchNum, totalBatches, err)
		}

		records := make([]rag.VectorRecord, len(batch))
		for j, c := range batch {
			records[j] = rag.VectorRecord{
				ID:       fmt.Sprintf("%s_%d", country, i+j),
				Values:   vectors[j],
				Metadata: c.Metadata(),
			}
		}

		if _, err := b.store.Upsert(ctx, records, country); err != nil {
			return fmt.Errorf("upsert batch %d/%d: %w", batchNum, totalBatches, err)
		}

		b.log.Info("batch upserted", "country", country, "batch", batchNum, "of", totalBatches, "chunks", len(batch))

		if end < len(chunks) {
			if err := wait(ctx, b.batchDelay); err != nil {
				return err
			}
		}
	}
	return nil
}

// verifyCoverage waits out the store's settling interval, reads stats
// once, and reports countries whose namespace never appeared. Missing
// coverage is a warning, not a failure.
func (b *Builder) verifyCoverage(ctx context.Context, report *Report) {
	if err := wait(ctx, b.settleDelay); err != nil {
		b.log.Warn("coverage check aborted", "error", err)
		return
	}

	stats, err := b.store.Stats(ctx)
	if err != nil {
		b.log.Warn("could not fetch index stats", "error", err)
		return
	}

	b.log.Info("index stats", "total_vectors", stats.TotalVectorCount)
	for ns, nsStats := range stats.Namespaces {
		b.log.Info("namespace populated", "namespace", ns, "vectors", nsStats.VectorCount)
	}

	for _, country := range b.countries {
		if _, ok := stats.Namespaces[country]; !ok {
			report.Missing = append(report.Missing, country)
		}
	}
	sort.Strings(report.Missing)
	if len(report.Missing) > 0 {
		b.log.Warn("namespaces missing from index", "missing", report.Missing)
	}
}

// discoverDocuments lists supported files directly under dir, sorted
// by name. A missing directory is treated the same as an empty one.
func discoverDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsSupported(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
