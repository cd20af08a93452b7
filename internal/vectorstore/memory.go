// Package vectorstore provides the namespace-partitioned vector store
// backends: Pinecone, pgvector, and an in-process store for tests and
// local runs.
package vectorstore

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/rag"
)

// MemoryStore is an exact-scan in-process store. The configured
// dimension is authoritative: every write and query is checked against
// it. Guarded by a mutex because the HTTP server shares one instance
// across requests.
type MemoryStore struct {
	mu         sync.RWMutex
	dim        int
	namespaces map[string]map[string]rag.VectorRecord
	log        *slog.Logger
}

func NewMemoryStore(dim int, log *slog.Logger) *MemoryStore {
	return &MemoryStore{
		dim:        dim,
		namespaces: make(map[string]map[string]rag.VectorRecord),
		log:        log.With("component", "memorystore"),
	}
}

func (s *MemoryStore) Search(ctx context.Context, vector []float32, namespace string, topK int, filter map[string]any) ([]rag.Match, error) {
	if topK < 1 {
		return nil, &rag.ValidationError{Msg: "top_k must be >= 1"}
	}
	if len(vector) != s.dim {
		return nil, &rag.DimensionMismatchError{Want: s.dim, Got: len(vector)}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]rag.Match, 0)
	for _, rec := range s.namespaces[namespace] {
		if !metadataMatches(rec.Metadata, filter) {
			continue
		}
		matches = append(matches, rag.Match{
			ID:       rec.ID,
			Score:    cosineSimilarity(vector, rec.Values),
			Metadata: cloneMetadata(rec.Metadata),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, records []rag.VectorRecord, namespace string) (*rag.UpsertResult, error) {
	for _, r := range records {
		if len(r.Values) != s.dim {
			return nil, &rag.DimensionMismatchError{Want: s.dim, Got: len(r.Values)}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ns := s.namespaces[namespace]
	if ns == nil {
		ns = make(map[string]rag.VectorRecord)
		s.namespaces[namespace] = ns
	}
	for _, r := range records {
		values := make([]float32, len(r.Values))
		copy(values, r.Values)
		ns[r.ID] = rag.VectorRecord{ID: r.ID, Values: values, Metadata: cloneMetadata(r.Metadata)}
	}

	return &rag.UpsertResult{UpsertedCount: len(records), Namespace: namespace}, nil
}

func (s *MemoryStore) DeleteNamespace(ctx context.Context, namespace string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.namespaces, namespace)
	return true
}

func (s *MemoryStore) Stats(ctx context.Context) (*rag.IndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &rag.IndexStats{Namespaces: make(map[string]rag.NamespaceStats)}
	for ns, records := range s.namespaces {
		if len(records) == 0 {
			continue
		}
		stats.Namespaces[ns] = rag.NamespaceStats{VectorCount: len(records)}
		stats.TotalVectorCount += len(records)
	}
	return stats, nil
}

func metadataMatches(metadata, filter map[string]any) bool {
	for k, want := range filter {
		if metadata[k] != want {
			return false
		}
	}
	return true
}

func cloneMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

var _ rag.VectorStore = (*MemoryStore)(nil)
