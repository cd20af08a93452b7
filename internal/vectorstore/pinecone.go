package vectorstore

import (
	"context"
	"log/slog"

	"github.com/pinecone-io/go-pinecone/v4/pinecone"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/rag"
)

// PineconeStore maps namespaces onto Pinecone namespaces one to one.
// A fresh IndexConnection is opened per call; the underlying gRPC
// channel is shared by the client.
type PineconeStore struct {
	client *pinecone.Client
	host   string
	dim    int
	log    *slog.Logger
}

func NewPineconeStore(ctx context.Context, apiKey, indexName string, dim int, log *slog.Logger) (*PineconeStore, error) {
	if apiKey == "" {
		return nil, rag.ConfigErrorf("pinecone API key not provided")
	}
	if indexName == "" {
		return nil, rag.ConfigErrorf("pinecone index name not provided")
	}

	pc, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: apiKey})
	if err != nil {
		return nil, rag.ConfigErrorf("create pinecone client: %v", err)
	}

	idx, err := pc.DescribeIndex(ctx, indexName)
	if err != nil {
		return nil, rag.ConfigErrorf("describe index %q: %v", indexName, err)
	}

	return &PineconeStore{
		client: pc,
		host:   idx.Host,
		dim:    dim,
		log:    log.With("component", "pinecone"),
	}, nil
}

func (s *PineconeStore) conn(namespace string) (*pinecone.IndexConnection, error) {
	return s.client.Index(pinecone.NewIndexConnParams{Host: s.host, Namespace: namespace})
}

func (s *PineconeStore) Search(ctx context.Context, vector []float32, namespace string, topK int, filter map[string]any) ([]rag.Match, error) {
	if topK < 1 {
		return nil, &rag.ValidationError{Msg: "top_k must be >= 1"}
	}
	if len(vector) != s.dim {
		return nil, &rag.DimensionMismatchError{Want: s.dim, Got: len(vector)}
	}

	conn, err := s.conn(namespace)
	if err != nil {
		return nil, &rag.ProviderError{Provider: "pinecone", Op: "search", Err: err}
	}

	req := &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeMetadata: true,
	}
	if len(filter) > 0 {
		md, err := structpb.NewStruct(filter)
		if err != nil {
			return nil, &rag.ProviderError{Provider: "pinecone", Op: "search", Err: err}
		}
		req.MetadataFilter = (*pinecone.MetadataFilter)(md)
	}

	res, err := conn.QueryByVectorValues(ctx, req)
	if err != nil {
		return nil, &rag.ProviderError{Provider: "pinecone", Op: "search", Err: err}
	}

	matches := make([]rag.Match, 0, len(res.Matches))
	for _, m := range res.Matches {
		match := rag.Match{ID: m.Vector.Id, Score: m.Score}
		if m.Vector.Metadata != nil {
			match.Metadata = (*structpb.Struct)(m.Vector.Metadata).AsMap()
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func (s *PineconeStore) Upsert(ctx context.Context, records []rag.VectorRecord, namespace string) (*rag.UpsertResult, error) {
	for _, r := range records {
		if len(r.Values) != s.dim {
			return nil, &rag.DimensionMismatchError{Want: s.dim, Got: len(r.Values)}
		}
	}

	conn, err := s.conn(namespace)
	if err != nil {
		return nil, &rag.ProviderError{Provider: "pinecone", Op: "upsert", Err: err}
	}

	vectors := make([]*pinecone.Vector, 0, len(records))
	for _, r := range records {
		md, err := structpb.NewStruct(r.Metadata)
		if err != nil {
			return nil, &rag.ProviderError{Provider: "pinecone", Op: "upsert", Err: err}
		}
		values := r.Values
		vectors = append(vectors, &pinecone.Vector{
			Id:       r.ID,
			Values:   &values,
			Metadata: (*pinecone.Metadata)(md),
		})
	}

	count, err := conn.UpsertVectors(ctx, vectors)
	if err != nil {
		return nil, &rag.ProviderError{Provider: "pinecone", Op: "upsert", Err: err}
	}

	return &rag.UpsertResult{UpsertedCount: int(count), Namespace: namespace}, nil
}

func (s *PineconeStore) DeleteNamespace(ctx context.Context, namespace string) bool {
	conn, err := s.conn(namespace)
	if err == nil {
		err = conn.DeleteAllVectorsInNamespace(ctx)
	}
	if err != nil {
		s.log.Error("delete namespace failed", "namespace", namespace, "error", err)
		return false
	}
	return true
}

func (s *PineconeStore) Stats(ctx context.Context) (*rag.IndexStats, error) {
	conn, err := s.conn("")
	if err != nil {
		return nil, &rag.ProviderError{Provider: "pinecone", Op: "stats", Err: err}
	}

	res, err := conn.DescribeIndexStats(ctx)
	if err != nil {
		return nil, &rag.ProviderError{Provider: "pinecone", Op: "stats", Err: err}
	}

	stats := &rag.IndexStats{
		TotalVectorCount: int(res.TotalVectorCount),
		Namespaces:       make(map[string]rag.NamespaceStats, len(res.Namespaces)),
	}
	for ns, summary := range res.Namespaces {
		stats.Namespaces[ns] = rag.NamespaceStats{VectorCount: int(summary.VectorCount)}
	}
	return stats, nil
}

var _ rag.VectorStore = (*PineconeStore)(nil)
