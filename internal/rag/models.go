package rag

// Page of text extracted from a source document.
type Page struct {
	Number int
	Text   string
}

// Document is a raw source file before chunking. Never persisted.
type Document struct {
	SourceFile string
	Pages      []Page
}

// Chunk is a bounded text span cut from a document page. Immutable
// after creation; the atomic unit of embedding and retrieval.
type Chunk struct {
	Text       string
	Country    string
	SourceFile string
	Page       int
}

// Metadata returns the chunk's persisted metadata map, the shape every
// store backend writes alongside the vector.
func (c Chunk) Metadata() map[string]any {
	return map[string]any{
		"text":        c.Text,
		"country":     c.Country,
		"source_file": c.SourceFile,
		"page":        c.Page,
	}
}

// VectorRecord is the persisted unit inside a namespace. Re-upserting
// an ID overwrites the previous record.
type VectorRecord struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata"`
}

// Match is a single similarity search hit. Metadata is kept as a map so
// backends with loose schemas round-trip without loss; readers must
// tolerate absent keys (see SourceFromMatch).
type Match struct {
	ID       string         `json:"id"`
	Score    float32        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

// UpsertResult reports a namespace-scoped upsert.
type UpsertResult struct {
	UpsertedCount int    `json:"upserted_count"`
	Namespace     string `json:"namespace"`
}

// NamespaceStats is the per-namespace slice of index statistics.
type NamespaceStats struct {
	VectorCount int `json:"vector_count"`
}

// IndexStats is a store-wide count snapshot. Eventually consistent:
// counts may lag recent upserts.
type IndexStats struct {
	TotalVectorCount int                       `json:"total_vector_count"`
	Namespaces       map[string]NamespaceStats `json:"namespaces"`
}

// PageNotAvailable is the sentinel used when a match carries no page
// metadata.
const PageNotAvailable = "N/A"

// Source points at the document fragment a retrieved chunk came from.
// Page is the numeric page when known, PageNotAvailable otherwise.
type Source struct {
	File  string  `json:"file"`
	Score float32 `json:"score"`
	Page  any     `json:"page"`
}

// SourceFromMatch maps a search hit to its citation. Missing metadata
// keys degrade to empty/sentinel values instead of failing the query.
func SourceFromMatch(m Match) Source {
	s := Source{Score: m.Score, Page: PageNotAvailable}
	if f, ok := m.Metadata["source_file"].(string); ok {
		s.File = f
	}
	if p, ok := m.Metadata["page"]; ok && p != nil {
		s.Page = p
	}
	return s
}

// QueryRequest is a single question scoped to a country.
type QueryRequest struct {
	Country  string `json:"country"`
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

// QueryResult is the pipeline's terminal output: either a grounded
// answer or a structured error. Provider failures never escape the
// pipeline as Go errors; they are carried here so a single failing
// query cannot take the serving process down.
type QueryResult struct {
	Answer             string   `json:"answer,omitempty"`
	Country            string   `json:"country,omitempty"`
	Sources            []Source `json:"sources"`
	ChunksUsed         int      `json:"chunks_used,omitempty"`
	Model              string   `json:"model,omitempty"`
	Error              string   `json:"error,omitempty"`
	SupportedCountries []string `json:"supported_countries,omitempty"`

	clientError bool
}

// Failed reports whether the result carries an error payload.
func (r *QueryResult) Failed() bool { return r.Error != "" }

// ClientError reports whether the failure was caused by the request
// itself (unsupported country) rather than a provider or internal
// fault.
func (r *QueryResult) ClientError() bool { return r.clientError }

// StatsResult is the stats action output, or an error shape when the
// store could not be reached.
type StatsResult struct {
	TotalVectors int                       `json:"total_vectors,omitempty"`
	Namespaces   map[string]NamespaceStats `json:"namespaces,omitempty"`
	Countries    []string                  `json:"countries,omitempty"`
	Error        string                    `json:"error,omitempty"`
}

// Generation is the outcome of one context-grounded model call.
type Generation struct {
	Answer      string `json:"answer"`
	ContextUsed int    `json:"context_used"`
	Model       string `json:"model"`
}
