package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	wl "github.com/abadojack/whatlanggo"
)

// DefaultSystemPrompt is the grounding instruction used whenever a
// caller does not supply its own system prompt.
const DefaultSystemPrompt = "You are a helpful assistant that answers questions about employment " +
	"regulations and hiring policies. Use ONLY the provided context to " +
	"answer questions. If the context doesn't contain the answer, say so."

// answerTemperature keeps generation low-variance and grounded.
const answerTemperature = 0.3

// Pipeline orchestrates retrieval and generation for one deployment:
// one store, one embedder, one generative model, one fixed country
// set. Construct it once per process and reuse it; the provider
// clients are immutable after construction.
type Pipeline struct {
	store      VectorStore
	embeddings EmbeddingsClient
	llm        LLMClient
	countries  []string
	topK       int
	log        *slog.Logger
}

func NewPipeline(store VectorStore, embeddings EmbeddingsClient, llm LLMClient, countries []string, defaultTopK int, log *slog.Logger) *Pipeline {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	lowered := make([]string, len(countries))
	for i, c := range countries {
		lowered[i] = strings.ToLower(strings.TrimSpace(c))
	}
	return &Pipeline{
		store:      store,
		embeddings: embeddings,
		llm:        llm,
		countries:  lowered,
		topK:       defaultTopK,
		log:        log.With("component", "pipeline"),
	}
}

// ListCountries returns the supported country set.
func (p *Pipeline) ListCountries() []string {
	out := make([]string, len(p.countries))
	copy(out, p.countries)
	return out
}

// Query answers a question from one country's corpus. It never
// returns a Go error: validation failures and provider faults are
// folded into the result so a single bad query cannot crash the
// caller.
func (p *Pipeline) Query(ctx context.Context, req QueryRequest) *QueryResult {
	country := strings.ToLower(strings.TrimSpace(req.Country))
	if !p.supported(country) {
		return &QueryResult{
			Error:              fmt.Sprintf("Invalid country. Supported: %s", strings.Join(p.countries, ", ")),
			SupportedCountries: p.ListCountries(),
			Sources:            []Source{},
			clientError:        true,
		}
	}

	topK := req.TopK
	if topK <= 0 {
		topK = p.topK
	}

	vector, err := p.embeddings.EmbedQuery(ctx, req.Question)
	if err != nil {
		return p.queryError(country, "embed query", err)
	}

	matches, err := p.store.Search(ctx, vector, country, topK, nil)
	if err != nil {
		return p.queryError(country, "search", err)
	}

	if len(matches) == 0 {
		// Cost guard: nothing retrieved, skip the generative call.
		return &QueryResult{
			Answer:  fmt.Sprintf("No relevant information found in %s knowledge base.", titleCase(country)),
			Country: country,
			Sources: []Source{},
		}
	}

	chunks := make([]string, 0, len(matches))
	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		text, _ := m.Metadata["text"].(string)
		chunks = append(chunks, text)
		sources = append(sources, SourceFromMatch(m))
	}

	gen, err := p.llm.GenerateWithContext(ctx, req.Question, chunks, p.systemPrompt(req.Question), answerTemperature)
	if err != nil {
		return p.queryError(country, "generate", err)
	}

	return &QueryResult{
		Answer:     gen.Answer,
		Country:    country,
		Sources:    sources,
		ChunksUsed: gen.ContextUsed,
		Model:      gen.Model,
	}
}

// IndexStats reports store-wide counts alongside the configured
// country set. Store failures come back as an error shape, not a Go
// error.
func (p *Pipeline) IndexStats(ctx context.Context) *StatsResult {
	stats, err := p.store.Stats(ctx)
	if err != nil {
		p.log.Error("stats fetch failed", "error", err)
		return &StatsResult{Error: fmt.Sprintf("Error fetching stats: %v", err)}
	}
	return &StatsResult{
		TotalVectors: stats.TotalVectorCount,
		Namespaces:   stats.Namespaces,
		Countries:    p.ListCountries(),
	}
}

func (p *Pipeline) queryError(country, op string, err error) *QueryResult {
	p.log.Error("query failed", "country", country, "op", op, "error", err)
	return &QueryResult{
		Error:   fmt.Sprintf("Error processing query: %v", err),
		Country: country,
		Sources: []Source{},
	}
}

func (p *Pipeline) supported(country string) bool {
	for _, c := range p.countries {
		if c == country {
			return true
		}
	}
	return false
}

// systemPrompt extends the default grounding instruction with an
// answer-language hint when the question is asked in one of the
// corpus languages.
func (p *Pipeline) systemPrompt(question string) string {
	lang := answerLanguage(question)
	if lang == "" {
		return ""
	}
	return DefaultSystemPrompt + " Respond in " + lang + "."
}

func answerLanguage(question string) string {
	info := wl.Detect(question)
	switch wl.LangToString(info.Lang) {
	case "spa":
		return "Spanish"
	case "ita":
		return "Italian"
	case "pol":
		return "Polish"
	case "kat":
		return "Georgian"
	default:
		return ""
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
