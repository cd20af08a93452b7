package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/rag"
)

// GeminiClient serves both the embeddings and the generative contract
// through the Gemini API.
type GeminiClient struct {
	client         *genai.Client
	embeddingModel string
	chatModel      string
	outputDim      int

	dim int // cached after first probe
}

func NewGeminiClient(ctx context.Context, apiKey, embeddingModel, chatModel string, outputDim int) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, rag.ConfigErrorf("missing GOOGLE_API_KEY or GEMINI_API_KEY")
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, rag.ConfigErrorf("create genai client: %v", err)
	}

	return &GeminiClient{
		client:         c,
		embeddingModel: embeddingModel,
		chatModel:      chatModel,
		outputDim:      outputDim,
	}, nil
}

func (g *GeminiClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	clean := normalizeWhitespace(text)
	if clean == "" {
		return nil, &rag.ProviderError{Provider: "gemini", Op: "embed", Err: fmt.Errorf("empty text for embedding")}
	}

	cfg := &genai.EmbedContentConfig{}
	if g.outputDim > 0 {
		cfg.OutputDimensionality = genai.Ptr(int32(g.outputDim))
	}

	resp, err := g.client.Models.EmbedContent(ctx, g.embeddingModel, genai.Text(clean), cfg)
	if err != nil {
		return nil, &rag.ProviderError{Provider: "gemini", Op: "embed", Err: err}
	}
	if len(resp.Embeddings) == 0 {
		return nil, &rag.ProviderError{Provider: "gemini", Op: "embed", Err: fmt.Errorf("no embeddings returned")}
	}

	values := resp.Embeddings[0].Values
	if g.outputDim > 0 && len(values) != g.outputDim {
		return nil, &rag.ProviderError{
			Provider: "gemini",
			Op:       "embed",
			Err:      fmt.Errorf("unexpected embedding size %d (expected %d)", len(values), g.outputDim),
		}
	}

	out := make([]float32, len(values))
	copy(out, values)
	return out, nil
}

// EmbedDocuments embeds each text with its own call, preserving input
// order. One remote call per text keeps request sizes predictable
// against provider limits.
func (g *GeminiClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		vec, err := g.EmbedQuery(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

func (g *GeminiClient) Dimension(ctx context.Context) (int, error) {
	if g.dim != 0 {
		return g.dim, nil
	}
	probe, err := g.EmbedQuery(ctx, "dimension probe")
	if err != nil {
		return 0, err
	}
	g.dim = len(probe)
	return g.dim, nil
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string, temperature float32, maxTokens int, stop []string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}
	if len(stop) > 0 {
		cfg.StopSequences = stop
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.chatModel, genai.Text(prompt), cfg)
	if err != nil {
		return "", &rag.ProviderError{Provider: "gemini", Op: "generate", Err: err}
	}
	if resp == nil {
		return "", &rag.ProviderError{Provider: "gemini", Op: "generate", Err: fmt.Errorf("empty response")}
	}
	return ensureText("gemini", resp.Text())
}

func (g *GeminiClient) GenerateWithContext(ctx context.Context, question string, chunks []string, systemPrompt string, temperature float32) (*rag.Generation, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.Text(systemPromptOrDefault(systemPrompt))[0],
		Temperature:       genai.Ptr(temperature),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.chatModel, genai.Text(buildGroundedPrompt(question, chunks)), cfg)
	if err != nil {
		return nil, &rag.ProviderError{Provider: "gemini", Op: "generate", Err: err}
	}
	if resp == nil {
		return nil, &rag.ProviderError{Provider: "gemini", Op: "generate", Err: fmt.Errorf("empty response")}
	}
	answer, err := ensureText("gemini", resp.Text())
	if err != nil {
		return nil, err
	}

	return &rag.Generation{
		Answer:      answer,
		ContextUsed: len(chunks),
		Model:       g.chatModel,
	}, nil
}

func (g *GeminiClient) ModelName() string { return g.chatModel }

var _ rag.EmbeddingsClient = (*GeminiClient)(nil)
var _ rag.LLMClient = (*GeminiClient)(nil)
