package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/rag"
)

const anthropicVersion = "bedrock-2023-05-31"

// BedrockClient serves the embeddings contract with Titan and the
// generative contract with Anthropic models, both through the Bedrock
// runtime.
type BedrockClient struct {
	client         *bedrockruntime.Client
	embeddingModel string
	llmModel       string
	outputDim      int

	dim int // cached after first probe
}

func NewBedrockClient(ctx context.Context, region, embeddingModel, llmModel string, outputDim int) (*BedrockClient, error) {
	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, rag.ConfigErrorf("load AWS config: %v", err)
	}

	return &BedrockClient{
		client:         bedrockruntime.NewFromConfig(sdkConfig),
		embeddingModel: embeddingModel,
		llmModel:       llmModel,
		outputDim:      outputDim,
	}, nil
}

type titanEmbedRequest struct {
	InputText  string `json:"inputText"`
	Dimensions int    `json:"dimensions,omitempty"`
	Normalize  bool   `json:"normalize,omitempty"`
}

type titanEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (b *BedrockClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	clean := normalizeWhitespace(text)
	if clean == "" {
		return nil, &rag.ProviderError{Provider: "bedrock", Op: "embed", Err: fmt.Errorf("empty text for embedding")}
	}

	req := titanEmbedRequest{InputText: clean}
	if b.outputDim > 0 {
		req.Dimensions = b.outputDim
		req.Normalize = true
	}

	raw, err := b.invoke(ctx, b.embeddingModel, req)
	if err != nil {
		return nil, &rag.ProviderError{Provider: "bedrock", Op: "embed", Err: err}
	}

	var resp titanEmbedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &rag.ProviderError{Provider: "bedrock", Op: "embed", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(resp.Embedding) == 0 {
		return nil, &rag.ProviderError{Provider: "bedrock", Op: "embed", Err: fmt.Errorf("no embedding returned")}
	}

	out := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		out[i] = float32(v)
	}
	return out, nil
}

// EmbedDocuments embeds each text with its own call, preserving input
// order; Titan exposes no batch endpoint.
func (b *BedrockClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		vec, err := b.EmbedQuery(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

func (b *BedrockClient) Dimension(ctx context.Context) (int, error) {
	if b.dim != 0 {
		return b.dim, nil
	}
	probe, err := b.EmbedQuery(ctx, "dimension probe")
	if err != nil {
		return 0, err
	}
	b.dim = len(probe)
	return b.dim, nil
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      float32            `json:"temperature"`
	System           string             `json:"system,omitempty"`
	Messages         []anthropicMessage `json:"messages"`
	StopSequences    []string           `json:"stop_sequences,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (b *BedrockClient) Generate(ctx context.Context, prompt string, temperature float32, maxTokens int, stop []string) (string, error) {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	req := anthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxTokens,
		Temperature:      temperature,
		Messages:         []anthropicMessage{{Role: "user", Content: prompt}},
		StopSequences:    stop,
	}
	return b.complete(ctx, req)
}

func (b *BedrockClient) GenerateWithContext(ctx context.Context, question string, chunks []string, systemPrompt string, temperature float32) (*rag.Generation, error) {
	req := anthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        2048,
		Temperature:      temperature,
		System:           systemPromptOrDefault(systemPrompt),
		Messages:         []anthropicMessage{{Role: "user", Content: buildGroundedPrompt(question, chunks)}},
	}

	answer, err := b.complete(ctx, req)
	if err != nil {
		return nil, err
	}

	return &rag.Generation{
		Answer:      answer,
		ContextUsed: len(chunks),
		Model:       b.llmModel,
	}, nil
}

func (b *BedrockClient) ModelName() string { return b.llmModel }

func (b *BedrockClient) complete(ctx context.Context, req anthropicRequest) (string, error) {
	raw, err := b.invoke(ctx, b.llmModel, req)
	if err != nil {
		return "", &rag.ProviderError{Provider: "bedrock", Op: "generate", Err: err}
	}

	var resp anthropicResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", &rag.ProviderError{Provider: "bedrock", Op: "generate", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(resp.Content) == 0 {
		return "", &rag.ProviderError{Provider: "bedrock", Op: "generate", Err: fmt.Errorf("model returned no content")}
	}
	return ensureText("bedrock", resp.Content[0].Text)
}

func (b *BedrockClient) invoke(ctx context.Context, modelID string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

var _ rag.EmbeddingsClient = (*BedrockClient)(nil)
var _ rag.LLMClient = (*BedrockClient)(nil)
