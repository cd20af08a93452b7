package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/rag"
)

func TestBuildContextBlockEnumeratesDocuments(t *testing.T) {
	block := buildContextBlock([]string{"first chunk", "second chunk"})

	assert.Contains(t, block, "[Document 1]\nfirst chunk")
	assert.Contains(t, block, "[Document 2]\nsecond chunk")
}

func TestBuildGroundedPromptContainsQuestionAndContext(t *testing.T) {
	prompt := buildGroundedPrompt("  What is the notice period?  ", []string{"Notice is 15 days."})

	assert.Contains(t, prompt, "Question: What is the notice period?")
	assert.Contains(t, prompt, "[Document 1]\nNotice is 15 days.")
	assert.Contains(t, prompt, "Answer based on the context provided above.")
}

func TestSystemPromptOrDefault(t *testing.T) {
	assert.Equal(t, rag.DefaultSystemPrompt, systemPromptOrDefault(""))
	assert.Equal(t, rag.DefaultSystemPrompt, systemPromptOrDefault("   "))
	assert.Equal(t, "custom", systemPromptOrDefault("custom"))
}

func TestEnsureTextRejectsBlankOutput(t *testing.T) {
	for _, blank := range []string{"", "   ", "\n\t"} {
		_, err := ensureText("gemini", blank)
		require.Error(t, err)

		var perr *rag.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "gemini", perr.Provider)
		assert.Contains(t, err.Error(), "empty text")
	}

	got, err := ensureText("bedrock", "  a real answer  ")
	require.NoError(t, err)
	assert.Equal(t, "a real answer", got)
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", normalizeWhitespace("  a\n\nb\t c \r\n"))
	assert.Equal(t, "", normalizeWhitespace("   "))
}

func TestAnthropicRequestShape(t *testing.T) {
	req := anthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        2048,
		Temperature:      0.3,
		System:           "sys",
		Messages:         []anthropicMessage{{Role: "user", Content: "hello"}},
	}

	raw, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "bedrock-2023-05-31", decoded["anthropic_version"])
	assert.Equal(t, float64(2048), decoded["max_tokens"])
	assert.Equal(t, "sys", decoded["system"])
	assert.NotContains(t, decoded, "stop_sequences")

	msgs := decoded["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
}

func TestTitanEmbedRequestShape(t *testing.T) {
	raw, err := json.Marshal(titanEmbedRequest{InputText: "probe", Dimensions: 1024, Normalize: true})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "probe", decoded["inputText"])
	assert.Equal(t, float64(1024), decoded["dimensions"])
	assert.Equal(t, true, decoded["normalize"])

	// v1-style request omits the optional fields entirely.
	raw, err = json.Marshal(titanEmbedRequest{InputText: "probe"})
	require.NoError(t, err)
	decoded = map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.NotContains(t, decoded, "dimensions")
	assert.NotContains(t, decoded, "normalize")
}
