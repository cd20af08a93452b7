package llm

import (
	"fmt"
	"strings"

	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/rag"
)

// buildContextBlock concatenates retrieved chunks as enumerated,
// labeled documents, the shape both generative backends prompt with.
func buildContextBlock(chunks []string) string {
	var b strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(fmt.Sprintf("[Document %d]\n%s", i+1, chunk))
	}
	return b.String()
}

// buildGroundedPrompt is the user-turn prompt for context-grounded
// generation.
func buildGroundedPrompt(question string, chunks []string) string {
	return fmt.Sprintf(`Context information:

%s

Question: %s

Answer based on the context provided above. If the information is not in the context, clearly state that.`,
		buildContextBlock(chunks), strings.TrimSpace(question))
}

// ensureText rejects blank model output so callers never hand an empty
// answer back as a success.
func ensureText(provider, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &rag.ProviderError{Provider: provider, Op: "generate", Err: fmt.Errorf("model returned empty text")}
	}
	return s, nil
}

func systemPromptOrDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return rag.DefaultSystemPrompt
	}
	return s
}

func normalizeWhitespace(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			if !space {
				b.WriteRune(' ')
				space = true
			}
		} else {
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}
