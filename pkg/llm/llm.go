package llm

import "context"

// ChatModel is a minimal abstraction for chat-based LLMs used by the domain.
// Generation settings (model, temperature, output limit) belong to the
// concrete client; systemPrompt may be empty.
type ChatModel interface {
	Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
