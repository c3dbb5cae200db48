package domain

import "context"

// Llm abstracts any chat/LLM provider.
type Llm interface {
	// Generate takes a user prompt and returns the model's reply.
	// Every call is a single turn, no history is sent with it.
	Generate(ctx context.Context, prompt string) (string, error)
}

type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	UserRole      Role = "user"
	AssistantRole Role = "assistant"
)
