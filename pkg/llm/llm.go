// Package llm defines the generation capability the engine delegates agent
// nodes to, plus the OpenAI-backed implementation.
package llm

import (
	"context"
	"time"

	"github.com/flowgrid/flowgrid/pkg/models"
)

// Request is a single generation call. The engine resolves prompt templates
// before building it; adapters receive final text.
type Request struct {
	SystemPrompt string            `json:"systemPrompt,omitempty"`
	UserPrompt   string            `json:"userPrompt"`
	Model        string            `json:"model"`
	Temperature  float32           `json:"temperature,omitempty"`
	MaxTokens    int               `json:"maxTokens,omitempty"`
	Tools        []models.ToolDecl `json:"tools,omitempty"`
	Credentials  map[string]any    `json:"credentials,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Usage reports token accounting when the provider supplies it.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Response is the normalized result of a generation call. Success false with
// a nil error means the provider answered but could not fulfil the request;
// the engine degrades to an apology rather than failing the node.
type Response struct {
	Output    string    `json:"output"`
	Model     string    `json:"model"`
	Usage     *Usage    `json:"usage,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
}

// Generator is the external LLM-generation capability. Implementations must
// honor ctx cancellation; the engine's run deadline propagates through it.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}
