package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ChatCompleter is the slice of the OpenAI client the generator needs.
// Keeping it an interface lets tests inject a mock without a network round
// trip.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIGenerator implements Generator over the OpenAI chat completion API.
type OpenAIGenerator struct {
	client       ChatCompleter
	defaultModel string
}

// NewOpenAIGenerator creates a generator with its own API client.
func NewOpenAIGenerator(apiKey, defaultModel string) *OpenAIGenerator {
	return NewOpenAIGeneratorWithClient(openai.NewClient(apiKey), defaultModel)
}

// NewOpenAIGeneratorWithClient creates a generator around an existing client.
func NewOpenAIGeneratorWithClient(client ChatCompleter, defaultModel string) *OpenAIGenerator {
	if defaultModel == "" {
		defaultModel = openai.GPT4oMini
	}

	return &OpenAIGenerator{
		client:       client,
		defaultModel: defaultModel,
	}
}

// Generate maps the request onto a chat completion call. Context cancellation
// aborts the underlying HTTP request.
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = g.defaultModel
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)

	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserPrompt,
	})

	completion := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Tools:       toolDefinitions(req),
	}

	resp, err := g.client.CreateChatCompletion(ctx, completion)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	return &Response{
		Output: resp.Choices[0].Message.Content,
		Model:  resp.Model,
		Usage: &Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		Timestamp: time.Now().UTC(),
		Success:   true,
	}, nil
}

func toolDefinitions(req Request) []openai.Tool {
	if len(req.Tools) == 0 {
		return nil
	}

	tools := make([]openai.Tool, 0, len(req.Tools))
	for _, decl := range req.Tools {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        decl.Name,
				Description: decl.Description,
				Parameters:  decl.Parameters,
			},
		})
	}

	return tools
}
