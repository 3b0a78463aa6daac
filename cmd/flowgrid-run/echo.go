package main

import (
	"context"
	"time"

	"github.com/flowgrid/flowgrid/pkg/llm"
)

// echoGenerator answers with the resolved user prompt, so workflows can be
// exercised end to end without a provider.
type echoGenerator struct{}

func (echoGenerator) Generate(_ context.Context, req llm.Request) (*llm.Response, error) {
	return &llm.Response{
		Output:    req.UserPrompt,
		Model:     "echo",
		Timestamp: time.Now().UTC(),
		Success:   true,
	}, nil
}
