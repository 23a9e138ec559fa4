// pkg/ai/llamacpp_client.go

package ai

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

type LlamaCppConfig struct {
	// ModelPath is the GGUF file the llama.cpp server was started with.
	ModelPath   string
	Endpoint    string
	ContextSize int
	MaxTokens   int
}

type llamaCpp struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// ModelAvailable reports whether path names an existing regular file.
func ModelAvailable(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

// NewLlamaCpp talks to a llama.cpp server (`llama-server -m <ModelPath> -c
// <ContextSize>`) through its OpenAI-compatible chat endpoint.
func NewLlamaCpp(cfg LlamaCppConfig) (Generator, error) {
	if !ModelAvailable(cfg.ModelPath) {
		return nil, fmt.Errorf("model file %q not found", cfg.ModelPath)
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("llm endpoint is empty")
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 512
	}
	// leave room for the prompt inside the context window
	if cfg.ContextSize > 0 && maxTokens > cfg.ContextSize/2 {
		maxTokens = cfg.ContextSize / 2
	}
	return &llamaCpp{
		client: openai.NewClient(
			option.WithBaseURL(strings.TrimRight(cfg.Endpoint, "/")+"/"),
			option.WithAPIKey("no-key"),
		),
		model:     filepath.Base(cfg.ModelPath),
		maxTokens: int64(maxTokens),
	}, nil
}

func (c *llamaCpp) Model() string { return c.model }

func (c *llamaCpp) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(c.maxTokens),
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return "", fmt.Errorf("llama.cpp completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyReply
	}
	return content, nil
}
