package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicCompleter struct {
	client anthropic.Client
	model  anthropic.Model
}

func newAnthropicCompleter(cfg LLMConfig) *anthropicCompleter {
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		anthropicoption.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, anthropicoption.WithBaseURL(base))
	}
	model := anthropic.ModelClaudeHaiku4_5
	if name := strings.TrimSpace(cfg.Model); name != "" {
		model = anthropic.Model(name)
	}
	return &anthropicCompleter{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

func (c *anthropicCompleter) Provider() string {
	return ProviderAnthropic
}

func (c *anthropicCompleter) Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(req.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
		Temperature: anthropic.Float(req.Temperature),
	})
	if err != nil {
		return CompletionResult{}, fmt.Errorf("anthropic messages: %w", err)
	}
	if len(resp.Content) == 0 {
		return CompletionResult{}, ErrEmptyCompletion
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	model := string(resp.Model)
	if model == "" {
		model = string(c.model)
	}
	return CompletionResult{Model: model, Content: sb.String()}, nil
}
