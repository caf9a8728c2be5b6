package advisor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"

	defaultAIBaseURL     = "https://api.openai.com/v1"
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	defaultOpenAIModel    = "gpt-4"
	defaultGeminiModel    = "gemini-2.5-flash"
	defaultLLMTemperature = 0.3
	defaultLLMMaxTokens   = 4000
	defaultLLMTimeout     = 2 * time.Minute
)

// LLMConfig selects and configures the language model provider.
type LLMConfig struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float64 // nil selects the default
	MaxTokens   int
	Timeout     time.Duration
}

// CompletionRequest is a single system+user prompt exchange.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
}

// CompletionResult carries the model's text answer.
type CompletionResult struct {
	Model   string
	Content string
}

// Completer sends one prompt to a language model and returns its text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
	Provider() string
}

// NewCompleter builds the provider named by cfg.Provider, or detects one from
// the model name and base URL when no provider is set.
func NewCompleter(cfg LLMConfig) (Completer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrCompleterNotConfigured
	}
	switch detectProvider(cfg) {
	case ProviderGemini:
		return newGeminiCompleter(cfg), nil
	case ProviderAnthropic:
		return newAnthropicCompleter(cfg), nil
	case ProviderOpenAI:
		return newOpenAICompleter(cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

func detectProvider(cfg LLMConfig) string {
	if provider := strings.ToLower(strings.TrimSpace(cfg.Provider)); provider != "" {
		return provider
	}
	if isGeminiRequest(cfg.BaseURL, cfg.Model) {
		return ProviderGemini
	}
	if isAnthropicRequest(cfg.BaseURL, cfg.Model) {
		return ProviderAnthropic
	}
	return ProviderOpenAI
}

func isAnthropicRequest(endpointURL, model string) bool {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "claude") {
		return true
	}
	return strings.Contains(strings.ToLower(endpointURL), "anthropic.com")
}

func isGeminiRequest(endpointURL, model string) bool {
	modelLower := strings.ToLower(strings.TrimSpace(model))
	if strings.HasPrefix(modelLower, "gemini") {
		return true
	}

	endpointLower := strings.ToLower(strings.TrimSpace(endpointURL))
	if endpointLower == "" {
		return false
	}
	if strings.Contains(endpointLower, "generativelanguage.googleapis.com") {
		return true
	}
	if strings.Contains(endpointLower, "/gemini") {
		return true
	}
	return false
}

type openAICompleter struct {
	client openai.Client
	model  string
}

func newOpenAICompleter(cfg LLMConfig) (*openAICompleter, error) {
	baseURL, err := normalizeAIClientBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	client := openai.NewClient(
		openaioption.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		openaioption.WithBaseURL(baseURL),
		openaioption.WithMaxRetries(0),
	)
	return &openAICompleter{client: client, model: model}, nil
}

func (c *openAICompleter) Provider() string {
	return ProviderOpenAI
}

func (c *openAICompleter) Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
	})
	if err != nil {
		return CompletionResult{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return CompletionResult{}, ErrEmptyCompletion
	}
	model := strings.TrimSpace(resp.Model)
	if model == "" {
		model = c.model
	}
	return CompletionResult{Model: model, Content: resp.Choices[0].Message.Content}, nil
}

// normalizeAIClientBaseURL turns a configured endpoint into the SDK base URL,
// accepting bare hosts and full chat/responses endpoint URLs.
func normalizeAIClientBaseURL(baseURL string) (string, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultAIBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	trimmed = strings.TrimRight(trimmed, "/")
	lower := strings.ToLower(trimmed)

	switch {
	case strings.HasSuffix(lower, "/chat/completions"):
		trimmed = trimmed[:len(trimmed)-len("/chat/completions")]
	case strings.HasSuffix(lower, "/responses"):
		trimmed = trimmed[:len(trimmed)-len("/responses")]
	case !strings.HasSuffix(lower, "/v1"):
		trimmed += "/v1"
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("invalid base_url scheme: %s", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", errors.New("invalid base_url host")
	}
	return trimmed, nil
}
