package advisor

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"google.golang.org/genai"
)

type geminiCompleter struct {
	apiKey   string
	endpoint string
	model    string
}

func newGeminiCompleter(cfg LLMConfig) *geminiCompleter {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	return &geminiCompleter{
		apiKey:   strings.TrimSpace(cfg.APIKey),
		endpoint: strings.TrimSpace(cfg.BaseURL),
		model:    model,
	}
}

func (c *geminiCompleter) Provider() string {
	return ProviderGemini
}

func (c *geminiCompleter) Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error) {
	clientConfig, err := buildGeminiClientConfig(c.endpoint, c.apiKey)
	if err != nil {
		return CompletionResult{}, err
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("create gemini client failed: %w", err)
	}

	requestConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		},
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	response, err := client.Models.GenerateContent(ctx, c.model, genai.Text(req.UserPrompt), requestConfig)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("gemini generate content failed: %w", err)
	}
	if len(response.Candidates) == 0 {
		return CompletionResult{}, ErrEmptyCompletion
	}
	model := strings.TrimSpace(response.ModelVersion)
	if model == "" {
		model = c.model
	}
	return CompletionResult{Model: model, Content: response.Text()}, nil
}

func buildGeminiClientConfig(endpoint, apiKey string) (*genai.ClientConfig, error) {
	normalizedEndpoint := strings.TrimSpace(endpoint)
	if shouldFallbackToGeminiDefaultBaseURL(normalizedEndpoint) {
		normalizedEndpoint = defaultGeminiBaseURL
	}

	baseURL, apiVersion, err := parseGeminiBaseURLAndVersion(normalizedEndpoint)
	if err != nil {
		return nil, err
	}
	return &genai.ClientConfig{
		APIKey:  strings.TrimSpace(apiKey),
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    baseURL,
			APIVersion: apiVersion,
		},
	}, nil
}

func shouldFallbackToGeminiDefaultBaseURL(endpoint string) bool {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return true
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Hostname(), "api.openai.com")
}

// parseGeminiBaseURLAndVersion splits an endpoint such as
// https://host/proxy/v1beta into the SDK base URL and API version.
func parseGeminiBaseURLAndVersion(endpoint string) (string, string, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		trimmed = defaultGeminiBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", "", fmt.Errorf("invalid gemini endpoint: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", "", fmt.Errorf("invalid gemini endpoint scheme: %s", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", "", fmt.Errorf("invalid gemini endpoint host")
	}

	path := strings.Trim(parsed.Path, "/")
	segments := []string{}
	if path != "" {
		segments = strings.Split(path, "/")
	}

	apiVersion := "v1beta"
	prefixSegments := segments
	for idx, segment := range segments {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(segment)), "v1") {
			apiVersion = segment
			prefixSegments = segments[:idx]
			break
		}
	}

	basePath := strings.Trim(strings.Join(prefixSegments, "/"), "/")
	baseURL := fmt.Sprintf("%s://%s/", parsed.Scheme, parsed.Host)
	if basePath != "" {
		baseURL += basePath + "/"
	}
	return baseURL, apiVersion, nil
}
