package mobile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"portfolioinsight/pkg/advisor"
)

const defaultCallTimeout = 3 * time.Minute

// Core wraps the insight service for gomobile bindings. Every method takes and
// returns JSON strings.
type Core struct {
	core    *advisor.Core
	timeout time.Duration
}

type configPayload struct {
	Provider       string   `json:"provider"`
	APIKey         string   `json:"api_key"`
	BaseURL        string   `json:"base_url"`
	Model          string   `json:"model"`
	Temperature    *float64 `json:"temperature"`
	TimeoutSeconds int      `json:"timeout_seconds"`
	FinnhubAPIKey  string   `json:"finnhub_api_key"`
	CacheDBPath    string   `json:"cache_db_path"`
	TimeZone       string   `json:"timezone"`
}

type insightPayload struct {
	Holdings    []string `json:"holdings"`
	Preferences string   `json:"preferences"`
}

type portfolioNewsPayload struct {
	PortfolioID string   `json:"portfolio_id"`
	Holdings    []string `json:"holdings"`
}

// Open initializes the core from a JSON config. An empty string yields a core
// that can only re-parse stored responses. When cache_db_path is set the news
// cache is kept in SQLite at that path.
func Open(configJSON string) (*Core, error) {
	var cfg configPayload
	if strings.TrimSpace(configJSON) != "" {
		if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}

	opts := advisor.Options{
		LLM: advisor.LLMConfig{
			Provider:    cfg.Provider,
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		Finnhub: advisor.FinnhubOptions{APIKey: cfg.FinnhubAPIKey},
	}
	if cfg.TimeZone != "" {
		loc, err := time.LoadLocation(cfg.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", cfg.TimeZone, err)
		}
		opts.Location = loc
	}
	if cfg.CacheDBPath != "" {
		cache, err := advisor.OpenSQLiteNewsCache(cfg.CacheDBPath, nil)
		if err != nil {
			return nil, err
		}
		opts.NewsCache = cache
	}

	core, err := advisor.New(opts)
	if err != nil {
		if closer, ok := opts.NewsCache.(*advisor.SQLiteNewsCache); ok {
			_ = closer.Close()
		}
		return nil, err
	}
	return &Core{core: core, timeout: defaultCallTimeout}, nil
}

// Close releases resources.
func (c *Core) Close() error {
	if c == nil || c.core == nil {
		return nil
	}
	return c.core.Close()
}

// Configured reports whether insight generation has model credentials.
func (c *Core) Configured() bool {
	return c.core.LLMConfigured()
}

// GenerateInsightJSON runs a full insight generation for a
// {"holdings": [...], "preferences": "..."} request.
func (c *Core) GenerateInsightJSON(requestJSON string) (string, error) {
	var payload insightPayload
	if err := json.Unmarshal([]byte(requestJSON), &payload); err != nil {
		return "", advisor.WrapError(advisor.ErrCodeInvalidInput, "invalid request JSON", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	result, err := c.core.GenerateInsight(ctx, advisor.InsightRequest{
		Holdings:    payload.Holdings,
		Preferences: payload.Preferences,
	})
	if err != nil {
		return "", err
	}
	return marshalJSON(result)
}

// ParseInsightJSON re-parses a stored model response. holdingsJSON is a JSON
// array of tickers and may be empty.
func (c *Core) ParseInsightJSON(raw, holdingsJSON string) (string, error) {
	var holdings []string
	if strings.TrimSpace(holdingsJSON) != "" {
		if err := json.Unmarshal([]byte(holdingsJSON), &holdings); err != nil {
			return "", advisor.WrapError(advisor.ErrCodeInvalidInput, "invalid holdings JSON", err)
		}
	}
	return marshalJSON(c.core.ParseInsight(raw, holdings))
}

// MarketNewsJSON returns {"headlines": [...]} with up to limit items.
func (c *Core) MarketNewsJSON(limit int) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	headlines, err := c.core.MarketNews(ctx, limit)
	if err != nil {
		return "", err
	}
	return marshalJSON(map[string]any{"headlines": headlines})
}

// PortfolioNewsJSON returns three headlines for a
// {"portfolio_id": "...", "holdings": [...]} request.
func (c *Core) PortfolioNewsJSON(requestJSON string) (string, error) {
	var payload portfolioNewsPayload
	if err := json.Unmarshal([]byte(requestJSON), &payload); err != nil {
		return "", advisor.WrapError(advisor.ErrCodeInvalidInput, "invalid request JSON", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	headlines := c.core.PortfolioNews(ctx, payload.PortfolioID, payload.Holdings)
	return marshalJSON(map[string]any{
		"headlines":    headlines,
		"portfolio_id": payload.PortfolioID,
	})
}

func marshalJSON(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
