package advisor

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
)

// Options controls Core initialization.
type Options struct {
	Logger *slog.Logger

	// LLM configures the built-in providers; with a Completer set only its
	// temperature, token and timeout fields apply.
	LLM       LLMConfig
	Completer Completer

	// Finnhub configures the built-in news source. Ignored when NewsSource is set.
	Finnhub      FinnhubOptions
	NewsSource   NewsSource
	NewsCache    NewsCache
	NewsCacheTTL time.Duration

	// Location and Now control createdAt stamping and news timestamps.
	Location *time.Location
	Now      func() time.Time
}

// Core generates and parses portfolio insights.
type Core struct {
	logger      *slog.Logger
	completer   Completer
	news        NewsSource
	cache       NewsCache
	cacheTTL    time.Duration
	llmTimeout  time.Duration
	temperature float64
	maxTokens   int
	location    *time.Location
	clock       func() time.Time
	validate    *validator.Validate
}

// New initializes a Core using the provided options. Missing credentials are
// not an error: generation then fails with NOT_CONFIGURED and news lookups
// return empty lists.
func New(opts Options) (*Core, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	completer := opts.Completer
	if completer == nil {
		built, err := NewCompleter(opts.LLM)
		switch {
		case errors.Is(err, ErrCompleterNotConfigured):
			logger.Warn("language model api key not set; insight generation disabled")
		case err != nil:
			return nil, err
		default:
			completer = built
		}
	}

	news := opts.NewsSource
	if news == nil {
		if opts.Finnhub.APIKey != "" {
			finnhubOpts := opts.Finnhub
			if finnhubOpts.Logger == nil {
				finnhubOpts.Logger = logger
			}
			news = NewFinnhubSource(finnhubOpts)
		} else {
			logger.Warn("FINNHUB_API_KEY not set; news lookups return empty lists")
		}
	}

	clock := opts.Now
	if clock == nil {
		clock = time.Now
	}
	cache := opts.NewsCache
	if cache == nil {
		cache = NewMemoryNewsCache(clock)
	}

	temperature := defaultLLMTemperature
	if opts.LLM.Temperature != nil {
		temperature = *opts.LLM.Temperature
	}

	return &Core{
		logger:      logger,
		completer:   completer,
		news:        news,
		cache:       cache,
		cacheTTL:    defaultDuration(opts.NewsCacheTTL, defaultNewsCacheTTL),
		llmTimeout:  defaultDuration(opts.LLM.Timeout, defaultLLMTimeout),
		temperature: temperature,
		maxTokens:   defaultInt(opts.LLM.MaxTokens, defaultLLMMaxTokens),
		location:    resolveLocation(opts.Location),
		clock:       clock,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// Close releases the news cache when it holds resources.
func (c *Core) Close() error {
	if c == nil {
		return nil
	}
	if closer, ok := c.cache.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Logger returns the logger used by the core.
func (c *Core) Logger() *slog.Logger {
	return c.logger
}

// LLMConfigured reports whether a language model is available.
func (c *Core) LLMConfigured() bool {
	return c.completer != nil
}

func defaultDuration(v time.Duration, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}

func defaultInt(v int, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
