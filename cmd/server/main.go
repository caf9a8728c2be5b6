package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"portfolioinsight/internal/api"
	"portfolioinsight/internal/config"
	"portfolioinsight/internal/logging"
	"portfolioinsight/pkg/advisor"
)

const envParentWatch = "PORTFOLIO_INSIGHT_PARENT_WATCH"

var getppid = os.Getppid
var sleep = time.Sleep
var exit = os.Exit

type cliFlags struct {
	dataDir    string
	port       int
	host       string
	configPath string
	set        map[string]bool
}

func main() {
	flags := parseFlags()

	settings, err := config.Load(flags.configPath)
	if err != nil {
		slog.Error("failed to load settings", "err", err)
		os.Exit(1)
	}
	flags.apply(&settings)

	if settings.DataDir != "" {
		config.SetRuntimeDataDir(settings.DataDir)
	}
	config.SetRuntimePort(settings.Port)

	resolvedDataDir, err := config.GetDataDir()
	if err != nil {
		slog.Error("failed to resolve data directory", "err", err)
		os.Exit(1)
	}
	logDir := filepath.Join(resolvedDataDir, "logs")
	logger, writer, err := logging.NewLogger(logging.Options{Dir: logDir, Level: slog.LevelInfo})
	if err != nil {
		slog.Error("failed to initialize logger", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("failed to close log writer", "err", err)
		}
	}()
	if settings.Source != "" {
		logger.Info("settings loaded", "path", settings.Source)
	}

	location, err := settings.Location()
	if err != nil {
		logger.Error("invalid timezone", "err", err)
		os.Exit(1)
	}

	cache, closeCache, err := openNewsCache(context.Background(), settings, resolvedDataDir, logger)
	if err != nil {
		logger.Error("failed to open news cache", "backend", settings.News.CacheBackend, "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeCache(); err != nil {
			logger.Error("failed to close news cache", "err", err)
		}
	}()

	core, err := advisor.New(advisor.Options{
		Logger: logger,
		LLM: advisor.LLMConfig{
			Provider:    settings.LLM.Provider,
			APIKey:      settings.LLM.APIKey,
			BaseURL:     settings.LLM.BaseURL,
			Model:       settings.LLM.Model,
			Temperature: settings.LLM.Temperature,
			MaxTokens:   settings.LLM.MaxTokens,
			Timeout:     settings.LLMTimeout(),
		},
		Finnhub: advisor.FinnhubOptions{
			APIKey:     settings.News.FinnhubAPIKey,
			BaseURL:    settings.News.FinnhubBaseURL,
			RatePerMin: settings.News.RatePerMinute,
			Burst:      settings.News.Burst,
		},
		NewsCache:    cache,
		NewsCacheTTL: settings.NewsCacheTTL(),
		Location:     location,
	})
	if err != nil {
		logger.Error("failed to initialize core", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := core.Close(); err != nil {
			logger.Error("failed to close core", "err", err)
		}
	}()

	if os.Getenv(envParentWatch) == "1" {
		go watchParent(logger)
	}

	addr := net.JoinHostPort(settings.Host, strconv.Itoa(settings.Port))
	handler := middleware.Compress(5)(api.NewRouter(core))

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      llmWriteTimeout(settings.LLMTimeout()),
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("server starting",
		"addr", addr,
		"llm_configured", core.LLMConfigured(),
		"news_cache", settings.News.CacheBackend,
	)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	signal.Stop(stop)

	logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.dataDir, "data-dir", "", "Directory for logs and the sqlite news cache")
	flag.IntVar(&f.port, "port", 8000, "Port to run the server on")
	flag.StringVar(&f.host, "host", "127.0.0.1", "Host to bind the server to")
	flag.StringVar(&f.configPath, "config", "", "Settings file (JSON or YAML)")
	flag.Parse()

	f.set = map[string]bool{}
	flag.Visit(func(fl *flag.Flag) {
		f.set[fl.Name] = true
	})
	return f
}

// apply overrides settings with flags given on the command line.
func (f cliFlags) apply(s *config.Settings) {
	if f.set["data-dir"] {
		s.DataDir = f.dataDir
	}
	if f.set["port"] {
		s.Port = f.port
	}
	if f.set["host"] {
		s.Host = f.host
	}
}

// openNewsCache builds the configured cache backend. The returned close
// function is always non-nil.
func openNewsCache(ctx context.Context, settings config.Settings, dataDir string, logger *slog.Logger) (advisor.NewsCache, func() error, error) {
	noop := func() error { return nil }
	switch settings.News.CacheBackend {
	case config.CacheRedis:
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		cache, closeFn, err := advisor.OpenRedisNewsCache(pingCtx, settings.News.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		return cache, closeFn, nil
	case config.CacheSQLite:
		cache, err := advisor.OpenSQLiteNewsCache(config.NewsCachePath(dataDir), logger)
		if err != nil {
			return nil, noop, err
		}
		// Core.Close releases the sqlite handle.
		return cache, noop, nil
	case config.CacheMemory, "":
		return nil, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown news cache backend: %s", settings.News.CacheBackend)
	}
}

// llmWriteTimeout leaves room for the model call on top of the news lookups.
func llmWriteTimeout(llm time.Duration) time.Duration {
	if llm <= 0 {
		llm = 2 * time.Minute
	}
	return llm + 30*time.Second
}

func watchParent(logger *slog.Logger) {
	for {
		sleep(1 * time.Second)
		if getppid() == 1 {
			logger.Info("parent process exited; shutting down")
			exit(0)
		}
	}
}
