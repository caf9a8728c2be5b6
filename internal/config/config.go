package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables understood by Load.
const (
	EnvConfigPath    = "PORTFOLIO_INSIGHT_CONFIG"
	EnvDataDir       = "PORTFOLIO_INSIGHT_DATA_DIR"
	EnvHost          = "PORTFOLIO_INSIGHT_HOST"
	EnvPort          = "PORTFOLIO_INSIGHT_PORT"
	EnvTimeZone      = "PORTFOLIO_INSIGHT_TIMEZONE"
	EnvLLMProvider   = "PORTFOLIO_INSIGHT_LLM_PROVIDER"
	EnvLLMAPIKey     = "PORTFOLIO_INSIGHT_LLM_API_KEY"
	EnvLLMBaseURL    = "PORTFOLIO_INSIGHT_LLM_BASE_URL"
	EnvLLMModel      = "PORTFOLIO_INSIGHT_LLM_MODEL"
	EnvLLMTimeout    = "PORTFOLIO_INSIGHT_LLM_TIMEOUT_SECONDS"
	EnvNewsCache     = "PORTFOLIO_INSIGHT_NEWS_CACHE"
	EnvNewsCacheTTL  = "PORTFOLIO_INSIGHT_NEWS_CACHE_TTL_MINUTES"
	EnvNewsRate      = "PORTFOLIO_INSIGHT_NEWS_RATE_PER_MINUTE"
	EnvRedisURL      = "PORTFOLIO_INSIGHT_REDIS_URL"
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvAnthropicKey  = "ANTHROPIC_API_KEY"
	EnvGeminiKey     = "GEMINI_API_KEY"
	EnvFinnhubKey    = "FINNHUB_API_KEY"
	EnvLegacyRedis   = "REDIS_URL"
	defaultHost      = "127.0.0.1"
	defaultPort      = 8000
	newsCacheDBName  = "news_cache.db"
	settingsBaseName = "settings"
)

// News cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheSQLite = "sqlite"
)

// LLMSettings selects the language model provider. Temperature stays nil
// when unset so that an explicit 0 is kept.
type LLMSettings struct {
	Provider       string   `json:"provider" yaml:"provider"`
	APIKey         string   `json:"api_key" yaml:"api_key"`
	BaseURL        string   `json:"base_url" yaml:"base_url"`
	Model          string   `json:"model" yaml:"model"`
	Temperature    *float64 `json:"temperature" yaml:"temperature"`
	MaxTokens      int      `json:"max_tokens" yaml:"max_tokens"`
	TimeoutSeconds int      `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// NewsSettings configures the news source and its cache.
type NewsSettings struct {
	FinnhubAPIKey   string `json:"finnhub_api_key" yaml:"finnhub_api_key"`
	FinnhubBaseURL  string `json:"finnhub_base_url" yaml:"finnhub_base_url"`
	CacheBackend    string `json:"cache_backend" yaml:"cache_backend"`
	CacheTTLMinutes int    `json:"cache_ttl_minutes" yaml:"cache_ttl_minutes"`
	RedisURL        string `json:"redis_url" yaml:"redis_url"`
	RatePerMinute   int    `json:"rate_per_minute" yaml:"rate_per_minute"`
	Burst           int    `json:"burst" yaml:"burst"`
}

// Settings is the resolved runtime configuration of the service.
type Settings struct {
	Host     string       `json:"host" yaml:"host"`
	Port     int          `json:"port" yaml:"port"`
	DataDir  string       `json:"data_dir" yaml:"data_dir"`
	TimeZone string       `json:"timezone" yaml:"timezone"`
	LLM      LLMSettings  `json:"llm" yaml:"llm"`
	News     NewsSettings `json:"news" yaml:"news"`

	// Source is the settings file that was read, if any.
	Source string `json:"-" yaml:"-"`
}

var runtimeDataDir string
var runtimePort = defaultPort

func IsMacOS() bool {
	return runtime.GOOS == "darwin"
}

func IsWindows() bool {
	return runtime.GOOS == "windows"
}

func SetRuntimeDataDir(dir string) {
	runtimeDataDir = dir
}

func SetRuntimePort(port int) {
	if port > 0 {
		runtimePort = port
	}
}

func GetRuntimePort() int {
	return runtimePort
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() Settings {
	return Settings{
		Host: defaultHost,
		Port: defaultPort,
		News: NewsSettings{
			CacheBackend:    CacheMemory,
			CacheTTLMinutes: 30,
		},
	}
}

// Load resolves settings from defaults, a settings file, .env files and the
// environment, in that order. An explicit path that does not exist is an error;
// a missing default settings file is not.
func Load(path string) (Settings, error) {
	settings := Defaults()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if !explicit {
		path = discoverSettingsFile()
	}
	if path != "" {
		if err := readSettingsFile(path, &settings); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Settings{}, err
			}
		} else {
			settings.Source = path
		}
	}

	if err := loadDotEnv(); err != nil {
		return Settings{}, err
	}
	if err := applyEnv(&settings); err != nil {
		return Settings{}, err
	}
	return settings, settings.Validate()
}

// Validate reports settings that cannot be used to start the service.
func (s Settings) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port: %d", s.Port)
	}
	if t := s.LLM.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("invalid llm temperature: %v", *t)
	}
	switch s.News.CacheBackend {
	case CacheMemory, CacheSQLite:
	case CacheRedis:
		if strings.TrimSpace(s.News.RedisURL) == "" {
			return errors.New("redis news cache requires redis_url")
		}
	default:
		return fmt.Errorf("unknown news cache backend: %s", s.News.CacheBackend)
	}
	if _, err := s.Location(); err != nil {
		return err
	}
	return nil
}

// LLMTimeout returns the per-request model timeout, zero meaning the default.
func (s Settings) LLMTimeout() time.Duration {
	return time.Duration(s.LLM.TimeoutSeconds) * time.Second
}

// NewsCacheTTL returns how long fetched general news stays cached.
func (s Settings) NewsCacheTTL() time.Duration {
	return time.Duration(s.News.CacheTTLMinutes) * time.Minute
}

// Location returns the zone used for timestamps; empty means local time.
func (s Settings) Location() (*time.Location, error) {
	name := strings.TrimSpace(s.TimeZone)
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

// NewsCachePath returns the SQLite file used by the sqlite cache backend.
func NewsCachePath(dataDir string) string {
	return filepath.Join(dataDir, newsCacheDBName)
}

func discoverSettingsFile() string {
	dir, err := appConfigDir()
	if err != nil {
		return ""
	}
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		candidate := filepath.Join(dir, settingsBaseName+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func readSettingsFile(path string, settings *Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read settings %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, settings)
	default:
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return fmt.Errorf("decode settings %s: %w", path, err)
	}
	return nil
}

// loadDotEnv reads .env from the working directory. Variables already present
// in the environment are left untouched.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func applyEnv(s *Settings) error {
	setString(&s.Host, EnvHost)
	setString(&s.DataDir, EnvDataDir)
	setString(&s.TimeZone, EnvTimeZone)
	if err := setInt(&s.Port, EnvPort); err != nil {
		return err
	}

	setString(&s.LLM.Provider, EnvLLMProvider)
	setString(&s.LLM.BaseURL, EnvLLMBaseURL)
	setString(&s.LLM.Model, EnvLLMModel)
	if err := setInt(&s.LLM.TimeoutSeconds, EnvLLMTimeout); err != nil {
		return err
	}
	applyLLMKey(&s.LLM)

	setString(&s.News.FinnhubAPIKey, EnvFinnhubKey)
	setString(&s.News.CacheBackend, EnvNewsCache)
	setString(&s.News.RedisURL, EnvLegacyRedis)
	setString(&s.News.RedisURL, EnvRedisURL)
	if err := setInt(&s.News.CacheTTLMinutes, EnvNewsCacheTTL); err != nil {
		return err
	}
	if err := setInt(&s.News.RatePerMinute, EnvNewsRate); err != nil {
		return err
	}
	s.News.CacheBackend = strings.ToLower(strings.TrimSpace(s.News.CacheBackend))
	return nil
}

// applyLLMKey picks the API key matching the configured provider. Without a
// provider the model name decides, then the first vendor key found.
func applyLLMKey(llm *LLMSettings) {
	vendorKeys := []struct {
		provider string
		env      string
	}{
		{"openai", EnvOpenAIKey},
		{"anthropic", EnvAnthropicKey},
		{"gemini", EnvGeminiKey},
	}
	provider := strings.ToLower(strings.TrimSpace(llm.Provider))
	if provider == "" {
		model := strings.ToLower(strings.TrimSpace(llm.Model))
		switch {
		case strings.HasPrefix(model, "claude"):
			provider = "anthropic"
		case strings.HasPrefix(model, "gemini"):
			provider = "gemini"
		}
	}
	for _, vk := range vendorKeys {
		key := strings.TrimSpace(os.Getenv(vk.env))
		if key == "" || (provider != "" && provider != vk.provider) {
			continue
		}
		llm.APIKey = key
		llm.Provider = vk.provider
		break
	}
	setString(&llm.APIKey, EnvLLMAPIKey)
}

func setString(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) error {
	raw := strings.TrimSpace(os.Getenv(env))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", env, err)
	}
	*dst = v
	return nil
}

func userHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return home, nil
}

func appConfigDir() (string, error) {
	if IsMacOS() {
		home, err := userHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "PortfolioInsight"), nil
	}
	if IsWindows() {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := userHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "PortfolioInsight"), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := userHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "portfolioinsight"), nil
	}
	return filepath.Join(configDir, "portfolioinsight"), nil
}

// GetDataDir resolves the data directory: runtime override, environment, then
// the per-user application directory. The directory is created if missing.
func GetDataDir() (string, error) {
	if runtimeDataDir != "" {
		if err := os.MkdirAll(runtimeDataDir, 0o755); err != nil {
			return "", err
		}
		return runtimeDataDir, nil
	}
	if envDir := os.Getenv(EnvDataDir); envDir != "" {
		if err := os.MkdirAll(envDir, 0o755); err != nil {
			return "", err
		}
		return envDir, nil
	}
	defaultDir, err := appConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(defaultDir, 0o755); err != nil {
		return "", err
	}
	return defaultDir, nil
}
