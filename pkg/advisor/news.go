package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
	"golang.org/x/time/rate"

	"portfolioinsight/internal/metrics"
)

const (
	defaultFinnhubBaseURL  = "https://finnhub.io/api/v1"
	defaultNewsURL         = "https://finnhub.io"
	defaultNewsRatePerMin  = 30
	defaultNewsBurst       = 5
	defaultNewsHTTPTimeout = 10 * time.Second
	companyNewsLookback    = 7 * 24 * time.Hour
	maxCompanyNewsTickers  = 3
	newsKindGeneral        = "general"
	newsKindCompany        = "company"
)

// Headline is one news record as returned to clients and cached.
type Headline struct {
	Headline     string  `json:"headline"`
	URL          string  `json:"url"`
	Summary      string  `json:"summary"`
	OriginalTime *string `json:"originalTime"`
}

// NewsItem is a raw article from the news provider.
type NewsItem struct {
	Headline string
	Summary  string
	URL      string
	Datetime int64
}

// NewsSource fetches articles from a remote news provider.
type NewsSource interface {
	GeneralNews(ctx context.Context) ([]NewsItem, error)
	CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]NewsItem, error)
}

// FinnhubOptions configures the Finnhub news source.
type FinnhubOptions struct {
	APIKey      string
	BaseURL     string
	RatePerMin  int
	Burst       int
	HTTPTimeout time.Duration
	Logger      *slog.Logger
}

type finnhubSource struct {
	api     *finnhub.DefaultApiService
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewFinnhubSource returns a NewsSource backed by the Finnhub REST API. Every
// outbound call waits on a shared token-bucket limiter.
func NewFinnhubSource(opts FinnhubOptions) NewsSource {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultFinnhubBaseURL
	}

	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", strings.TrimSpace(opts.APIKey))
	cfg.Servers = finnhub.ServerConfigurations{{URL: baseURL}}
	cfg.HTTPClient = &http.Client{Timeout: defaultDuration(opts.HTTPTimeout, defaultNewsHTTPTimeout)}

	perMin := defaultInt(opts.RatePerMin, defaultNewsRatePerMin)
	return &finnhubSource{
		api:     finnhub.NewAPIClient(cfg).DefaultApi,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), defaultInt(opts.Burst, defaultNewsBurst)),
		logger:  logger,
	}
}

func (s *finnhubSource) GeneralNews(ctx context.Context) ([]NewsItem, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for news rate limiter: %w", err)
	}
	res, resp, err := s.api.MarketNews(ctx).Category("general").Execute()
	if err = finnhubError(resp, err); err != nil {
		recordNewsRequest(newsKindGeneral, err)
		return nil, err
	}
	recordNewsRequest(newsKindGeneral, nil)

	items := make([]NewsItem, 0, len(res))
	for _, news := range res {
		items = append(items, NewsItem{
			Headline: derefString(news.Headline),
			Summary:  derefString(news.Summary),
			URL:      derefString(news.Url),
			Datetime: derefInt64(news.Datetime),
		})
	}
	return items, nil
}

func (s *finnhubSource) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]NewsItem, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for news rate limiter: %w", err)
	}
	res, resp, err := s.api.CompanyNews(ctx).
		Symbol(symbol).
		From(from.Format(newsDateLayout)).
		To(to.Format(newsDateLayout)).
		Execute()
	if err = finnhubError(resp, err); err != nil {
		recordNewsRequest(newsKindCompany, err)
		s.logger.Debug("company news request failed", "symbol", symbol, "err", err)
		return nil, err
	}
	recordNewsRequest(newsKindCompany, nil)

	items := make([]NewsItem, 0, len(res))
	for _, news := range res {
		items = append(items, NewsItem{
			Headline: derefString(news.Headline),
			Summary:  derefString(news.Summary),
			URL:      derefString(news.Url),
			Datetime: derefInt64(news.Datetime),
		})
	}
	return items, nil
}

func finnhubError(resp *http.Response, err error) error {
	if resp != nil && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		if err == nil {
			err = errors.New(http.StatusText(resp.StatusCode))
		}
		return &statusError{StatusCode: resp.StatusCode, Err: err}
	}
	return err
}

func recordNewsRequest(kind string, err error) {
	status := "ok"
	switch {
	case err == nil:
	case isRateLimitError(err):
		status = "rate_limited"
	case isTimeoutError(err):
		status = "timeout"
	default:
		status = "error"
	}
	metrics.NewsRequests.WithLabelValues(kind, status).Inc()
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
