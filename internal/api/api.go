package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"portfolioinsight/internal/metrics"
	"portfolioinsight/pkg/advisor"
	"portfolioinsight/pkg/insight"
)

// Service is the insight backend served over HTTP. *advisor.Core implements it.
type Service interface {
	GenerateInsight(ctx context.Context, req advisor.InsightRequest) (*insight.InvestmentInsight, error)
	ParseInsight(raw string, holdings []string) insight.InvestmentInsight
	MarketNews(ctx context.Context, limit int) ([]advisor.Headline, error)
	PortfolioNews(ctx context.Context, portfolioID string, holdings []string) []advisor.Headline
	Logger() *slog.Logger
}

var _ Service = (*advisor.Core)(nil)

// NewRouter builds the HTTP API router.
func NewRouter(svc Service) http.Handler {
	var logger *slog.Logger
	if svc != nil {
		logger = svc.Logger()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLoggingMiddleware(logger))
	r.Use(recoveryLoggingMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: false,
	}))

	h := &handler{svc: svc}

	r.Get("/health", h.health)
	r.Handle("/metrics", metrics.Handler())

	// News
	r.Get("/market-news", h.marketNews)
	r.Post("/portfolio-news", h.portfolioNews)

	// Insights
	r.Post("/generate-insight", h.generateInsight)
	r.Post("/parse-insight", h.parseInsight)

	return r
}

type handler struct {
	svc Service
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
