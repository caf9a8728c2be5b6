package advisor

import (
	"context"
	"strings"

	"portfolioinsight/internal/metrics"
)

const portfolioNewsCount = 3

var defaultPortfolioHeadlines = []string{
	"Portfolio analysis shows continued market opportunities and strategic positioning.",
	"Focus on diversification and risk management for optimal portfolio performance.",
	"Current market conditions support strategic portfolio adjustments and rebalancing.",
}

// MarketNews returns up to limit general market headlines. The feed is cached
// under a single process-wide key for the configured TTL.
func (c *Core) MarketNews(ctx context.Context, limit int) ([]Headline, error) {
	if c.news == nil || limit <= 0 {
		return []Headline{}, nil
	}

	cached, ok, err := c.cache.Get(ctx, generalNewsCacheKey)
	switch {
	case err != nil:
		metrics.NewsCache.WithLabelValues("error").Inc()
		c.logger.Warn("read news cache failed", "key", generalNewsCacheKey, "err", err)
	case ok:
		metrics.NewsCache.WithLabelValues("hit").Inc()
		c.logger.Debug("using cached market news", "items", len(cached))
		return firstHeadlines(cached, limit), nil
	default:
		metrics.NewsCache.WithLabelValues("miss").Inc()
	}

	items, err := c.news.GeneralNews(ctx)
	if err != nil {
		return nil, classifyUpstreamError("market news", err)
	}

	headlines := make([]Headline, 0, len(items))
	for _, item := range items {
		if item.Headline == "" {
			continue
		}
		headlines = append(headlines, c.headlineFromItem(item, "", defaultNewsURL))
	}
	if err := c.cache.Set(ctx, generalNewsCacheKey, headlines, c.cacheTTL); err != nil {
		c.logger.Warn("write news cache failed", "key", generalNewsCacheKey, "err", err)
	}
	return firstHeadlines(headlines, limit), nil
}

// CompanyNews returns the latest headline for each of the first three tickers
// over the past week. A rate-limited or timed-out call stops the scan; partial
// results are returned and an error only when nothing was collected.
func (c *Core) CompanyNews(ctx context.Context, tickers []string) ([]Headline, error) {
	if c.news == nil {
		return []Headline{}, nil
	}
	if len(tickers) > maxCompanyNewsTickers {
		tickers = tickers[:maxCompanyNewsTickers]
	}

	to := c.now()
	from := to.Add(-companyNewsLookback)
	headlines := make([]Headline, 0, len(tickers))
	var lastErr error
	for _, raw := range tickers {
		ticker := strings.ToUpper(strings.TrimSpace(raw))
		if ticker == "" {
			continue
		}
		items, err := c.news.CompanyNews(ctx, ticker, from, to)
		if err != nil {
			lastErr = classifyUpstreamError("company news", err)
			c.logger.Warn("fetch company news failed", "ticker", ticker, "err", err)
			if IsErrorCode(lastErr, ErrCodeRateLimited) || IsErrorCode(lastErr, ErrCodeTimeout) {
				break
			}
			continue
		}
		if len(items) == 0 || items[0].Headline == "" {
			continue
		}
		headlines = append(headlines, c.headlineFromItem(items[0], ticker+": ", defaultNewsURL+"/quote/"+ticker))
	}
	if len(headlines) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return headlines, nil
}

// PortfolioNews mixes company headlines with one general headline and pads the
// result to exactly three entries. It never fails.
func (c *Core) PortfolioNews(ctx context.Context, portfolioID string, holdings []string) []Headline {
	c.logger.Info("portfolio news requested", "portfolio_id", portfolioID, "holdings", len(holdings))

	all := make([]Headline, 0, portfolioNewsCount+1)
	company, err := c.CompanyNews(ctx, holdings)
	if err != nil {
		c.logger.Warn("portfolio company news unavailable", "portfolio_id", portfolioID, "err", err)
	}
	all = append(all, company...)

	general, err := c.MarketNews(ctx, 1)
	if err != nil {
		c.logger.Warn("portfolio market news unavailable", "portfolio_id", portfolioID, "err", err)
	}
	all = append(all, general...)

	for len(all) < portfolioNewsCount {
		text := defaultPortfolioHeadlines[len(all)]
		all = append(all, Headline{Headline: text, URL: defaultNewsURL, Summary: text})
	}
	return all[:portfolioNewsCount]
}

func (c *Core) headlineFromItem(item NewsItem, prefix, fallbackURL string) Headline {
	summary := item.Summary
	if summary == "" {
		summary = item.Headline
	}
	link := item.URL
	if link == "" {
		link = fallbackURL
	}
	return Headline{
		Headline:     prefix + item.Headline,
		URL:          link,
		Summary:      summary,
		OriginalTime: c.localTimestamp(item.Datetime),
	}
}

func firstHeadlines(items []Headline, limit int) []Headline {
	if len(items) > limit {
		items = items[:limit]
	}
	return append([]Headline{}, items...)
}
