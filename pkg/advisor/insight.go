package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"portfolioinsight/internal/metrics"
	"portfolioinsight/pkg/insight"
)

const (
	maxInsightHoldings   = 100
	insightGeneralNews   = 5
	maxPreferencesLength = 20000
)

var (
	riskAdjustmentLimit    = decimal.NewFromInt(2)
	percentAdjustmentLimit = decimal.NewFromInt(10)
)

// InsightRequest asks for a qualitative analysis of a portfolio. Preferences
// carries the caller's portfolio data and investor profile as free text.
type InsightRequest struct {
	Holdings    []string `json:"holdings" validate:"max=100,dive,required,max=32"`
	Preferences string   `json:"preferences" validate:"max=20000"`
}

// GenerateInsight gathers news, prompts the language model and parses its
// answer. Only failures of the model call are returned; news problems degrade
// to an empty news section.
func (c *Core) GenerateInsight(ctx context.Context, req InsightRequest) (*insight.InvestmentInsight, error) {
	req = normalizeInsightRequest(req)
	if err := c.validateRequest(req); err != nil {
		metrics.InsightGenerations.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if c.completer == nil {
		metrics.InsightGenerations.WithLabelValues("not_configured").Inc()
		return nil, WrapError(ErrCodeNotConfigured, "insight generation unavailable", ErrCompleterNotConfigured)
	}

	general, err := c.MarketNews(ctx, insightGeneralNews)
	if err != nil {
		c.logger.Warn("market news unavailable for insight", "err", err)
		general = nil
	}
	company, err := c.CompanyNews(ctx, req.Holdings)
	if err != nil {
		c.logger.Warn("company news unavailable for insight", "err", err)
		company = nil
	}

	prompt := BuildInsightPrompt(req.Preferences, general, company)
	c.logger.Debug("insight prompt built",
		"holdings", len(req.Holdings),
		"general_news", len(general),
		"company_news", len(company),
		"prompt_chars", len(prompt),
	)

	result, err := c.complete(ctx, prompt)
	if err != nil {
		metrics.InsightGenerations.WithLabelValues(strings.ToLower(string(CodeOf(err)))).Inc()
		return nil, err
	}

	raw := strings.TrimSpace(result.Content)
	out := insight.Build(raw, req.Holdings, c.now())
	c.logDiagnostics(raw, out)
	metrics.InsightGenerations.WithLabelValues("success").Inc()
	c.logger.Info("insight generated",
		"model", result.Model,
		"holdings", len(req.Holdings),
		"response_chars", len(raw),
		"summary", out.Summary,
	)
	return &out, nil
}

// ParseInsight re-parses a previously stored raw response without any I/O.
func (c *Core) ParseInsight(raw string, holdings []string) insight.InvestmentInsight {
	out := insight.Build(raw, holdings, c.now())
	c.logDiagnostics(raw, out)
	return out
}

func (c *Core) complete(ctx context.Context, prompt string) (CompletionResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.llmTimeout)
	defer cancel()

	provider := c.completer.Provider()
	started := time.Now()
	result, err := c.completer.Complete(callCtx, CompletionRequest{
		SystemPrompt: insightSystemPrompt,
		UserPrompt:   prompt,
		Temperature:  c.temperature,
		MaxTokens:    c.maxTokens,
	})
	elapsed := time.Since(started)
	metrics.LLMRequestDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
	if err != nil {
		classified := classifyUpstreamError("language model call", err)
		c.logger.Error("language model call failed",
			"provider", provider,
			"duration_ms", elapsed.Milliseconds(),
			"error_code", CodeOf(classified),
			"err", err,
		)
		return CompletionResult{}, classified
	}
	c.logger.Info("language model call succeeded", "provider", provider, "model", result.Model, "duration_ms", elapsed.Milliseconds())
	return result, nil
}

func (c *Core) logDiagnostics(raw string, out insight.InvestmentInsight) {
	if out.StructuredInsight == nil {
		return
	}
	d := insight.Diagnose(raw, *out.StructuredInsight)
	metrics.SectionsParsed.Observe(float64(len(d.Sections)))
	for _, kind := range d.ExtractedAdjustments {
		metrics.ScoreAdjustments.WithLabelValues(string(kind)).Inc()
	}
	c.observeAdjustments(out.StructuredInsight.ScoreAdjustments)

	for _, stat := range d.Sections {
		c.logger.Debug("section parsed", "section", stat.Key, "words", stat.Words)
	}
	for _, missing := range d.MissingSections {
		c.logger.Info("expected section missing", "section", missing.Key, "mentioned_in_raw", missing.MentionedInRaw)
	}
	if len(d.UnknownSections) > 0 {
		c.logger.Warn("non-canonical section keys ignored", "keys", d.UnknownSections)
	}
	if len(d.UnparsedAdjustments) > 0 {
		c.logger.Warn("score adjustment labels present but not parsed", "kinds", d.UnparsedAdjustments)
	}
	c.logger.Info("insight parsed",
		"sections", len(d.Sections),
		"missing_sections", len(d.MissingSections),
		"score_adjustments", len(d.ExtractedAdjustments),
		"asset_recommendations", d.AssetRecommendations,
		"main_recommendations", d.MainRecommendations,
	)
}

// observeAdjustments records each suggested delta and flags values the
// prompt never asks for: risk moves by at most 2 points, the percentage
// scores by at most 10.
func (c *Core) observeAdjustments(adjustments map[insight.AdjustmentKind]insight.ScoreAdjustment) {
	for _, kind := range insight.AdjustmentKinds() {
		adj, ok := adjustments[kind]
		if !ok {
			continue
		}
		delta, err := adj.Delta()
		if err != nil {
			c.logger.Warn("score adjustment not numeric", "kind", kind, "adjustment", adj.Adjustment, "err", err)
			continue
		}
		metrics.ScoreAdjustmentDelta.WithLabelValues(string(kind)).Observe(delta.InexactFloat64())

		limit := percentAdjustmentLimit
		if kind == insight.AdjustmentRisk {
			limit = riskAdjustmentLimit
		}
		if delta.Abs().GreaterThan(limit) {
			c.logger.Warn("score adjustment out of range", "kind", kind, "adjustment", adj.Adjustment, "limit", limit.String())
		}
	}
}

func normalizeInsightRequest(req InsightRequest) InsightRequest {
	holdings := make([]string, 0, len(req.Holdings))
	for _, h := range req.Holdings {
		holdings = append(holdings, strings.TrimSpace(h))
	}
	req.Holdings = holdings
	return req
}

func (c *Core) validateRequest(req InsightRequest) error {
	err := c.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return WrapError(ErrCodeInvalidInput, "invalid insight request", err)
	}
	return NewError(ErrCodeInvalidInput, describeFieldError(fieldErrs[0]))
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if idx := strings.IndexByte(field, '.'); idx >= 0 {
		field = field[idx+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s must not be blank", strings.ToLower(field))
	case "max":
		if fe.Field() == "Holdings" {
			return fmt.Sprintf("holdings must contain at most %d entries", maxInsightHoldings)
		}
		if fe.Field() == "Preferences" {
			return fmt.Sprintf("preferences must be at most %d characters", maxPreferencesLength)
		}
		return fmt.Sprintf("%s must be at most %s characters", strings.ToLower(field), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", strings.ToLower(field))
	}
}
