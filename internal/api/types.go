package api

import "portfolioinsight/pkg/advisor"

type generateInsightPayload struct {
	Holdings    []string `json:"holdings"`
	Preferences string   `json:"preferences"`
}

type parseInsightPayload struct {
	RawResponse string   `json:"raw_response"`
	Holdings    []string `json:"holdings"`
}

type portfolioNewsPayload struct {
	PortfolioID string   `json:"portfolio_id"`
	Holdings    []string `json:"holdings"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type headlinesResponse struct {
	Headlines []advisor.Headline `json:"headlines"`
}

type portfolioNewsResponse struct {
	Headlines   []advisor.Headline `json:"headlines"`
	PortfolioID string             `json:"portfolio_id"`
}
