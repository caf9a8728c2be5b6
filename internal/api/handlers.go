package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"portfolioinsight/pkg/advisor"
)

const (
	defaultMarketNewsLimit = 3
	maxMarketNewsLimit     = 50
	maxRequestBodyBytes    = 1 << 20
)

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Service: "ai-microservice"})
}

func (h *handler) marketNews(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeErrorResponse(w, r, http.StatusBadRequest, advisor.WrapError(advisor.ErrCodeInvalidInput, "invalid limit", err))
		return
	}
	headlines, err := h.svc.MarketNews(r.Context(), limit)
	if err != nil {
		writeErrorResponse(w, r, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, headlinesResponse{Headlines: nonNilHeadlines(headlines)})
}

func (h *handler) portfolioNews(w http.ResponseWriter, r *http.Request) {
	var payload portfolioNewsPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeErrorResponse(w, r, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(payload.PortfolioID) == "" {
		writeErrorResponse(w, r, http.StatusBadRequest, advisor.NewError(advisor.ErrCodeInvalidInput, "portfolio_id is required"))
		return
	}
	headlines := h.svc.PortfolioNews(r.Context(), payload.PortfolioID, payload.Holdings)
	writeJSON(w, http.StatusOK, portfolioNewsResponse{
		Headlines:   nonNilHeadlines(headlines),
		PortfolioID: payload.PortfolioID,
	})
}

func (h *handler) generateInsight(w http.ResponseWriter, r *http.Request) {
	var payload generateInsightPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeErrorResponse(w, r, http.StatusBadRequest, err)
		return
	}
	result, err := h.svc.GenerateInsight(r.Context(), advisor.InsightRequest{
		Holdings:    payload.Holdings,
		Preferences: payload.Preferences,
	})
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) parseInsight(w http.ResponseWriter, r *http.Request) {
	var payload parseInsightPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeErrorResponse(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.ParseInsight(payload.RawResponse, payload.Holdings))
}

// decodeJSON reads a single JSON object from the request body. Failures are
// returned as INVALID_INPUT errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return advisor.NewError(advisor.ErrCodeInvalidInput, "request body is empty")
		}
		return advisor.WrapError(advisor.ErrCodeInvalidInput, "invalid JSON body", err)
	}
	if decoder.More() {
		return advisor.NewError(advisor.ErrCodeInvalidInput, "request body must contain a single JSON object")
	}
	return nil
}

func parseLimit(value string) (int, error) {
	if value == "" {
		return defaultMarketNewsLimit, nil
	}
	limit, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if limit < 1 || limit > maxMarketNewsLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", maxMarketNewsLimit)
	}
	return limit, nil
}

func nonNilHeadlines(headlines []advisor.Headline) []advisor.Headline {
	if headlines == nil {
		return []advisor.Headline{}
	}
	return headlines
}
