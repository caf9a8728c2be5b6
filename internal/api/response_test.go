package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"portfolioinsight/pkg/advisor"
)

func TestWriteErrorResponse(t *testing.T) {
	t.Run("structured error", func(t *testing.T) {
		rr := httptest.NewRecorder()
		writeErrorResponse(rr, nil, http.StatusInternalServerError, advisor.NewError(advisor.ErrCodeRateLimited, "slow down"))

		if rr.Code != http.StatusTooManyRequests {
			t.Fatalf("expected status 429, got %d", rr.Code)
		}
		var resp ErrorResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.ErrorCode != string(advisor.ErrCodeRateLimited) || resp.Message != "slow down" || resp.Code != http.StatusTooManyRequests {
			t.Fatalf("unexpected response %+v", resp)
		}
	})

	t.Run("wrapped structured error", func(t *testing.T) {
		rr := httptest.NewRecorder()
		err := fmt.Errorf("generate: %w", advisor.NewError(advisor.ErrCodeTimeout, "language model"))
		writeErrorResponse(rr, nil, http.StatusInternalServerError, err)
		if rr.Code != http.StatusGatewayTimeout {
			t.Fatalf("expected status 504, got %d", rr.Code)
		}
	})

	t.Run("plain error", func(t *testing.T) {
		rr := httptest.NewRecorder()
		writeErrorResponse(rr, nil, http.StatusBadRequest, errors.New("bad input"))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rr.Code)
		}
		var resp ErrorResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.ErrorCode != "" || resp.Message != "bad input" {
			t.Fatalf("unexpected response %+v", resp)
		}
	})
}

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code advisor.ErrorCode
		want int
	}{
		{name: "invalid", code: advisor.ErrCodeInvalidInput, want: http.StatusBadRequest},
		{name: "timeout", code: advisor.ErrCodeTimeout, want: http.StatusGatewayTimeout},
		{name: "rate limited", code: advisor.ErrCodeRateLimited, want: http.StatusTooManyRequests},
		{name: "upstream", code: advisor.ErrCodeUpstream, want: http.StatusBadGateway},
		{name: "not configured", code: advisor.ErrCodeNotConfigured, want: http.StatusServiceUnavailable},
		{name: "internal", code: advisor.ErrCodeInternal, want: http.StatusInternalServerError},
		{name: "default", code: advisor.ErrorCode("UNKNOWN"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapErrorCodeToHTTPStatus(tt.code)
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "", want: defaultMarketNewsLimit},
		{in: "1", want: 1},
		{in: "50", want: 50},
		{in: "51", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "x", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseLimit(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseLimit(%q) err = %v", tt.in, err)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("parseLimit(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
