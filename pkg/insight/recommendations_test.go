package insight

import (
	"reflect"
	"testing"
)

func TestParseAssetRecommendationsBracketedTicker(t *testing.T) {
	content := "5. [BND] - Vanguard Total Bond ETF\nAllocation: 8%\nCategory: Bond\nReasoning: stability\nPriority: High\nExpected Impact: reduces volatility"

	got := ParseAssetRecommendations(content)
	want := []AssetRecommendation{{
		Ticker:         "BND",
		AssetName:      "Vanguard Total Bond ETF",
		Allocation:     "8%",
		Category:       "Bond",
		Reasoning:      "stability",
		Priority:       "High",
		ExpectedImpact: "reduces volatility",
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestParseAssetRecommendations(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []AssetRecommendation
	}{
		{
			name:    "order preserved and unset fields empty",
			content: "1. VYM - Vanguard High Dividend Yield ETF\nAllocation: 6%\n2. [O] - Realty Income\nPriority: Low",
			want: []AssetRecommendation{
				{Ticker: "VYM", AssetName: "Vanguard High Dividend Yield ETF", Allocation: "6%"},
				{Ticker: "O", AssetName: "Realty Income", Priority: "Low"},
			},
		},
		{
			name:    "field prefixes are case-insensitive and keep text after first colon",
			content: "1. GLD - SPDR Gold Shares\nALLOCATION: 3%: tactical\nexpected impact: hedges inflation",
			want: []AssetRecommendation{
				{Ticker: "GLD", AssetName: "SPDR Gold Shares", Allocation: "3%: tactical", ExpectedImpact: "hedges inflation"},
			},
		},
		{
			name:    "asset name keeps later separators",
			content: "3. QQQ - Invesco QQQ - Nasdaq 100",
			want: []AssetRecommendation{
				{Ticker: "QQQ", AssetName: "Invesco QQQ - Nasdaq 100"},
			},
		},
		{
			name:    "lines before first recommendation and unknown lines are ignored",
			content: "Allocation: 10%\nHere are my picks\n1. AAPL - Apple Inc.\nNote: strong balance sheet\nCategory: Stock",
			want: []AssetRecommendation{
				{Ticker: "AAPL", AssetName: "Apple Inc.", Category: "Stock"},
			},
		},
		{
			name:    "line without spaced separator opens nothing",
			content: "1. AAA - Alpha Fund\nAllocation: 1%\n2. BBB -Beta Fund\nAllocation: 9%",
			want: []AssetRecommendation{
				{Ticker: "AAA", AssetName: "Alpha Fund", Allocation: "1%"},
			},
		},
		{
			name:    "lowercase ticker does not open a recommendation",
			content: "1. vti - Vanguard Total Market",
			want:    []AssetRecommendation{},
		},
		{
			name:    "empty content",
			content: "",
			want:    []AssetRecommendation{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAssetRecommendations(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseAssetRecommendationsNeverEmptyIdentity(t *testing.T) {
	content := "1. [ABC] - \n2. [] - Nothing\n3. XYZ - Something"
	for _, rec := range ParseAssetRecommendations(content) {
		if rec.Ticker == "" || rec.AssetName == "" {
			t.Fatalf("recommendation with empty identity: %+v", rec)
		}
	}
}
