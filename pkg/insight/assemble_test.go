package insight

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestBuildSampleResponse(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	result := Build(sampleResponse, []string{"MSFT", "AAPL"}, now)

	if result.Summary != "Tech-heavy portfolio needs bond exposure and broader diversification" {
		t.Fatalf("summary = %q", result.Summary)
	}
	if result.CreatedAt != "2024-03-05T14:07:09" {
		t.Fatalf("createdAt = %q", result.CreatedAt)
	}
	if result.AIGeneratedText != sampleResponse {
		t.Fatalf("raw text must be kept verbatim")
	}

	s := result.StructuredInsight
	if s == nil {
		t.Fatalf("expected structured insight")
	}
	if s.RawResponse != sampleResponse {
		t.Fatalf("rawResponse must be kept verbatim")
	}
	wantMain := []string{"Rebalance technology below 40%", "Add fixed income", "Review quarterly"}
	if !reflect.DeepEqual(s.MainRecommendations, wantMain) {
		t.Fatalf("main recommendations = %v", s.MainRecommendations)
	}
	if len(s.AssetRecommendations) != 2 {
		t.Fatalf("expected 2 asset recommendations, got %+v", s.AssetRecommendations)
	}
	if s.AssetRecommendations[0].Ticker != "BND" || s.AssetRecommendations[0].Allocation != "8% of portfolio" {
		t.Fatalf("unexpected first recommendation %+v", s.AssetRecommendations[0])
	}
	if s.AssetRecommendations[1].Ticker != "JNJ" || s.AssetRecommendations[1].Reasoning != "" {
		t.Fatalf("unexpected second recommendation %+v", s.AssetRecommendations[1])
	}
	if s.QualitativeInsights.Len() != s.Sections.Len() || s.SectionSpecificAnalysis.Len() != s.Sections.Len() {
		t.Fatalf("mirrors must cover every section")
	}
	for pair := s.Sections.Oldest(); pair != nil; pair = pair.Next() {
		q, _ := s.QualitativeInsights.Get(pair.Key)
		a, _ := s.SectionSpecificAnalysis.Get(pair.Key)
		if q != pair.Value.Content || a != pair.Value.Content {
			t.Fatalf("mirror mismatch for %s", pair.Key)
		}
	}
	if len(s.ScoreAdjustments) != 3 {
		t.Fatalf("expected 3 score adjustments, got %d", len(s.ScoreAdjustments))
	}
}

func TestParsePrefersAssetOverSpecificRecommendations(t *testing.T) {
	raw := "SPECIFIC RECOMMENDATIONS\n1. AAA - From Specific\nASSET RECOMMENDATIONS\n1. BBB - From Asset"
	s := Parse(raw)
	if len(s.AssetRecommendations) != 1 || s.AssetRecommendations[0].Ticker != "BBB" {
		t.Fatalf("expected asset_recommendations to win, got %+v", s.AssetRecommendations)
	}

	s = Parse("SPECIFIC RECOMMENDATIONS\n1. AAA - From Specific")
	if len(s.AssetRecommendations) != 1 || s.AssetRecommendations[0].Ticker != "AAA" {
		t.Fatalf("expected specific_recommendations fallback, got %+v", s.AssetRecommendations)
	}
}

func TestParseEmptyInputSerializesEmptyCollections(t *testing.T) {
	result := Build("", []string{"SPY", "VTI"}, time.Now())
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(data)
	for _, fragment := range []string{
		`"summary":"Portfolio analysis: 2 holdings reviewed"`,
		`"mainRecommendations":[]`,
		`"sections":{}`,
		`"qualitativeInsights":{}`,
		`"scoreAdjustments":{}`,
		`"sectionSpecificAnalysis":{}`,
		`"assetRecommendations":[]`,
		`"rawResponse":""`,
	} {
		if !strings.Contains(body, fragment) {
			t.Fatalf("expected %s in %s", fragment, body)
		}
	}
}

func TestInvestmentInsightJSONShape(t *testing.T) {
	result := Build(sampleResponse, []string{"MSFT"}, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, field := range []string{"summary", "aiGeneratedText", "createdAt", "structuredInsight"} {
		if _, ok := decoded[field]; !ok {
			t.Fatalf("missing field %s", field)
		}
	}

	structured := decoded["structuredInsight"].(map[string]any)
	sections := structured["sections"].(map[string]any)
	risk := sections["risk_assessment"].(map[string]any)
	if risk["title"] != "Risk Assessment" || risk["riskLevel"] != "neutral" {
		t.Fatalf("unexpected section %v", risk)
	}
	if metrics, ok := risk["keyMetrics"].([]any); !ok || len(metrics) != 0 {
		t.Fatalf("keyMetrics must be an empty list, got %v", risk["keyMetrics"])
	}
	if _, ok := risk["key"]; ok {
		t.Fatalf("section key must not be serialized")
	}

	adjustments := structured["scoreAdjustments"].(map[string]any)
	goal := adjustments["goalAlignment"].(map[string]any)
	if goal["adjustment"] != "0%" || goal["reasoning"] != "aligns well with goals" || goal["hasPercentSign"] != true {
		t.Fatalf("unexpected goal alignment %v", goal)
	}

	body := string(data)
	order := []string{`"risk_assessment"`, `"diversification_analysis"`, `"goal_alignment"`, `"next_steps"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(body, key)
		if idx <= last {
			t.Fatalf("sections must keep input order, %s at %d after %d", key, idx, last)
		}
		last = idx
	}
}

func TestParseIsIdempotent(t *testing.T) {
	first, err := json.Marshal(Parse(sampleResponse))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(Parse(sampleResponse))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("parse output differs between runs")
	}

	a := Build(sampleResponse, nil, time.Unix(0, 0))
	b := Build(sampleResponse, nil, time.Unix(3600, 0))
	a.CreatedAt, b.CreatedAt = "", ""
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if !bytes.Equal(ja, jb) {
		t.Fatalf("build output differs apart from createdAt")
	}
}

func TestBulletItems(t *testing.T) {
	content := "- first\n•   second\n* third\n--- fourth\nplain\n-\n* "
	want := []string{"first", "second", "third", "fourth"}
	if got := bulletItems(content); !reflect.DeepEqual(got, want) {
		t.Fatalf("bulletItems = %v, want %v", got, want)
	}
}

func FuzzParse(f *testing.F) {
	f.Add(sampleResponse)
	f.Add("")
	f.Add("SUMMARY:\nRISK\n1. [X] - Y\n=== SCORE ADJUSTMENT REQUEST ===")
	f.Add("RISK SCORE ADJUSTMENT: Suggested adjustment: 9 Brief reasoning:")

	f.Fuzz(func(t *testing.T, raw string) {
		result := Build(raw, []string{"SPY"}, time.Unix(0, 0))
		if result.Summary == "" || utf8.RuneCountInString(result.Summary) > MaxSummaryLength {
			t.Fatalf("summary out of bounds: %q", result.Summary)
		}
		s := result.StructuredInsight
		for pair := s.Sections.Oldest(); pair != nil; pair = pair.Next() {
			if !IsSectionKey(pair.Key) {
				t.Fatalf("unknown section key %q", pair.Key)
			}
		}
		for _, rec := range s.AssetRecommendations {
			if rec.Ticker == "" || rec.AssetName == "" {
				t.Fatalf("recommendation without identity: %+v", rec)
			}
		}
		if len(s.ScoreAdjustments) > 3 {
			t.Fatalf("too many adjustments")
		}
	})
}
