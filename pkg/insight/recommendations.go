package insight

import (
	"regexp"
	"strings"
)

var reRecommendationStart = regexp.MustCompile(`^\d+\.\s*\[?[A-Z]+\]?\s*-\s*`)

type recommendationField struct {
	prefix string
	set    func(*AssetRecommendation, string)
}

var recommendationFields = []recommendationField{
	{"allocation:", func(r *AssetRecommendation, v string) { r.Allocation = v }},
	{"category:", func(r *AssetRecommendation, v string) { r.Category = v }},
	{"reasoning:", func(r *AssetRecommendation, v string) { r.Reasoning = v }},
	{"priority:", func(r *AssetRecommendation, v string) { r.Priority = v }},
	{"expected impact:", func(r *AssetRecommendation, v string) { r.ExpectedImpact = v }},
}

// ParseAssetRecommendations reads numbered "N. [TICKER] - Name" blocks and their
// "Field: value" lines from one section's content.
func ParseAssetRecommendations(content string) []AssetRecommendation {
	recommendations := []AssetRecommendation{}
	var current *AssetRecommendation

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if reRecommendationStart.MatchString(line) {
			if current != nil {
				recommendations = append(recommendations, *current)
			}
			current = openRecommendation(line)
			continue
		}
		if current == nil {
			continue
		}

		lower := strings.ToLower(line)
		for _, field := range recommendationFields {
			if strings.HasPrefix(lower, field.prefix) {
				field.set(current, valueAfterColon(line))
				break
			}
		}
	}

	if current != nil {
		recommendations = append(recommendations, *current)
	}
	return recommendations
}

// openRecommendation returns nil when the line does not split into ticker and name.
func openRecommendation(line string) *AssetRecommendation {
	parts := strings.SplitN(line, " - ", 2)
	if len(parts) != 2 {
		return nil
	}
	_, tickerPart, found := strings.Cut(parts[0], ".")
	if !found {
		return nil
	}
	ticker := strings.Trim(strings.TrimSpace(tickerPart), "[]")
	name := strings.TrimSpace(parts[1])
	if ticker == "" || name == "" {
		return nil
	}
	return &AssetRecommendation{Ticker: ticker, AssetName: name}
}

func valueAfterColon(line string) string {
	_, value, _ := strings.Cut(line, ":")
	return strings.TrimSpace(value)
}
