package insight

import (
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const bulletCutset = "-•* "

// Parse turns one raw model response into a StructuredInsight.
// It is pure: the same input always yields the same output.
func Parse(raw string) StructuredInsight {
	sections := Segment(raw)

	structured := StructuredInsight{
		MainRecommendations:     []string{},
		Sections:                sections,
		RawResponse:             raw,
		QualitativeInsights:     orderedmap.New[string, string](),
		SectionSpecificAnalysis: orderedmap.New[string, string](),
		AssetRecommendations:    []AssetRecommendation{},
	}

	if section, ok := recommendationSection(sections); ok {
		structured.AssetRecommendations = ParseAssetRecommendations(section.Content)
	}

	if next, ok := sections.Get(KeyNextSteps); ok {
		structured.MainRecommendations = bulletItems(next.Content)
	}

	for pair := sections.Oldest(); pair != nil; pair = pair.Next() {
		structured.QualitativeInsights.Set(pair.Key, pair.Value.Content)
		structured.SectionSpecificAnalysis.Set(pair.Key, pair.Value.Content)
	}

	structured.ScoreAdjustments = ExtractScoreAdjustments(raw)
	return structured
}

// Build parses raw and wraps it into the InvestmentInsight returned to callers.
func Build(raw string, holdings []string, now time.Time) InvestmentInsight {
	structured := Parse(raw)
	return InvestmentInsight{
		Summary:           ExtractSummary(raw, holdings),
		AIGeneratedText:   raw,
		CreatedAt:         now.Format(CreatedAtLayout),
		StructuredInsight: &structured,
	}
}

func recommendationSection(sections *Sections) (Section, bool) {
	if section, ok := sections.Get(KeyAssetRecommendations); ok {
		return section, true
	}
	return sections.Get(KeySpecificRecommendations)
}

func bulletItems(content string) []string {
	items := []string{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "•") && !strings.HasPrefix(line, "*") {
			continue
		}
		if item := strings.TrimSpace(strings.TrimLeft(line, bulletCutset)); item != "" {
			items = append(items, item)
		}
	}
	return items
}
