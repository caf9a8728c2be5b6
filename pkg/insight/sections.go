package insight

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type headingRule struct {
	key      string
	prefixes []string
}

// headingRules is checked in order; the first matching prefix wins.
var headingRules = []headingRule{
	{KeyPortfolioInsights, []string{"PORTFOLIO INSIGHTS", "PORTFOLIO"}},
	{KeyRiskAssessment, []string{"RISK ASSESSMENT", "RISK"}},
	{KeyDiversificationAnalysis, []string{"DIVERSIFICATION ANALYSIS", "DIVERSIFICATION"}},
	{KeyGoalAlignment, []string{"GOAL ALIGNMENT", "GOAL"}},
	{KeyPerformanceAnalysis, []string{"PERFORMANCE ANALYSIS", "PERFORMANCE"}},
	{KeyMacroAnalysis, []string{"MACRO ANALYSIS", "MACRO"}},
	{KeyMarketContext, []string{"MARKET CONTEXT", "MARKET"}},
	{KeyAssetRecommendations, []string{"ASSET RECOMMENDATIONS", "ASSET"}},
	{KeySpecificRecommendations, []string{"SPECIFIC RECOMMENDATIONS", "SPECIFIC"}},
	{KeyNextSteps, []string{"NEXT STEPS", "NEXT"}},
}

// Lines starting with a stop marker end the section scan.
var stopMarkers = []string{
	"=== SCORE ADJUSTMENT REQUEST ===",
	"SCORE ADJUSTMENT REQUEST",
	"RISK SCORE ADJUSTMENT",
	"PORTFOLIO TYPE CLASSIFICATION",
}

// Lines containing one of these labels belong to the adjustment template and are dropped.
var adjustmentLabels = []string{
	"SUGGESTED ADJUSTMENT:",
	"BRIEF REASONING:",
	"RISK SCORE ADJUSTMENT:",
	"DIVERSIFICATION ADJUSTMENT:",
	"GOAL ALIGNMENT ADJUSTMENT:",
}

const summaryMarker = "SUMMARY"

// SectionKeys returns the canonical section keys in heading-table order.
func SectionKeys() []string {
	keys := make([]string, 0, len(headingRules))
	for _, rule := range headingRules {
		keys = append(keys, rule.key)
	}
	return keys
}

// IsSectionKey reports whether key belongs to the canonical vocabulary.
func IsSectionKey(key string) bool {
	for _, rule := range headingRules {
		if rule.key == key {
			return true
		}
	}
	return false
}

// Segment splits raw into sections up to the first stop marker.
func Segment(raw string) *Sections {
	sections := orderedmap.New[string, Section]()

	currentKey := ""
	var buffer []string
	flush := func() {
		if currentKey != "" && len(buffer) > 0 {
			sections.Set(currentKey, newSection(currentKey, buffer))
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if hasAnyPrefixFold(line, stopMarkers) {
			break
		}
		if key, ok := matchHeading(line); ok {
			flush()
			currentKey = key
			buffer = nil
			continue
		}
		if hasPrefixFold(line, summaryMarker) {
			continue
		}
		if containsAny(strings.ToUpper(line), adjustmentLabels) {
			continue
		}
		if currentKey != "" {
			buffer = append(buffer, line)
		}
	}
	flush()

	return sections
}

func matchHeading(line string) (string, bool) {
	for _, rule := range headingRules {
		if hasAnyPrefixFold(line, rule.prefixes) {
			return rule.key, true
		}
	}
	return "", false
}

func sectionTitle(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func hasAnyPrefixFold(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if hasPrefixFold(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
